package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/config"
)

// RetryTransport retries failed round trips with a doubling delay.
// It retries every method, including POST.
type RetryTransport struct {
	Base        http.RoundTripper
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *zap.Logger

	sleep func(time.Duration)
}

// New returns an http.Client whose transport applies the configured retry policy.
func New(cfg config.RetryConfig, logger *zap.Logger) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &RetryTransport{
			Base:        http.DefaultTransport,
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay(),
			Logger:      logger,
		},
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	delay := t.BaseDelay
	var (
		resp *http.Response
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptReq := req
		if body != nil {
			attemptReq = req.Clone(req.Context())
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))
		}

		resp, err = base.RoundTrip(attemptReq)
		if !shouldRetry(resp, err) || attempt == attempts {
			return resp, err
		}
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if t.Logger != nil {
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("host", req.URL.Host),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			} else {
				fields = append(fields, zap.Int("status", resp.StatusCode))
			}
			t.Logger.Warn("retrying outbound request", fields...)
		}

		if err := t.wait(req, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
	return resp, err
}

func (t *RetryTransport) wait(req *http.Request, delay time.Duration) error {
	if delay <= 0 {
		return req.Context().Err()
	}
	if t.sleep != nil {
		t.sleep(delay)
		return req.Context().Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}
