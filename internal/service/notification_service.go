package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/events"
)

// NotificationService logs incident events and forwards them to an optional webhook.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
	http   *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig, httpClient *http.Client) *NotificationService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
		http:   httpClient,
	}
}

// Notify records one event.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("incident_number", event.IncidentNumber),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return n.postWebhook(ctx, event)
}

func (n *NotificationService) postWebhook(ctx context.Context, event events.Event) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
