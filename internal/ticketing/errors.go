package ticketing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ErrorResponse is the structured failure returned by the ticketing backend.
type ErrorResponse struct {
	StatusCode    int    `json:"statusCode"`
	Message       string `json:"message"`
	Detail        string `json:"detail,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ticketing: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("ticketing: %d %s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
	Status string `json:"status"`
}

var correlationHeaders = []string{"X-Correlation-Id", "X-Transaction-Id", "X-Request-Id"}

func decodeError(resp *http.Response) *ErrorResponse {
	out := &ErrorResponse{StatusCode: resp.StatusCode}
	for _, h := range correlationHeaders {
		if v := resp.Header.Get(h); v != "" {
			out.CorrelationID = v
			break
		}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		out.Message = env.Error.Message
		out.Detail = env.Error.Detail
		return out
	}
	out.Message = http.StatusText(resp.StatusCode)
	if len(body) > 0 {
		out.Detail = string(body)
	}
	return out
}
