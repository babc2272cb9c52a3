package service

import (
	"errors"
	"net/http"

	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/graph"
	"github.com/spec-kit/bart-incident-bot/internal/ticketing"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// backendError converts a ticketing, Graph or connector failure into a
// pass-through domain error. Other errors are returned unchanged.
func backendError(err error) error {
	if err == nil {
		return nil
	}
	var snErr *ticketing.ErrorResponse
	if errors.As(err, &snErr) {
		msg := snErr.Message
		if snErr.Detail != "" {
			msg += ": " + snErr.Detail
		}
		return apperrors.NewUpstreamError(snErr.StatusCode, msg, snErr.CorrelationID, err)
	}
	var graphErr *graph.ErrorResponse
	if errors.As(err, &graphErr) {
		return apperrors.NewUpstreamError(graphErr.StatusCode, graphErr.Message, graphErr.CorrelationID, err)
	}
	var connErr *botframework.ConnectorError
	if errors.As(err, &connErr) {
		return apperrors.NewUpstreamError(connErr.StatusCode, connErr.Message, "", err)
	}
	return err
}

// transportError reports an unreachable backend.
func transportError(err error) error {
	if err == nil {
		return nil
	}
	mapped := backendError(err)
	if mapped != err {
		return mapped
	}
	return apperrors.NewUpstreamError(http.StatusBadGateway, err.Error(), "", err)
}
