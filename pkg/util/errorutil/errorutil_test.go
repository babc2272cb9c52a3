package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", NewConflict("bridge unavailable", nil))

	de := ToDomainError(wrapped)
	assert.Equal(t, CodeConflict, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.True(t, IsCode(wrapped, CodeConflict))
}

func TestToDomainErrorSurfacesExceptionMessage(t *testing.T) {
	de := ToDomainError(errors.New("table write failed"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, "table write failed", de.Message)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}

func TestUpstreamErrorCarriesCorrelationID(t *testing.T) {
	de := ToDomainError(NewUpstreamError(http.StatusForbidden, "ACL denied", "abc-123", nil))
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.Equal(t, "abc-123", de.Details["correlationId"])

	de = ToDomainError(NewUpstreamError(0, "no response", "", nil))
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
}

func TestSigninRequired(t *testing.T) {
	de := ToDomainError(NewSigninRequired("please sign in"))
	assert.Equal(t, "signinRequired", de.Code)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
}
