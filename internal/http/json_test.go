package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/leanchem/connect-api/internal/errors"
)

func TestWriteAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest, "validation"},
		{"credential", apperrors.Credential(nil), http.StatusUnauthorized, "credential"},
		{"access denied", apperrors.AccessDenied("nope"), http.StatusForbidden, "access_denied"},
		{"not found", apperrors.NotFound("missing"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.Conflict("duplicate"), http.StatusConflict, "conflict"},
		{"rate limited", apperrors.RateLimited("slow down"), http.StatusTooManyRequests, "rate_limited"},
		{"provider", apperrors.Provider(nil, "provider down"), http.StatusBadGateway, "provider"},
		{"directory", apperrors.Directory(nil, "directory down"), http.StatusServiceUnavailable, "directory"},
		{"plain error", errors.New("surprise"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestWriteAppErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("db password leaked"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db password")
}
