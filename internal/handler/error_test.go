package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponse_DoesNotExposeInternals(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"plain error", errors.New("pq: relation \"users\" does not exist")},
		{"wrapped internal", domain.Internal(errors.New("dial tcp 10.0.0.5:5432"), "SnapshotService.Load", "Failed to load site")},
		{"fmt wrapped", fmt.Errorf("store: %w", errors.New("secret key abc123"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil), testLogger(), tt.err)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeError(t, rec)
			assert.Equal(t, domain.EINTERNAL, body.Error.Code)
			assert.Equal(t, "An internal error occurred. Please try again later.", body.Error.Message)
			assert.NotContains(t, rec.Body.String(), "SnapshotService")
		})
	}
}

func TestErrorResponse_ClientErrorsKeepMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := domain.NotFound("SnapshotService.Load", "site", "42")
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/api/sites/42/report.xlsx", nil), testLogger(), err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, domain.ENOTFOUND, body.Error.Code)
	assert.Equal(t, `site with ID "42" not found`, body.Error.Message)
	assert.NotContains(t, rec.Body.String(), "SnapshotService")
}

func TestErrorResponse_LogLevels(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{"client error", domain.Invalid("op", "bad"), "level=INFO"},
		{"server error", errors.New("boom"), "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			ErrorResponse(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x", nil), logger, tt.err)
			assert.Contains(t, buf.String(), tt.wantLevel)
		})
	}
}

func TestConvenienceResponses(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)

	rec := httptest.NewRecorder()
	NotFoundResponse(rec, req, testLogger())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	UnauthorizedResponse(rec, req, testLogger())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decodeError(t, rec).Error.Message)

	rec = httptest.NewRecorder()
	InternalErrorResponse(rec, req, testLogger(), errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}
