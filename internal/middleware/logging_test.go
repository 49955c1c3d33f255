package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newLoggingHandler(buf *bytes.Buffer, status int) http.Handler {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	mw := NewRequestLoggingMiddleware(logger)
	return mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("hello"))
	}))
}

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggingHandler(&buf, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/1/report.xlsx", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := buf.String()
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/api/sites/1/report.xlsx")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "bytes=5")
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, "ip=192.168.1.1")
	assert.Contains(t, out, "level=INFO")
}

func TestRequestLoggingMiddleware_ServerErrorsWarn(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggingHandler(&buf, http.StatusInternalServerError)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x", nil))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=500")
}

func TestRequestLoggingMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggingHandler(&buf, http.StatusOK)

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
		id := rec.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Contains(t, buf.String(), "request_id="+id)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		req.Header.Set(RequestIDHeader, "upstream-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "upstream-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestRequestLoggingMiddleware_SkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			var buf bytes.Buffer
			h := newLoggingHandler(&buf, http.StatusOK)
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
			assert.Empty(t, buf.String())
		})
	}

	var buf bytes.Buffer
	h := newLoggingHandler(&buf, http.StatusOK)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthy-sites", nil))
	assert.NotEmpty(t, buf.String())
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		want     string
	}{
		{"no query", "/api/x", "", "/api/x"},
		{"plain params", "/api/x", "date=2024-05-01", "/api/x?date=2024-05-01"},
		{"redacts token", "/api/x", "token=abc&date=2024-05-01", "/api/x?token=[REDACTED]&date=2024-05-01"},
		{"case insensitive", "/api/x", "Password=hunter2", "/api/x?Password=[REDACTED]"},
		{"drops valueless", "/api/x", "flag", "/api/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizePath(tt.path, tt.rawQuery))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.1:8080", nil, "10.0.0.1"},
		{"remote addr without port", "10.0.0.1", nil, "10.0.0.1"},
		{"forwarded for", "10.0.0.1:8080", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "203.0.113.195"},
		{"real ip", "10.0.0.1:8080", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
