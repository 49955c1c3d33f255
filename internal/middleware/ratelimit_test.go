package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(max, window)
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.1.1.1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "keys are independent")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl, now := newTestLimiter(t, 1, time.Minute)

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
	assert.Equal(t, time.Minute, rl.TimeUntilReset("k"))

	*now = now.Add(30 * time.Second)
	assert.Equal(t, 30*time.Second, rl.TimeUntilReset("k"))

	*now = now.Add(31 * time.Second)
	assert.Zero(t, rl.TimeUntilReset("k"))
	assert.True(t, rl.Allow("k"))
}

func TestRateLimiter_ResetAndEvict(t *testing.T) {
	rl, now := newTestLimiter(t, 1, time.Minute)

	rl.Allow("a")
	rl.Reset("a")
	assert.True(t, rl.Allow("a"))

	rl.Allow("b")
	*now = now.Add(2 * time.Minute)
	rl.evictExpired()
	rl.mu.Lock()
	assert.Empty(t, rl.entries)
	rl.mu.Unlock()

	assert.Zero(t, rl.TimeUntilReset("missing"))
}

func TestRateLimiter_Limit(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	h := rl.Limit(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.5:4000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, domain.ERATELIMIT, decodeErrorCode(t, rec))

	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Equal(t, 60, retry)
}

func TestAuthRateLimiter(t *testing.T) {
	a := NewAuthRateLimiter(discardLogger())
	t.Cleanup(a.Stop)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	register := a.LimitRegister(ok)
	login := a.LimitLogin(ok)

	send := func(h http.Handler) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "198.51.100.1:1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send(register))
	}
	assert.Equal(t, http.StatusTooManyRequests, send(register))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send(login), "login limit is separate from register")
	}
	assert.Equal(t, http.StatusTooManyRequests, send(login))
}
