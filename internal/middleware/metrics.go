package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/DukeRupert/sdview/internal/domain"
)

// MetricsAuthMiddleware guards the Prometheus scrape endpoint with HTTP
// basic auth. With no credentials configured it lets every request through.
type MetricsAuthMiddleware struct {
	userHash [sha256.Size]byte
	passHash [sha256.Size]byte
	enabled  bool
}

// NewMetricsAuthMiddleware requires username and password on every scrape.
// Leaving both empty disables the check.
func NewMetricsAuthMiddleware(username, password string) *MetricsAuthMiddleware {
	return &MetricsAuthMiddleware{
		userHash: sha256.Sum256([]byte(username)),
		passHash: sha256.Sum256([]byte(password)),
		enabled:  username != "" || password != "",
	}
}

// Enabled reports whether scrapes must authenticate.
func (m *MetricsAuthMiddleware) Enabled() bool {
	return m.enabled
}

// Handler wraps next with the credential check.
func (m *MetricsAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.enabled && !m.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="metrics", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorized compares fixed-size digests so neither the comparison time
// nor its early exit depends on credential length.
func (m *MetricsAuthMiddleware) authorized(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	u := sha256.Sum256([]byte(user))
	p := sha256.Sum256([]byte(pass))
	userOK := subtle.ConstantTimeCompare(u[:], m.userHash[:])
	passOK := subtle.ConstantTimeCompare(p[:], m.passHash[:])
	return userOK&passOK == 1
}
