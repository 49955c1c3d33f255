// Package middleware contains HTTP middleware for the sdview API.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are composed with Stack.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/sdview/internal/auth"
	"github.com/DukeRupert/sdview/internal/domain"
)

// Authenticator resolves a bearer token to its user. service.UserService
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error)
}

// AuthMiddleware provides bearer token authentication.
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(authenticator Authenticator, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// Authenticate requires a valid `Authorization: Bearer <token>` header.
// On success the user and claims are stored in the request context; otherwise
// the request is rejected with 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "Authentication required")
			return
		}

		user, claims, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			code := domain.ErrorCode(err)
			if code == domain.EUNAUTHORIZED {
				m.logger.Debug("rejected bearer token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, code, domain.ErrorMessage(err))
				return
			}
			m.logger.Error("failed to authenticate request", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, domain.EINTERNAL, domain.ErrorMessage(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), user, claims)))
	})
}

// RequireRole returns middleware that rejects authenticated users lacking
// role with 403. It must run after Authenticate; a request without a user is
// rejected with 401.
func (m *AuthMiddleware) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.GetUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "Authentication required")
				return
			}
			if !user.HasRole(role) {
				m.logger.Info("role check failed",
					"user_id", user.ID,
					"required_role", role,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusForbidden, domain.EFORBIDDEN, "You don't have permission to access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// writeError writes the API's JSON error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
