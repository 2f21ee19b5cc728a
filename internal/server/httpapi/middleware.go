package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/auth"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// principalSource resolves a token subject to a full user record. It is the
// single store lookup an authenticated request performs.
type principalSource interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware verifies request credentials and attaches the principal to
// the request context.
type AuthMiddleware struct {
	users     principalSource
	jwtSecret []byte
	logger    logging.Logger
}

func NewAuthMiddleware(users principalSource, secretKey string, logger logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		users:     users,
		jwtSecret: []byte(secretKey),
		logger:    logger.With("component", "auth"),
	}
}

// extractToken pulls the credential from the accessToken cookie first, then
// from the Authorization header. Browser clients use the cookie; API clients
// send a Bearer token.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(common.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolvePrincipal verifies the token and loads the principal it names.
// All failures collapse into an error already mapped for the client.
func (m *AuthMiddleware) resolvePrincipal(r *http.Request) (*models.Projection, int, string) {
	token := extractToken(r)
	if token == "" {
		return nil, http.StatusUnauthorized, "Unauthorized access"
	}

	userID, err := auth.GetUserIDFromToken(token, m.jwtSecret)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			return nil, http.StatusUnauthorized, "Session expired, please log in again"
		default:
			return nil, http.StatusUnauthorized, "Invalid authentication token"
		}
	}

	user, err := m.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// A valid token for a deleted account reads the same as no
			// credential at all.
			return nil, http.StatusUnauthorized, "Unauthorized access"
		}
		m.logger.Error(r.Context(), "principal lookup failed", "error", err.Error())
		return nil, http.StatusInternalServerError, "Internal server error"
	}

	return user.Project(), 0, ""
}

// RequireAuth rejects requests without a valid credential and a resolvable
// principal. On success the principal projection is attached to the context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, status, message := m.resolvePrincipal(r)
		if principal == nil {
			code := CodeUnauthorized
			if status == http.StatusInternalServerError {
				code = ""
			}
			WriteError(w, status, code, message, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// OptionalAuth runs the same pipeline as RequireAuth but never rejects: any
// failure just leaves the request anonymous.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, _, _ := m.resolvePrincipal(r); principal != nil {
			r = r.WithContext(withPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}
