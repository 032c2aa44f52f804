package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/coursehub/backend/internal/models"
)

// TokenValidator validates an access token and returns the requester it identifies
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (models.Requester, error)
}

// extractToken reads a bearer token from the Authorization header or the access_token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// AuthMiddleware rejects requests without a valid access token and stores the requester in the context
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}

			requester, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRequester(r.Context(), requester)))
		})
	}
}

// OptionalAuthMiddleware attaches the requester when a valid token is present and never rejects
func OptionalAuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if requester, err := validator.ValidateAccessToken(token); err == nil {
					r = r.WithContext(WithRequester(r.Context(), requester))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated requests whose role lacks the capability.
// It must run after AuthMiddleware.
func RequireRole(allowed func(models.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, ok := GetRequester(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !allowed(requester.Role) {
				writeMessage(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithRequester returns a copy of ctx carrying the requester
func WithRequester(ctx context.Context, requester models.Requester) context.Context {
	return context.WithValue(ctx, requesterKey, requester)
}

// GetRequester retrieves the authenticated requester from context
func GetRequester(ctx context.Context) (models.Requester, bool) {
	requester, ok := ctx.Value(requesterKey).(models.Requester)
	return requester, ok
}

// GetUserID retrieves the authenticated user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	requester, ok := GetRequester(ctx)
	return requester.UserID, ok
}
