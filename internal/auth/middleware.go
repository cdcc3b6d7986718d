// internal/auth/middleware.go
// Request authentication. Token issuance lives in the identity service;
// this middleware only verifies access tokens and loads the caller into
// the request context.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/amouradev/amoura-backend/internal/common/utils"
)

// Middleware provides authentication middleware
type Middleware struct {
	jwtSecret string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate verifies the JWT token and adds user information to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(token, m.jwtSecret)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "email", claims.Email)
		ctx = context.WithValue(ctx, "username", claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the bearer token from the Authorization header
func (m *Middleware) extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// UserIDFromContext returns the authenticated user id set by Authenticate
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value("userID").(int64)
	return userID, ok
}
