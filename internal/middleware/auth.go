package middleware

import (
	"context"
	"net/http"

	"go-discussion-board/internal/model"
	"go-discussion-board/internal/token"
)

// authenticator resolves a raw bearer token to a live user. Implemented by
// service.AuthService; an interface so the middleware tests without a store.
type authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (model.User, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

type AuthMiddleware struct {
	auth authenticator
}

func NewAuthMiddleware(auth authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth rejects the request unless it carries a valid bearer token
// whose subject still exists. Routes are protected by default; public routes
// are the ones the router explicitly mounts without this middleware.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := token.ExtractBearer(r)
		if !ok {
			writeUnauthorized(w, "missing or invalid authorization header")
			return
		}

		user, err := m.auth.Authenticate(r.Context(), raw)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the identity RequireAuth attached to the request.
func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(authUserContextKey).(model.User)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
