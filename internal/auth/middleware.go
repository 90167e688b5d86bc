package auth

import (
	"context"
	"fmt"
	"net/http"

	"evento/internal/logger"
	"evento/internal/models"
	"evento/internal/utils"
)

type contextKey string

const (
	userKey contextKey = "user"
	roleKey contextKey = "role"
)

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity and role in the request context.
func Authenticate(h *JWTHandler, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			claims, err := h.ParseToken(rawToken)
			if err != nil {
				log.LogSecurity("INVALID_TOKEN", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			user := models.User{ID: claims.Subject, Name: claims.Name}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, claims.Role)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Role(r.Context()) != role {
				user, _ := UserFromContext(r.Context())
				log.LogSecurity("FORBIDDEN", fmt.Sprintf("user %s lacks role %s for %s %s", user.ID, role, r.Method, r.URL.Path))
				utils.WriteError(w, http.StatusForbidden, "forbidden", fmt.Errorf("role %q required", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user models.User, role string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, roleKey, role)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

func Role(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
