package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/EventLink/server/internal/api/problem"
	"github.com/EventLink/server/internal/auth"
	"github.com/EventLink/server/internal/domain/users"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (users.User, error)
}

type userContextKey struct{}

// BearerAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the authenticated user in the request context.
func BearerAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="eventlink"`)
				problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", err)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, users.ErrInvalidToken) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="eventlink", error="invalid_token"`)
					problem.Write(w, r, http.StatusUnauthorized, "Invalid token", err)
					return
				}
				problem.Write(w, r, http.StatusInternalServerError, "", err)
				return
			}

			logger := LoggerFromContext(r.Context()).With().Int64("user_id", user.ID).Logger()
			ctx := ContextWithUser(logger.WithContext(r.Context()), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ContextWithUser(ctx context.Context, user users.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user set by BearerAuth.
func UserFromContext(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(users.User)
	return user, ok && strings.TrimSpace(user.Username) != ""
}
