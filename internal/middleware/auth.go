package middleware

import (
	"context"
	"net/http"
	"strings"

	"ArchiveDesk/internal/cli/auth"
)

type ctxKey struct{}

// Identity — пользователь, извлечённый из bearer-токена.
type Identity struct {
	UserID string
	Login  string
	Role   string
}

// WithAuth кладёт в контекст Identity, если запрос несёт валидный bearer-токен.
// Запросы без токена или с невалидным токеном проходят анонимно.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			tok, ok := strings.CutPrefix(h, "Bearer ")
			if ok && tok != "" {
				if c, err := auth.VerifyToken(secret, tok); err == nil {
					id := Identity{UserID: c.Subject, Login: c.Login, Role: c.Role}
					r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
