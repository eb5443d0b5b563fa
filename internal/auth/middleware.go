package auth

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/test-pad/testpad/internal/rbac"
)

type ctxKey string

const (
	ctxKeySub   ctxKey = "sub"
	ctxKeyEmail ctxKey = "email"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeySub).(string); ok {
		return s
	}
	return ""
}

func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxKeyEmail, email)
}

func EmailFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyEmail).(string); ok {
		return s
	}
	return ""
}

// JWTMiddleware validates the bearer token and attaches subject, email and
// role to the request context. Tokens must both verify and still be active in
// the auth_tokens table, so logout takes effect immediately.
func JWTMiddleware(a *AuthService, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}
			tok := strings.TrimPrefix(h, "Bearer ")
			claims, err := a.Parse(tok)
			if err != nil || claims == nil {
				writeError(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			}
			active, err := tokenActive(r.Context(), db, tok)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "token lookup failed")
				return
			}
			if !active {
				writeError(w, http.StatusUnauthorized, "session expired or invalid")
				return
			}
			ctx := WithSubject(r.Context(), claims.Sub)
			ctx = WithEmail(ctx, claims.Email)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
