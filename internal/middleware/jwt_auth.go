package middleware

import (
	"context"
	"net/http"
	"strings"

	"campusauth/internal/token"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "user_id"
	CtxRawToken ctxKey = "raw_token"
)

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"Not authenticated."}`))
}

// JWTAuth extracts the bearer token, decodes it and puts the subject and the
// raw token string into the request context.
func JWTAuth(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w)
				return
			}
			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				unauthorized(w)
				return
			}

			subject, err := issuer.Decode(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, subject)
			ctx = context.WithValue(ctx, CtxRawToken, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}

// RawToken returns the bearer token stored by JWTAuth.
func RawToken(ctx context.Context) string {
	t, _ := ctx.Value(CtxRawToken).(string)
	return t
}
