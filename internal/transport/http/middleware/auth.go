package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/auth"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/api"
)

type ctxKey string

const ctxKeyOwner ctxKey = "owner"

type OwnerContext struct {
	OwnerID   string
	Email     string
	StoreName string
}

// Auth attaches the authenticated owner to the context when a valid bearer
// token is present. Routes that require an owner use RequireOwner.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyOwner, OwnerContext{
				OwnerID:   claims.OwnerID,
				Email:     claims.Email,
				StoreName: claims.StoreName,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOwner(ctx context.Context) (OwnerContext, bool) {
	owner, ok := ctx.Value(ctxKeyOwner).(OwnerContext)
	return owner, ok
}

func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetOwner(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
