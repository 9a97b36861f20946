package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// authClaimsKey is a context key for verified token claims.
type authClaimsKey struct{}

// ClaimsFromContext returns the verified claims from the request context.
// Returns nil when the request is unauthenticated or JWT verification is off.
func ClaimsFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(authClaimsKey{}).(*Claims); ok {
		return c
	}
	return nil
}

// WithClaims returns ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, authClaimsKey{}, claims)
}

// Middleware requires a bearer credential on API routes.
// Non-API paths (healthz, readyz, metrics, swagger) and CORS preflights are
// skipped, as is the WebSocket path, which authenticates in its handler.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/api/v1/ws/") || r.URL.Path == "/api/v1/health" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.VerifyHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://promptlens.dev/problems/unauthorized",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
