package mw

import (
	"net/http"
	"strings"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

type AuthDeps struct {
	Resolver domain.IdentityResolver
}

// RequireAuth резолвит Bearer-credential в id зрителя и кладёт его в контекст.
// Любой дефект credential'а — 401, без различения причин.
func RequireAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			unauthorized(w)
			return
		}
		viewer, err := deps.Resolver.Resolve(r.Context(), raw)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithViewer(r.Context(), viewer)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":1001,"text":"unauthorized"}}` + "\n"))
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
