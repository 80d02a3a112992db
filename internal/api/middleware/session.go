package middleware

import (
	"net/http"

	"github.com/mathtrail/mathtrail-api/internal/session"
)

// Session prepares each request's context with the cookie session scope so
// the session manager can read and replace the session for that client.
// It performs no authorization itself; handlers decide what an anonymous
// request may do.
func Session(manager *session.CookieManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := manager.WithRequest(r.Context(), w, r)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
