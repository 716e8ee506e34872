package middleware

import (
	"net/http"
	"strings"

	gorillaHandlers "github.com/gorilla/handlers"
)

var (
	corsMethods = []string{"GET", "POST", "OPTIONS"}
	corsHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
)

// CORS adds permissive cross-origin headers to regular requests. Preflight
// requests pass through to Preflight.
func CORS() func(http.Handler) http.Handler {
	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods(corsMethods),
		gorillaHandlers.AllowedHeaders(corsHeaders),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", RequestIDHeader}),
		gorillaHandlers.IgnoreOptions(),
	)
}

// Preflight answers every OPTIONS request with 200 before routing.
func Preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
		h.Set("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
		h.Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusOK)
	})
}
