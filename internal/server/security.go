// security.go - Response hardening headers.
package server

import "net/http"

// securityHeadersMiddleware sets the headers appropriate for a JSON-only
// API: no framing, no MIME sniffing, no referrer leakage. Cookie-based
// protections (CSRF tokens, CSP for inline scripts) do not apply here;
// authentication travels in the Authorization and X-Token headers.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
