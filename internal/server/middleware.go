// internal/server/middleware.go
//
// Security-header middleware for the admin surface.
//
// Injects standard headers on every response:
//
//   - Content-Security-Policy   –  self-only policy
//   - X-Frame-Options           –  click-jacking defence
//   - X-Content-Type-Options    –  MIME-sniffing defence
//   - Referrer-Policy           –  drops path/query from Referer
//
// Headers are added after next.ServeHTTP so handlers may set Content-Type
// first; the middleware never overwrites an existing value.
package server

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		csp = "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
			"base-uri 'self'; frame-ancestors 'none'"
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		if w.Header().Get("Content-Security-Policy") == "" {
			w.Header().Add("Content-Security-Policy", csp)
		}
		if w.Header().Get("X-Frame-Options") == "" {
			w.Header().Add("X-Frame-Options", xfo)
		}
		if w.Header().Get("X-Content-Type-Options") == "" {
			w.Header().Add("X-Content-Type-Options", nosn)
		}
		if w.Header().Get("Referrer-Policy") == "" {
			w.Header().Add("Referrer-Policy", refer)
		}
	})
}
