package middleware

import (
	"net/http"

	"planets-api/internal/shared/response"
)

// RequireNumericID reproduces pattern-gated route matching: a non-numeric
// {id} segment means the route never matched, so the request falls straight
// to the generic 404 naming the method and original path. This runs ahead of
// the auth gate, exactly as route matching would.
func RequireNumericID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isNumeric(r.PathValue("id")) {
			response.RouteNotFound(w, r.Method, r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isNumeric(segment string) bool {
	if segment == "" {
		return false
	}
	for _, c := range segment {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
