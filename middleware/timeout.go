package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds every request with a deadline. Repositories use the *Context
// database calls, so an expired deadline surfaces from them as
// context.DeadlineExceeded, which pkg.Error reports as 503.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
