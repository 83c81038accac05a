package middleware

import (
	"net/http"
	"time"

	"opsledger/pkg/requestcontext"
)

// RequestTime pins a single timestamp to the request context so that every
// record written while serving it carries the same time.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
