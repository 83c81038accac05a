package middleware

import (
	"net/http"
	"strings"

	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

// ContentTypeJSON rejects mutating requests whose body is not declared as
// JSON. GET and DELETE pass through untouched.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Content-Type must be application/json"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
