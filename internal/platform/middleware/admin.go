package middleware

import (
	"log/slog"
	"net/http"

	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
	"opsledger/pkg/requestcontext"
)

// RoleAdmin is the role value that unlocks admin-gated routes.
const RoleAdmin = "admin"

// RequireAdmin rejects requests whose context role is not admin. Must run
// after RequireAuth, which resolves and stamps the role.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if role := requestcontext.Role(ctx); role != RoleAdmin {
				logger.WarnContext(ctx, "forbidden - admin role required",
					"request_id", GetRequestID(ctx),
					"user_id", requestcontext.UserID(ctx).String(),
					"role", role,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
