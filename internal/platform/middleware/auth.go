package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
	"opsledger/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ExtractUserIDFromToken(tokenString string) (uuid.UUID, error)
}

// RoleResolver resolves the role held by a user at request time.
type RoleResolver interface {
	RoleFor(ctx context.Context, userID id.UserID) (string, error)
}

// RequireAuth validates the bearer token, resolves the caller's role once,
// and stamps both onto the request context. Every downstream write sees the
// role the caller held when the request arrived.
func RequireAuth(validator JWTValidator, roles RoleResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			rawID, err := validator.ExtractUserIDFromToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}
			userID := id.UserID(rawID)

			role, err := roles.RoleFor(ctx, userID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve user role",
					"error", err,
					"request_id", requestID,
					"user_id", userID.String(),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to resolve role"))
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
