package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hrmsync/internal/domain/auth"
	"hrmsync/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission rejects callers whose role lacks permission. With a nil
// store the built-in role table is consulted instead.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
				return
			}

			allowed := auth.RoleHasPermission(user.RoleName, permission)
			if store != nil {
				var err error
				allowed, err = store.HasPermission(r.Context(), user.RoleID, permission)
				if err != nil {
					slog.Error("permission check failed", "err", err, "permission", permission, "requestId", reqID)
					api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
					return
				}
			}
			if !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
