package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"paydesk/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// PermissionFunc adapts a plain function to PermissionStore.
type PermissionFunc func(ctx context.Context, roleID, permission string) (bool, error)

func (f PermissionFunc) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return f(ctx, roleID, permission)
}

// RequirePermission answers 401 without a user and 403 when the user's role
// lacks permission.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleID, permission)
			switch {
			case err != nil:
				slog.Error("permission check failed", "permission", permission, "roleId", user.RoleID, "requestId", requestID, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
			case !allowed:
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
