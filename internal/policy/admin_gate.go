package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/internal/errs"
)

// AdminGate checks back-office permissions for the admin in the request context.
type AdminGate struct {
	Gate *gate.HybridGate[uint]
}

// NewAdminGate builds a role-backed gate whose profiles are cached for cacheTTL.
func NewAdminGate(roles RoleSource, cacheTTL time.Duration) *AdminGate {
	cached := gate.NewCachedResolver[uint](NewRoleResolver(roles), cacheTTL)
	return &AdminGate{Gate: gate.NewHybridGate[uint](cached)}
}

// CanProfile reports whether the current admin's role grants resourceType:action.
func (ag *AdminGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	return ag.Gate.CanProfile(ctx, auth.AdminID(ctx), action, resourceType)
}

// RequirePermission blocks the request with 403 unless the admin holds the
// permission. The route guard has already rejected anonymous requests.
func (ag *AdminGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusForbidden, errs.ErrForbidden.Error(), nil)
					return
				}
				http.Error(w, errs.ErrForbidden.Error(), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require is RequirePermission for a handler function.
func (ag *AdminGate) Require(resourceType string, action gate.Action, h http.HandlerFunc) http.Handler {
	return ag.RequirePermission(resourceType, action)(h)
}
