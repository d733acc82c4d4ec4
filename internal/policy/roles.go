package policy

import (
	"context"
	"errors"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
)

var (
	adminProfile = gate.NewStaticProfile(models.RoleAdmin, gate.PermissionSuperAdmin)

	editeurProfile = gate.NewStaticProfile(models.RoleEditeur, gate.ParsePermissions(
		"dashboard:view",
		"quote:*",
		"contact:*",
		"document:*",
		"project:*",
		"client:list",
		"client:view",
	)...)
)

// ProfileForRole maps a stored admin role to its permissions. Unknown roles
// get no profile.
func ProfileForRole(role string) gate.Profile {
	switch role {
	case models.RoleAdmin:
		return adminProfile
	case models.RoleEditeur:
		return editeurProfile
	default:
		return nil
	}
}

// RoleSource reads an admin's current role.
type RoleSource interface {
	AdminRole(ctx context.Context, adminID uint) (string, error)
}

// RoleResolver resolves admin profiles from the role stored in the database,
// so a role change applies without waiting for the session to expire.
type RoleResolver struct {
	roles RoleSource
}

func NewRoleResolver(roles RoleSource) *RoleResolver {
	return &RoleResolver{roles: roles}
}

// Resolve returns nil for a deleted admin.
func (r *RoleResolver) Resolve(ctx context.Context, adminID uint) (gate.Profile, error) {
	role, err := r.roles.AdminRole(ctx, adminID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ProfileForRole(role), nil
}
