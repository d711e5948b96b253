package repositories

import (
	"context"

	"github.com/trainhub/exam-service/internal/models"
)

// PermissionRepository backs the permission resolver and its admin surface.
type PermissionRepository interface {
	// Catalog
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	ListPermissions(ctx context.Context) ([]*models.Permission, error)
	CreatePermission(ctx context.Context, permission *models.Permission) error

	// Role defaults
	GetRoleCodes(ctx context.Context, role models.UserRole) ([]string, error)
	AddRoleGrant(ctx context.Context, role models.UserRole, code string) error
	RemoveRoleGrant(ctx context.Context, role models.UserRole, code string) error

	// Per-user overrides. GetUserOverride returns nil, nil when absent;
	// UpsertUserOverride keeps the one-row-per-(user, code) invariant.
	GetUserOverride(ctx context.Context, userID, code string) (*models.UserPermission, error)
	UpsertUserOverride(ctx context.Context, override *models.UserPermission) error
	DeleteUserOverride(ctx context.Context, userID, code string) error
	ListUserOverrides(ctx context.Context, userID string) ([]*models.UserPermission, error)
}
