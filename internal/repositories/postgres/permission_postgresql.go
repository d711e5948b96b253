package postgres

import (
	"context"
	"errors"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionPostgres struct {
	db *gorm.DB
}

func NewPermissionPostgres(db *gorm.DB) repositories.PermissionRepository {
	return &PermissionPostgres{db: db}
}

func (p *PermissionPostgres) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	var permission models.Permission
	if err := p.db.WithContext(ctx).First(&permission, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

func (p *PermissionPostgres) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	var permissions []*models.Permission
	if err := p.db.WithContext(ctx).Order("category ASC, code ASC").Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (p *PermissionPostgres) CreatePermission(ctx context.Context, permission *models.Permission) error {
	return p.db.WithContext(ctx).Create(permission).Error
}

func (p *PermissionPostgres) GetRoleCodes(ctx context.Context, role models.UserRole) ([]string, error) {
	var codes []string
	err := p.db.WithContext(ctx).
		Model(&models.RolePermission{}).
		Where("role = ?", role).
		Order("permission_code ASC").
		Pluck("permission_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (p *PermissionPostgres) AddRoleGrant(ctx context.Context, role models.UserRole, code string) error {
	grant := &models.RolePermission{Role: role, PermissionCode: code}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}, {Name: "permission_code"}},
			DoNothing: true,
		}).
		Create(grant).Error
}

func (p *PermissionPostgres) RemoveRoleGrant(ctx context.Context, role models.UserRole, code string) error {
	return p.db.WithContext(ctx).
		Where("role = ? AND permission_code = ?", role, code).
		Delete(&models.RolePermission{}).Error
}

func (p *PermissionPostgres) GetUserOverride(ctx context.Context, userID, code string) (*models.UserPermission, error) {
	var override models.UserPermission
	err := p.db.WithContext(ctx).
		Where("user_id = ? AND permission_code = ?", userID, code).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

// UpsertUserOverride replaces any existing override for (user, code) so the
// one-row invariant holds even when an admin flips grant to deny.
func (p *PermissionPostgres) UpsertUserOverride(ctx context.Context, override *models.UserPermission) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "permission_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "reason", "granted_by", "granted_at"}),
		}).
		Create(override).Error
}

func (p *PermissionPostgres) DeleteUserOverride(ctx context.Context, userID, code string) error {
	return p.db.WithContext(ctx).
		Where("user_id = ? AND permission_code = ?", userID, code).
		Delete(&models.UserPermission{}).Error
}

func (p *PermissionPostgres) ListUserOverrides(ctx context.Context, userID string) ([]*models.UserPermission, error) {
	var overrides []*models.UserPermission
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("permission_code ASC").
		Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}
