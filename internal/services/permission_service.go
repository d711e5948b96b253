package services

import (
	"context"
	"fmt"
	"time"

	"github.com/trainhub/exam-service/internal/cache"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

// Permission codes the engine knows about. The catalog in storage is the
// source of truth; these constants just keep call sites typo-free.
const (
	PermExamCreate       = "exam:create"
	PermExamUpdate       = "exam:update"
	PermExamDelete       = "exam:delete"
	PermExamAssign       = "exam:assign"
	PermExamResultsView  = "exam:results:view"
	PermQuestionManage   = "question:manage"
	PermPermissionManage = "permission:manage"
)

// rolePolicyTTL bounds how stale a cached role policy may be. Overrides are
// never cached; they are low-cardinality, high-stakes lookups.
const rolePolicyTTL = 5 * time.Minute

const rolePolicyKeyPrefix = "perm:role:"

// PermissionService computes effective allow/deny decisions and owns the
// administrative mutations of the permission model.
type PermissionService interface {
	// Resolve applies precedence: admin bypass, then deny override, then
	// grant override, then the role default; unknown codes fail closed.
	Resolve(ctx context.Context, identity *models.Identity, code string) (bool, error)

	// Require is Resolve that converts "false" into a PermissionError.
	Require(ctx context.Context, identity *models.Identity, code, resource, action string) error

	GrantOverride(ctx context.Context, actor *models.Identity, req *OverrideRequest) error
	DenyOverride(ctx context.Context, actor *models.Identity, req *OverrideRequest) error
	RevokeOverride(ctx context.Context, actor *models.Identity, userID, code string) error
	ListOverrides(ctx context.Context, actor *models.Identity, userID string) ([]*models.UserPermission, error)

	AddRoleGrant(ctx context.Context, actor *models.Identity, role models.UserRole, code string) error
	RemoveRoleGrant(ctx context.Context, actor *models.Identity, role models.UserRole, code string) error
	ListPermissions(ctx context.Context) ([]*models.Permission, error)

	// InvalidateRole drops the cached policy for a role. Called by every
	// role-policy mutation; safe to call for roles never cached.
	InvalidateRole(ctx context.Context, role models.UserRole) error
}

type OverrideRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Code   string `json:"code" validate:"required,min=1,max=100"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type permissionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    utils.Logger
	validator *utils.Validator
}

func NewPermissionService(repo repositories.Repository, cacheSvc cache.CacheService, logger utils.Logger, validator *utils.Validator) PermissionService {
	return &permissionService{
		repo:      repo,
		cache:     cacheSvc,
		logger:    logger,
		validator: validator,
	}
}

func (s *permissionService) Resolve(ctx context.Context, identity *models.Identity, code string) (bool, error) {
	// Admin bypass comes before code validation: admins are allowed even
	// for codes the catalog has never heard of.
	if identity.IsAdmin() {
		return true, nil
	}
	if identity == nil {
		return false, nil
	}

	// Unknown permission codes fail closed.
	if _, err := s.repo.Permission().GetByCode(ctx, code); err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Debug("unknown permission code denied", "code", code, "user_id", identity.UserID)
			return false, nil
		}
		return false, fmt.Errorf("failed to look up permission %s: %w", code, err)
	}

	// Overrides are read fresh on every call.
	override, err := s.repo.Permission().GetUserOverride(ctx, identity.UserID, code)
	if err != nil {
		return false, fmt.Errorf("failed to look up permission override: %w", err)
	}
	if override != nil {
		return override.Type == models.OverrideGrant, nil
	}

	codes, err := s.rolePolicy(ctx, identity.Role)
	if err != nil {
		return false, err
	}
	for _, granted := range codes {
		if granted == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *permissionService) Require(ctx context.Context, identity *models.Identity, code, resource, action string) error {
	allowed, err := s.Resolve(ctx, identity, code)
	if err != nil {
		return err
	}
	if !allowed {
		userID := ""
		if identity != nil {
			userID = identity.UserID
		}
		return NewPermissionError(userID, resource, action)
	}
	return nil
}

// rolePolicy serves role-granted codes through the cache with a lazy rebuild on
// miss or expiry. A cache read error is treated as a miss: stale-for-up-to-
// TTL reads are acceptable, unavailable cache falls back to the store.
func (s *permissionService) rolePolicy(ctx context.Context, role models.UserRole) ([]string, error) {
	key := rolePolicyKeyPrefix + string(role)

	var codes []string
	if err := s.cache.Get(ctx, key, &codes); err == nil {
		return codes, nil
	}

	codes, err := s.repo.Permission().GetRoleCodes(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load role policy for %s: %w", role, err)
	}

	if err := s.cache.Set(ctx, key, codes, rolePolicyTTL); err != nil {
		s.logger.Warn("failed to cache role policy", "role", role, "error", err)
	}
	return codes, nil
}

func (s *permissionService) InvalidateRole(ctx context.Context, role models.UserRole) error {
	return s.cache.Delete(ctx, rolePolicyKeyPrefix+string(role))
}

// ===== ADMINISTRATIVE MUTATIONS =====

func (s *permissionService) GrantOverride(ctx context.Context, actor *models.Identity, req *OverrideRequest) error {
	return s.setOverride(ctx, actor, req, models.OverrideGrant)
}

func (s *permissionService) DenyOverride(ctx context.Context, actor *models.Identity, req *OverrideRequest) error {
	return s.setOverride(ctx, actor, req, models.OverrideDeny)
}

func (s *permissionService) setOverride(ctx context.Context, actor *models.Identity, req *OverrideRequest, overrideType models.PermissionOverrideType) error {
	if err := s.Require(ctx, actor, PermPermissionManage, "permission", "override"); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if _, err := s.repo.Permission().GetByCode(ctx, req.Code); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up permission %s: %w", req.Code, err)
	}

	override := &models.UserPermission{
		UserID:         req.UserID,
		PermissionCode: req.Code,
		Type:           overrideType,
		Reason:         req.Reason,
		GrantedBy:      actor.UserID,
		GrantedAt:      time.Now(),
	}
	if err := s.repo.Permission().UpsertUserOverride(ctx, override); err != nil {
		return fmt.Errorf("failed to store permission override: %w", err)
	}

	s.logger.Info("permission override set",
		"user_id", req.UserID,
		"code", req.Code,
		"type", overrideType,
		"granted_by", actor.UserID)
	return nil
}

func (s *permissionService) RevokeOverride(ctx context.Context, actor *models.Identity, userID, code string) error {
	if err := s.Require(ctx, actor, PermPermissionManage, "permission", "revoke_override"); err != nil {
		return err
	}
	if err := s.repo.Permission().DeleteUserOverride(ctx, userID, code); err != nil {
		return fmt.Errorf("failed to delete permission override: %w", err)
	}
	s.logger.Info("permission override revoked", "user_id", userID, "code", code, "revoked_by", actor.UserID)
	return nil
}

func (s *permissionService) ListOverrides(ctx context.Context, actor *models.Identity, userID string) ([]*models.UserPermission, error) {
	if err := s.Require(ctx, actor, PermPermissionManage, "permission", "list_overrides"); err != nil {
		return nil, err
	}
	overrides, err := s.repo.Permission().ListUserOverrides(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission overrides: %w", err)
	}
	return overrides, nil
}

func (s *permissionService) AddRoleGrant(ctx context.Context, actor *models.Identity, role models.UserRole, code string) error {
	if err := s.Require(ctx, actor, PermPermissionManage, "permission", "add_role_grant"); err != nil {
		return err
	}
	if _, err := s.repo.Permission().GetByCode(ctx, code); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up permission %s: %w", code, err)
	}
	if err := s.repo.Permission().AddRoleGrant(ctx, role, code); err != nil {
		return fmt.Errorf("failed to add role grant: %w", err)
	}
	if err := s.InvalidateRole(ctx, role); err != nil {
		s.logger.Warn("failed to invalidate role policy cache", "role", role, "error", err)
	}
	return nil
}

func (s *permissionService) RemoveRoleGrant(ctx context.Context, actor *models.Identity, role models.UserRole, code string) error {
	if err := s.Require(ctx, actor, PermPermissionManage, "permission", "remove_role_grant"); err != nil {
		return err
	}
	if err := s.repo.Permission().RemoveRoleGrant(ctx, role, code); err != nil {
		return fmt.Errorf("failed to remove role grant: %w", err)
	}
	if err := s.InvalidateRole(ctx, role); err != nil {
		s.logger.Warn("failed to invalidate role policy cache", "role", role, "error", err)
	}
	return nil
}

func (s *permissionService) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	permissions, err := s.repo.Permission().ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}
