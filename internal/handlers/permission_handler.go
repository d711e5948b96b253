package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/services"
	"github.com/trainhub/exam-service/internal/utils"
)

type PermissionHandler struct {
	BaseHandler
	permissionService services.PermissionService
}

func NewPermissionHandler(permissionService services.PermissionService, logger utils.Logger) *PermissionHandler {
	return &PermissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		permissionService: permissionService,
	}
}

type roleGrantRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
	Code string          `json:"code" validate:"required"`
}

// ListPermissions lists the permission catalog
// @Summary List permissions
// @Tags permissions
// @Produce json
// @Success 200 {array} models.Permission
// @Router /permissions [get]
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.permissionService.ListPermissions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// GrantOverride records a per-user grant override
// @Summary Grant permission override
// @Tags permissions
// @Accept json
// @Param override body services.OverrideRequest true "Override data"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /permissions/overrides/grant [post]
func (h *PermissionHandler) GrantOverride(c *gin.Context) {
	var req services.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Granting permission override", "target_user", req.UserID, "code", req.Code)

	if err := h.permissionService.GrantOverride(c.Request.Context(), identityFromContext(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DenyOverride records a per-user deny override
// @Summary Deny permission override
// @Tags permissions
// @Accept json
// @Param override body services.OverrideRequest true "Override data"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /permissions/overrides/deny [post]
func (h *PermissionHandler) DenyOverride(c *gin.Context) {
	var req services.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Denying permission override", "target_user", req.UserID, "code", req.Code)

	if err := h.permissionService.DenyOverride(c.Request.Context(), identityFromContext(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeOverride removes a per-user override, restoring the role default
// @Summary Revoke permission override
// @Tags permissions
// @Param user_id path string true "User ID"
// @Param code path string true "Permission code"
// @Success 204
// @Router /permissions/overrides/{user_id}/{code} [delete]
func (h *PermissionHandler) RevokeOverride(c *gin.Context) {
	userID := parseStringParam(c, "user_id")
	if userID == "" {
		return
	}
	code := parseStringParam(c, "code")
	if code == "" {
		return
	}

	h.LogRequest(c, "Revoking permission override", "target_user", userID, "code", code)

	if err := h.permissionService.RevokeOverride(c.Request.Context(), identityFromContext(c), userID, code); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOverrides lists a user's overrides
// @Summary List permission overrides
// @Tags permissions
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {array} models.UserPermission
// @Router /permissions/overrides/{user_id} [get]
func (h *PermissionHandler) ListOverrides(c *gin.Context) {
	userID := parseStringParam(c, "user_id")
	if userID == "" {
		return
	}

	overrides, err := h.permissionService.ListOverrides(c.Request.Context(), identityFromContext(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overrides)
}

// AddRoleGrant adds a permission code to a role's default policy
// @Summary Add role grant
// @Tags permissions
// @Accept json
// @Param grant body roleGrantRequest true "Role grant"
// @Success 204
// @Router /permissions/roles/grant [post]
func (h *PermissionHandler) AddRoleGrant(c *gin.Context) {
	var req roleGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Adding role grant", "role", req.Role, "code", req.Code)

	if err := h.permissionService.AddRoleGrant(c.Request.Context(), identityFromContext(c), req.Role, req.Code); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveRoleGrant removes a permission code from a role's default policy
// @Summary Remove role grant
// @Tags permissions
// @Accept json
// @Param grant body roleGrantRequest true "Role grant"
// @Success 204
// @Router /permissions/roles/revoke [post]
func (h *PermissionHandler) RemoveRoleGrant(c *gin.Context) {
	var req roleGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Removing role grant", "role", req.Role, "code", req.Code)

	if err := h.permissionService.RemoveRoleGrant(c.Request.Context(), identityFromContext(c), req.Role, req.Code); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
