package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/authz"
	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAuthzMe returns the caller's roles and effective policies.
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	isSuper := false
	if raw, exists := c.Get("admin_is_super"); exists {
		if v, castOK := raw.(bool); castOK {
			isSuper = v
		}
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuper,
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles lists known roles.
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRoleRequest names the new role.
type CreateAuthzRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateAuthzRole creates a role.
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req CreateAuthzRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.authz_role_invalid", err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole removes a role. Built-in roles stay.
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	if isBuiltinRole(role) {
		respondError(c, response.CodeBadRequest, "error.authz_role_immutable", nil)
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetAuthzRolePolicies lists a role's policies.
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, policies)
}

// AuthzPolicyRequest addresses one role policy.
type AuthzPolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GrantAuthzPolicy grants a policy to a role.
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req AuthzPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.authz_policy_invalid", err)
		return
	}
	response.Success(c, gin.H{"granted": true})
}

// RevokeAuthzPolicy revokes a policy from a role.
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req AuthzPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if isBuiltinRole(req.Role) {
		respondError(c, response.CodeBadRequest, "error.authz_role_immutable", nil)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.authz_policy_invalid", err)
		return
	}
	response.Success(c, gin.H{"revoked": true})
}

// ListAuthzAdmins lists operator accounts with their roles.
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	views := make([]gin.H, 0, len(admins))
	for i := range admins {
		roles, rolesErr := h.AuthzService.GetAdminRoles(admins[i].ID)
		if rolesErr != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", rolesErr)
			return
		}
		views = append(views, gin.H{
			"id":            admins[i].ID,
			"username":      admins[i].Username,
			"is_super":      admins[i].IsSuper,
			"roles":         roles,
			"last_login_at": admins[i].LastLoginAt,
			"created_at":    admins[i].CreatedAt,
		})
	}
	response.Success(c, views)
}

// CreateAuthzAdminRequest is the operator creation payload.
type CreateAuthzAdminRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

// CreateAuthzAdmin creates an operator account.
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req CreateAuthzAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	exist, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if exist != nil {
		respondError(c, response.CodeBadRequest, "error.admin_username_exists", nil)
		return
	}
	if err := h.AuthService.ValidatePassword(req.Password); err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			respondPasswordPolicyError(c, err)
			return
		}
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return
	}
	hash, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}

	now := time.Now()
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		IsSuper:      req.IsSuper,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondError(c, response.CodeInternal, "error.save_failed", err)
			return
		}
	}
	response.Success(c, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"is_super": admin.IsSuper,
	})
}

// UpdateAuthzAdminRequest carries optional operator changes.
type UpdateAuthzAdminRequest struct {
	Password *string `json:"password"`
	IsSuper  *bool   `json:"is_super"`
}

// UpdateAuthzAdmin resets an operator's password or super flag.
func (h *Handler) UpdateAuthzAdmin(c *gin.Context) {
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || adminID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateAuthzAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AdminRepo.GetByID(uint(adminID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}

	now := time.Now()
	if req.Password != nil {
		if err := h.AuthService.ValidatePassword(*req.Password); err != nil {
			if errors.Is(err, service.ErrWeakPassword) {
				respondPasswordPolicyError(c, err)
				return
			}
			respondError(c, response.CodeBadRequest, "error.password_weak", nil)
			return
		}
		hash, hashErr := h.AuthService.HashPassword(*req.Password)
		if hashErr != nil {
			respondError(c, response.CodeInternal, "error.save_failed", hashErr)
			return
		}
		admin.PasswordHash = hash
		admin.TokenVersion++
		admin.TokenInvalidBefore = &now
	}
	if req.IsSuper != nil {
		admin.IsSuper = *req.IsSuper
	}
	admin.UpdatedAt = now
	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"is_super": admin.IsSuper,
	})
}

// DeleteAuthzAdmin removes an operator account. The caller cannot
// delete itself.
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	callerID, ok := getAdminID(c)
	if !ok {
		return
	}
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || adminID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if uint(adminID) == callerID {
		respondError(c, response.CodeBadRequest, "error.admin_delete_self", nil)
		return
	}
	admin, err := h.AdminRepo.GetByID(uint(adminID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(admin.ID, nil); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(admin.ID); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetAuthzAdminRoles lists the roles assigned to an operator.
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || adminID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	roles, rolesErr := h.AuthzService.GetAdminRoles(uint(adminID))
	if rolesErr != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", rolesErr)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRolesRequest replaces an operator's role set.
type SetAuthzAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAuthzAdminRoles replaces the roles assigned to an operator.
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || adminID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req SetAuthzAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AdminRepo.GetByID(uint(adminID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.authz_role_invalid", err)
		return
	}
	roles, rolesErr := h.AuthzService.GetAdminRoles(admin.ID)
	if rolesErr != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", rolesErr)
		return
	}
	response.Success(c, roles)
}

func isBuiltinRole(role string) bool {
	normalized, err := authz.NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range authz.BuiltinRoleSeeds() {
		seedRole, seedErr := authz.NormalizeRole(seed.Role)
		if seedErr != nil {
			continue
		}
		if seedRole == normalized && seed.Immutable {
			return true
		}
	}
	return false
}
