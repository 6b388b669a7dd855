package admin

import (
	"errors"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminLoginRequest is the backoffice login payload.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates an operator.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}

	response.Success(c, gin.H{
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"is_super": admin.IsSuper,
		},
		"token":      token,
		"expires_at": expiresAt,
	})
}

// UpdateAdminPasswordRequest is the password change payload.
type UpdateAdminPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword rotates the operator's password and revokes
// issued tokens.
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdateAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "error.old_password_invalid", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondPasswordPolicyError(c, err)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"changed": true})
}
