package public

import (
	"errors"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/i18n"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest is the registration payload.
type UserRegisterRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	DisplayName    string                `json:"display_name"`
	ReferralCode   string                `json:"referral_code"`
	TermsVersion   string                `json:"terms_version" binding:"required"`
	MarketingOptIn bool                  `json:"marketing_opt_in"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserRegister creates an account and signs the user in.
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneRegister, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			respondCaptchaError(c, captchaErr)
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.UserRegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		DisplayName:     req.DisplayName,
		ReferralCode:    req.ReferralCode,
		TermsVersion:    req.TermsVersion,
		MarketingOptIn:  req.MarketingOptIn,
		ClientIP:        c.ClientIP(),
		PreferredLocale: i18n.ResolveLocale(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "error.email_exists", nil)
		case errors.Is(err, service.ErrReferralCodeInvalid):
			respondError(c, response.CodeBadRequest, "error.referral_code_invalid", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondPasswordPolicyError(c, err)
		default:
			respondError(c, response.CodeInternal, "error.register_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       userProfileView(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// UserLoginRequest is the login payload.
type UserLoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	Remember       bool                  `json:"remember"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLogin authenticates a user.
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			respondCaptchaError(c, captchaErr)
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password, req.Remember)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       userProfileView(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// RefreshToken reissues a token for a still-valid session.
func (h *Handler) RefreshToken(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	token, expiresAt, err := h.UserAuthService.Refresh(uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// GetCurrentUser returns the signed-in profile.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}
	response.Success(c, userProfileView(user))
}

// UpdateUserProfileRequest carries optional profile changes.
type UpdateUserProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Locale      *string `json:"locale"`
	Document    *string `json:"document"`
	Phone       *string `json:"phone"`
}

// UpdateUserProfile updates the signed-in profile.
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateUserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(uid, req.DisplayName, req.Locale, req.Document, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, userProfileView(user))
}

// ChangeUserPasswordRequest is the password change payload.
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword rotates the password and revokes issued tokens.
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangeUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
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
