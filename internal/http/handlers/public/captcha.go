package public

import (
	"errors"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha issues an image captcha challenge.
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "error.captcha_unavailable", service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, "error.captcha_unavailable", nil)
		default:
			respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

func respondCaptchaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		respondError(c, response.CodeInternal, "error.captcha_config_invalid", err)
	default:
		respondError(c, response.CodeInternal, "error.captcha_verify_failed", err)
	}
}

func userProfileView(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"document":      user.Document,
		"phone":         user.Phone,
		"locale":        user.Locale,
		"status":        user.Status,
		"referral_code": user.ReferralCode,
		"created_at":    user.CreatedAt,
		"last_login_at": user.LastLoginAt,
	}
}
