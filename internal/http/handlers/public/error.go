package public

import (
	handlershared "github.com/assinahub/assinahub/internal/http/handlers/shared"
	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/i18n"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

// respondPasswordPolicyError localizes the specific policy violation
// when the error carries a message key, falling back to the generic one.
func respondPasswordPolicyError(c *gin.Context, err error) {
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		locale := i18n.ResolveLocale(c)
		msg := i18n.Sprintf(locale, perr.Key(), perr.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondError(c, response.CodeBadRequest, "error.password_weak", nil)
}
