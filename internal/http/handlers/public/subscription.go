package public

import (
	"errors"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMySubscription returns the user's current subscription.
func (h *Handler) GetMySubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	sub, err := h.SubscriptionService.GetCurrent(uid)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNone) {
			respondError(c, response.CodeNotFound, "error.subscription_none", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.subscription_fetch_failed", err)
		return
	}
	response.Success(c, sub)
}

// SetCancelAtPeriodEndRequest toggles end-of-period cancellation.
type SetCancelAtPeriodEndRequest struct {
	Cancel *bool `json:"cancel" binding:"required"`
}

// SetCancelAtPeriodEnd flags or unflags the subscription to lapse at
// the end of the paid period.
func (h *Handler) SetCancelAtPeriodEnd(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req SetCancelAtPeriodEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	sub, err := h.SubscriptionService.SetCancelAtPeriodEnd(uid, *req.Cancel)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNone):
			respondError(c, response.CodeNotFound, "error.subscription_none", nil)
		case errors.Is(err, service.ErrSubscriptionState):
			respondError(c, response.CodeBadRequest, "error.subscription_state_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, sub)
}
