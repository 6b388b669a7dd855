package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/repository"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAdminSubscriptions lists subscriptions with filters.
func (h *Handler) ListAdminSubscriptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	planID, _ := strconv.ParseUint(c.Query("plan_id"), 10, 64)
	rows, total, err := h.SubscriptionService.List(repository.SubscriptionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		PlanID:   uint(planID),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.subscription_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// CancelAdminSubscription cancels a subscription immediately.
func (h *Handler) CancelAdminSubscription(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	subscriptionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || subscriptionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sub, cancelErr := h.SubscriptionService.CancelNow(adminID, uint(subscriptionID))
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrSubscriptionNone):
			respondError(c, response.CodeNotFound, "error.subscription_not_found", nil)
		case errors.Is(cancelErr, service.ErrSubscriptionState):
			respondError(c, response.CodeBadRequest, "error.subscription_state_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.subscription_cancel_failed", cancelErr)
		}
		return
	}
	response.Success(c, sub)
}
