package public

import (
	"errors"
	"strconv"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPlans lists active plans for the storefront.
func (h *Handler) GetPlans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	plans, total, err := h.PlanService.ListActive(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, plans, response.BuildPagination(page, pageSize, total))
}

// GetPlanBySlug fetches an active plan by slug.
func (h *Handler) GetPlanBySlug(c *gin.Context) {
	plan, err := h.PlanService.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			respondError(c, response.CodeNotFound, "error.plan_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}
	response.Success(c, plan)
}
