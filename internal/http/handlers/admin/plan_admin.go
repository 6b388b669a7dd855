package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanRequest is the plan create/update payload.
type PlanRequest struct {
	Name        string       `json:"name" binding:"required"`
	Slug        string       `json:"slug" binding:"required"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	Interval    string       `json:"interval" binding:"required"`
	TrialDays   int          `json:"trial_days"`
	IsActive    *bool        `json:"is_active"`
	SortOrder   int          `json:"sort_order"`
}

func (r PlanRequest) toModel() *models.Plan {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Plan{
		Name:        strings.TrimSpace(r.Name),
		Slug:        strings.TrimSpace(r.Slug),
		Description: r.Description,
		Price:       r.Price,
		Interval:    strings.TrimSpace(r.Interval),
		TrialDays:   r.TrialDays,
		IsActive:    active,
		SortOrder:   r.SortOrder,
	}
}

func respondPlanWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		respondError(c, response.CodeNotFound, "error.plan_not_found", nil)
	case errors.Is(err, service.ErrPlanInvalid):
		respondError(c, response.CodeBadRequest, "error.plan_invalid", nil)
	case errors.Is(err, service.ErrPlanSlugExists):
		respondError(c, response.CodeBadRequest, "error.plan_slug_exists", nil)
	case errors.Is(err, service.ErrPlanInUse):
		respondError(c, response.CodeBadRequest, "error.plan_in_use", nil)
	default:
		respondError(c, response.CodeInternal, "error.save_failed", err)
	}
}

// ListAdminPlans lists plans with filters.
func (h *Handler) ListAdminPlans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	plans, total, err := h.PlanService.List(repository.PlanListFilter{
		Page:       page,
		PageSize:   pageSize,
		Keyword:    strings.TrimSpace(c.Query("keyword")),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, plans, response.BuildPagination(page, pageSize, total))
}

// GetAdminPlan fetches one plan.
func (h *Handler) GetAdminPlan(c *gin.Context) {
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || planID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	plan, err := h.PlanService.GetByID(uint(planID))
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

// CreatePlan creates a plan.
func (h *Handler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	plan := req.toModel()
	if err := h.PlanService.Create(plan); err != nil {
		respondPlanWriteError(c, err)
		return
	}
	response.Success(c, plan)
}

// UpdatePlan updates a plan.
func (h *Handler) UpdatePlan(c *gin.Context) {
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || planID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	plan := req.toModel()
	plan.ID = uint(planID)
	if err := h.PlanService.Update(plan); err != nil {
		respondPlanWriteError(c, err)
		return
	}
	response.Success(c, plan)
}

// DeletePlan removes a plan without subscriptions.
func (h *Handler) DeletePlan(c *gin.Context) {
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || planID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.PlanService.Delete(uint(planID)); err != nil {
		respondPlanWriteError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
