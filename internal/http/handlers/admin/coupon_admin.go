package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest is the coupon create/update payload.
type CouponRequest struct {
	Code         string       `json:"code" binding:"required"`
	Type         string       `json:"type" binding:"required"`
	Value        models.Money `json:"value"`
	MinAmount    models.Money `json:"min_amount"`
	MaxDiscount  models.Money `json:"max_discount"`
	UsageLimit   int          `json:"usage_limit"`
	PerUserLimit int          `json:"per_user_limit"`
	PlanScopeIDs string       `json:"plan_scope_ids"`
	StartsAt     *time.Time   `json:"starts_at"`
	EndsAt       *time.Time   `json:"ends_at"`
	IsActive     *bool        `json:"is_active"`
}

func (r CouponRequest) toModel() *models.Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Coupon{
		Code:         strings.TrimSpace(r.Code),
		Type:         strings.TrimSpace(r.Type),
		Value:        r.Value,
		MinAmount:    r.MinAmount,
		MaxDiscount:  r.MaxDiscount,
		UsageLimit:   r.UsageLimit,
		PerUserLimit: r.PerUserLimit,
		PlanScopeIDs: strings.TrimSpace(r.PlanScopeIDs),
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		IsActive:     active,
	}
}

func respondCouponWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "error.coupon_not_found", nil)
	case errors.Is(err, service.ErrCouponInvalid):
		respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
	case errors.Is(err, service.ErrCouponCodeExists):
		respondError(c, response.CodeBadRequest, "error.coupon_code_exists", nil)
	default:
		respondError(c, response.CodeInternal, "error.save_failed", err)
	}
}

// ListAdminCoupons lists coupons with filters.
func (h *Handler) ListAdminCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	planID, _ := strconv.ParseUint(c.Query("plan_id"), 10, 64)
	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		PlanID:   uint(planID),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	coupons, total, err := h.CouponService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// GetAdminCoupon fetches one coupon.
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	coupon, err := h.CouponService.GetByID(uint(couponID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.coupon_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon creates a coupon.
func (h *Handler) CreateCoupon(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon := req.toModel()
	if err := h.CouponService.Create(adminID, coupon); err != nil {
		respondCouponWriteError(c, err)
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon updates a coupon. Code and usage counters stay frozen.
func (h *Handler) UpdateCoupon(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon := req.toModel()
	coupon.ID = uint(couponID)
	if err := h.CouponService.Update(adminID, coupon); err != nil {
		respondCouponWriteError(c, err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon removes a coupon.
func (h *Handler) DeleteCoupon(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CouponService.Delete(adminID, uint(couponID)); err != nil {
		respondCouponWriteError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
