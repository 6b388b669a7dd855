package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	PlanID     uint   `json:"plan_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// CreateOrder opens a pending subscription order, applying the coupon
// when present.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:     uid,
		PlanID:     req.PlanID,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Success(c, order)
}

// QuoteCouponRequest previews a coupon against a plan.
type QuoteCouponRequest struct {
	PlanID     uint   `json:"plan_id" binding:"required"`
	CouponCode string `json:"coupon_code" binding:"required"`
}

// QuoteCoupon returns the discount a coupon would yield.
func (h *Handler) QuoteCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req QuoteCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	quote, err := h.OrderService.QuoteCoupon(uid, req.PlanID, req.CouponCode)
	if err != nil {
		respondCouponQuoteError(c, err)
		return
	}
	response.Success(c, quote)
}

// ListOrders lists the user's orders.
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	orders, total, err := h.OrderService.ListUserOrders(uid, page, pageSize, status)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder fetches one of the user's orders.
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetByID(uint(orderID), uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo fetches one of the user's orders by number.
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetByOrderNo(orderNo, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.Success(c, order)
}

// CancelOrder cancels a pending order and releases any coupon usage.
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, cancelErr := h.OrderService.CancelOrder(uint(orderID), uid)
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(cancelErr, service.ErrOrderNotPending):
			respondError(c, response.CodeBadRequest, "error.order_not_pending", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_cancel_failed", cancelErr)
		}
		return
	}
	response.Success(c, order)
}
