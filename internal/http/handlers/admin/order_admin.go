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

// ListAdminOrders lists orders with filters.
func (h *Handler) ListAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetAdminOrder fetches one order.
func (h *Handler) GetAdminOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetByID(uint(orderID), 0)
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

// MarkOrderPaid settles a pending order: activates the subscription
// and generates the referral commission inside one transaction.
func (h *Handler) MarkOrderPaid(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, markErr := h.OrderService.MarkOrderPaid(uint(orderID))
	if markErr != nil {
		switch {
		case errors.Is(markErr, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(markErr, service.ErrOrderAlreadyPaid):
			respondError(c, response.CodeBadRequest, "error.order_already_paid", nil)
		case errors.Is(markErr, service.ErrOrderNotPending):
			respondError(c, response.CodeBadRequest, "error.order_not_pending", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_mark_paid_failed", markErr)
		}
		return
	}
	response.Success(c, order)
}

// CancelAdminOrder cancels a pending order on the user's behalf.
func (h *Handler) CancelAdminOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, cancelErr := h.OrderService.CancelOrder(uint(orderID), 0)
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
