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

// ListAdminCommissions lists commission entries with filters.
func (h *Handler) ListAdminCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	earnerID, _ := strconv.ParseUint(c.Query("earner_user_id"), 10, 64)
	sourceID, _ := strconv.ParseUint(c.Query("source_user_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)
	rows, total, err := h.CommissionService.ListCommissions(repository.CommissionListFilter{
		Page:         page,
		PageSize:     pageSize,
		EarnerUserID: uint(earnerID),
		SourceUserID: uint(sourceID),
		OrderID:      uint(orderID),
		Status:       strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// CancelCommissionRequest carries the cancellation reason.
type CancelCommissionRequest struct {
	Reason string `json:"reason"`
}

// CancelAdminCommission voids an unbound PENDING or AVAILABLE entry.
func (h *Handler) CancelAdminCommission(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	commissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || commissionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req CancelCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, cancelErr := h.CommissionService.CancelCommission(adminID, uint(commissionID), req.Reason)
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrCommissionNotFound):
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
		case errors.Is(cancelErr, service.ErrCommissionState):
			respondError(c, response.CodeBadRequest, "error.commission_state_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", cancelErr)
		}
		return
	}
	response.Success(c, row)
}
