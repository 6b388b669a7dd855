package public

import (
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCommissionSummary returns the user's referral totals per status.
func (h *Handler) GetCommissionSummary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.CommissionService.GetSummary(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}
	response.Success(c, summary)
}

// ListMyCommissions lists the user's commission entries.
func (h *Handler) ListMyCommissions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	rows, total, err := h.CommissionService.ListUserCommissions(uid, page, pageSize, status)
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
