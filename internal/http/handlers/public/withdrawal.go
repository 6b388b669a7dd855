package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateWithdrawalRequest is the payout request payload. Amount travels
// as a string to avoid float drift.
type CreateWithdrawalRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// CreateWithdrawal opens a withdrawal against the available balance.
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.withdrawal_amount_invalid", nil)
		return
	}

	row, err := h.WithdrawalService.Request(uid, amount)
	if err != nil {
		respondWithdrawalRequestError(c, err)
		return
	}
	response.Success(c, row)
}

// ListMyWithdrawals lists the user's withdrawal requests.
func (h *Handler) ListMyWithdrawals(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	rows, total, err := h.WithdrawalService.ListUserWithdrawals(uid, page, pageSize, status)
	if err != nil {
		respondError(c, response.CodeInternal, "error.withdrawal_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetMyWithdrawal fetches one of the user's withdrawal requests.
func (h *Handler) GetMyWithdrawal(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || withdrawalID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	row, err := h.WithdrawalService.GetByID(uint(withdrawalID), uid)
	if err != nil {
		if errors.Is(err, service.ErrWithdrawalNotFound) {
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.withdrawal_fetch_failed", err)
		return
	}
	response.Success(c, row)
}

// CancelMyWithdrawal cancels a still-pending withdrawal, returning the
// bound commissions to the available pool.
func (h *Handler) CancelMyWithdrawal(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || withdrawalID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	row, cancelErr := h.WithdrawalService.CancelByUser(uid, uint(withdrawalID))
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrWithdrawalNotFound):
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
		case errors.Is(cancelErr, service.ErrWithdrawalState):
			respondError(c, response.CodeBadRequest, "error.withdrawal_state_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_cancel_failed", cancelErr)
		}
		return
	}
	response.Success(c, row)
}
