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

// ListAdminWithdrawals lists withdrawal requests with filters.
func (h *Handler) ListAdminWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	rows, total, err := h.WithdrawalService.ListWithdrawals(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.withdrawal_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetAdminWithdrawal fetches one withdrawal request.
func (h *Handler) GetAdminWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || withdrawalID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	row, err := h.WithdrawalService.GetByID(uint(withdrawalID), 0)
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

// ReviewWithdrawalRequest carries the review decision: approve,
// reject, process or pay.
type ReviewWithdrawalRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// ReviewAdminWithdrawal advances the withdrawal state machine.
func (h *Handler) ReviewAdminWithdrawal(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || withdrawalID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ReviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, reviewErr := h.WithdrawalService.Review(adminID, uint(withdrawalID), req.Action, req.Note)
	if reviewErr != nil {
		switch {
		case errors.Is(reviewErr, service.ErrWithdrawalNotFound):
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
		case errors.Is(reviewErr, service.ErrWithdrawalActionInvalid):
			respondError(c, response.CodeBadRequest, "error.withdrawal_action_invalid", nil)
		case errors.Is(reviewErr, service.ErrWithdrawalState):
			respondError(c, response.CodeBadRequest, "error.withdrawal_state_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_review_failed", reviewErr)
		}
		return
	}
	response.Success(c, row)
}
