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

// ListAdminDataRequests lists data-subject requests with filters.
func (h *Handler) ListAdminDataRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	rows, total, err := h.LGPDService.ListRequests(repository.DataRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Kind:     strings.TrimSpace(c.Query("kind")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.data_request_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ReviewDataRequestRequest carries the reviewer note.
type ReviewDataRequestRequest struct {
	Note string `json:"note"`
}

// ApproveDataRequest approves a data-subject request. Access and
// portability hand off to the export worker; rectification and erasure
// complete synchronously.
func (h *Handler) ApproveDataRequest(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || requestID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ReviewDataRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, approveErr := h.LGPDService.ApproveRequest(adminID, uint(requestID), req.Note)
	if approveErr != nil {
		switch {
		case errors.Is(approveErr, service.ErrDataRequestNotFound):
			respondError(c, response.CodeNotFound, "error.data_request_not_found", nil)
		case errors.Is(approveErr, service.ErrDataRequestState):
			respondError(c, response.CodeBadRequest, "error.data_request_state_invalid", nil)
		case errors.Is(approveErr, service.ErrErasureActiveSubscription):
			respondError(c, response.CodeBadRequest, "error.erasure_active_subscription", nil)
		case errors.Is(approveErr, service.ErrErasurePendingWithdrawal):
			respondError(c, response.CodeBadRequest, "error.erasure_pending_withdrawal", nil)
		case errors.Is(approveErr, service.ErrErasureFiscalRetention):
			respondError(c, response.CodeBadRequest, "error.erasure_fiscal_retention", nil)
		case errors.Is(approveErr, service.ErrQueueUnavailable):
			respondError(c, response.CodeInternal, "error.queue_unavailable", nil)
		default:
			respondError(c, response.CodeInternal, "error.data_request_review_failed", approveErr)
		}
		return
	}
	response.Success(c, row)
}

// RejectDataRequest rejects a pending data-subject request.
func (h *Handler) RejectDataRequest(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || requestID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ReviewDataRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, rejectErr := h.LGPDService.RejectRequest(adminID, uint(requestID), req.Note)
	if rejectErr != nil {
		switch {
		case errors.Is(rejectErr, service.ErrDataRequestNotFound):
			respondError(c, response.CodeNotFound, "error.data_request_not_found", nil)
		case errors.Is(rejectErr, service.ErrDataRequestState):
			respondError(c, response.CodeBadRequest, "error.data_request_state_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.data_request_review_failed", rejectErr)
		}
		return
	}
	response.Success(c, row)
}
