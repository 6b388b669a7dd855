package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/repository"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateDataRequestRequest opens an LGPD data-subject request. Changes
// is a JSON object of field -> new value, rectification only.
type CreateDataRequestRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Reason  string `json:"reason"`
	Changes string `json:"changes"`
}

// CreateDataRequest opens a data-subject request.
func (h *Handler) CreateDataRequest(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateDataRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, err := h.LGPDService.CreateRequest(uid, req.Kind, req.Reason, req.Changes)
	if err != nil {
		respondWithMappedError(c, err, concatMappedHandlerErrors(dataRequestCreateErrorRules, []mappedHandlerError{
			{target: service.ErrDataRequestState, code: response.CodeBadRequest, key: "error.data_request_state_invalid"},
		}), response.CodeInternal, "error.data_request_create_failed")
		return
	}
	response.Success(c, row)
}

// ListMyDataRequests lists the user's data-subject requests.
func (h *Handler) ListMyDataRequests(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.LGPDService.ListRequests(repository.DataRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Kind:     strings.TrimSpace(c.Query("kind")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.data_request_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetMyDataRequest fetches one of the user's data-subject requests.
func (h *Handler) GetMyDataRequest(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || requestID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	row, err := h.LGPDService.GetRequest(uint(requestID), uid)
	if err != nil {
		if errors.Is(err, service.ErrDataRequestNotFound) {
			respondError(c, response.CodeNotFound, "error.data_request_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.data_request_fetch_failed", err)
		return
	}
	response.Success(c, row)
}

// ListMyConsents lists the user's recorded consents.
func (h *Handler) ListMyConsents(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	rows, err := h.LGPDRepo.ListConsentsByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.consent_fetch_failed", err)
		return
	}
	response.Success(c, rows)
}
