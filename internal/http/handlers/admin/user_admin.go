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

// ListAdminUsers lists accounts with filters.
func (h *Handler) ListAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	referredBy, _ := strconv.ParseUint(c.Query("referred_by_id"), 10, 64)
	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:         page,
		PageSize:     pageSize,
		Keyword:      strings.TrimSpace(c.Query("keyword")),
		Status:       strings.TrimSpace(c.Query("status")),
		ReferredByID: uint(referredBy),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// GetAdminUser fetches one account.
func (h *Handler) GetAdminUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	user, err := h.UserService.GetByID(uint(userID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.Success(c, user)
}

// SetUserStatusRequest is the status change payload.
type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetUserStatus enables or disables an account. Anonymized accounts
// are frozen.
func (h *Handler) SetUserStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, setErr := h.UserService.SetStatus(adminID, uint(userID), req.Status)
	if setErr != nil {
		switch {
		case errors.Is(setErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(setErr, service.ErrUserDisabled):
			respondError(c, response.CodeBadRequest, "error.user_status_frozen", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", setErr)
		}
		return
	}
	response.Success(c, user)
}
