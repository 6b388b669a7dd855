package admin

import (
	"strconv"
	"strings"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditEvents lists the audit trail with filters.
func (h *Handler) ListAuditEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	actorID, _ := strconv.ParseUint(c.Query("actor_id"), 10, 64)
	entityID, _ := strconv.ParseUint(c.Query("entity_id"), 10, 64)
	rows, total, err := h.AuditService.List(repository.AuditEventListFilter{
		Page:       page,
		PageSize:   pageSize,
		ActorType:  strings.TrimSpace(c.Query("actor_type")),
		ActorID:    uint(actorID),
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		EntityID:   uint(entityID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
