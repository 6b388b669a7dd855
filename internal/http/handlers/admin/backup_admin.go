package admin

import (
	"errors"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/queue"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// TriggerBackup starts a logical database snapshot. With the queue
// enabled the run is handed to the worker; otherwise it runs inline.
func (h *Handler) TriggerBackup(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	if h.Store == nil || !h.Store.Enabled() {
		respondError(c, response.CodeBadRequest, "error.storage_not_configured", nil)
		return
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueBackupRun(queue.BackupRunPayload{RequestedBy: adminID}); err != nil {
			respondError(c, response.CodeInternal, "error.backup_failed", err)
			return
		}
		response.Success(c, gin.H{"enqueued": true})
		return
	}

	key, err := h.BackupService.Run(c.Request.Context(), adminID)
	if err != nil {
		if errors.Is(err, service.ErrStorageNotConfigured) {
			respondError(c, response.CodeBadRequest, "error.storage_not_configured", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.backup_failed", err)
		return
	}
	response.Success(c, gin.H{"key": key})
}
