package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/provider"
	"github.com/assinahub/assinahub/internal/queue"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCommissionRelease, c.handleCommissionRelease)
	mux.HandleFunc(queue.TaskDataRequestExport, c.handleDataRequestExport)
	mux.HandleFunc(queue.TaskAuditWrite, c.handleAuditWrite)
	mux.HandleFunc(queue.TaskBackupRun, c.handleBackupRun)
}

func (c *Consumer) handleCommissionRelease(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.CommissionReleasePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_commission_release_unmarshal_failed", "error", err)
		return err
	}
	before := time.Now()
	if payload.Before > 0 {
		before = time.Unix(payload.Before, 0)
	}
	released, err := c.CommissionService.ReleaseDueCommissions(before)
	if err != nil {
		logger.Warnw("worker_commission_release_failed", "error", err)
		return err
	}
	if released > 0 {
		logger.Infow("worker_commission_release_done", "released", released)
	}
	return nil
}

// handleDataRequestExport builds the subject's data bundle, stores it,
// and completes the request. A request no longer in PROCESSING is
// treated as already handled.
func (c *Consumer) handleDataRequestExport(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.DataRequestExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_lgpd_export_unmarshal_failed", "error", err)
		return err
	}
	if payload.RequestID == 0 {
		return nil
	}
	req, err := c.LGPDRepo.GetRequestByID(payload.RequestID)
	if err != nil {
		logger.Warnw("worker_lgpd_export_fetch_failed", "request_id", payload.RequestID, "error", err)
		return err
	}
	if req == nil {
		logger.Debugw("worker_lgpd_export_skip_not_found", "request_id", payload.RequestID)
		return nil
	}

	bundle, err := c.LGPDService.BuildExportBundle(req.UserID)
	if err != nil {
		logger.Warnw("worker_lgpd_export_build_failed", "request_id", req.ID, "error", err)
		return err
	}
	if !c.Store.Enabled() {
		logger.Errorw("worker_lgpd_export_storage_disabled", "request_id", req.ID)
		return service.ErrStorageNotConfigured
	}
	name := "export-" + time.Now().UTC().Format("20060102-150405")
	url, err := c.Store.PutJSON(ctx, "lgpd-exports", name, bundle)
	if err != nil {
		logger.Warnw("worker_lgpd_export_store_failed", "request_id", req.ID, "error", err)
		return err
	}

	if err := c.LGPDService.CompleteExport(req.ID, url); err != nil {
		if errors.Is(err, service.ErrDataRequestState) {
			logger.Debugw("worker_lgpd_export_skip_state", "request_id", req.ID)
			return nil
		}
		logger.Warnw("worker_lgpd_export_complete_failed", "request_id", req.ID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleAuditWrite(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.AuditWritePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_audit_write_unmarshal_failed", "error", err)
		return err
	}
	if err := c.AuditService.Persist(payload); err != nil {
		logger.Warnw("worker_audit_write_failed", "action", payload.Action, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleBackupRun(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.BackupRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_backup_unmarshal_failed", "error", err)
		return err
	}
	key, err := c.BackupService.Run(ctx, payload.RequestedBy)
	if err != nil {
		if errors.Is(err, service.ErrStorageNotConfigured) {
			logger.Warnw("worker_backup_skip_storage_disabled")
			return nil
		}
		logger.Warnw("worker_backup_failed", "error", err)
		return err
	}
	logger.Infow("worker_backup_done", "key", key)
	return nil
}
