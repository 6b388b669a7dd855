package queue

import (
	"encoding/json"

	"github.com/assinahub/assinahub/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCommissionRelease moves due PENDING commissions to AVAILABLE.
	TaskCommissionRelease = constants.TaskCommissionRelease
	// TaskDataRequestExport builds and uploads an LGPD data export.
	TaskDataRequestExport = constants.TaskDataRequestExport
	// TaskAuditWrite persists one audit event.
	TaskAuditWrite = constants.TaskAuditWrite
	// TaskBackupRun takes a database snapshot.
	TaskBackupRun = constants.TaskBackupRun
)

// CommissionReleasePayload carries the release cutoff (Unix seconds).
type CommissionReleasePayload struct {
	Before int64 `json:"before"`
}

// DataRequestExportPayload points at the request being exported.
type DataRequestExportPayload struct {
	RequestID uint `json:"request_id"`
}

// AuditWritePayload is a serialized audit event.
type AuditWritePayload struct {
	ActorType  string `json:"actor_type"`
	ActorID    uint   `json:"actor_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
	Metadata   string `json:"metadata"`
	IPAddress  string `json:"ip_address"`
	OccurredAt int64  `json:"occurred_at"`
}

// BackupRunPayload triggers a backup run.
type BackupRunPayload struct {
	RequestedBy uint `json:"requested_by"`
}

// NewCommissionReleaseTask creates a commission release task.
func NewCommissionReleaseTask(payload CommissionReleasePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionRelease, body), nil
}

// NewDataRequestExportTask creates an LGPD export task.
func NewDataRequestExportTask(payload DataRequestExportPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDataRequestExport, body), nil
}

// NewAuditWriteTask creates an audit write task.
func NewAuditWriteTask(payload AuditWritePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditWrite, body), nil
}

// NewBackupRunTask creates a backup task.
func NewBackupRunTask(payload BackupRunPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBackupRun, body), nil
}
