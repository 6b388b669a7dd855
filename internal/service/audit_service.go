package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/queue"
	"github.com/assinahub/assinahub/internal/repository"

	"gorm.io/gorm"
)

// Audit actor types.
const (
	AuditActorUser   = "user"
	AuditActorAdmin  = "admin"
	AuditActorSystem = "system"
)

// AuditEntry is one event to record.
type AuditEntry struct {
	ActorType  string
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	Metadata   map[string]interface{}
	IPAddress  string
}

// AuditService appends audit events. Writes go through the queue when
// available so request latency never depends on the audit table;
// failures are logged and swallowed because auditing must not break the
// operation being audited.
type AuditService struct {
	repo        repository.AuditRepository
	queueClient *queue.Client
}

// NewAuditService creates the audit service.
func NewAuditService(repo repository.AuditRepository, queueClient *queue.Client) *AuditService {
	return &AuditService{
		repo:        repo,
		queueClient: queueClient,
	}
}

// Record appends one audit event, asynchronously when possible.
func (s *AuditService) Record(entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	actorType := strings.TrimSpace(entry.ActorType)
	if actorType == "" {
		actorType = AuditActorSystem
	}
	metadata := ""
	if len(entry.Metadata) > 0 {
		if raw, err := json.Marshal(entry.Metadata); err == nil {
			metadata = string(raw)
		}
	}

	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueAuditWrite(queue.AuditWritePayload{
			ActorType:  actorType,
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Metadata:   metadata,
			IPAddress:  strings.TrimSpace(entry.IPAddress),
			OccurredAt: time.Now().Unix(),
		})
		if err == nil {
			return
		}
		logger.Warnw("audit_enqueue_failed", "action", entry.Action, "error", err)
	}

	s.write(actorType, entry, metadata, time.Now())
}

// RecordTx appends one audit event on the caller's open transaction.
// The write rides the transaction's own connection, so it cannot
// contend with the caller's locks, and it rolls back with the operation
// it describes.
func (s *AuditService) RecordTx(tx *gorm.DB, entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	actorType := strings.TrimSpace(entry.ActorType)
	if actorType == "" {
		actorType = AuditActorSystem
	}
	metadata := ""
	if len(entry.Metadata) > 0 {
		if raw, err := json.Marshal(entry.Metadata); err == nil {
			metadata = string(raw)
		}
	}
	err := s.repo.WithTx(tx).Create(&models.AuditEvent{
		ActorType:  actorType,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		IPAddress:  strings.TrimSpace(entry.IPAddress),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		logger.Errorw("audit_write_failed", "action", entry.Action, "error", err)
	}
}

// Persist writes a queued audit payload. Called by the worker.
func (s *AuditService) Persist(payload queue.AuditWritePayload) error {
	if s == nil || s.repo == nil {
		return nil
	}
	occurredAt := time.Unix(payload.OccurredAt, 0)
	if payload.OccurredAt <= 0 {
		occurredAt = time.Now()
	}
	return s.repo.Create(&models.AuditEvent{
		ActorType:  payload.ActorType,
		ActorID:    payload.ActorID,
		Action:     payload.Action,
		EntityType: payload.EntityType,
		EntityID:   payload.EntityID,
		Metadata:   payload.Metadata,
		IPAddress:  payload.IPAddress,
		CreatedAt:  occurredAt,
	})
}

// List queries audit events.
func (s *AuditService) List(filter repository.AuditEventListFilter) ([]models.AuditEvent, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditEvent{}, 0, nil
	}
	return s.repo.List(filter)
}

func (s *AuditService) write(actorType string, entry AuditEntry, metadata string, now time.Time) {
	err := s.repo.Create(&models.AuditEvent{
		ActorType:  actorType,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		IPAddress:  strings.TrimSpace(entry.IPAddress),
		CreatedAt:  now,
	})
	if err != nil {
		logger.Errorw("audit_write_failed", "action", entry.Action, "error", err)
	}
}
