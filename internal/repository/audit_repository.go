package repository

import (
	"strings"

	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
)

// AuditRepository is the append-only audit event store. There is no
// update or delete on purpose.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Create(event *models.AuditEvent) error
	List(filter AuditEventListFilter) ([]models.AuditEvent, int64, error)
}

// GormAuditRepository is the GORM implementation.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates the audit repository.
func NewAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *GormAuditRepository) WithTx(tx *gorm.DB) AuditRepository {
	if tx == nil {
		return r
	}
	return &GormAuditRepository{db: tx}
}

// Create appends an audit event.
func (r *GormAuditRepository) Create(event *models.AuditEvent) error {
	return r.db.Create(event).Error
}

// List queries audit events.
func (r *GormAuditRepository) List(filter AuditEventListFilter) ([]models.AuditEvent, int64, error) {
	query := r.db.Model(&models.AuditEvent{})
	if actorType := strings.TrimSpace(filter.ActorType); actorType != "" {
		query = query.Where("actor_type = ?", actorType)
	}
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := strings.TrimSpace(filter.EntityType); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.AuditEvent
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
