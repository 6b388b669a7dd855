package models

import "time"

// AuditEvent is one append-only audit row. No soft delete and no updates;
// rows are written once and only ever read.
type AuditEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorType  string    `gorm:"type:varchar(16);not null;index" json:"actor_type"` // user/admin/system
	ActorID    uint      `gorm:"not null;index;default:0" json:"actor_id"`
	Action     string    `gorm:"type:varchar(64);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(32);index" json:"entity_type"`
	EntityID   uint      `gorm:"index;default:0" json:"entity_id"`
	Metadata   string    `gorm:"type:text" json:"metadata"` // JSON
	IPAddress  string    `gorm:"type:varchar(45)" json:"ip_address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (AuditEvent) TableName() string {
	return "audit_events"
}
