package models

import (
	"time"

	"gorm.io/gorm"
)

// DataRequest is an LGPD data-subject request (access, rectification,
// erasure or portability). Erasure follows PENDING -> COMPLETED|REJECTED
// under admin decision.
type DataRequest struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Kind       string         `gorm:"type:varchar(32);not null;index" json:"kind"`
	Status     string         `gorm:"type:varchar(32);not null;index" json:"status"`
	Reason     string         `gorm:"type:varchar(500)" json:"reason"`
	Changes    string         `gorm:"type:text" json:"changes"` // rectification payload, JSON
	ExportURL  string         `gorm:"type:varchar(500)" json:"export_url"`
	ReviewedBy *uint          `gorm:"index" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNote string         `gorm:"type:varchar(500)" json:"review_note"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName sets the table name.
func (DataRequest) TableName() string {
	return "data_requests"
}
