package models

import (
	"time"

	"gorm.io/gorm"
)

// Consent records a user's acceptance of a policy version.
// Hard-deleted on LGPD erasure.
type Consent struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Kind      string         `gorm:"type:varchar(32);not null" json:"kind"` // terms/marketing
	Version   string         `gorm:"type:varchar(32);not null" json:"version"`
	Granted   bool           `gorm:"not null;default:true" json:"granted"`
	GrantedAt time.Time      `json:"granted_at"`
	RevokedAt *time.Time     `json:"revoked_at,omitempty"`
	IPAddress string         `gorm:"type:varchar(45)" json:"ip_address"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Consent) TableName() string {
	return "consents"
}
