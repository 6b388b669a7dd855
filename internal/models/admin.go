package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a backoffice account. Route-level permissions come from the
// RBAC layer; IsSuper bypasses policy checks.
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	IsSuper            bool           `gorm:"not null;default:false" json:"is_super"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Admin) TableName() string {
	return "admins"
}
