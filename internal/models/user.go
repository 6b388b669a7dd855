package models

import (
	"time"

	"gorm.io/gorm"
)

// User account. ReferredByID points at the referrer and forms a forest
// (codes are generated server-side, so a user cannot self-refer).
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	DisplayName        string         `gorm:"default:''" json:"display_name"`
	Document           string         `gorm:"type:varchar(20)" json:"document"` // CPF/CNPJ
	Phone              string         `gorm:"type:varchar(32)" json:"phone"`
	Locale             string         `gorm:"default:'pt-BR'" json:"locale"`
	Status             string         `gorm:"default:'active';index" json:"status"`
	ReferralCode       string         `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredByID       *uint          `gorm:"index" json:"referred_by_id,omitempty"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`
	AnonymizedAt       *time.Time     `json:"anonymized_at,omitempty"`
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	ReferredBy *User `gorm:"foreignKey:ReferredByID" json:"referred_by,omitempty"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
