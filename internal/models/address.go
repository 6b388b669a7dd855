package models

import (
	"time"

	"gorm.io/gorm"
)

// Address is a user billing address. Hard-deleted on LGPD erasure.
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Street     string         `gorm:"not null" json:"street"`
	Number     string         `gorm:"type:varchar(16)" json:"number"`
	Complement string         `json:"complement"`
	District   string         `json:"district"`
	City       string         `gorm:"not null" json:"city"`
	State      string         `gorm:"type:varchar(2);not null" json:"state"`
	ZipCode    string         `gorm:"type:varchar(9);not null" json:"zip_code"`
	Country    string         `gorm:"type:varchar(2);not null;default:'BR'" json:"country"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Address) TableName() string {
	return "addresses"
}
