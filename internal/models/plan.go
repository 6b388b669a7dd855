package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan is a subscription plan offered on the storefront.
type Plan struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	Interval    string         `gorm:"type:varchar(20);not null;default:'monthly'" json:"interval"` // monthly/yearly
	TrialDays   int            `gorm:"not null;default:0" json:"trial_days"`
	// No column default, same reasoning as Coupon.IsActive.
	IsActive    bool           `gorm:"not null;index" json:"is_active"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Plan) TableName() string {
	return "plans"
}
