package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon is a storefront discount code.
type Coupon struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`
	Type         string         `gorm:"not null" json:"type"` // fixed/percent
	Value        Money          `gorm:"type:decimal(20,2);not null" json:"value"`
	MinAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`
	MaxDiscount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`
	UsageLimit   int            `gorm:"not null;default:0" json:"usage_limit"`     // global cap, 0 = unlimited
	UsedCount    int            `gorm:"not null;default:0" json:"used_count"`
	PerUserLimit int            `gorm:"not null;default:0" json:"per_user_limit"`  // per-user cap, 0 = unlimited
	PlanScopeIDs string         `gorm:"type:text" json:"plan_scope_ids"`           // JSON array of plan ids, empty = all plans
	StartsAt     *time.Time     `gorm:"index" json:"starts_at"`
	EndsAt       *time.Time     `gorm:"index" json:"ends_at"`
	// No column default: gorm would skip the zero value on insert and a
	// coupon created inactive would come back active.
	IsActive     bool           `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Coupon) TableName() string {
	return "coupons"
}
