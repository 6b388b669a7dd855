package models

import (
	"time"

	"gorm.io/gorm"
)

// CouponUsage is the per-(user, coupon) usage counter. The unique pair
// index lets redemption lock a single row and re-check the per-user limit
// before incrementing.
type CouponUsage struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CouponID    uint           `gorm:"not null;index:idx_coupon_usage_unique,unique" json:"coupon_id"`
	UserID      uint           `gorm:"not null;index:idx_coupon_usage_unique,unique" json:"user_id"`
	UsageCount  int            `gorm:"not null;default:0" json:"usage_count"`
	LastOrderID *uint          `gorm:"index" json:"last_order_id,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
