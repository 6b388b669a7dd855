package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a storefront purchase or renewal charge.
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	SubscriptionID *uint          `gorm:"index" json:"subscription_id,omitempty"`
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	Currency       string         `gorm:"type:varchar(8);not null;default:'BRL'" json:"currency"`
	CouponID       *uint          `gorm:"index" json:"coupon_id,omitempty"`
	Status         string         `gorm:"type:varchar(32);not null;index" json:"status"`
	PaidAt         *time.Time     `gorm:"index" json:"paid_at,omitempty"`
	CanceledAt     *time.Time     `json:"canceled_at,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User  User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
