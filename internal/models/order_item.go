package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem snapshots the purchased plan at order time.
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	PlanID    uint           `gorm:"not null;index" json:"plan_id"`
	PlanName  string         `gorm:"not null" json:"plan_name"`
	Interval  string         `gorm:"type:varchar(20);not null" json:"interval"`
	UnitPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
