package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription is the recurring membership of a user on a plan.
// A user holds at most one non-terminal subscription.
type Subscription struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	PlanID             uint           `gorm:"not null;index" json:"plan_id"`
	Status             string         `gorm:"type:varchar(32);not null;index" json:"status"`
	CurrentPeriodStart time.Time      `json:"current_period_start"`
	CurrentPeriodEnd   time.Time      `gorm:"index" json:"current_period_end"`
	TrialEndsAt        *time.Time     `json:"trial_ends_at,omitempty"`
	CancelAtPeriodEnd  bool           `gorm:"not null;default:false" json:"cancel_at_period_end"`
	CanceledAt         *time.Time     `json:"canceled_at,omitempty"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName sets the table name.
func (Subscription) TableName() string {
	return "subscriptions"
}
