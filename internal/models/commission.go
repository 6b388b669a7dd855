package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission is one ledger row credited to a referrer when a referred
// user's order is paid. Generation happens once per order inside the
// payment transaction; withdrawal requests may later split a row, so the
// (earner, order) pair is indexed but not unique.
type Commission struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	EarnerUserID        uint           `gorm:"not null;index;index:idx_commission_earner_order" json:"earner_user_id"`
	SourceUserID        uint           `gorm:"not null;index" json:"source_user_id"`
	OrderID             uint           `gorm:"not null;index;index:idx_commission_earner_order" json:"order_id"`
	BaseAmount          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_amount"`
	RatePercent         Money          `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"`
	Amount              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Status              string         `gorm:"type:varchar(32);not null;index" json:"status"`
	AvailableAt         *time.Time     `gorm:"index" json:"available_at,omitempty"`
	PaidAt              *time.Time     `json:"paid_at,omitempty"`
	WithdrawalRequestID *uint          `gorm:"index" json:"withdrawal_request_id,omitempty"`
	CancelReason        string         `gorm:"type:varchar(255)" json:"cancel_reason"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Earner            User               `gorm:"foreignKey:EarnerUserID" json:"earner,omitempty"`
	Source            User               `gorm:"foreignKey:SourceUserID" json:"source,omitempty"`
	Order             Order              `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	WithdrawalRequest *WithdrawalRequest `gorm:"foreignKey:WithdrawalRequestID" json:"withdrawal_request,omitempty"`
}

// TableName sets the table name.
func (Commission) TableName() string {
	return "commissions"
}
