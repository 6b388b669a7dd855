package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest is a user-initiated claim against the AVAILABLE
// commission balance. Bank data is denormalized at request time so the
// payout record survives later edits to the user's bank account.
type WithdrawalRequest struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Amount Money  `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Status string `gorm:"type:varchar(32);not null;index" json:"status"`

	// Bank-data snapshot taken at request time.
	BankHolderName   string `gorm:"not null" json:"bank_holder_name"`
	BankHolderDoc    string `gorm:"type:varchar(20);not null" json:"bank_holder_doc"`
	BankCode         string `gorm:"type:varchar(8)" json:"bank_code"`
	BankBranch       string `gorm:"type:varchar(16)" json:"bank_branch"`
	BankAccountNo    string `gorm:"type:varchar(32)" json:"bank_account_no"`
	PixKey           string `gorm:"type:varchar(140)" json:"pix_key"`

	ReviewedBy *uint          `gorm:"index" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNote string         `gorm:"type:varchar(255)" json:"review_note"`
	PaidAt     *time.Time     `json:"paid_at,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName sets the table name.
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
