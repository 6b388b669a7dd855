package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount holds the user's current payout destination. One per user;
// withdrawal requests copy these fields instead of referencing them.
type BankAccount struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	HolderName string         `gorm:"not null" json:"holder_name"`
	HolderDoc  string         `gorm:"type:varchar(20);not null" json:"holder_doc"` // CPF/CNPJ
	BankCode   string         `gorm:"type:varchar(8)" json:"bank_code"`
	Branch     string         `gorm:"type:varchar(16)" json:"branch"`
	AccountNo  string         `gorm:"type:varchar(32)" json:"account_no"`
	PixKey     string         `gorm:"type:varchar(140)" json:"pix_key"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (BankAccount) TableName() string {
	return "bank_accounts"
}
