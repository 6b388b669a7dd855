package repository

import (
	"errors"

	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
)

// BankAccountRepository is the bank account data access interface.
type BankAccountRepository interface {
	GetByUserID(userID uint) (*models.BankAccount, error)
	Upsert(account *models.BankAccount) error
	DeleteByUserID(userID uint) error
	WithTx(tx *gorm.DB) BankAccountRepository
}

// GormBankAccountRepository is the GORM implementation.
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates the bank account repository.
func NewBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormBankAccountRepository) WithTx(tx *gorm.DB) BankAccountRepository {
	if tx == nil {
		return r
	}
	return &GormBankAccountRepository{db: tx}
}

// GetByUserID fetches the user's bank account.
func (r *GormBankAccountRepository) GetByUserID(userID uint) (*models.BankAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.BankAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Upsert creates or replaces the user's bank account.
func (r *GormBankAccountRepository) Upsert(account *models.BankAccount) error {
	existing, err := r.GetByUserID(account.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(account).Error
	}
	account.ID = existing.ID
	account.CreatedAt = existing.CreatedAt
	return r.db.Save(account).Error
}

// DeleteByUserID removes the user's bank account permanently. Used by
// the LGPD erasure transaction.
func (r *GormBankAccountRepository) DeleteByUserID(userID uint) error {
	if userID == 0 {
		return nil
	}
	return r.db.Unscoped().Where("user_id = ?", userID).Delete(&models.BankAccount{}).Error
}
