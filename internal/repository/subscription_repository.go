package repository

import (
	"errors"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository is the subscription data access interface.
type SubscriptionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SubscriptionRepository

	GetByID(id uint) (*models.Subscription, error)
	GetActiveByUserID(userID uint) (*models.Subscription, error)
	GetActiveByUserIDForUpdate(userID uint) (*models.Subscription, error)
	Create(sub *models.Subscription) error
	Update(sub *models.Subscription) error
	List(filter SubscriptionListFilter) ([]models.Subscription, int64, error)
	ListDueForRenewal(before time.Time, limit int) ([]models.Subscription, error)
	ListPastDueBefore(graceEnd time.Time, limit int) ([]models.Subscription, error)
	HasNonTerminalByUserID(userID uint) (bool, error)
}

// Non-terminal subscription statuses.
var openSubscriptionStatuses = []string{
	constants.SubscriptionStatusTrialing,
	constants.SubscriptionStatusActive,
	constants.SubscriptionStatusPastDue,
}

// GormSubscriptionRepository is the GORM implementation.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates the subscription repository.
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormSubscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	if tx == nil {
		return r
	}
	return &GormSubscriptionRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormSubscriptionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID fetches a subscription by id.
func (r *GormSubscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	if id == 0 {
		return nil, nil
	}
	var sub models.Subscription
	if err := r.db.Preload("Plan").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetActiveByUserID fetches the user's current non-terminal subscription.
func (r *GormSubscriptionRepository) GetActiveByUserID(userID uint) (*models.Subscription, error) {
	if userID == 0 {
		return nil, nil
	}
	var sub models.Subscription
	if err := r.db.Preload("Plan").
		Where("user_id = ? AND status IN ?", userID, openSubscriptionStatuses).
		Order("id DESC").
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetActiveByUserIDForUpdate locks the current non-terminal subscription.
func (r *GormSubscriptionRepository) GetActiveByUserIDForUpdate(userID uint) (*models.Subscription, error) {
	if userID == 0 {
		return nil, nil
	}
	var sub models.Subscription
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status IN ?", userID, openSubscriptionStatuses).
		Order("id DESC").
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Create inserts a subscription.
func (r *GormSubscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// Update saves a subscription.
func (r *GormSubscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// List queries subscriptions.
func (r *GormSubscriptionRepository) List(filter SubscriptionListFilter) ([]models.Subscription, int64, error) {
	query := r.db.Model(&models.Subscription{}).Preload("Plan").Preload("User")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PlanID != 0 {
		query = query.Where("plan_id = ?", filter.PlanID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var subs []models.Subscription
	if err := query.Order("id DESC").Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// ListDueForRenewal fetches trialing/active subscriptions whose period
// ended before the given instant.
func (r *GormSubscriptionRepository) ListDueForRenewal(before time.Time, limit int) ([]models.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	var subs []models.Subscription
	if err := r.db.Preload("Plan").
		Where("status IN ? AND current_period_end <= ?",
			[]string{constants.SubscriptionStatusTrialing, constants.SubscriptionStatusActive}, before).
		Order("current_period_end asc").
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// ListPastDueBefore fetches past_due subscriptions whose grace window
// closed before the given instant.
func (r *GormSubscriptionRepository) ListPastDueBefore(graceEnd time.Time, limit int) ([]models.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	var subs []models.Subscription
	if err := r.db.
		Where("status = ? AND current_period_end <= ?", constants.SubscriptionStatusPastDue, graceEnd).
		Order("current_period_end asc").
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// HasNonTerminalByUserID reports whether the user holds an open subscription.
func (r *GormSubscriptionRepository) HasNonTerminalByUserID(userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var total int64
	if err := r.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status IN ?", userID, openSubscriptionStatuses).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}
