package repository

import (
	"errors"

	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponUsageRepository tracks the per-(user, coupon) usage counter.
type CouponUsageRepository interface {
	GetByCouponAndUser(couponID, userID uint) (*models.CouponUsage, error)
	GetByCouponAndUserForUpdate(couponID, userID uint) (*models.CouponUsage, error)
	Create(usage *models.CouponUsage) error
	Update(usage *models.CouponUsage) error
	ListByUser(userID uint, page, pageSize int) ([]models.CouponUsage, int64, error)
	WithTx(tx *gorm.DB) CouponUsageRepository
}

// GormCouponUsageRepository is the GORM implementation.
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository creates the coupon usage repository.
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) CouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// GetByCouponAndUser fetches the usage counter for a pair.
func (r *GormCouponUsageRepository) GetByCouponAndUser(couponID, userID uint) (*models.CouponUsage, error) {
	if couponID == 0 || userID == 0 {
		return nil, nil
	}
	var usage models.CouponUsage
	if err := r.db.Where("coupon_id = ? AND user_id = ?", couponID, userID).First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// GetByCouponAndUserForUpdate locks the usage counter row. Callers must
// be inside a transaction; this is what makes the per-user limit check
// atomic under concurrent redemptions.
func (r *GormCouponUsageRepository) GetByCouponAndUserForUpdate(couponID, userID uint) (*models.CouponUsage, error) {
	if couponID == 0 || userID == 0 {
		return nil, nil
	}
	var usage models.CouponUsage
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// Create inserts a usage counter row.
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) error {
	return r.db.Create(usage).Error
}

// Update saves a usage counter row.
func (r *GormCouponUsageRepository) Update(usage *models.CouponUsage) error {
	return r.db.Save(usage).Error
}

// ListByUser queries a user's usage counters.
func (r *GormCouponUsageRepository) ListByUser(userID uint, page, pageSize int) ([]models.CouponUsage, int64, error) {
	query := r.db.Model(&models.CouponUsage{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var usages []models.CouponUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
