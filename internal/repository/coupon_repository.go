package repository

import (
	"errors"
	"fmt"

	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
)

// CouponRepository is the coupon data access interface.
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	IncrementUsedCountGuarded(id uint) (int64, error)
	DecrementUsedCount(id uint, delta int) error
	WithTx(tx *gorm.DB) CouponRepository
}

// CouponListFilter filters the coupon listing.
type CouponListFilter struct {
	ID       uint
	Code     string
	PlanID   uint
	IsActive *bool
	Page     int
	PageSize int
}

// GormCouponRepository is the GORM implementation.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates the coupon repository.
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCouponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// GetByID fetches a coupon by id.
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode fetches a coupon by code.
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// Create inserts a coupon.
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// Update saves a coupon.
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	return r.db.Save(coupon).Error
}

// Delete soft deletes a coupon.
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

// List queries coupons.
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	var coupons []models.Coupon
	query := r.db.Model(&models.Coupon{})

	if filter.ID > 0 {
		query = query.Where("id = ?", filter.ID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.PlanID > 0 {
		// plan_scope_ids holds a JSON array (e.g. [1,2,3]); match on the
		// boundaries so 1 does not match 11.
		exact := fmt.Sprintf("[%d]", filter.PlanID)
		prefix := fmt.Sprintf("[%d,%%", filter.PlanID)
		middle := fmt.Sprintf("%%,%d,%%", filter.PlanID)
		suffix := fmt.Sprintf("%%,%d]", filter.PlanID)
		query = query.Where(
			"(plan_scope_ids = '' OR plan_scope_ids = ? OR plan_scope_ids LIKE ? OR plan_scope_ids LIKE ? OR plan_scope_ids LIKE ?)",
			exact,
			prefix,
			middle,
			suffix,
		)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// IncrementUsedCountGuarded bumps the global usage counter only while it
// stays under the limit. A zero affected-row count means the coupon was
// exhausted by a concurrent redemption.
func (r *GormCouponRepository) IncrementUsedCountGuarded(id uint) (int64, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		Where("usage_limit = 0 OR used_count < usage_limit").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DecrementUsedCount lowers the global usage counter, flooring at zero.
func (r *GormCouponRepository) DecrementUsedCount(id uint, delta int) error {
	if delta == 0 {
		delta = 1
	}
	if delta < 0 {
		delta = -delta
	}
	return r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		Where("used_count >= ?", delta).
		UpdateColumn("used_count", gorm.Expr("used_count - ?", delta)).Error
}
