package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository

	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	List(filter OrderListFilter) ([]models.Order, int64, error)
	CountPaidByUserSince(userID uint, since time.Time) (int64, error)
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID fetches an order with its items.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate locks an order row.
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo fetches an order by its public number.
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	normalized := strings.TrimSpace(orderNo)
	if normalized == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ?", normalized).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Create inserts an order with its items.
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// Update saves an order.
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// List queries orders.
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Preload("Items")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no "+likeOperator(r.db)+" ?", "%"+orderNo+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// CountPaidByUserSince counts orders paid by the user after the given
// instant. Used by the LGPD fiscal-retention exclusion.
func (r *GormOrderRepository) CountPaidByUserSince(userID uint, since time.Time) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND status = ? AND paid_at IS NOT NULL AND paid_at >= ?",
			userID, constants.OrderStatusPaid, since).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
