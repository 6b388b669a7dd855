package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository covers the commission ledger and the withdrawal
// requests that consume it. Both live in one repository because the
// withdrawal lifecycle mutates commission rows inside the same
// transaction.
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionRepository

	GetCommissionByID(id uint) (*models.Commission, error)
	GetCommissionByEarnerAndOrder(earnerUserID, orderID uint) (*models.Commission, error)
	CreateCommission(commission *models.Commission) error
	UpdateCommission(commission *models.Commission) error
	ListCommissions(filter CommissionListFilter) ([]models.Commission, int64, error)
	MarkPendingCommissionsAvailable(before, now time.Time) (int64, error)
	SumCommissionByEarner(earnerUserID uint, statuses []string, unboundOnly bool) (decimal.Decimal, error)
	SumCommissionByStatusGrouped(earnerUserID uint) (map[string]decimal.Decimal, error)
	ListAvailableCommissionsForUpdate(earnerUserID uint) ([]models.Commission, error)
	ListCommissionsByWithdrawalIDForUpdate(withdrawalID uint) ([]models.Commission, error)
	BatchUpdateCommissions(ids []uint, updates map[string]interface{}) error

	CreateWithdrawal(req *models.WithdrawalRequest) error
	UpdateWithdrawal(req *models.WithdrawalRequest) error
	GetWithdrawalByID(id uint) (*models.WithdrawalRequest, error)
	GetWithdrawalByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	HasOpenWithdrawalByUser(userID uint) (bool, error)
	ListWithdrawals(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
}

// Non-terminal withdrawal statuses.
var openWithdrawalStatuses = []string{
	constants.WithdrawalStatusPending,
	constants.WithdrawalStatusApproved,
	constants.WithdrawalStatusProcessing,
}

// GormCommissionRepository is the GORM implementation.
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates the commission repository.
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetCommissionByID fetches a commission by id.
func (r *GormCommissionRepository) GetCommissionByID(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Preload("Earner").Preload("Order").First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetCommissionByEarnerAndOrder fetches the commission for an
// (earner, order) pair. Backs idempotent generation.
func (r *GormCommissionRepository) GetCommissionByEarnerAndOrder(earnerUserID, orderID uint) (*models.Commission, error) {
	if earnerUserID == 0 || orderID == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Where("earner_user_id = ? AND order_id = ?", earnerUserID, orderID).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// CreateCommission inserts a commission row.
func (r *GormCommissionRepository) CreateCommission(commission *models.Commission) error {
	return r.db.Create(commission).Error
}

// UpdateCommission saves a commission row.
func (r *GormCommissionRepository) UpdateCommission(commission *models.Commission) error {
	return r.db.Save(commission).Error
}

// ListCommissions queries commission rows.
func (r *GormCommissionRepository) ListCommissions(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{}).
		Preload("Source").
		Preload("Order")
	if filter.EarnerUserID != 0 {
		query = query.Where("commissions.earner_user_id = ?", filter.EarnerUserID)
	}
	if filter.SourceUserID != 0 {
		query = query.Where("commissions.source_user_id = ?", filter.SourceUserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("commissions.order_id = ?", filter.OrderID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("commissions.status = ?", status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("commissions.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("commissions.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Commission
	if err := query.Order("commissions.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkPendingCommissionsAvailable releases PENDING rows whose hold
// period expired. Rows already bound to a withdrawal are skipped.
func (r *GormCommissionRepository) MarkPendingCommissionsAvailable(before, now time.Time) (int64, error) {
	result := r.db.Model(&models.Commission{}).
		Where("status = ? AND available_at IS NOT NULL AND available_at <= ? AND withdrawal_request_id IS NULL",
			constants.CommissionStatusPending, before).
		Updates(map[string]interface{}{
			"status":     constants.CommissionStatusAvailable,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SumCommissionByEarner sums commission amounts for the earner in the
// given statuses.
func (r *GormCommissionRepository) SumCommissionByEarner(earnerUserID uint, statuses []string, unboundOnly bool) (decimal.Decimal, error) {
	if earnerUserID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	query := r.db.Model(&models.Commission{}).
		Where("earner_user_id = ? AND status IN ?", earnerUserID, statuses)
	if unboundOnly {
		query = query.Where("withdrawal_request_id IS NULL")
	}

	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// SumCommissionByStatusGrouped aggregates amounts per status for the
// earner. Recomputed per request, no caching.
func (r *GormCommissionRepository) SumCommissionByStatusGrouped(earnerUserID uint) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal)
	if earnerUserID == 0 {
		return result, nil
	}
	var rows []struct {
		Status string          `gorm:"column:status"`
		Total  decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Commission{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Where("earner_user_id = ?", earnerUserID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.Status] = row.Total.Round(2)
	}
	return result, nil
}

// ListAvailableCommissionsForUpdate locks the earner's unbound AVAILABLE
// rows. Callers must be inside a transaction; the lock is what closes
// the withdrawal double-spend race.
func (r *GormCommissionRepository) ListAvailableCommissionsForUpdate(earnerUserID uint) ([]models.Commission, error) {
	if earnerUserID == 0 {
		return []models.Commission{}, nil
	}
	var rows []models.Commission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("earner_user_id = ? AND status = ? AND withdrawal_request_id IS NULL",
			earnerUserID, constants.CommissionStatusAvailable).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCommissionsByWithdrawalIDForUpdate locks the rows bound to a
// withdrawal request.
func (r *GormCommissionRepository) ListCommissionsByWithdrawalIDForUpdate(withdrawalID uint) ([]models.Commission, error) {
	if withdrawalID == 0 {
		return []models.Commission{}, nil
	}
	var rows []models.Commission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("withdrawal_request_id = ?", withdrawalID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BatchUpdateCommissions updates many commission rows.
func (r *GormCommissionRepository) BatchUpdateCommissions(ids []uint, updates map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Commission{}).Where("id IN ?", ids).Updates(updates).Error
}

// CreateWithdrawal inserts a withdrawal request.
func (r *GormCommissionRepository) CreateWithdrawal(req *models.WithdrawalRequest) error {
	return r.db.Create(req).Error
}

// UpdateWithdrawal saves a withdrawal request.
func (r *GormCommissionRepository) UpdateWithdrawal(req *models.WithdrawalRequest) error {
	return r.db.Save(req).Error
}

// GetWithdrawalByID fetches a withdrawal request by id.
func (r *GormCommissionRepository) GetWithdrawalByID(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Preload("User").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetWithdrawalByIDForUpdate locks a withdrawal request row.
func (r *GormCommissionRepository) GetWithdrawalByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// HasOpenWithdrawalByUser reports whether the user has a non-terminal
// withdrawal request. Called with locked rows inside the request
// transaction to enforce at most one open request per user.
func (r *GormCommissionRepository) HasOpenWithdrawalByUser(userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var total int64
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("user_id = ? AND status IN ?", userID, openWithdrawalStatuses).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// ListWithdrawals queries withdrawal requests.
func (r *GormCommissionRepository) ListWithdrawals(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{}).Preload("User")

	if filter.UserID != 0 {
		query = query.Where("withdrawal_requests.user_id = ?", filter.UserID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("withdrawal_requests.status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		op := likeOperator(r.db)
		query = query.
			Joins("LEFT JOIN users u ON u.id = withdrawal_requests.user_id").
			Where("(u.email "+op+" ? OR withdrawal_requests.bank_holder_name "+op+" ? OR withdrawal_requests.pix_key "+op+" ?)",
				like, like, like)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("withdrawal_requests.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("withdrawal_requests.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.WithdrawalRequest
	if err := query.Order("withdrawal_requests.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
