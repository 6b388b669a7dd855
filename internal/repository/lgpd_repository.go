package repository

import (
	"errors"
	"strings"

	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LGPDRepository covers data-subject requests and the PII satellites
// removed during erasure.
type LGPDRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) LGPDRepository

	GetRequestByID(id uint) (*models.DataRequest, error)
	GetRequestByIDForUpdate(id uint) (*models.DataRequest, error)
	HasOpenRequest(userID uint, kind string) (bool, error)
	CreateRequest(req *models.DataRequest) error
	UpdateRequest(req *models.DataRequest) error
	ListRequests(filter DataRequestListFilter) ([]models.DataRequest, int64, error)

	ListAddressesByUser(userID uint) ([]models.Address, error)
	ListConsentsByUser(userID uint) ([]models.Consent, error)
	CreateConsent(consent *models.Consent) error
	HardDeleteAddressesByUser(userID uint) error
	HardDeleteConsentsByUser(userID uint) error
}

// Open (non-terminal) request statuses.
var openDataRequestStatuses = []string{"PENDING", "PROCESSING"}

// GormLGPDRepository is the GORM implementation.
type GormLGPDRepository struct {
	db *gorm.DB
}

// NewLGPDRepository creates the LGPD repository.
func NewLGPDRepository(db *gorm.DB) *GormLGPDRepository {
	return &GormLGPDRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormLGPDRepository) WithTx(tx *gorm.DB) LGPDRepository {
	if tx == nil {
		return r
	}
	return &GormLGPDRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormLGPDRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetRequestByID fetches a data request by id.
func (r *GormLGPDRepository) GetRequestByID(id uint) (*models.DataRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var req models.DataRequest
	if err := r.db.Preload("User").First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// GetRequestByIDForUpdate locks a data request row.
func (r *GormLGPDRepository) GetRequestByIDForUpdate(id uint) (*models.DataRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var req models.DataRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// HasOpenRequest reports whether the user has an open request of the
// given kind.
func (r *GormLGPDRepository) HasOpenRequest(userID uint, kind string) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var total int64
	if err := r.db.Model(&models.DataRequest{}).
		Where("user_id = ? AND kind = ? AND status IN ?", userID, strings.ToUpper(strings.TrimSpace(kind)), openDataRequestStatuses).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// CreateRequest inserts a data request.
func (r *GormLGPDRepository) CreateRequest(req *models.DataRequest) error {
	return r.db.Create(req).Error
}

// UpdateRequest saves a data request.
func (r *GormLGPDRepository) UpdateRequest(req *models.DataRequest) error {
	return r.db.Save(req).Error
}

// ListRequests queries data requests.
func (r *GormLGPDRepository) ListRequests(filter DataRequestListFilter) ([]models.DataRequest, int64, error) {
	query := r.db.Model(&models.DataRequest{}).Preload("User")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("kind = ?", strings.ToUpper(kind))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.DataRequest
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAddressesByUser fetches the user's addresses.
func (r *GormLGPDRepository) ListAddressesByUser(userID uint) ([]models.Address, error) {
	if userID == 0 {
		return []models.Address{}, nil
	}
	var rows []models.Address
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListConsentsByUser fetches the user's consent records.
func (r *GormLGPDRepository) ListConsentsByUser(userID uint) ([]models.Consent, error) {
	if userID == 0 {
		return []models.Consent{}, nil
	}
	var rows []models.Consent
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateConsent inserts a consent record.
func (r *GormLGPDRepository) CreateConsent(consent *models.Consent) error {
	return r.db.Create(consent).Error
}

// HardDeleteAddressesByUser removes address rows permanently.
func (r *GormLGPDRepository) HardDeleteAddressesByUser(userID uint) error {
	if userID == 0 {
		return nil
	}
	return r.db.Unscoped().Where("user_id = ?", userID).Delete(&models.Address{}).Error
}

// HardDeleteConsentsByUser removes consent rows permanently.
func (r *GormLGPDRepository) HardDeleteConsentsByUser(userID uint) error {
	if userID == 0 {
		return nil
	}
	return r.db.Unscoped().Where("user_id = ?", userID).Delete(&models.Consent{}).Error
}
