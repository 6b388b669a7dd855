package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
)

// UserRepository is the user data access interface.
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetByReferralCode(code string) (*models.User, error)
	ListByIDs(ids []uint) ([]models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
	CountReferrals(userID uint) (int64, error)
	BatchUpdateStatus(userIDs []uint, status string) error
	WithTx(tx *gorm.DB) UserRepository
}

// GormUserRepository is the GORM implementation.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates the user repository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByEmail fetches a user by email.
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID fetches a user by id.
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByReferralCode fetches a user by referral code.
func (r *GormUserRepository) GetByReferralCode(code string) (*models.User, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("referral_code = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListByIDs fetches users in bulk.
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a user.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update saves a user.
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List queries users.
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		op := likeOperator(r.db)
		query = query.Where("email "+op+" ? OR display_name "+op+" ? OR referral_code "+op+" ?", like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReferredByID != 0 {
		query = query.Where("referred_by_id = ?", filter.ReferredByID)
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

	var users []models.User
	if err := query.Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountReferrals counts users referred by the given user.
func (r *GormUserRepository) CountReferrals(userID uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.User{}).Where("referred_by_id = ?", userID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// BatchUpdateStatus updates the status of many users. Disabling also
// revokes outstanding tokens.
func (r *GormUserRepository) BatchUpdateStatus(userIDs []uint, status string) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusDisabled {
		updates["token_invalid_before"] = now
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	return r.db.Model(&models.User{}).Where("id IN ?", userIDs).Updates(updates).Error
}
