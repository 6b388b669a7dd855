package repository

import (
	"errors"
	"strings"

	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
)

// PlanRepository is the plan data access interface.
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetBySlug(slug string) (*models.Plan, error)
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	Delete(id uint) error
	List(filter PlanListFilter) ([]models.Plan, int64, error)
}

// GormPlanRepository is the GORM implementation.
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates the plan repository.
func NewPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// GetByID fetches a plan by id.
func (r *GormPlanRepository) GetByID(id uint) (*models.Plan, error) {
	if id == 0 {
		return nil, nil
	}
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// GetBySlug fetches a plan by slug.
func (r *GormPlanRepository) GetBySlug(slug string) (*models.Plan, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" {
		return nil, nil
	}
	var plan models.Plan
	if err := r.db.Where("slug = ?", normalized).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// Create inserts a plan.
func (r *GormPlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// Update saves a plan.
func (r *GormPlanRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Delete soft deletes a plan.
func (r *GormPlanRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Plan{}, id).Error
}

// List queries plans.
func (r *GormPlanRepository) List(filter PlanListFilter) ([]models.Plan, int64, error) {
	query := r.db.Model(&models.Plan{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		op := likeOperator(r.db)
		query = query.Where("name "+op+" ? OR slug "+op+" ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var plans []models.Plan
	if err := query.Order("sort_order asc, id asc").Find(&plans).Error; err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}
