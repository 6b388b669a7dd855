package service

import (
	"regexp"
	"strings"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"
)

var planSlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PlanService manages the subscription plan catalog.
type PlanService struct {
	repo    repository.PlanRepository
	subRepo repository.SubscriptionRepository
}

// NewPlanService creates the plan service.
func NewPlanService(repo repository.PlanRepository, subRepo repository.SubscriptionRepository) *PlanService {
	return &PlanService{
		repo:    repo,
		subRepo: subRepo,
	}
}

// GetByID fetches a plan.
func (s *PlanService) GetByID(id uint) (*models.Plan, error) {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// GetActiveBySlug fetches a storefront-visible plan by slug.
func (s *PlanService) GetActiveBySlug(slug string) (*models.Plan, error) {
	plan, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	return plan, nil
}

// ListActive lists storefront-visible plans in sort order.
func (s *PlanService) ListActive(page, pageSize int) ([]models.Plan, int64, error) {
	return s.repo.List(repository.PlanListFilter{
		Page:       page,
		PageSize:   pageSize,
		OnlyActive: true,
	})
}

// List queries all plans for the backoffice.
func (s *PlanService) List(filter repository.PlanListFilter) ([]models.Plan, int64, error) {
	return s.repo.List(filter)
}

// Create registers a plan. Slugs are normalized lowercase and unique.
func (s *PlanService) Create(plan *models.Plan) error {
	if err := normalizePlan(plan); err != nil {
		return err
	}
	existing, err := s.repo.GetBySlug(plan.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrPlanSlugExists
	}
	return s.repo.Create(plan)
}

// Update saves plan edits. A slug change must not collide.
func (s *PlanService) Update(plan *models.Plan) error {
	if plan == nil || plan.ID == 0 {
		return ErrPlanNotFound
	}
	current, err := s.repo.GetByID(plan.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrPlanNotFound
	}
	if err := normalizePlan(plan); err != nil {
		return err
	}
	if plan.Slug != current.Slug {
		existing, err := s.repo.GetBySlug(plan.Slug)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != plan.ID {
			return ErrPlanSlugExists
		}
	}
	plan.CreatedAt = current.CreatedAt
	return s.repo.Update(plan)
}

// Delete soft deletes a plan with no open subscriptions. Existing
// subscribers keep plans alive; deactivate instead to stop new signups.
func (s *PlanService) Delete(id uint) error {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if plan == nil {
		return ErrPlanNotFound
	}
	_, total, err := s.subRepo.List(repository.SubscriptionListFilter{PlanID: id, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return ErrPlanInUse
	}
	return s.repo.Delete(id)
}

func normalizePlan(plan *models.Plan) error {
	if plan == nil {
		return ErrPlanInvalid
	}
	plan.Name = strings.TrimSpace(plan.Name)
	plan.Slug = strings.ToLower(strings.TrimSpace(plan.Slug))
	if plan.Name == "" || !planSlugPattern.MatchString(plan.Slug) {
		return ErrPlanInvalid
	}
	switch plan.Interval {
	case constants.PlanIntervalMonthly, constants.PlanIntervalYearly:
	default:
		return ErrPlanInvalid
	}
	if plan.Price.Decimal.IsNegative() || plan.TrialDays < 0 {
		return ErrPlanInvalid
	}
	return nil
}
