package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponQuote is the outcome of validating a coupon against an amount.
type CouponQuote struct {
	Coupon      *models.Coupon `json:"coupon"`
	Discount    models.Money   `json:"discount"`
	FinalAmount models.Money   `json:"final_amount"`
}

// CouponService validates and redeems storefront coupons.
type CouponService struct {
	repo      repository.CouponRepository
	usageRepo repository.CouponUsageRepository
	audit     *AuditService
}

// NewCouponService creates the coupon service.
func NewCouponService(repo repository.CouponRepository, usageRepo repository.CouponUsageRepository, audit *AuditService) *CouponService {
	return &CouponService{
		repo:      repo,
		usageRepo: usageRepo,
		audit:     audit,
	}
}

// Validate checks a code against a plan and base amount and quotes the
// discount. It does not reserve usage; Redeem re-checks everything under
// locks inside the order transaction.
func (s *CouponService) Validate(code string, userID, planID uint, baseAmount decimal.Decimal) (*CouponQuote, error) {
	coupon, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	if err := s.check(coupon, userID, planID, baseAmount); err != nil {
		return nil, err
	}
	discount := s.discountFor(coupon, baseAmount)
	return &CouponQuote{
		Coupon:      coupon,
		Discount:    models.NewMoneyFromDecimal(discount),
		FinalAmount: models.NewMoneyFromDecimal(baseAmount.Sub(discount).Round(2)),
	}, nil
}

// RedeemTx consumes one use of the coupon inside the caller's order
// transaction. The per-user counter row is locked before the re-check and
// the global counter increments behind a usage_limit guard, so neither
// limit can be exceeded by concurrent redemptions.
func (s *CouponService) RedeemTx(tx *gorm.DB, code string, userID, planID, orderID uint, baseAmount decimal.Decimal) (*CouponQuote, error) {
	coupon, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	if err := s.check(coupon, userID, planID, baseAmount); err != nil {
		return nil, err
	}

	repoTx := s.repo.WithTx(tx)
	usageRepoTx := s.usageRepo.WithTx(tx)

	usage, err := usageRepoTx.GetByCouponAndUserForUpdate(coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if usage != nil && coupon.PerUserLimit > 0 && usage.UsageCount >= coupon.PerUserLimit {
		return nil, ErrCouponPerUserLimit
	}

	affected, err := repoTx.IncrementUsedCountGuarded(coupon.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCouponExhausted
	}

	now := time.Now()
	if usage == nil {
		usage = &models.CouponUsage{
			CouponID:    coupon.ID,
			UserID:      userID,
			UsageCount:  1,
			LastOrderID: &orderID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := usageRepoTx.Create(usage); err != nil {
			return nil, err
		}
	} else {
		usage.UsageCount++
		usage.LastOrderID = &orderID
		usage.UpdatedAt = now
		if err := usageRepoTx.Update(usage); err != nil {
			return nil, err
		}
	}

	s.audit.RecordTx(tx, AuditEntry{
		ActorType:  AuditActorUser,
		ActorID:    userID,
		Action:     constants.AuditActionCouponRedeemed,
		EntityType: "coupon",
		EntityID:   coupon.ID,
		Metadata: map[string]interface{}{
			"code":     coupon.Code,
			"order_id": orderID,
		},
	})

	discount := s.discountFor(coupon, baseAmount)
	return &CouponQuote{
		Coupon:      coupon,
		Discount:    models.NewMoneyFromDecimal(discount),
		FinalAmount: models.NewMoneyFromDecimal(baseAmount.Sub(discount).Round(2)),
	}, nil
}

// ReleaseTx gives back one use after an unpaid order is canceled. Runs in
// the cancel transaction.
func (s *CouponService) ReleaseTx(tx *gorm.DB, couponID, userID uint) error {
	if couponID == 0 {
		return nil
	}
	repoTx := s.repo.WithTx(tx)
	usageRepoTx := s.usageRepo.WithTx(tx)

	if err := repoTx.DecrementUsedCount(couponID, 1); err != nil {
		return err
	}
	usage, err := usageRepoTx.GetByCouponAndUserForUpdate(couponID, userID)
	if err != nil {
		return err
	}
	if usage == nil || usage.UsageCount <= 0 {
		return nil
	}
	usage.UsageCount--
	usage.UpdatedAt = time.Now()
	return usageRepoTx.Update(usage)
}

// GetByID fetches a coupon for the backoffice.
func (s *CouponService) GetByID(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponInvalid
	}
	return coupon, nil
}

// List queries coupons.
func (s *CouponService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

// Create registers a coupon. Codes are stored uppercase.
func (s *CouponService) Create(adminID uint, coupon *models.Coupon) error {
	coupon.Code = normalizeCouponCode(coupon.Code)
	if coupon.Code == "" {
		return ErrCouponInvalid
	}
	if coupon.Type != constants.CouponTypeFixed && coupon.Type != constants.CouponTypePercent {
		return ErrCouponInvalid
	}
	if err := validatePlanScope(coupon.PlanScopeIDs); err != nil {
		return err
	}
	existing, err := s.repo.GetByCode(coupon.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrCouponCodeExists
	}
	return s.repo.Create(coupon)
}

// Update saves coupon edits. The code itself is immutable once issued.
func (s *CouponService) Update(adminID uint, coupon *models.Coupon) error {
	if coupon == nil || coupon.ID == 0 {
		return ErrCouponInvalid
	}
	current, err := s.repo.GetByID(coupon.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrCouponInvalid
	}
	if err := validatePlanScope(coupon.PlanScopeIDs); err != nil {
		return err
	}
	coupon.Code = current.Code
	coupon.UsedCount = current.UsedCount
	coupon.CreatedAt = current.CreatedAt
	return s.repo.Update(coupon)
}

// Delete soft deletes a coupon. Past redemptions keep their records.
func (s *CouponService) Delete(adminID, id uint) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponInvalid
	}
	return s.repo.Delete(id)
}

func (s *CouponService) lookup(code string) (*models.Coupon, error) {
	code = normalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponInvalid
	}
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponInvalid
	}
	return coupon, nil
}

// check runs the stateless part of validation: active flag, validity
// window, plan scope, minimum amount, and the unlocked limit reads.
func (s *CouponService) check(coupon *models.Coupon, userID, planID uint, baseAmount decimal.Decimal) error {
	if !coupon.IsActive {
		return ErrCouponInvalid
	}
	now := time.Now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return ErrCouponExpired
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return ErrCouponExpired
	}
	if !couponAppliesToPlan(coupon.PlanScopeIDs, planID) {
		return ErrCouponNotApplicable
	}
	if coupon.MinAmount.Decimal.GreaterThan(decimal.Zero) && baseAmount.LessThan(coupon.MinAmount.Decimal) {
		return ErrCouponMinAmount
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return ErrCouponExhausted
	}
	if coupon.PerUserLimit > 0 && userID != 0 {
		usage, err := s.usageRepo.GetByCouponAndUser(coupon.ID, userID)
		if err != nil {
			return err
		}
		if usage != nil && usage.UsageCount >= coupon.PerUserLimit {
			return ErrCouponPerUserLimit
		}
	}
	return nil
}

// discountFor computes the discount, capped at the base amount and, for
// percent coupons, at MaxDiscount when set.
func (s *CouponService) discountFor(coupon *models.Coupon, baseAmount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.Type {
	case constants.CouponTypeFixed:
		discount = coupon.Value.Decimal
	case constants.CouponTypePercent:
		discount = baseAmount.Mul(coupon.Value.Decimal).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	default:
		return decimal.Zero
	}
	discount = discount.Round(2)
	if discount.GreaterThan(baseAmount) {
		discount = baseAmount
	}
	if discount.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return discount
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// couponAppliesToPlan parses the JSON plan scope. Empty means all plans.
func couponAppliesToPlan(scope string, planID uint) bool {
	scope = strings.TrimSpace(scope)
	if scope == "" || scope == "[]" {
		return true
	}
	var ids []uint
	if err := json.Unmarshal([]byte(scope), &ids); err != nil {
		return false
	}
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == planID {
			return true
		}
	}
	return false
}

func validatePlanScope(scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(scope), &ids); err != nil {
		return ErrCouponInvalid
	}
	return nil
}
