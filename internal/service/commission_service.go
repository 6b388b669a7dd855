package service

import (
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionSummary aggregates a referrer's ledger by status.
type CommissionSummary struct {
	ReferralCount int64        `json:"referral_count"`
	Pending       models.Money `json:"pending"`
	Available     models.Money `json:"available"`
	Requested     models.Money `json:"requested"`
	Paid          models.Money `json:"paid"`
}

// CommissionService owns the referral commission ledger.
type CommissionService struct {
	cfg      *config.Config
	repo     repository.CommissionRepository
	userRepo repository.UserRepository
	audit    *AuditService
}

// NewCommissionService creates the commission service.
func NewCommissionService(cfg *config.Config, repo repository.CommissionRepository, userRepo repository.UserRepository, audit *AuditService) *CommissionService {
	return &CommissionService{
		cfg:      cfg,
		repo:     repo,
		userRepo: userRepo,
		audit:    audit,
	}
}

// HandleOrderPaidTx creates the commission for a freshly paid order,
// inside the payment transaction. The caller guarantees the order just
// transitioned to paid under a row lock, so at most one commission per
// order is ever generated. No-op when the buyer has no referrer.
func (s *CommissionService) HandleOrderPaidTx(tx *gorm.DB, order *models.Order) error {
	if s == nil || order == nil || order.ID == 0 {
		return nil
	}
	rate := decimal.NewFromFloat(s.cfg.Affiliate.RatePercent).Round(2)
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	repoTx := s.repo.WithTx(tx)
	userRepoTx := s.userRepo.WithTx(tx)

	buyer, err := userRepoTx.GetByID(order.UserID)
	if err != nil {
		return err
	}
	if buyer == nil || buyer.ReferredByID == nil || *buyer.ReferredByID == 0 {
		return nil
	}
	earner, err := userRepoTx.GetByID(*buyer.ReferredByID)
	if err != nil {
		return err
	}
	// A disabled or anonymized referrer earns nothing, silently.
	if earner == nil || strings.ToLower(earner.Status) != constants.UserStatusActive {
		return nil
	}

	existing, err := repoTx.GetCommissionByEarnerAndOrder(earner.ID, order.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	baseAmount := order.TotalAmount.Decimal.Round(2)
	if baseAmount.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	amount := baseAmount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	paidAt := time.Now()
	if order.PaidAt != nil {
		paidAt = *order.PaidAt
	}
	status := constants.CommissionStatusPending
	availableAt := paidAt.Add(time.Duration(s.cfg.Affiliate.HoldDays) * 24 * time.Hour)
	if s.cfg.Affiliate.HoldDays <= 0 {
		status = constants.CommissionStatusAvailable
		availableAt = paidAt
	}

	commission := &models.Commission{
		EarnerUserID: earner.ID,
		SourceUserID: order.UserID,
		OrderID:      order.ID,
		BaseAmount:   models.NewMoneyFromDecimal(baseAmount),
		RatePercent:  models.NewMoneyFromDecimal(rate),
		Amount:       models.NewMoneyFromDecimal(amount),
		Status:       status,
		AvailableAt:  &availableAt,
	}
	if err := repoTx.CreateCommission(commission); err != nil {
		return err
	}

	s.audit.RecordTx(tx, AuditEntry{
		ActorType:  AuditActorSystem,
		Action:     constants.AuditActionCommissionCreated,
		EntityType: "commission",
		EntityID:   commission.ID,
		Metadata: map[string]interface{}{
			"earner_user_id": earner.ID,
			"order_id":       order.ID,
			"amount":         amount.StringFixed(2),
		},
	})
	return nil
}

// ReleaseDueCommissions moves PENDING rows whose hold expired to
// AVAILABLE. Called by the worker ticker and before withdrawals.
func (s *CommissionService) ReleaseDueCommissions(now time.Time) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, nil
	}
	released, err := s.repo.MarkPendingCommissionsAvailable(now, now)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		s.audit.Record(AuditEntry{
			ActorType: AuditActorSystem,
			Action:    constants.AuditActionCommissionReleased,
			Metadata:  map[string]interface{}{"released": released},
		})
	}
	return released, nil
}

// GetSummary aggregates the earner's ledger. REQUESTED amounts stay out
// of the available balance until the withdrawal resolves.
func (s *CommissionService) GetSummary(userID uint) (CommissionSummary, error) {
	summary := CommissionSummary{
		Pending:   models.NewMoneyFromDecimal(decimal.Zero),
		Available: models.NewMoneyFromDecimal(decimal.Zero),
		Requested: models.NewMoneyFromDecimal(decimal.Zero),
		Paid:      models.NewMoneyFromDecimal(decimal.Zero),
	}
	if s == nil || userID == 0 {
		return summary, nil
	}

	referrals, err := s.userRepo.CountReferrals(userID)
	if err != nil {
		return summary, err
	}
	totals, err := s.repo.SumCommissionByStatusGrouped(userID)
	if err != nil {
		return summary, err
	}
	available, err := s.repo.SumCommissionByEarner(userID, []string{constants.CommissionStatusAvailable}, true)
	if err != nil {
		return summary, err
	}

	summary.ReferralCount = referrals
	summary.Pending = models.NewMoneyFromDecimal(totals[constants.CommissionStatusPending])
	summary.Available = models.NewMoneyFromDecimal(available)
	summary.Requested = models.NewMoneyFromDecimal(totals[constants.CommissionStatusRequested])
	summary.Paid = models.NewMoneyFromDecimal(totals[constants.CommissionStatusPaid])
	return summary, nil
}

// AvailableBalance sums the earner's withdrawable amount.
func (s *CommissionService) AvailableBalance(userID uint) (decimal.Decimal, error) {
	if s == nil || userID == 0 {
		return decimal.Zero, nil
	}
	return s.repo.SumCommissionByEarner(userID, []string{constants.CommissionStatusAvailable}, true)
}

// ListUserCommissions lists the earner's ledger rows.
func (s *CommissionService) ListUserCommissions(userID uint, page, pageSize int, status string) ([]models.Commission, int64, error) {
	if s == nil || userID == 0 {
		return []models.Commission{}, 0, nil
	}
	return s.repo.ListCommissions(repository.CommissionListFilter{
		Page:         page,
		PageSize:     pageSize,
		EarnerUserID: userID,
		Status:       strings.ToUpper(strings.TrimSpace(status)),
	})
}

// ListCommissions queries the ledger for the backoffice.
func (s *CommissionService) ListCommissions(filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	if s == nil {
		return []models.Commission{}, 0, nil
	}
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	return s.repo.ListCommissions(filter)
}

// CancelCommission voids a ledger row that has not entered a withdrawal.
func (s *CommissionService) CancelCommission(adminID, commissionID uint, reason string) (*models.Commission, error) {
	if s == nil || commissionID == 0 {
		return nil, ErrCommissionNotFound
	}
	commission, err := s.repo.GetCommissionByID(commissionID)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, ErrCommissionNotFound
	}
	switch commission.Status {
	case constants.CommissionStatusPending, constants.CommissionStatusAvailable:
	default:
		return nil, ErrCommissionState
	}
	if commission.WithdrawalRequestID != nil {
		return nil, ErrCommissionState
	}

	commission.Status = constants.CommissionStatusCanceled
	commission.CancelReason = strings.TrimSpace(reason)
	commission.UpdatedAt = time.Now()
	if err := s.repo.UpdateCommission(commission); err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActorType:  AuditActorAdmin,
		ActorID:    adminID,
		Action:     constants.AuditActionCommissionCanceled,
		EntityType: "commission",
		EntityID:   commission.ID,
		Metadata:   map[string]interface{}{"reason": commission.CancelReason},
	})
	return commission, nil
}
