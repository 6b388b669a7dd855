package service

import (
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"

	"gorm.io/gorm"
)

const renewalScanBatch = 200

// SubscriptionService manages the membership lifecycle: activation on
// payment, cycle advancement, grace handling and cancellation.
type SubscriptionService struct {
	cfg   *config.Config
	repo  repository.SubscriptionRepository
	audit *AuditService
}

// NewSubscriptionService creates the subscription service.
func NewSubscriptionService(cfg *config.Config, repo repository.SubscriptionRepository, audit *AuditService) *SubscriptionService {
	return &SubscriptionService{
		cfg:   cfg,
		repo:  repo,
		audit: audit,
	}
}

// GetCurrent fetches the user's open subscription.
func (s *SubscriptionService) GetCurrent(userID uint) (*models.Subscription, error) {
	sub, err := s.repo.GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNone
	}
	return sub, nil
}

// List queries subscriptions for the backoffice.
func (s *SubscriptionService) List(filter repository.SubscriptionListFilter) ([]models.Subscription, int64, error) {
	return s.repo.List(filter)
}

// ActivateForPaidOrderTx creates or advances the buyer's subscription
// inside the payment transaction. A fresh signup starts trialing when
// the plan grants trial days; a renewal of the same plan extends the
// current period; paying for a different plan switches the subscription
// to it from now.
func (s *SubscriptionService) ActivateForPaidOrderTx(tx *gorm.DB, userID uint, plan *models.Plan, paidAt time.Time) (*models.Subscription, error) {
	if userID == 0 || plan == nil {
		return nil, ErrSubscriptionNone
	}
	repoTx := s.repo.WithTx(tx)

	sub, err := repoTx.GetActiveByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}

	if sub == nil {
		periodStart := paidAt
		periodEnd := addInterval(periodStart, plan.Interval)
		status := constants.SubscriptionStatusActive
		var trialEnd *time.Time
		if plan.TrialDays > 0 {
			status = constants.SubscriptionStatusTrialing
			end := paidAt.Add(time.Duration(plan.TrialDays) * 24 * time.Hour)
			trialEnd = &end
			periodEnd = addInterval(end, plan.Interval)
		}
		sub = &models.Subscription{
			UserID:             userID,
			PlanID:             plan.ID,
			Status:             status,
			CurrentPeriodStart: periodStart,
			CurrentPeriodEnd:   periodEnd,
			TrialEndsAt:        trialEnd,
		}
		if err := repoTx.Create(sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	// Renewal or plan switch. A renewal paid early extends from the
	// current period end instead of shortening the cycle.
	base := paidAt
	if sub.PlanID == plan.ID && sub.CurrentPeriodEnd.After(paidAt) {
		base = sub.CurrentPeriodEnd
	}
	sub.PlanID = plan.ID
	sub.Status = constants.SubscriptionStatusActive
	sub.CurrentPeriodStart = base
	sub.CurrentPeriodEnd = addInterval(base, plan.Interval)
	sub.CancelAtPeriodEnd = false
	sub.CanceledAt = nil
	sub.UpdatedAt = time.Now()
	if err := repoTx.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SetCancelAtPeriodEnd flags or unflags cancellation. Access continues
// until the paid period runs out.
func (s *SubscriptionService) SetCancelAtPeriodEnd(userID uint, cancel bool) (*models.Subscription, error) {
	sub, err := s.repo.GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNone
	}
	if sub.CancelAtPeriodEnd == cancel {
		return sub, nil
	}
	now := time.Now()
	sub.CancelAtPeriodEnd = cancel
	if cancel {
		sub.CanceledAt = &now
	} else {
		sub.CanceledAt = nil
	}
	sub.UpdatedAt = now
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	if cancel {
		s.audit.Record(AuditEntry{
			ActorType:  AuditActorUser,
			ActorID:    userID,
			Action:     constants.AuditActionSubscriptionCanceled,
			EntityType: "subscription",
			EntityID:   sub.ID,
		})
	}
	return sub, nil
}

// CancelNow terminates a subscription immediately. Backoffice only.
func (s *SubscriptionService) CancelNow(adminID, subscriptionID uint) (*models.Subscription, error) {
	sub, err := s.repo.GetByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNone
	}
	switch sub.Status {
	case constants.SubscriptionStatusCanceled, constants.SubscriptionStatusExpired:
		return nil, ErrSubscriptionState
	}
	now := time.Now()
	sub.Status = constants.SubscriptionStatusCanceled
	sub.CanceledAt = &now
	sub.UpdatedAt = now
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	s.audit.Record(AuditEntry{
		ActorType:  AuditActorAdmin,
		ActorID:    adminID,
		Action:     constants.AuditActionSubscriptionCanceled,
		EntityType: "subscription",
		EntityID:   sub.ID,
	})
	return sub, nil
}

// ScanRenewals advances the billing clock. Subscriptions past their
// period end become past_due, or canceled right away when the user asked
// to stop; past_due subscriptions beyond the grace window expire.
// Called periodically by the worker.
func (s *SubscriptionService) ScanRenewals(now time.Time) (int, error) {
	touched := 0

	due, err := s.repo.ListDueForRenewal(now, renewalScanBatch)
	if err != nil {
		return touched, err
	}
	for i := range due {
		sub := &due[i]
		if sub.CancelAtPeriodEnd {
			sub.Status = constants.SubscriptionStatusCanceled
			if sub.CanceledAt == nil {
				sub.CanceledAt = &now
			}
		} else {
			sub.Status = constants.SubscriptionStatusPastDue
		}
		sub.UpdatedAt = now
		if err := s.repo.Update(sub); err != nil {
			return touched, err
		}
		touched++
	}

	graceEnd := now.Add(-time.Duration(s.cfg.Subscription.GraceDays) * 24 * time.Hour)
	pastDue, err := s.repo.ListPastDueBefore(graceEnd, renewalScanBatch)
	if err != nil {
		return touched, err
	}
	for i := range pastDue {
		sub := &pastDue[i]
		sub.Status = constants.SubscriptionStatusExpired
		sub.UpdatedAt = now
		if err := s.repo.Update(sub); err != nil {
			return touched, err
		}
		touched++
	}
	return touched, nil
}

// addInterval advances one billing cycle using calendar months/years, so
// a monthly plan renews on the same day of month when it exists.
func addInterval(from time.Time, interval string) time.Time {
	switch interval {
	case constants.PlanIntervalYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
