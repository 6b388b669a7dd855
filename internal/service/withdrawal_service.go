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

// WithdrawalService drives the withdrawal request lifecycle. Every state
// transition that touches commission rows runs inside a transaction with
// the relevant rows locked, so two concurrent requests can never spend
// the same commission twice.
type WithdrawalService struct {
	cfg        *config.Config
	repo       repository.CommissionRepository
	bankRepo   repository.BankAccountRepository
	commission *CommissionService
	audit      *AuditService
}

// NewWithdrawalService creates the withdrawal service.
func NewWithdrawalService(cfg *config.Config, repo repository.CommissionRepository, bankRepo repository.BankAccountRepository, commission *CommissionService, audit *AuditService) *WithdrawalService {
	return &WithdrawalService{
		cfg:        cfg,
		repo:       repo,
		bankRepo:   bankRepo,
		commission: commission,
		audit:      audit,
	}
}

// Request opens a withdrawal for the given amount against the user's
// AVAILABLE balance. Inside one transaction it locks the earner's
// unbound AVAILABLE rows, re-checks the single-open-request rule, picks
// rows oldest first until the amount is covered, splits the boundary row
// when it overshoots, snapshots the bank account, and binds the selected
// rows to the new PENDING request.
func (s *WithdrawalService) Request(userID uint, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	amount = amount.Round(2)
	minAmount := decimal.NewFromFloat(s.cfg.Affiliate.MinWithdrawAmount).Round(2)
	if amount.LessThanOrEqual(decimal.Zero) || amount.LessThan(minAmount) {
		return nil, ErrWithdrawalBelowMinimum
	}

	bank, err := s.bankRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if bank == nil || strings.TrimSpace(bank.HolderName) == "" || strings.TrimSpace(bank.HolderDoc) == "" {
		return nil, ErrWithdrawalNoBankAccount
	}

	// Release overdue holds first so the freshest balance is withdrawable.
	if _, err := s.commission.ReleaseDueCommissions(time.Now()); err != nil {
		return nil, err
	}

	var created *models.WithdrawalRequest
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		rows, err := repoTx.ListAvailableCommissionsForUpdate(userID)
		if err != nil {
			return err
		}
		// Re-checked under the lock: a request racing this one either
		// sees our bound rows or we see its open request here.
		open, err := repoTx.HasOpenWithdrawalByUser(userID)
		if err != nil {
			return err
		}
		if open {
			return ErrWithdrawalAlreadyOpen
		}

		available := decimal.Zero
		for _, row := range rows {
			available = available.Add(row.Amount.Decimal)
		}
		if available.LessThan(amount) {
			return ErrWithdrawalInsufficient
		}

		selected := make([]uint, 0, len(rows))
		remaining := amount
		now := time.Now()
		for _, row := range rows {
			if remaining.LessThanOrEqual(decimal.Zero) {
				break
			}
			rowAmount := row.Amount.Decimal.Round(2)
			if rowAmount.LessThanOrEqual(remaining) {
				selected = append(selected, row.ID)
				remaining = remaining.Sub(rowAmount)
				continue
			}
			// Boundary row covers more than needed: shrink it to the
			// needed slice and push the remainder into a sibling row
			// that stays AVAILABLE.
			leftover := rowAmount.Sub(remaining).Round(2)
			remainder := &models.Commission{
				EarnerUserID: row.EarnerUserID,
				SourceUserID: row.SourceUserID,
				OrderID:      row.OrderID,
				BaseAmount:   row.BaseAmount,
				RatePercent:  row.RatePercent,
				Amount:       models.NewMoneyFromDecimal(leftover),
				Status:       constants.CommissionStatusAvailable,
				AvailableAt:  row.AvailableAt,
			}
			if err := repoTx.CreateCommission(remainder); err != nil {
				return err
			}
			shrunk := row
			shrunk.Amount = models.NewMoneyFromDecimal(remaining)
			shrunk.UpdatedAt = now
			if err := repoTx.UpdateCommission(&shrunk); err != nil {
				return err
			}
			selected = append(selected, row.ID)
			remaining = decimal.Zero
		}
		if remaining.GreaterThan(decimal.Zero) {
			return ErrWithdrawalInsufficient
		}

		req := &models.WithdrawalRequest{
			UserID:         userID,
			Amount:         models.NewMoneyFromDecimal(amount),
			Status:         constants.WithdrawalStatusPending,
			BankHolderName: bank.HolderName,
			BankHolderDoc:  bank.HolderDoc,
			BankCode:       bank.BankCode,
			BankBranch:     bank.Branch,
			BankAccountNo:  bank.AccountNo,
			PixKey:         bank.PixKey,
		}
		if err := repoTx.CreateWithdrawal(req); err != nil {
			return err
		}
		if err := repoTx.BatchUpdateCommissions(selected, map[string]interface{}{
			"status":                constants.CommissionStatusRequested,
			"withdrawal_request_id": req.ID,
			"updated_at":            now,
		}); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActorType:  AuditActorUser,
		ActorID:    userID,
		Action:     constants.AuditActionWithdrawalRequested,
		EntityType: "withdrawal_request",
		EntityID:   created.ID,
		Metadata:   map[string]interface{}{"amount": amount.StringFixed(2)},
	})
	return created, nil
}

// CancelByUser lets the requester back out of a still-PENDING request.
// Bound commissions return to AVAILABLE.
func (s *WithdrawalService) CancelByUser(userID, withdrawalID uint) (*models.WithdrawalRequest, error) {
	if userID == 0 || withdrawalID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	var canceled *models.WithdrawalRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		req, err := repoTx.GetWithdrawalByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if req == nil || req.UserID != userID {
			return ErrWithdrawalNotFound
		}
		if req.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalState
		}
		if err := s.unbindCommissions(repoTx, req.ID); err != nil {
			return err
		}
		req.Status = constants.WithdrawalStatusCanceled
		req.UpdatedAt = time.Now()
		if err := repoTx.UpdateWithdrawal(req); err != nil {
			return err
		}
		canceled = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActorType:  AuditActorUser,
		ActorID:    userID,
		Action:     constants.AuditActionWithdrawalCanceled,
		EntityType: "withdrawal_request",
		EntityID:   canceled.ID,
	})
	return canceled, nil
}

// Review applies one backoffice action to a withdrawal request.
// Transitions: approve PENDING→APPROVED, reject PENDING|APPROVED→
// REJECTED, process APPROVED→PROCESSING, pay PROCESSING→PAID. PAID,
// REJECTED and CANCELED are terminal.
func (s *WithdrawalService) Review(adminID, withdrawalID uint, action, note string) (*models.WithdrawalRequest, error) {
	if withdrawalID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	action = strings.ToLower(strings.TrimSpace(action))
	switch action {
	case constants.WithdrawalActionApprove, constants.WithdrawalActionReject,
		constants.WithdrawalActionProcess, constants.WithdrawalActionPay:
	default:
		return nil, ErrWithdrawalActionInvalid
	}

	var reviewed *models.WithdrawalRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		req, err := repoTx.GetWithdrawalByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrWithdrawalNotFound
		}

		now := time.Now()
		switch action {
		case constants.WithdrawalActionApprove:
			if req.Status != constants.WithdrawalStatusPending {
				return ErrWithdrawalState
			}
			req.Status = constants.WithdrawalStatusApproved
		case constants.WithdrawalActionReject:
			if req.Status != constants.WithdrawalStatusPending && req.Status != constants.WithdrawalStatusApproved {
				return ErrWithdrawalState
			}
			if err := s.unbindCommissions(repoTx, req.ID); err != nil {
				return err
			}
			req.Status = constants.WithdrawalStatusRejected
		case constants.WithdrawalActionProcess:
			if req.Status != constants.WithdrawalStatusApproved {
				return ErrWithdrawalState
			}
			req.Status = constants.WithdrawalStatusProcessing
		case constants.WithdrawalActionPay:
			if req.Status != constants.WithdrawalStatusProcessing {
				return ErrWithdrawalState
			}
			rows, err := repoTx.ListCommissionsByWithdrawalIDForUpdate(req.ID)
			if err != nil {
				return err
			}
			ids := make([]uint, 0, len(rows))
			for _, row := range rows {
				ids = append(ids, row.ID)
			}
			if err := repoTx.BatchUpdateCommissions(ids, map[string]interface{}{
				"status":     constants.CommissionStatusPaid,
				"paid_at":    now,
				"updated_at": now,
			}); err != nil {
				return err
			}
			req.Status = constants.WithdrawalStatusPaid
			req.PaidAt = &now
		}

		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		if trimmed := strings.TrimSpace(note); trimmed != "" {
			req.ReviewNote = trimmed
		}
		req.UpdatedAt = now
		if err := repoTx.UpdateWithdrawal(req); err != nil {
			return err
		}
		reviewed = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActorType:  AuditActorAdmin,
		ActorID:    adminID,
		Action:     constants.AuditActionWithdrawalReviewed,
		EntityType: "withdrawal_request",
		EntityID:   reviewed.ID,
		Metadata: map[string]interface{}{
			"action": action,
			"status": reviewed.Status,
		},
	})
	return reviewed, nil
}

// GetByID fetches one request, scoped to the owner when userID is set.
func (s *WithdrawalService) GetByID(withdrawalID, userID uint) (*models.WithdrawalRequest, error) {
	req, err := s.repo.GetWithdrawalByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if req == nil || (userID != 0 && req.UserID != userID) {
		return nil, ErrWithdrawalNotFound
	}
	return req, nil
}

// ListUserWithdrawals lists the user's own requests.
func (s *WithdrawalService) ListUserWithdrawals(userID uint, page, pageSize int, status string) ([]models.WithdrawalRequest, int64, error) {
	if userID == 0 {
		return []models.WithdrawalRequest{}, 0, nil
	}
	return s.repo.ListWithdrawals(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.ToUpper(strings.TrimSpace(status)),
	})
}

// ListWithdrawals queries requests for the backoffice.
func (s *WithdrawalService) ListWithdrawals(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	return s.repo.ListWithdrawals(filter)
}

// unbindCommissions returns a request's bound rows to AVAILABLE.
func (s *WithdrawalService) unbindCommissions(repoTx repository.CommissionRepository, withdrawalID uint) error {
	rows, err := repoTx.ListCommissionsByWithdrawalIDForUpdate(withdrawalID)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return repoTx.BatchUpdateCommissions(ids, map[string]interface{}{
		"status":                constants.CommissionStatusAvailable,
		"withdrawal_request_id": nil,
		"updated_at":            time.Now(),
	})
}
