package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/cache"
	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/queue"
	"github.com/assinahub/assinahub/internal/repository"

	"gorm.io/gorm"
)

// LGPDService runs the data-subject request workflow: access and
// portability exports, rectification, and erasure by anonymization.
type LGPDService struct {
	cfg            *config.Config
	repo           repository.LGPDRepository
	userRepo       repository.UserRepository
	subRepo        repository.SubscriptionRepository
	orderRepo      repository.OrderRepository
	commissionRepo repository.CommissionRepository
	bankRepo       repository.BankAccountRepository
	queueClient    *queue.Client
	audit          *AuditService
}

// NewLGPDService creates the LGPD service.
func NewLGPDService(
	cfg *config.Config,
	repo repository.LGPDRepository,
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	orderRepo repository.OrderRepository,
	commissionRepo repository.CommissionRepository,
	bankRepo repository.BankAccountRepository,
	queueClient *queue.Client,
	audit *AuditService,
) *LGPDService {
	return &LGPDService{
		cfg:            cfg,
		repo:           repo,
		userRepo:       userRepo,
		subRepo:        subRepo,
		orderRepo:      orderRepo,
		commissionRepo: commissionRepo,
		bankRepo:       bankRepo,
		queueClient:    queueClient,
		audit:          audit,
	}
}

// rectifiableFields limits what a rectification request may change.
var rectifiableFields = map[string]bool{
	"display_name": true,
	"document":     true,
	"phone":        true,
}

// CreateRequest opens a data-subject request. One open request per kind
// per user.
func (s *LGPDService) CreateRequest(userID uint, kind, reason, changes string) (*models.DataRequest, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	kind = strings.ToUpper(strings.TrimSpace(kind))
	switch kind {
	case constants.DataRequestKindAccess, constants.DataRequestKindRectification,
		constants.DataRequestKindErasure, constants.DataRequestKindPortability:
	default:
		return nil, ErrDataRequestKindInvalid
	}
	if kind == constants.DataRequestKindRectification {
		if err := validateRectificationChanges(changes); err != nil {
			return nil, err
		}
	} else {
		changes = ""
	}

	open, err := s.repo.HasOpenRequest(userID, kind)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrDataRequestOpen
	}

	req := &models.DataRequest{
		UserID:  userID,
		Kind:    kind,
		Status:  constants.DataRequestStatusPending,
		Reason:  strings.TrimSpace(reason),
		Changes: changes,
	}
	if err := s.repo.CreateRequest(req); err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActorType:  AuditActorUser,
		ActorID:    userID,
		Action:     constants.AuditActionDataRequestCreated,
		EntityType: "data_request",
		EntityID:   req.ID,
		Metadata:   map[string]interface{}{"kind": kind},
	})
	return req, nil
}

// GetRequest fetches one request, scoped to the owner when userID is set.
func (s *LGPDService) GetRequest(requestID, userID uint) (*models.DataRequest, error) {
	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || (userID != 0 && req.UserID != userID) {
		return nil, ErrDataRequestNotFound
	}
	return req, nil
}

// ListRequests queries requests.
func (s *LGPDService) ListRequests(filter repository.DataRequestListFilter) ([]models.DataRequest, int64, error) {
	return s.repo.ListRequests(filter)
}

// ApproveRequest executes a PENDING request under a row lock. Access and
// portability move to PROCESSING and hand off to the export worker;
// rectification and erasure complete synchronously.
func (s *LGPDService) ApproveRequest(adminID, requestID uint, note string) (*models.DataRequest, error) {
	var approved *models.DataRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		req, err := repoTx.GetRequestByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrDataRequestNotFound
		}
		if req.Status != constants.DataRequestStatusPending {
			return ErrDataRequestState
		}

		now := time.Now()
		switch req.Kind {
		case constants.DataRequestKindAccess, constants.DataRequestKindPortability:
			// Without a worker to build the export the request would
			// strand in PROCESSING, so refuse the approval up front.
			if !s.queueClient.Enabled() {
				return ErrQueueUnavailable
			}
			req.Status = constants.DataRequestStatusProcessing
		case constants.DataRequestKindRectification:
			if err := s.applyRectificationTx(tx, req); err != nil {
				return err
			}
			req.Status = constants.DataRequestStatusCompleted
		case constants.DataRequestKindErasure:
			if err := s.checkErasureExclusions(req.UserID); err != nil {
				return err
			}
			if err := s.anonymizeUserTx(tx, req.UserID); err != nil {
				return err
			}
			req.Status = constants.DataRequestStatusCompleted
		default:
			return ErrDataRequestKindInvalid
		}

		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		req.ReviewNote = strings.TrimSpace(note)
		req.UpdatedAt = now
		if err := repoTx.UpdateRequest(req); err != nil {
			return err
		}
		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approved.Status == constants.DataRequestStatusProcessing {
		if err := s.queueClient.EnqueueDataRequestExport(queue.DataRequestExportPayload{RequestID: approved.ID}); err != nil {
			return nil, err
		}
	}
	if approved.Kind == constants.DataRequestKindErasure {
		_ = cache.DelUserAuthState(context.Background(), approved.UserID)
		s.audit.Record(AuditEntry{
			ActorType:  AuditActorAdmin,
			ActorID:    adminID,
			Action:     constants.AuditActionUserAnonymized,
			EntityType: "user",
			EntityID:   approved.UserID,
		})
	}
	s.audit.Record(AuditEntry{
		ActorType:  AuditActorAdmin,
		ActorID:    adminID,
		Action:     constants.AuditActionDataRequestReviewed,
		EntityType: "data_request",
		EntityID:   approved.ID,
		Metadata: map[string]interface{}{
			"kind":   approved.Kind,
			"status": approved.Status,
		},
	})
	return approved, nil
}

// RejectRequest declines a PENDING request with a mandatory note.
func (s *LGPDService) RejectRequest(adminID, requestID uint, note string) (*models.DataRequest, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrDataRequestState
	}
	var rejected *models.DataRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		req, err := repoTx.GetRequestByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrDataRequestNotFound
		}
		if req.Status != constants.DataRequestStatusPending {
			return ErrDataRequestState
		}
		now := time.Now()
		req.Status = constants.DataRequestStatusRejected
		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		req.ReviewNote = note
		req.UpdatedAt = now
		if err := repoTx.UpdateRequest(req); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(AuditEntry{
		ActorType:  AuditActorAdmin,
		ActorID:    adminID,
		Action:     constants.AuditActionDataRequestReviewed,
		EntityType: "data_request",
		EntityID:   rejected.ID,
		Metadata: map[string]interface{}{
			"kind":   rejected.Kind,
			"status": rejected.Status,
		},
	})
	return rejected, nil
}

// CompleteExport records the export location and closes a PROCESSING
// request. Called by the worker after the bundle lands in storage.
func (s *LGPDService) CompleteExport(requestID uint, exportURL string) error {
	return s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		req, err := repoTx.GetRequestByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrDataRequestNotFound
		}
		if req.Status != constants.DataRequestStatusProcessing {
			return ErrDataRequestState
		}
		req.Status = constants.DataRequestStatusCompleted
		req.ExportURL = exportURL
		req.UpdatedAt = time.Now()
		return repoTx.UpdateRequest(req)
	})
}

// ExportBundle is the subject's data package for access/portability.
type ExportBundle struct {
	GeneratedAt   time.Time             `json:"generated_at"`
	User          *models.User          `json:"user"`
	Addresses     []models.Address      `json:"addresses"`
	Consents      []models.Consent      `json:"consents"`
	Subscriptions []models.Subscription `json:"subscriptions"`
	Orders        []models.Order        `json:"orders"`
	Commissions   []models.Commission   `json:"commissions"`
}

// BuildExportBundle collects everything held about the subject.
func (s *LGPDService) BuildExportBundle(userID uint) (*ExportBundle, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	addresses, err := s.repo.ListAddressesByUser(userID)
	if err != nil {
		return nil, err
	}
	consents, err := s.repo.ListConsentsByUser(userID)
	if err != nil {
		return nil, err
	}
	subs, _, err := s.subRepo.List(repository.SubscriptionListFilter{UserID: userID, PageSize: -1})
	if err != nil {
		return nil, err
	}
	orders, _, err := s.orderRepo.List(repository.OrderListFilter{UserID: userID, PageSize: -1})
	if err != nil {
		return nil, err
	}
	commissions, _, err := s.commissionRepo.ListCommissions(repository.CommissionListFilter{EarnerUserID: userID, PageSize: -1})
	if err != nil {
		return nil, err
	}
	return &ExportBundle{
		GeneratedAt:   time.Now(),
		User:          user,
		Addresses:     addresses,
		Consents:      consents,
		Subscriptions: subs,
		Orders:        orders,
		Commissions:   commissions,
	}, nil
}

// checkErasureExclusions enforces the three legal grounds for refusing
// erasure: an open subscription, an open withdrawal, and paid orders
// inside the fiscal retention window.
func (s *LGPDService) checkErasureExclusions(userID uint) error {
	openSub, err := s.subRepo.HasNonTerminalByUserID(userID)
	if err != nil {
		return err
	}
	if openSub {
		return ErrErasureActiveSubscription
	}
	openWithdrawal, err := s.commissionRepo.HasOpenWithdrawalByUser(userID)
	if err != nil {
		return err
	}
	if openWithdrawal {
		return ErrErasurePendingWithdrawal
	}
	months := s.cfg.LGPD.FiscalRetentionMonths
	if months > 0 {
		since := time.Now().AddDate(0, -months, 0)
		recentPaid, err := s.orderRepo.CountPaidByUserSince(userID, since)
		if err != nil {
			return err
		}
		if recentPaid > 0 {
			return ErrErasureFiscalRetention
		}
	}
	return nil
}

// anonymizeUserTx scrubs the account in place. Financial rows survive
// keyed to the anonymized id; PII satellites are hard-deleted; the
// bumped token version kills every outstanding session.
func (s *LGPDService) anonymizeUserTx(tx *gorm.DB, userID uint) error {
	userRepoTx := s.userRepo.WithTx(tx)
	repoTx := s.repo.WithTx(tx)
	bankRepoTx := s.bankRepo.WithTx(tx)

	user, err := userRepoTx.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	now := time.Now()
	user.DisplayName = constants.AnonymizedName
	user.Email = fmt.Sprintf(constants.AnonymizedEmailFmt, user.ID)
	user.Document = ""
	user.Phone = ""
	user.Status = constants.UserStatusAnonymized
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	user.AnonymizedAt = &now
	user.UpdatedAt = now
	if err := userRepoTx.Update(user); err != nil {
		return err
	}

	if err := repoTx.HardDeleteAddressesByUser(userID); err != nil {
		return err
	}
	if err := repoTx.HardDeleteConsentsByUser(userID); err != nil {
		return err
	}
	return bankRepoTx.DeleteByUserID(userID)
}

// applyRectificationTx writes the approved field changes to the account.
func (s *LGPDService) applyRectificationTx(tx *gorm.DB, req *models.DataRequest) error {
	changes, err := parseRectificationChanges(req.Changes)
	if err != nil {
		return err
	}
	userRepoTx := s.userRepo.WithTx(tx)
	user, err := userRepoTx.GetByID(req.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	for field, value := range changes {
		switch field {
		case "display_name":
			user.DisplayName = value
		case "document":
			user.Document = value
		case "phone":
			user.Phone = value
		}
	}
	user.UpdatedAt = time.Now()
	return userRepoTx.Update(user)
}

func parseRectificationChanges(raw string) (map[string]string, error) {
	var changes map[string]string
	if err := json.Unmarshal([]byte(raw), &changes); err != nil {
		return nil, ErrDataRequestState
	}
	for field := range changes {
		if !rectifiableFields[field] {
			return nil, ErrDataRequestState
		}
	}
	if len(changes) == 0 {
		return nil, ErrDataRequestState
	}
	return changes, nil
}

func validateRectificationChanges(raw string) error {
	_, err := parseRectificationChanges(raw)
	return err
}
