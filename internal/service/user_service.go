package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/cache"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"
)

var bankDocPattern = regexp.MustCompile(`^\d{11}$|^\d{14}$`) // CPF or CNPJ, digits only

// UserService covers backoffice account management and the user's payout
// destination.
type UserService struct {
	repo     repository.UserRepository
	bankRepo repository.BankAccountRepository
	audit    *AuditService
}

// NewUserService creates the user service.
func NewUserService(repo repository.UserRepository, bankRepo repository.BankAccountRepository, audit *AuditService) *UserService {
	return &UserService{
		repo:     repo,
		bankRepo: bankRepo,
		audit:    audit,
	}
}

// GetByID fetches an account.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List queries accounts for the backoffice.
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.repo.List(filter)
}

// SetStatus enables or disables an account. Disabling bumps the token
// version so live sessions die immediately.
func (s *UserService) SetStatus(adminID, userID uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrNotFound
	}
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	// Anonymized accounts stay frozen.
	if user.Status == constants.UserStatusAnonymized {
		return nil, ErrUserDisabled
	}
	if user.Status == status {
		return user, nil
	}

	now := time.Now()
	user.Status = status
	if status == constants.UserStatusDisabled {
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	user.UpdatedAt = now
	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	return user, nil
}

// GetBankAccount fetches the user's payout destination, nil when unset.
func (s *UserService) GetBankAccount(userID uint) (*models.BankAccount, error) {
	return s.bankRepo.GetByUserID(userID)
}

// BankAccountInput is the payout destination payload.
type BankAccountInput struct {
	HolderName string
	HolderDoc  string
	BankCode   string
	Branch     string
	AccountNo  string
	PixKey     string
}

// UpsertBankAccount saves the user's payout destination. Requires the
// holder identity plus either a PIX key or full bank coordinates.
func (s *UserService) UpsertBankAccount(userID uint, input BankAccountInput) (*models.BankAccount, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	holderName := strings.TrimSpace(input.HolderName)
	holderDoc := onlyDigits(input.HolderDoc)
	pixKey := strings.TrimSpace(input.PixKey)
	bankCode := strings.TrimSpace(input.BankCode)
	branch := strings.TrimSpace(input.Branch)
	accountNo := strings.TrimSpace(input.AccountNo)

	if holderName == "" || !bankDocPattern.MatchString(holderDoc) {
		return nil, ErrBankAccountInvalid
	}
	hasBank := bankCode != "" && branch != "" && accountNo != ""
	if pixKey == "" && !hasBank {
		return nil, ErrBankAccountInvalid
	}

	account := &models.BankAccount{
		UserID:     userID,
		HolderName: holderName,
		HolderDoc:  holderDoc,
		BankCode:   bankCode,
		Branch:     branch,
		AccountNo:  accountNo,
		PixKey:     pixKey,
	}
	if err := s.bankRepo.Upsert(account); err != nil {
		return nil, err
	}
	return account, nil
}

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
