package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/cache"
	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const referralCodeMaxRetry = 8

// UserAuthService handles user registration, login and tokens.
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	lgpdRepo repository.LGPDRepository
}

// NewUserAuthService creates the user auth service.
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, lgpdRepo repository.LGPDRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		lgpdRepo: lgpdRepo,
	}
}

// UserJWTClaims are the user token claims.
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// UserRegisterInput is the registration payload.
type UserRegisterInput struct {
	Email           string
	Password        string
	DisplayName     string
	ReferralCode    string
	TermsVersion    string
	MarketingOptIn  bool
	ClientIP        string
	PreferredLocale string
}

// GenerateUserJWT issues a user token. expireHours <= 0 uses the
// configured default.
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg.UserJWT)
	}
	expiresAt := time.Now().Add(time.Duration(resolvedHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT validates and parses a user token.
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Register creates an account. The referral code, when present, must
// resolve to an active user; the new account gets its own generated
// code, so self-referral is impossible.
func (s *UserAuthService) Register(input UserRegisterInput) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	var referredByID *uint
	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		referrer, err := s.userRepo.GetByReferralCode(code)
		if err != nil {
			return nil, "", time.Time{}, err
		}
		if referrer == nil || strings.ToLower(referrer.Status) != constants.UserStatusActive {
			return nil, "", time.Time{}, ErrReferralCodeInvalid
		}
		id := referrer.ID
		referredByID = &id
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = resolveNameFromEmail(normalized)
	}
	locale := strings.TrimSpace(input.PreferredLocale)
	if locale == "" {
		locale = constants.LocalePtBR
	}

	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
		Locale:       locale,
		Status:       constants.UserStatusActive,
		ReferredByID: referredByID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.createWithReferralCode(user); err != nil {
		return nil, "", time.Time{}, err
	}

	s.recordRegistrationConsents(user, input, now)

	token, expiresAt, err := s.GenerateUserJWT(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, token, expiresAt, nil
}

// Login authenticates a user and issues a token.
func (s *UserAuthService) Login(email, password string, remember bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	expireHours := resolveUserJWTExpireHours(s.cfg.UserJWT)
	if remember {
		expireHours = resolveRefreshExpireHours(s.cfg.UserJWT)
	}
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, token, expiresAt, nil
}

// Refresh re-issues a token for a still-active session.
func (s *UserAuthService) Refresh(userID uint) (string, time.Time, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if user == nil {
		return "", time.Time{}, ErrNotFound
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return "", time.Time{}, ErrUserDisabled
	}
	return s.GenerateUserJWT(user, 0)
}

// ChangePassword rotates the password and revokes issued tokens.
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	now := time.Now()
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateProfile updates display name, locale, document or phone.
func (s *UserAuthService) UpdateProfile(userID uint, displayName, locale, document, phone *string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if displayName != nil {
		if trimmed := strings.TrimSpace(*displayName); trimmed != "" {
			user.DisplayName = trimmed
		}
	}
	if locale != nil {
		if trimmed := strings.TrimSpace(*locale); trimmed != "" {
			user.Locale = trimmed
		}
	}
	if document != nil {
		user.Document = strings.TrimSpace(*document)
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID fetches a user.
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

// createWithReferralCode retries on referral-code collisions.
func (s *UserAuthService) createWithReferralCode(user *models.User) error {
	for i := 0; i < referralCodeMaxRetry; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return err
		}
		user.ReferralCode = code
		if err := s.userRepo.Create(user); err != nil {
			if isUniqueViolation(err) && user.ID == 0 {
				continue
			}
			return err
		}
		return nil
	}
	return errors.New("referral code generation exhausted retries")
}

func (s *UserAuthService) recordRegistrationConsents(user *models.User, input UserRegisterInput, now time.Time) {
	if s.lgpdRepo == nil || user == nil || user.ID == 0 {
		return
	}
	version := strings.TrimSpace(input.TermsVersion)
	if version == "" {
		version = "1"
	}
	// Consent write failures must not abort registration.
	_ = s.lgpdRepo.CreateConsent(&models.Consent{
		UserID:    user.ID,
		Kind:      constants.ConsentKindTerms,
		Version:   version,
		Granted:   true,
		GrantedAt: now,
		IPAddress: strings.TrimSpace(input.ClientIP),
	})
	if input.MarketingOptIn {
		_ = s.lgpdRepo.CreateConsent(&models.Consent{
			UserID:    user.ID,
			Kind:      constants.ConsentKindMarketing,
			Version:   version,
			Granted:   true,
			GrantedAt: now,
			IPAddress: strings.TrimSpace(input.ClientIP),
		})
	}
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail exposes the shared email normalization.
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRefreshExpireHours(cfg config.JWTConfig) int {
	if cfg.RefreshExpireHours <= 0 {
		return resolveUserJWTExpireHours(cfg)
	}
	return cfg.RefreshExpireHours
}

func resolveNameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func generateReferralCode() (string, error) {
	var builder strings.Builder
	builder.Grow(constants.ReferralCodeLength)
	max := big.NewInt(int64(len(constants.ReferralCodeAlphabet)))
	for i := 0; i < constants.ReferralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(constants.ReferralCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
