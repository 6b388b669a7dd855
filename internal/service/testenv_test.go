package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/queue"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Plan{},
		&models.Subscription{},
		&models.Order{},
		&models.OrderItem{},
		&models.Commission{},
		&models.WithdrawalRequest{},
		&models.BankAccount{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Address{},
		&models.Consent{},
		&models.DataRequest{},
		&models.AuditEvent{},
	); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

// testEnv wires the full service graph onto one in-memory database with
// a disabled queue, so every audit write lands synchronously.
type testEnv struct {
	db  *gorm.DB
	cfg *config.Config

	userRepo       repository.UserRepository
	commissionRepo repository.CommissionRepository
	bankRepo       repository.BankAccountRepository
	subRepo        repository.SubscriptionRepository
	orderRepo      repository.OrderRepository
	lgpdRepo       repository.LGPDRepository

	audit        *AuditService
	commission   *CommissionService
	withdrawal   *WithdrawalService
	coupon       *CouponService
	subscription *SubscriptionService
	order        *OrderService
	lgpd         *LGPDService
	userAuth     *UserAuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		Affiliate: config.AffiliateConfig{
			RatePercent:       10,
			HoldDays:          0,
			MinWithdrawAmount: 20,
		},
		Subscription: config.SubscriptionConfig{GraceDays: 3},
		LGPD:         config.LGPDConfig{FiscalRetentionMonths: 0},
		UserJWT: config.JWTConfig{
			SecretKey:   "test-secret-key-for-user-tokens-0123456789",
			ExpireHours: 24,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		},
	}

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("build queue client failed: %v", err)
	}

	env := &testEnv{
		db:             db,
		cfg:            cfg,
		userRepo:       repository.NewUserRepository(db),
		commissionRepo: repository.NewCommissionRepository(db),
		bankRepo:       repository.NewBankAccountRepository(db),
		subRepo:        repository.NewSubscriptionRepository(db),
		orderRepo:      repository.NewOrderRepository(db),
		lgpdRepo:       repository.NewLGPDRepository(db),
	}
	env.audit = NewAuditService(repository.NewAuditRepository(db), queueClient)
	env.commission = NewCommissionService(cfg, env.commissionRepo, env.userRepo, env.audit)
	env.withdrawal = NewWithdrawalService(cfg, env.commissionRepo, env.bankRepo, env.commission, env.audit)
	env.coupon = NewCouponService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db), env.audit)
	env.subscription = NewSubscriptionService(cfg, env.subRepo, env.audit)
	env.order = NewOrderService(cfg, env.orderRepo, repository.NewPlanRepository(db), env.coupon, env.subscription, env.commission, env.audit)
	env.lgpd = NewLGPDService(cfg, env.lgpdRepo, env.userRepo, env.subRepo, env.orderRepo, env.commissionRepo, env.bankRepo, queueClient, env.audit)
	env.userAuth = NewUserAuthService(cfg, env.userRepo, env.lgpdRepo)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string, referredByID *uint) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		DisplayName:  "Test User",
		Status:       constants.UserStatusActive,
		ReferralCode: referralCodeForTest(email),
		ReferredByID: referredByID,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (e *testEnv) createPlan(t *testing.T, slug string, price float64, interval string, trialDays int) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Name:      slug,
		Slug:      slug,
		Price:     models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		Interval:  interval,
		TrialDays: trialDays,
		IsActive:  true,
	}
	if err := e.db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	return plan
}

func (e *testEnv) createBankAccount(t *testing.T, userID uint) *models.BankAccount {
	t.Helper()
	account := &models.BankAccount{
		UserID:     userID,
		HolderName: "Maria Silva",
		HolderDoc:  "12345678901",
		BankCode:   "001",
		Branch:     "1234",
		AccountNo:  "56789-0",
		PixKey:     "maria@example.com",
	}
	if err := e.db.Create(account).Error; err != nil {
		t.Fatalf("create bank account failed: %v", err)
	}
	return account
}

func (e *testEnv) createCommission(t *testing.T, earnerID uint, amount float64, status string) *models.Commission {
	t.Helper()
	now := time.Now()
	row := &models.Commission{
		EarnerUserID: earnerID,
		SourceUserID: earnerID + 1000,
		OrderID:      earnerID + 2000,
		BaseAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(amount * 10)),
		RatePercent:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Amount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(amount)),
		Status:       status,
		AvailableAt:  &now,
	}
	if err := e.db.Create(row).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
	return row
}

func referralCodeForTest(email string) string {
	code := strings.ToUpper(strings.NewReplacer("@", "", ".", "", "+", "").Replace(email))
	if len(code) > 12 {
		code = code[:12]
	}
	return code
}
