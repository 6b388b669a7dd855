package service

import (
	"errors"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (e *testEnv) createCoupon(t *testing.T, coupon models.Coupon) *models.Coupon {
	t.Helper()
	if err := e.db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return &coupon
}

func (e *testEnv) redeem(t *testing.T, code string, userID, planID, orderID uint, base float64) (*CouponQuote, error) {
	t.Helper()
	var quote *CouponQuote
	err := e.db.Transaction(func(tx *gorm.DB) error {
		q, err := e.coupon.RedeemTx(tx, code, userID, planID, orderID, decimal.NewFromFloat(base))
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	return quote, err
}

func TestCouponValidateWindowAndMinAmount(t *testing.T) {
	env := newTestEnv(t)
	past := time.Now().Add(-48 * time.Hour)
	nearPast := time.Now().Add(-time.Hour)
	future := time.Now().Add(48 * time.Hour)

	env.createCoupon(t, models.Coupon{
		Code:     "EXPIRADO",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		StartsAt: &past,
		EndsAt:   &nearPast,
		IsActive: true,
	})
	if _, err := env.coupon.Validate("EXPIRADO", 1, 1, decimal.NewFromInt(100)); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("ended coupon want ErrCouponExpired got %v", err)
	}

	env.createCoupon(t, models.Coupon{
		Code:     "FUTURO",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		StartsAt: &future,
		IsActive: true,
	})
	if _, err := env.coupon.Validate("FUTURO", 1, 1, decimal.NewFromInt(100)); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("not-yet-started coupon want ErrCouponExpired got %v", err)
	}

	env.createCoupon(t, models.Coupon{
		Code:      "MINIMO",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		IsActive:  true,
	})
	if _, err := env.coupon.Validate("MINIMO", 1, 1, decimal.NewFromInt(30)); !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("below min want ErrCouponMinAmount got %v", err)
	}
	if _, err := env.coupon.Validate("MINIMO", 1, 1, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("at min should pass, got %v", err)
	}

	env.createCoupon(t, models.Coupon{
		Code:     "INATIVO",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: false,
	})
	if _, err := env.coupon.Validate("INATIVO", 1, 1, decimal.NewFromInt(100)); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("inactive coupon want ErrCouponInvalid got %v", err)
	}
}

func TestCouponPlanScope(t *testing.T) {
	env := newTestEnv(t)
	env.createCoupon(t, models.Coupon{
		Code:         "SOPLANO2",
		Type:         constants.CouponTypeFixed,
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		PlanScopeIDs: "[2,3]",
		IsActive:     true,
	})

	if _, err := env.coupon.Validate("SOPLANO2", 1, 1, decimal.NewFromInt(100)); !errors.Is(err, ErrCouponNotApplicable) {
		t.Fatalf("out-of-scope plan want ErrCouponNotApplicable got %v", err)
	}
	if _, err := env.coupon.Validate("SOPLANO2", 1, 2, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("in-scope plan should pass, got %v", err)
	}
	if _, err := env.coupon.Validate("soplano2", 1, 3, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("lookup should be case-insensitive, got %v", err)
	}
}

func TestCouponDiscountCaps(t *testing.T) {
	env := newTestEnv(t)
	env.createCoupon(t, models.Coupon{
		Code:        "VINTEPC",
		Type:        constants.CouponTypePercent,
		Value:       models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		MaxDiscount: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		IsActive:    true,
	})
	quote, err := env.coupon.Validate("VINTEPC", 1, 1, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	// 20% of 100 is 20, capped at 15.
	if !quote.Discount.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("discount want 15 got %s", quote.Discount.Decimal)
	}
	if !quote.FinalAmount.Decimal.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("final want 85 got %s", quote.FinalAmount.Decimal)
	}

	env.createCoupon(t, models.Coupon{
		Code:     "GIGANTE",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		IsActive: true,
	})
	quote, err = env.coupon.Validate("GIGANTE", 1, 1, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	// A fixed discount never drops the total below zero.
	if !quote.Discount.Decimal.Equal(decimal.NewFromInt(40)) || !quote.FinalAmount.Decimal.IsZero() {
		t.Fatalf("oversized fixed discount should cap at base, got %s / %s", quote.Discount.Decimal, quote.FinalAmount.Decimal)
	}
}

func TestCouponRedeemGlobalLimit(t *testing.T) {
	env := newTestEnv(t)
	env.createCoupon(t, models.Coupon{
		Code:       "UMAVEZ",
		Type:       constants.CouponTypeFixed,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsageLimit: 1,
		IsActive:   true,
	})

	if _, err := env.redeem(t, "UMAVEZ", 1, 1, 10, 100); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if _, err := env.redeem(t, "UMAVEZ", 2, 1, 11, 100); !errors.Is(err, ErrCouponExhausted) {
		t.Fatalf("second redeem want ErrCouponExhausted got %v", err)
	}
}

func TestCouponRedeemPerUserLimit(t *testing.T) {
	env := newTestEnv(t)
	env.createCoupon(t, models.Coupon{
		Code:         "PORUSUARIO",
		Type:         constants.CouponTypeFixed,
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		PerUserLimit: 2,
		IsActive:     true,
	})

	for i := 0; i < 2; i++ {
		if _, err := env.redeem(t, "PORUSUARIO", 1, 1, uint(20+i), 100); err != nil {
			t.Fatalf("redeem %d failed: %v", i, err)
		}
	}
	if _, err := env.redeem(t, "PORUSUARIO", 1, 1, 30, 100); !errors.Is(err, ErrCouponPerUserLimit) {
		t.Fatalf("third redeem want ErrCouponPerUserLimit got %v", err)
	}
	// Another user still has a fresh counter.
	if _, err := env.redeem(t, "PORUSUARIO", 2, 1, 31, 100); err != nil {
		t.Fatalf("other user redeem failed: %v", err)
	}
}

func TestCouponReleaseRestoresUse(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, models.Coupon{
		Code:         "DEVOLVE",
		Type:         constants.CouponTypeFixed,
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsageLimit:   1,
		PerUserLimit: 1,
		IsActive:     true,
	})

	if _, err := env.redeem(t, "DEVOLVE", 1, 1, 40, 100); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, err := env.redeem(t, "DEVOLVE", 1, 1, 41, 100); err == nil {
		t.Fatalf("redeem beyond limit should fail")
	}

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.coupon.ReleaseTx(tx, coupon.ID, 1)
	})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}

	var reloaded models.Coupon
	if err := env.db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("used_count after release want 0 got %d", reloaded.UsedCount)
	}
	if _, err := env.redeem(t, "DEVOLVE", 1, 1, 42, 100); err != nil {
		t.Fatalf("redeem after release failed: %v", err)
	}
}

func TestCouponCreateNormalizesAndGuardsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	if err := env.coupon.Create(1, &models.Coupon{
		Code:  " promo10 ",
		Type:  constants.CouponTypePercent,
		Value: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var saved models.Coupon
	if err := env.db.Where("code = ?", "PROMO10").First(&saved).Error; err != nil {
		t.Fatalf("code should be stored uppercase: %v", err)
	}

	err := env.coupon.Create(1, &models.Coupon{
		Code:  "PROMO10",
		Type:  constants.CouponTypeFixed,
		Value: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	})
	if !errors.Is(err, ErrCouponCodeExists) {
		t.Fatalf("duplicate want ErrCouponCodeExists got %v", err)
	}

	err = env.coupon.Create(1, &models.Coupon{
		Code:         "ESCOPORUIM",
		Type:         constants.CouponTypeFixed,
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		PlanScopeIDs: "not-json",
	})
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("bad scope want ErrCouponInvalid got %v", err)
	}
}

func TestCouponUpdateKeepsCodeAndCounter(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, models.Coupon{
		Code:      "FIXO",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsedCount: 3,
		IsActive:  true,
	})

	edit := models.Coupon{
		ID:        coupon.ID,
		Code:      "OUTROCODIGO",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
		UsedCount: 0,
		IsActive:  true,
	}
	if err := env.coupon.Update(1, &edit); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	var reloaded models.Coupon
	if err := env.db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Code != "FIXO" {
		t.Fatalf("code is immutable, got %s", reloaded.Code)
	}
	if reloaded.UsedCount != 3 {
		t.Fatalf("used_count must survive edits, got %d", reloaded.UsedCount)
	}
	if !reloaded.Value.Decimal.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("value want 8 got %s", reloaded.Value.Decimal)
	}
}

func TestCouponRedeemConcurrentUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createCoupon(t, models.Coupon{
		Code:       "CORRIDA",
		Type:       constants.CouponTypeFixed,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsageLimit: 3,
		IsActive:   true,
	})

	succeeded := 0
	for i := 0; i < 5; i++ {
		if _, err := env.redeem(t, "CORRIDA", uint(i+1), 1, uint(50+i), 100); err == nil {
			succeeded++
		} else if !errors.Is(err, ErrCouponExhausted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("guarded counter should admit exactly 3 redemptions, got %d", succeeded)
	}

	var reloaded models.Coupon
	if err := env.db.Where("code = ?", "CORRIDA").First(&reloaded).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.UsedCount != 3 {
		t.Fatalf("used_count want 3 got %d", reloaded.UsedCount)
	}
}

func TestCouponCreatedInactiveStaysInactive(t *testing.T) {
	env := newTestEnv(t)
	if err := env.coupon.Create(1, &models.Coupon{
		Code:     "RASCUNHO",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: false,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var reloaded models.Coupon
	if err := env.db.Where("code = ?", "RASCUNHO").First(&reloaded).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("coupon created inactive must persist inactive")
	}
	if _, err := env.coupon.Validate("RASCUNHO", 1, 1, decimal.NewFromInt(100)); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("inactive coupon want ErrCouponInvalid got %v", err)
	}

	plan := &models.Plan{Name: "rascunho", Slug: "rascunho", Interval: constants.PlanIntervalMonthly, IsActive: false}
	if err := env.db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	var reloadedPlan models.Plan
	if err := env.db.First(&reloadedPlan, plan.ID).Error; err != nil {
		t.Fatalf("reload plan failed: %v", err)
	}
	if reloadedPlan.IsActive {
		t.Fatalf("plan created inactive must persist inactive")
	}
}

func TestRedeemAuditRidesTheTransaction(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "auditado@example.com", nil)
	env.createCoupon(t, models.Coupon{
		Code:     "RASTRO",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	})

	// A rolled-back redemption leaves neither a counter bump nor an
	// audit event behind.
	sentinel := errors.New("abort")
	err := env.db.Transaction(func(tx *gorm.DB) error {
		if _, err := env.coupon.RedeemTx(tx, "RASTRO", user.ID, 1, 10, decimal.NewFromInt(100)); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("transaction should surface the rollback cause, got %v", err)
	}
	var events int64
	env.db.Model(&models.AuditEvent{}).Where("action = ?", constants.AuditActionCouponRedeemed).Count(&events)
	if events != 0 {
		t.Fatalf("rolled-back redeem must not leave an audit event, got %d", events)
	}
	var reloaded models.Coupon
	if err := env.db.Where("code = ?", "RASTRO").First(&reloaded).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("rolled-back redeem must not keep the counter, used_count=%d", reloaded.UsedCount)
	}

	// A committed redemption lands exactly one event.
	if _, err := env.redeem(t, "RASTRO", user.ID, 1, 11, 100); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	env.db.Model(&models.AuditEvent{}).Where("action = ?", constants.AuditActionCouponRedeemed).Count(&events)
	if events != 1 {
		t.Fatalf("committed redeem want one audit event got %d", events)
	}
}
