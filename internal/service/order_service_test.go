package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
)

func TestCreateOrderWithCoupon(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "comprador@example.com", nil)
	plan := env.createPlan(t, "pro", 59.90, constants.PlanIntervalMonthly, 0)
	env.createCoupon(t, models.Coupon{
		Code:     "DEZOFF",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	})

	order, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID, CouponCode: "dezoff"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, "AH") {
		t.Fatalf("order number should carry the AH prefix, got %s", order.OrderNo)
	}
	if !order.Subtotal.Decimal.Equal(decimal.NewFromFloat(59.90)) {
		t.Fatalf("subtotal want 59.90 got %s", order.Subtotal.Decimal)
	}
	if !order.DiscountAmount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("discount want 10 got %s", order.DiscountAmount.Decimal)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromFloat(49.90)) {
		t.Fatalf("total want 49.90 got %s", order.TotalAmount.Decimal)
	}
	if order.CouponID == nil {
		t.Fatalf("coupon id should be recorded")
	}
}

func TestCreateOrderFailedCouponLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "comprador2@example.com", nil)
	plan := env.createPlan(t, "pro", 59.90, constants.PlanIntervalMonthly, 0)
	env.createCoupon(t, models.Coupon{
		Code:      "CAROMIN",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		IsActive:  true,
	})

	_, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID, CouponCode: "CAROMIN"})
	if !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("want ErrCouponMinAmount got %v", err)
	}

	// The redemption runs in the order transaction: no orphan order rows.
	var count int64
	if err := env.db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed coupon should leave no order behind, found %d", count)
	}
}

func TestCreateOrderInactivePlan(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "comprador3@example.com", nil)
	plan := env.createPlan(t, "legado", 19.90, constants.PlanIntervalMonthly, 0)
	if err := env.db.Model(plan).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate plan failed: %v", err)
	}

	if _, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID}); !errors.Is(err, ErrPlanInactive) {
		t.Fatalf("want ErrPlanInactive got %v", err)
	}
	if _, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: 9999}); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("want ErrPlanNotFound got %v", err)
	}
}

func TestMarkOrderPaidSettlesOnce(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "indicador@example.com", nil)
	buyer := env.createUser(t, "indicado@example.com", &referrer.ID)
	plan := env.createPlan(t, "pro", 100, constants.PlanIntervalMonthly, 0)

	order, err := env.order.CreateOrder(CreateOrderInput{UserID: buyer.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	settled, err := env.order.MarkOrderPaid(order.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if settled.Status != constants.OrderStatusPaid || settled.PaidAt == nil {
		t.Fatalf("settlement incomplete: %+v", settled)
	}
	if settled.SubscriptionID == nil {
		t.Fatalf("settlement should attach a subscription")
	}

	sub, err := env.subscription.GetCurrent(buyer.ID)
	if err != nil {
		t.Fatalf("buyer should have a subscription: %v", err)
	}
	if sub.Status != constants.SubscriptionStatusActive || sub.PlanID != plan.ID {
		t.Fatalf("subscription unexpected: %+v", sub)
	}

	// 10% of 100 with zero hold days lands AVAILABLE immediately.
	var commissions []models.Commission
	if err := env.db.Where("earner_user_id = ?", referrer.ID).Find(&commissions).Error; err != nil {
		t.Fatalf("load commissions failed: %v", err)
	}
	if len(commissions) != 1 {
		t.Fatalf("want exactly one commission got %d", len(commissions))
	}
	if !commissions[0].Amount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("commission amount want 10 got %s", commissions[0].Amount.Decimal)
	}
	if commissions[0].Status != constants.CommissionStatusAvailable {
		t.Fatalf("commission status want AVAILABLE got %s", commissions[0].Status)
	}

	// The ledger write is audited inside the settlement transaction.
	var auditCount int64
	if err := env.db.Model(&models.AuditEvent{}).Where("action = ?", constants.AuditActionCommissionCreated).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit events failed: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("settlement want one commission audit event got %d", auditCount)
	}

	// Settlement is idempotent under replayed callbacks.
	if _, err := env.order.MarkOrderPaid(order.ID); !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("second settle want ErrOrderAlreadyPaid got %v", err)
	}
	if err := env.db.Where("earner_user_id = ?", referrer.ID).Find(&commissions).Error; err != nil {
		t.Fatalf("reload commissions failed: %v", err)
	}
	if len(commissions) != 1 {
		t.Fatalf("replay must not duplicate the commission, got %d rows", len(commissions))
	}
}

func TestMarkOrderPaidWithoutReferrer(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "semindicacao@example.com", nil)
	plan := env.createPlan(t, "pro", 100, constants.PlanIntervalMonthly, 0)

	order, err := env.order.CreateOrder(CreateOrderInput{UserID: buyer.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.order.MarkOrderPaid(order.ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	var count int64
	if err := env.db.Model(&models.Commission{}).Count(&count).Error; err != nil {
		t.Fatalf("count commissions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no referrer means no commission, got %d rows", count)
	}
}

func TestCancelOrderReleasesCoupon(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "cancela@example.com", nil)
	plan := env.createPlan(t, "pro", 100, constants.PlanIntervalMonthly, 0)
	coupon := env.createCoupon(t, models.Coupon{
		Code:         "VOLTA",
		Type:         constants.CouponTypeFixed,
		Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		UsageLimit:   1,
		PerUserLimit: 1,
		IsActive:     true,
	})

	order, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID, CouponCode: "VOLTA"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	other := env.createUser(t, "intruso@example.com", nil)
	if _, err := env.order.CancelOrder(order.ID, other.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign cancel want ErrOrderNotFound got %v", err)
	}

	canceled, err := env.order.CancelOrder(order.ID, user.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("cancel result unexpected: %+v", canceled)
	}

	var reloaded models.Coupon
	if err := env.db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("coupon use should be returned, used_count=%d", reloaded.UsedCount)
	}

	// A second order can redeem the returned use.
	if _, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID, CouponCode: "VOLTA"}); err != nil {
		t.Fatalf("reuse after cancel failed: %v", err)
	}
}

func TestCancelOrderOnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "pagoucancela@example.com", nil)
	plan := env.createPlan(t, "pro", 100, constants.PlanIntervalMonthly, 0)

	order, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.order.MarkOrderPaid(order.ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := env.order.CancelOrder(order.ID, user.ID); !errors.Is(err, ErrOrderNotPending) {
		t.Fatalf("cancel after pay want ErrOrderNotPending got %v", err)
	}
}

func TestQuoteCoupon(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "cotacao@example.com", nil)
	plan := env.createPlan(t, "pro", 80, constants.PlanIntervalMonthly, 0)
	env.createCoupon(t, models.Coupon{
		Code:     "COTA25",
		Type:     constants.CouponTypePercent,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		IsActive: true,
	})

	quote, err := env.order.QuoteCoupon(user.ID, plan.ID, "COTA25")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !quote.Discount.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("discount want 20 got %s", quote.Discount.Decimal)
	}
	if !quote.FinalAmount.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("final want 60 got %s", quote.FinalAmount.Decimal)
	}

	// Quoting never consumes a use.
	var reloaded models.Coupon
	if err := env.db.Where("code = ?", "COTA25").First(&reloaded).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("quote must not consume uses, used_count=%d", reloaded.UsedCount)
	}
}
