package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
)

func (e *testEnv) seedPaidOrder(t *testing.T, buyerID uint, total float64, paidAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:     fmt.Sprintf("AHTEST%d%d", buyerID, time.Now().UnixNano()),
		UserID:      buyerID,
		Subtotal:    models.NewMoneyFromDecimal(decimal.NewFromFloat(total)),
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(total)),
		Currency:    constants.SiteCurrencyDefault,
		Status:      constants.OrderStatusPaid,
		PaidAt:      &paidAt,
	}
	if err := e.db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func (e *testEnv) handleOrderPaid(t *testing.T, order *models.Order) {
	t.Helper()
	if err := e.commission.HandleOrderPaidTx(e.db, order); err != nil {
		t.Fatalf("handle order paid failed: %v", err)
	}
}

func TestCommissionSkipsBuyerWithoutReferrer(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "organico@example.com", nil)
	order := env.seedPaidOrder(t, buyer.ID, 100, time.Now())

	env.handleOrderPaid(t, order)

	var count int64
	if err := env.db.Model(&models.Commission{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no referrer means no ledger row, got %d", count)
	}
}

func TestCommissionSkipsDisabledReferrer(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "banido@example.com", nil)
	buyer := env.createUser(t, "cliente@example.com", &referrer.ID)
	if err := env.db.Model(&models.User{}).Where("id = ?", referrer.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable referrer failed: %v", err)
	}

	env.handleOrderPaid(t, env.seedPaidOrder(t, buyer.ID, 100, time.Now()))

	var count int64
	if err := env.db.Model(&models.Commission{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("disabled referrer earns nothing, got %d rows", count)
	}
}

func TestCommissionIdempotentPerOrder(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "indica@example.com", nil)
	buyer := env.createUser(t, "comprando@example.com", &referrer.ID)
	order := env.seedPaidOrder(t, buyer.ID, 80, time.Now())

	env.handleOrderPaid(t, order)
	env.handleOrderPaid(t, order)

	var rows []models.Commission
	if err := env.db.Where("earner_user_id = ?", referrer.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load rows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("one commission per order, got %d", len(rows))
	}
	if !rows[0].Amount.Decimal.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("10%% of 80 want 8 got %s", rows[0].Amount.Decimal)
	}
	if rows[0].SourceUserID != buyer.ID || rows[0].OrderID != order.ID {
		t.Fatalf("provenance missing: %+v", rows[0])
	}
}

func TestCommissionHoldWindowThenRelease(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Affiliate.HoldDays = 3
	referrer := env.createUser(t, "paciente@example.com", nil)
	buyer := env.createUser(t, "apressado@example.com", &referrer.ID)

	paidAt := time.Now()
	env.handleOrderPaid(t, env.seedPaidOrder(t, buyer.ID, 100, paidAt))

	var row models.Commission
	if err := env.db.Where("earner_user_id = ?", referrer.ID).First(&row).Error; err != nil {
		t.Fatalf("load row failed: %v", err)
	}
	if row.Status != constants.CommissionStatusPending {
		t.Fatalf("held commission want PENDING got %s", row.Status)
	}
	if row.AvailableAt == nil || !sameInstant(*row.AvailableAt, paidAt.Add(72*time.Hour)) {
		t.Fatalf("available_at want paid+3d got %v", row.AvailableAt)
	}

	// Nothing to release before the hold expires.
	released, err := env.commission.ReleaseDueCommissions(paidAt.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("early release failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("early release want 0 got %d", released)
	}

	released, err = env.commission.ReleaseDueCommissions(paidAt.Add(96 * time.Hour))
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("release want 1 got %d", released)
	}
	if err := env.db.First(&row, row.ID).Error; err != nil {
		t.Fatalf("reload row failed: %v", err)
	}
	if row.Status != constants.CommissionStatusAvailable {
		t.Fatalf("released row want AVAILABLE got %s", row.Status)
	}
}

func TestCommissionZeroRateDisablesProgram(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Affiliate.RatePercent = 0
	referrer := env.createUser(t, "semtaxa@example.com", nil)
	buyer := env.createUser(t, "compra0@example.com", &referrer.ID)

	env.handleOrderPaid(t, env.seedPaidOrder(t, buyer.ID, 100, time.Now()))

	var count int64
	if err := env.db.Model(&models.Commission{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("zero rate means no commission, got %d rows", count)
	}
}

func TestCancelCommissionGuards(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "estorno@example.com", nil)

	available := env.createCommission(t, user.ID, 30, constants.CommissionStatusAvailable)
	canceled, err := env.commission.CancelCommission(9, available.ID, "pedido reembolsado")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.CommissionStatusCanceled || canceled.CancelReason != "pedido reembolsado" {
		t.Fatalf("cancel result unexpected: %+v", canceled)
	}
	// Canceled is terminal.
	if _, err := env.commission.CancelCommission(9, available.ID, "de novo"); !errors.Is(err, ErrCommissionState) {
		t.Fatalf("re-cancel want ErrCommissionState got %v", err)
	}

	requested := env.createCommission(t, user.ID, 30, constants.CommissionStatusRequested)
	if _, err := env.commission.CancelCommission(9, requested.ID, ""); !errors.Is(err, ErrCommissionState) {
		t.Fatalf("requested row want ErrCommissionState got %v", err)
	}

	// A row bound to a withdrawal cannot be voided even while AVAILABLE.
	bound := env.createCommission(t, user.ID, 30, constants.CommissionStatusAvailable)
	withdrawalID := uint(77)
	if err := env.db.Model(bound).Update("withdrawal_request_id", withdrawalID).Error; err != nil {
		t.Fatalf("bind row failed: %v", err)
	}
	if _, err := env.commission.CancelCommission(9, bound.ID, ""); !errors.Is(err, ErrCommissionState) {
		t.Fatalf("bound row want ErrCommissionState got %v", err)
	}

	if _, err := env.commission.CancelCommission(9, 9999, ""); !errors.Is(err, ErrCommissionNotFound) {
		t.Fatalf("missing row want ErrCommissionNotFound got %v", err)
	}
}

func TestCommissionSummaryAggregates(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "resumo@example.com", nil)
	env.createUser(t, "filho1@example.com", &referrer.ID)
	env.createUser(t, "filho2@example.com", &referrer.ID)

	env.createCommission(t, referrer.ID, 15, constants.CommissionStatusPending)
	env.createCommission(t, referrer.ID, 25, constants.CommissionStatusAvailable)
	env.createCommission(t, referrer.ID, 40, constants.CommissionStatusRequested)
	env.createCommission(t, referrer.ID, 10, constants.CommissionStatusPaid)

	summary, err := env.commission.GetSummary(referrer.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.ReferralCount != 2 {
		t.Fatalf("referral count want 2 got %d", summary.ReferralCount)
	}
	if !summary.Pending.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("pending want 15 got %s", summary.Pending.Decimal)
	}
	if !summary.Available.Decimal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("available want 25 got %s", summary.Available.Decimal)
	}
	if !summary.Requested.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("requested want 40 got %s", summary.Requested.Decimal)
	}
	if !summary.Paid.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("paid want 10 got %s", summary.Paid.Decimal)
	}

	balance, err := env.commission.AvailableBalance(referrer.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("balance want 25 got %s", balance)
	}
}
