package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/shopspring/decimal"
)

func TestDashboardOverviewAggregates(t *testing.T) {
	env := newTestEnv(t)
	dashboard := NewDashboardService(repository.NewDashboardRepository(env.db))

	buyer := env.createUser(t, "painel@example.com", nil)
	now := time.Now()
	order := env.seedPaidOrder(t, buyer.ID, 100, now)
	if err := env.db.Create(&models.OrderItem{
		OrderID:   order.ID,
		PlanID:    1,
		PlanName:  "Profissional",
		Interval:  constants.PlanIntervalMonthly,
		UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Quantity:  1,
	}).Error; err != nil {
		t.Fatalf("seed order item failed: %v", err)
	}
	if err := env.db.Create(&models.Order{
		OrderNo: "AHPENDENTE1",
		UserID:  buyer.ID,
		Status:  constants.OrderStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed pending order failed: %v", err)
	}

	if err := env.db.Create(&models.Subscription{
		UserID:             buyer.ID,
		PlanID:             1,
		Status:             constants.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}).Error; err != nil {
		t.Fatalf("seed subscription failed: %v", err)
	}
	env.createCommission(t, buyer.ID, 25, constants.CommissionStatusAvailable)
	if err := env.db.Create(&models.WithdrawalRequest{
		UserID: buyer.ID,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		Status: constants.WithdrawalStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed withdrawal failed: %v", err)
	}
	if err := env.db.Create(&models.DataRequest{
		UserID: buyer.ID,
		Kind:   constants.DataRequestKindAccess,
		Status: constants.DataRequestStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed data request failed: %v", err)
	}

	overview, err := dashboard.GetOverview(context.Background(), DashboardQueryInput{Range: "7d"})
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if overview.KPI.OrdersTotal != 2 || overview.KPI.PaidOrders != 1 || overview.KPI.PendingOrders != 1 {
		t.Fatalf("order counts unexpected: %+v", overview.KPI)
	}
	if overview.KPI.RevenuePaid != "100.00" {
		t.Fatalf("revenue want 100.00 got %s", overview.KPI.RevenuePaid)
	}
	if overview.KPI.NewUsers != 1 {
		t.Fatalf("new users want 1 got %d", overview.KPI.NewUsers)
	}
	if overview.KPI.ActiveSubscriptions != 1 || overview.KPI.OpenWithdrawals != 1 || overview.KPI.OpenDataRequests != 1 {
		t.Fatalf("state counts unexpected: %+v", overview.KPI)
	}
	if overview.KPI.CommissionAvailable != "25.00" {
		t.Fatalf("available commission want 25.00 got %s", overview.KPI.CommissionAvailable)
	}
	if overview.Currency != constants.SiteCurrencyDefault {
		t.Fatalf("currency want %s got %s", constants.SiteCurrencyDefault, overview.Currency)
	}

	foundWithdrawalAlert := false
	for _, alert := range overview.Alerts {
		if alert.Type == "open_withdrawals" && alert.Value == 1 {
			foundWithdrawalAlert = true
		}
	}
	if !foundWithdrawalAlert {
		t.Fatalf("open withdrawal should raise an alert: %+v", overview.Alerts)
	}
}

func TestDashboardTrendsFillEveryDay(t *testing.T) {
	env := newTestEnv(t)
	dashboard := NewDashboardService(repository.NewDashboardRepository(env.db))

	buyer := env.createUser(t, "serie@example.com", nil)
	order := env.seedPaidOrder(t, buyer.ID, 60, time.Now())
	if err := env.db.Create(&models.OrderItem{
		OrderID:   order.ID,
		PlanID:    2,
		PlanName:  "Essencial",
		Interval:  constants.PlanIntervalMonthly,
		UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		Quantity:  1,
	}).Error; err != nil {
		t.Fatalf("seed order item failed: %v", err)
	}

	trends, err := dashboard.GetTrends(context.Background(), DashboardQueryInput{Range: "7d"})
	if err != nil {
		t.Fatalf("trends failed: %v", err)
	}
	if len(trends.Points) != 7 {
		t.Fatalf("7d series want 7 points got %d", len(trends.Points))
	}
	today := time.Now().Format("2006-01-02")
	var todayPoint *DashboardTrendPoint
	for i := range trends.Points {
		if trends.Points[i].Date == today {
			todayPoint = &trends.Points[i]
		}
	}
	if todayPoint == nil {
		t.Fatalf("series should include today")
	}
	if todayPoint.OrdersPaid != 1 || todayPoint.RevenuePaid != "60.00" || todayPoint.NewUsers != 1 {
		t.Fatalf("today point unexpected: %+v", todayPoint)
	}

	if len(trends.TopPlans) != 1 || trends.TopPlans[0].PlanName != "Essencial" || trends.TopPlans[0].PaidAmount != "60.00" {
		t.Fatalf("plan ranking unexpected: %+v", trends.TopPlans)
	}
}

func TestDashboardWindowValidation(t *testing.T) {
	env := newTestEnv(t)
	dashboard := NewDashboardService(repository.NewDashboardRepository(env.db))
	ctx := context.Background()

	if _, err := dashboard.GetOverview(ctx, DashboardQueryInput{Range: "yearly"}); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("unknown range want ErrDashboardRangeInvalid got %v", err)
	}
	if _, err := dashboard.GetOverview(ctx, DashboardQueryInput{Range: "custom"}); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("custom without bounds want ErrDashboardRangeInvalid got %v", err)
	}

	from := time.Now().AddDate(0, 0, -200)
	to := time.Now()
	if _, err := dashboard.GetOverview(ctx, DashboardQueryInput{Range: "custom", From: &from, To: &to}); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("oversized window want ErrDashboardRangeInvalid got %v", err)
	}

	inverted := to.AddDate(0, 0, -1)
	if _, err := dashboard.GetTrends(ctx, DashboardQueryInput{Range: "custom", From: &to, To: &inverted}); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("inverted window want ErrDashboardRangeInvalid got %v", err)
	}

	valid := to.AddDate(0, 0, -3)
	if _, err := dashboard.GetTrends(ctx, DashboardQueryInput{Range: "custom", From: &valid, To: &to}); err != nil {
		t.Fatalf("valid custom window failed: %v", err)
	}
}
