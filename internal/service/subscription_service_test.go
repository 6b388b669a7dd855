package service

import (
	"errors"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
)

// sameInstant tolerates the sub-second drift a timestamp picks up on
// its way through the database.
func sameInstant(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff < time.Second
}

func TestActivateStartsTrialWhenPlanGrantsIt(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "trial@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 7)

	paidAt := time.Now()
	sub, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, paidAt)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if sub.Status != constants.SubscriptionStatusTrialing {
		t.Fatalf("status want trialing got %s", sub.Status)
	}
	if sub.TrialEndsAt == nil {
		t.Fatalf("trial end should be set")
	}
	wantTrialEnd := paidAt.Add(7 * 24 * time.Hour)
	if !sub.TrialEndsAt.Equal(wantTrialEnd) {
		t.Fatalf("trial end want %v got %v", wantTrialEnd, sub.TrialEndsAt)
	}
	// The paid cycle starts counting after the trial.
	if !sub.CurrentPeriodEnd.Equal(wantTrialEnd.AddDate(0, 1, 0)) {
		t.Fatalf("period end want %v got %v", wantTrialEnd.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
	}
}

func TestRenewalExtendsFromPeriodEnd(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "renova@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 0)

	first := time.Now()
	sub, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, first)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	firstEnd := sub.CurrentPeriodEnd

	// Paying ten days early extends from the period end, not from now.
	early := first.Add(20 * 24 * time.Hour)
	renewed, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, early)
	if err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if renewed.ID != sub.ID {
		t.Fatalf("renewal must reuse the subscription row")
	}
	if !sameInstant(renewed.CurrentPeriodStart, firstEnd) {
		t.Fatalf("period start want %v got %v", firstEnd, renewed.CurrentPeriodStart)
	}
	if !sameInstant(renewed.CurrentPeriodEnd, firstEnd.AddDate(0, 1, 0)) {
		t.Fatalf("period end want %v got %v", firstEnd.AddDate(0, 1, 0), renewed.CurrentPeriodEnd)
	}
}

func TestRenewalClearsCancelFlag(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "desiste@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 0)

	if _, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, time.Now()); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if _, err := env.subscription.SetCancelAtPeriodEnd(user.ID, true); err != nil {
		t.Fatalf("set cancel failed: %v", err)
	}

	renewed, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, time.Now())
	if err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if renewed.CancelAtPeriodEnd || renewed.CanceledAt != nil {
		t.Fatalf("payment should clear the cancel flag: %+v", renewed)
	}
}

func TestPlanSwitchRestartsCycleFromNow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "troca@example.com", nil)
	monthly := env.createPlan(t, "mensal", 50, constants.PlanIntervalMonthly, 0)
	yearly := env.createPlan(t, "anual", 500, constants.PlanIntervalYearly, 0)

	if _, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, monthly, time.Now()); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	switchAt := time.Now()
	switched, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, yearly, switchAt)
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if switched.PlanID != yearly.ID {
		t.Fatalf("plan want %d got %d", yearly.ID, switched.PlanID)
	}
	if !sameInstant(switched.CurrentPeriodStart, switchAt) {
		t.Fatalf("plan switch starts the cycle at payment time")
	}
	if !sameInstant(switched.CurrentPeriodEnd, switchAt.AddDate(1, 0, 0)) {
		t.Fatalf("yearly period end want %v got %v", switchAt.AddDate(1, 0, 0), switched.CurrentPeriodEnd)
	}
}

func TestSetCancelAtPeriodEndToggle(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alterna@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 0)

	if _, err := env.subscription.SetCancelAtPeriodEnd(user.ID, true); !errors.Is(err, ErrSubscriptionNone) {
		t.Fatalf("no subscription want ErrSubscriptionNone got %v", err)
	}

	if _, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, time.Now()); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	flagged, err := env.subscription.SetCancelAtPeriodEnd(user.ID, true)
	if err != nil {
		t.Fatalf("flag failed: %v", err)
	}
	if !flagged.CancelAtPeriodEnd || flagged.CanceledAt == nil {
		t.Fatalf("flag result unexpected: %+v", flagged)
	}
	if flagged.Status != constants.SubscriptionStatusActive {
		t.Fatalf("access continues until period end, status=%s", flagged.Status)
	}

	unflagged, err := env.subscription.SetCancelAtPeriodEnd(user.ID, false)
	if err != nil {
		t.Fatalf("unflag failed: %v", err)
	}
	if unflagged.CancelAtPeriodEnd || unflagged.CanceledAt != nil {
		t.Fatalf("unflag result unexpected: %+v", unflagged)
	}
}

func TestScanRenewalsAdvancesStatuses(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	overdue := &models.Subscription{
		UserID:             1,
		PlanID:             1,
		Status:             constants.SubscriptionStatusActive,
		CurrentPeriodStart: now.AddDate(0, -1, 0),
		CurrentPeriodEnd:   now.Add(-time.Hour),
	}
	leaving := &models.Subscription{
		UserID:             2,
		PlanID:             1,
		Status:             constants.SubscriptionStatusActive,
		CurrentPeriodStart: now.AddDate(0, -1, 0),
		CurrentPeriodEnd:   now.Add(-time.Hour),
		CancelAtPeriodEnd:  true,
	}
	// Past due beyond the 3-day grace window.
	exhausted := &models.Subscription{
		UserID:             3,
		PlanID:             1,
		Status:             constants.SubscriptionStatusPastDue,
		CurrentPeriodStart: now.AddDate(0, -2, 0),
		CurrentPeriodEnd:   now.AddDate(0, 0, -10),
	}
	current := &models.Subscription{
		UserID:             4,
		PlanID:             1,
		Status:             constants.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}
	for _, sub := range []*models.Subscription{overdue, leaving, exhausted, current} {
		if err := env.db.Create(sub).Error; err != nil {
			t.Fatalf("seed subscription failed: %v", err)
		}
	}

	touched, err := env.subscription.ScanRenewals(now)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if touched != 3 {
		t.Fatalf("touched want 3 got %d", touched)
	}

	assertStatus := func(id uint, want string) {
		t.Helper()
		var sub models.Subscription
		if err := env.db.First(&sub, id).Error; err != nil {
			t.Fatalf("reload subscription %d failed: %v", id, err)
		}
		if sub.Status != want {
			t.Fatalf("subscription %d status want %s got %s", id, want, sub.Status)
		}
	}
	assertStatus(overdue.ID, constants.SubscriptionStatusPastDue)
	assertStatus(leaving.ID, constants.SubscriptionStatusCanceled)
	assertStatus(exhausted.ID, constants.SubscriptionStatusExpired)
	assertStatus(current.ID, constants.SubscriptionStatusActive)
}

func TestCancelNowTerminalGuard(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "encerra@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 0)

	sub, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, time.Now())
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	canceled, err := env.subscription.CancelNow(1, sub.ID)
	if err != nil {
		t.Fatalf("cancel now failed: %v", err)
	}
	if canceled.Status != constants.SubscriptionStatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("cancel result unexpected: %+v", canceled)
	}
	if _, err := env.subscription.CancelNow(1, sub.ID); !errors.Is(err, ErrSubscriptionState) {
		t.Fatalf("second cancel want ErrSubscriptionState got %v", err)
	}
}
