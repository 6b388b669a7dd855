package repository

import (
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func createCommissionTestUser(t *testing.T, db *gorm.DB, email, code string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		ReferralCode: code,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestCommission(t *testing.T, db *gorm.DB, earnerID, sourceID, orderID uint, amount int64, status string, availableAt *time.Time) *models.Commission {
	t.Helper()
	commission := &models.Commission{
		EarnerUserID: earnerID,
		SourceUserID: sourceID,
		OrderID:      orderID,
		BaseAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(amount * 10)),
		RatePercent:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Amount:       models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Status:       status,
		AvailableAt:  availableAt,
	}
	if err := db.Create(commission).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
	return commission
}

func TestGetCommissionByEarnerAndOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)
	earner := createCommissionTestUser(t, db, "earner@example.com", "EARNER23")
	source := createCommissionTestUser(t, db, "source@example.com", "SOURCE23")

	created := createTestCommission(t, db, earner.ID, source.ID, 101, 25, constants.CommissionStatusPending, nil)

	found, err := repo.GetCommissionByEarnerAndOrder(earner.ID, 101)
	if err != nil {
		t.Fatalf("get by earner and order failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected commission %d, got %+v", created.ID, found)
	}

	missing, err := repo.GetCommissionByEarnerAndOrder(earner.ID, 999)
	if err != nil {
		t.Fatalf("get missing commission failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing pair, got %+v", missing)
	}
}

func TestMarkPendingCommissionsAvailable(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)
	earner := createCommissionTestUser(t, db, "earner@example.com", "EARNER23")
	source := createCommissionTestUser(t, db, "source@example.com", "SOURCE23")

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := createTestCommission(t, db, earner.ID, source.ID, 1, 10, constants.CommissionStatusPending, &past)
	notDue := createTestCommission(t, db, earner.ID, source.ID, 2, 10, constants.CommissionStatusPending, &future)

	released, err := repo.MarkPendingCommissionsAvailable(now, now)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("released count want 1 got %d", released)
	}

	var reloaded models.Commission
	if err := db.First(&reloaded, due.ID).Error; err != nil {
		t.Fatalf("reload due commission failed: %v", err)
	}
	if reloaded.Status != constants.CommissionStatusAvailable {
		t.Fatalf("due commission status want AVAILABLE got %s", reloaded.Status)
	}
	var reloadedNotDue models.Commission
	if err := db.First(&reloadedNotDue, notDue.ID).Error; err != nil {
		t.Fatalf("reload not-due commission failed: %v", err)
	}
	if reloadedNotDue.Status != constants.CommissionStatusPending {
		t.Fatalf("not-due commission status want PENDING got %s", reloadedNotDue.Status)
	}
}

func TestSumCommissionByEarnerUnboundOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)
	earner := createCommissionTestUser(t, db, "earner@example.com", "EARNER23")
	source := createCommissionTestUser(t, db, "source@example.com", "SOURCE23")

	createTestCommission(t, db, earner.ID, source.ID, 1, 30, constants.CommissionStatusAvailable, nil)
	createTestCommission(t, db, earner.ID, source.ID, 2, 20, constants.CommissionStatusAvailable, nil)
	bound := createTestCommission(t, db, earner.ID, source.ID, 3, 50, constants.CommissionStatusAvailable, nil)
	withdrawalID := uint(7)
	if err := db.Model(bound).UpdateColumn("withdrawal_request_id", withdrawalID).Error; err != nil {
		t.Fatalf("bind commission failed: %v", err)
	}

	total, err := repo.SumCommissionByEarner(earner.ID, []string{constants.CommissionStatusAvailable}, true)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unbound available sum want 50 got %s", total)
	}
}

func TestHasOpenWithdrawalByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)
	earner := createCommissionTestUser(t, db, "earner@example.com", "EARNER23")

	open, err := repo.HasOpenWithdrawalByUser(earner.ID)
	if err != nil {
		t.Fatalf("check open withdrawal failed: %v", err)
	}
	if open {
		t.Fatal("expected no open withdrawal")
	}

	req := &models.WithdrawalRequest{
		UserID:         earner.ID,
		Amount:         models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Status:         constants.WithdrawalStatusPending,
		BankHolderName: "Fulano de Tal",
		BankHolderDoc:  "12345678901",
	}
	if err := repo.CreateWithdrawal(req); err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	open, err = repo.HasOpenWithdrawalByUser(earner.ID)
	if err != nil {
		t.Fatalf("check open withdrawal failed: %v", err)
	}
	if !open {
		t.Fatal("expected an open withdrawal")
	}

	req.Status = constants.WithdrawalStatusPaid
	if err := repo.UpdateWithdrawal(req); err != nil {
		t.Fatalf("update withdrawal failed: %v", err)
	}
	open, err = repo.HasOpenWithdrawalByUser(earner.ID)
	if err != nil {
		t.Fatalf("check open withdrawal failed: %v", err)
	}
	if open {
		t.Fatal("terminal withdrawal should not count as open")
	}
}
