package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
)

func TestCreateDataRequestKindValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "titular@example.com", nil)

	if _, err := env.lgpd.CreateRequest(user.ID, "DELETE_EVERYTHING", "", ""); !errors.Is(err, ErrDataRequestKindInvalid) {
		t.Fatalf("bad kind want ErrDataRequestKindInvalid got %v", err)
	}

	req, err := env.lgpd.CreateRequest(user.ID, "access", "quero meus dados", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if req.Kind != constants.DataRequestKindAccess || req.Status != constants.DataRequestStatusPending {
		t.Fatalf("request unexpected: %+v", req)
	}

	// One open request per kind.
	if _, err := env.lgpd.CreateRequest(user.ID, "ACCESS", "", ""); !errors.Is(err, ErrDataRequestOpen) {
		t.Fatalf("duplicate open want ErrDataRequestOpen got %v", err)
	}
	// A different kind still opens.
	if _, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindErasure, "", ""); err != nil {
		t.Fatalf("different kind should open: %v", err)
	}
}

func TestRectificationFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "corrige@example.com", nil)

	if _, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindRectification, "", `{"email":"novo@example.com"}`); !errors.Is(err, ErrDataRequestState) {
		t.Fatalf("non-rectifiable field want ErrDataRequestState got %v", err)
	}
	if _, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindRectification, "", `{}`); !errors.Is(err, ErrDataRequestState) {
		t.Fatalf("empty changes want ErrDataRequestState got %v", err)
	}

	req, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindRectification, "nome errado", `{"display_name":"Maria Souza","phone":"+5511999990000"}`)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	approved, err := env.lgpd.ApproveRequest(42, req.ID, "conferido")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.DataRequestStatusCompleted {
		t.Fatalf("status want COMPLETED got %s", approved.Status)
	}

	var reloaded models.User
	if err := env.db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.DisplayName != "Maria Souza" || reloaded.Phone != "+5511999990000" {
		t.Fatalf("rectification not applied: %+v", reloaded)
	}
}

func TestApproveAccessNeedsExportWorker(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "exporta@example.com", nil)

	req, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindAccess, "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// With no queue there is no worker to build the export, so the
	// approval is refused and the request stays open.
	if _, err := env.lgpd.ApproveRequest(42, req.ID, ""); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("approve without worker want ErrQueueUnavailable got %v", err)
	}
	pending, err := env.lgpd.GetRequest(req.ID, user.ID)
	if err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if pending.Status != constants.DataRequestStatusPending {
		t.Fatalf("refused approval must leave PENDING, got %s", pending.Status)
	}

	// The worker closes the request once the bundle is stored.
	if err := env.db.Model(&models.DataRequest{}).Where("id = ?", req.ID).Update("status", constants.DataRequestStatusProcessing).Error; err != nil {
		t.Fatalf("move to processing failed: %v", err)
	}
	if err := env.lgpd.CompleteExport(req.ID, "s3://exports/req.json"); err != nil {
		t.Fatalf("complete export failed: %v", err)
	}
	final, err := env.lgpd.GetRequest(req.ID, user.ID)
	if err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if final.Status != constants.DataRequestStatusCompleted || final.ExportURL == "" {
		t.Fatalf("export completion unexpected: %+v", final)
	}

	// Completing twice is a state error.
	if err := env.lgpd.CompleteExport(req.ID, "s3://exports/req.json"); !errors.Is(err, ErrDataRequestState) {
		t.Fatalf("re-complete want ErrDataRequestState got %v", err)
	}
}

func TestErasureExclusions(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "apaga@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 0)

	// Active subscription blocks erasure.
	sub, err := env.subscription.ActivateForPaidOrderTx(env.db, user.ID, plan, time.Now())
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	req, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindErasure, "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.lgpd.ApproveRequest(42, req.ID, ""); !errors.Is(err, ErrErasureActiveSubscription) {
		t.Fatalf("want ErrErasureActiveSubscription got %v", err)
	}
	if _, err := env.subscription.CancelNow(42, sub.ID); err != nil {
		t.Fatalf("cancel subscription failed: %v", err)
	}

	// Open withdrawal blocks erasure.
	env.createBankAccount(t, user.ID)
	env.createCommission(t, user.ID, 100, constants.CommissionStatusAvailable)
	withdrawal, err := env.withdrawal.Request(user.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if _, err := env.lgpd.ApproveRequest(42, req.ID, ""); !errors.Is(err, ErrErasurePendingWithdrawal) {
		t.Fatalf("want ErrErasurePendingWithdrawal got %v", err)
	}
	if _, err := env.withdrawal.CancelByUser(user.ID, withdrawal.ID); err != nil {
		t.Fatalf("cancel withdrawal failed: %v", err)
	}

	// Paid orders inside the fiscal retention window block erasure.
	env.cfg.LGPD.FiscalRetentionMonths = 60
	order, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.order.MarkOrderPaid(order.ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	// Payment reopened a subscription; close it so only retention blocks.
	current, err := env.subscription.GetCurrent(user.ID)
	if err != nil {
		t.Fatalf("load subscription failed: %v", err)
	}
	if _, err := env.subscription.CancelNow(42, current.ID); err != nil {
		t.Fatalf("cancel subscription failed: %v", err)
	}
	if _, err := env.lgpd.ApproveRequest(42, req.ID, ""); !errors.Is(err, ErrErasureFiscalRetention) {
		t.Fatalf("want ErrErasureFiscalRetention got %v", err)
	}

	// Outside the retention window the erasure goes through.
	env.cfg.LGPD.FiscalRetentionMonths = 0
	if _, err := env.lgpd.ApproveRequest(42, req.ID, ""); err != nil {
		t.Fatalf("approve erasure failed: %v", err)
	}
}

func TestErasureAnonymizesInPlace(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "esquecido@example.com", nil)
	user.Document = "98765432100"
	user.Phone = "+5511988887777"
	if err := env.db.Save(user).Error; err != nil {
		t.Fatalf("save user failed: %v", err)
	}
	env.createBankAccount(t, user.ID)
	env.createCommission(t, user.ID, 40, constants.CommissionStatusPaid)
	if err := env.db.Create(&models.Consent{UserID: user.ID, Kind: constants.ConsentKindTerms, Version: "v1"}).Error; err != nil {
		t.Fatalf("seed consent failed: %v", err)
	}

	req, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindErasure, "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.lgpd.ApproveRequest(42, req.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	var scrubbed models.User
	if err := env.db.First(&scrubbed, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if scrubbed.Status != constants.UserStatusAnonymized || scrubbed.AnonymizedAt == nil {
		t.Fatalf("user should be anonymized: %+v", scrubbed)
	}
	if scrubbed.DisplayName != constants.AnonymizedName || scrubbed.Document != "" || scrubbed.Phone != "" {
		t.Fatalf("PII should be scrubbed: %+v", scrubbed)
	}
	if strings.Contains(scrubbed.Email, "esquecido") {
		t.Fatalf("email should be replaced, got %s", scrubbed.Email)
	}
	if scrubbed.TokenVersion != user.TokenVersion+1 || scrubbed.TokenInvalidBefore == nil {
		t.Fatalf("sessions should be revoked: %+v", scrubbed)
	}

	// PII satellites are gone; the financial ledger survives.
	var bankCount, consentCount, commissionCount int64
	env.db.Model(&models.BankAccount{}).Where("user_id = ?", user.ID).Count(&bankCount)
	env.db.Model(&models.Consent{}).Where("user_id = ?", user.ID).Count(&consentCount)
	env.db.Model(&models.Commission{}).Where("earner_user_id = ?", user.ID).Count(&commissionCount)
	if bankCount != 0 || consentCount != 0 {
		t.Fatalf("bank=%d consent=%d rows should be hard-deleted", bankCount, consentCount)
	}
	if commissionCount != 1 {
		t.Fatalf("commission ledger must survive anonymization, got %d rows", commissionCount)
	}
}

func TestRejectRequiresNote(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "negado@example.com", nil)
	req, err := env.lgpd.CreateRequest(user.ID, constants.DataRequestKindAccess, "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := env.lgpd.RejectRequest(42, req.ID, "   "); !errors.Is(err, ErrDataRequestState) {
		t.Fatalf("blank note want ErrDataRequestState got %v", err)
	}

	rejected, err := env.lgpd.RejectRequest(42, req.ID, "identidade não confirmada")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.DataRequestStatusRejected || rejected.ReviewNote == "" {
		t.Fatalf("reject result unexpected: %+v", rejected)
	}
}

func TestBuildExportBundle(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "pacote@example.com", nil)
	plan := env.createPlan(t, "pro", 50, constants.PlanIntervalMonthly, 0)
	order, err := env.order.CreateOrder(CreateOrderInput{UserID: user.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.order.MarkOrderPaid(order.ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if err := env.db.Create(&models.Consent{UserID: user.ID, Kind: constants.ConsentKindTerms, Version: "v1"}).Error; err != nil {
		t.Fatalf("seed consent failed: %v", err)
	}

	bundle, err := env.lgpd.BuildExportBundle(user.ID)
	if err != nil {
		t.Fatalf("build bundle failed: %v", err)
	}
	if bundle.User == nil || bundle.User.ID != user.ID {
		t.Fatalf("bundle user missing")
	}
	if len(bundle.Orders) != 1 || len(bundle.Subscriptions) != 1 || len(bundle.Consents) != 1 {
		t.Fatalf("bundle incomplete: orders=%d subs=%d consents=%d", len(bundle.Orders), len(bundle.Subscriptions), len(bundle.Consents))
	}
}
