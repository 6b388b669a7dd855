package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/assinahub/assinahub/internal/models"

	"github.com/glebarez/sqlite"
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
