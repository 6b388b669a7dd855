package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/storage"

	"gorm.io/gorm"
)

const backupCategory = "backups"

// BackupService snapshots the business tables to object storage. The
// snapshot is a logical JSON dump, portable across database drivers.
type BackupService struct {
	cfg   *config.Config
	db    *gorm.DB
	store *storage.Store
	audit *AuditService
}

// NewBackupService creates the backup service.
func NewBackupService(cfg *config.Config, db *gorm.DB, store *storage.Store, audit *AuditService) *BackupService {
	return &BackupService{
		cfg:   cfg,
		db:    db,
		store: store,
		audit: audit,
	}
}

// Run builds and stores one snapshot, then prunes old copies down to
// KeepCopies. requestedBy is zero for the nightly run.
func (s *BackupService) Run(ctx context.Context, requestedBy uint) (string, error) {
	if !s.store.Enabled() {
		return "", ErrStorageNotConfigured
	}

	snapshot, err := s.buildSnapshot()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("snapshot-%s.json", time.Now().UTC().Format("20060102-150405"))
	key, err := s.store.PutObject(ctx, s.backupCategory(), name, data, "application/json")
	if err != nil {
		return "", err
	}

	if err := s.prune(ctx); err != nil {
		logger.Warnw("backup_prune_failed", "error", err)
	}

	s.audit.Record(AuditEntry{
		ActorType: AuditActorSystem,
		ActorID:   requestedBy,
		Action:    constants.AuditActionBackupCompleted,
		Metadata:  map[string]interface{}{"key": key},
	})
	return key, nil
}

type backupSnapshot struct {
	GeneratedAt   time.Time                  `json:"generated_at"`
	Tables        map[string]json.RawMessage `json:"tables"`
	RowCounts     map[string]int64           `json:"row_counts"`
	SchemaVersion string                     `json:"schema_version"`
}

// buildSnapshot dumps every business table. Soft-deleted rows are kept;
// a backup that silently drops them is not a backup.
func (s *BackupService) buildSnapshot() (*backupSnapshot, error) {
	snapshot := &backupSnapshot{
		GeneratedAt:   time.Now().UTC(),
		Tables:        make(map[string]json.RawMessage),
		RowCounts:     make(map[string]int64),
		SchemaVersion: "1",
	}
	dump := func(name string, dest interface{}) error {
		if err := s.db.Unscoped().Find(dest).Error; err != nil {
			return fmt.Errorf("dump %s: %w", name, err)
		}
		raw, err := json.Marshal(dest)
		if err != nil {
			return err
		}
		snapshot.Tables[name] = raw
		var count int64
		if err := s.db.Unscoped().Table(name).Count(&count).Error; err != nil {
			return err
		}
		snapshot.RowCounts[name] = count
		return nil
	}

	if err := dump("users", &[]models.User{}); err != nil {
		return nil, err
	}
	if err := dump("plans", &[]models.Plan{}); err != nil {
		return nil, err
	}
	if err := dump("subscriptions", &[]models.Subscription{}); err != nil {
		return nil, err
	}
	if err := dump("orders", &[]models.Order{}); err != nil {
		return nil, err
	}
	if err := dump("order_items", &[]models.OrderItem{}); err != nil {
		return nil, err
	}
	if err := dump("coupons", &[]models.Coupon{}); err != nil {
		return nil, err
	}
	if err := dump("coupon_usages", &[]models.CouponUsage{}); err != nil {
		return nil, err
	}
	if err := dump("commissions", &[]models.Commission{}); err != nil {
		return nil, err
	}
	if err := dump("withdrawal_requests", &[]models.WithdrawalRequest{}); err != nil {
		return nil, err
	}
	if err := dump("bank_accounts", &[]models.BankAccount{}); err != nil {
		return nil, err
	}
	if err := dump("addresses", &[]models.Address{}); err != nil {
		return nil, err
	}
	if err := dump("consents", &[]models.Consent{}); err != nil {
		return nil, err
	}
	if err := dump("data_requests", &[]models.DataRequest{}); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// prune removes the oldest copies beyond KeepCopies. Keys embed the
// timestamp, so lexical order is chronological.
func (s *BackupService) prune(ctx context.Context) error {
	keep := s.cfg.Backup.KeepCopies
	if keep <= 0 {
		return nil
	}
	keys, err := s.store.ListKeys(ctx, s.backupCategory())
	if err != nil {
		return err
	}
	if len(keys) <= keep {
		return nil
	}
	sort.Strings(keys)
	for _, key := range keys[:len(keys)-keep] {
		if err := s.store.DeleteKey(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) backupCategory() string {
	if s.cfg.Backup.Prefix != "" {
		return s.cfg.Backup.Prefix
	}
	return backupCategory
}
