package worker

import (
	"context"
	"errors"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	commissionReleaseInterval = time.Minute
	renewalScanInterval       = 5 * time.Minute
)

// Service runs the asynq server plus the periodic loops: commission
// release, renewal scanning and the nightly backup.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the server and the ticker loops.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil {
		if s.consumer.CommissionService != nil {
			go s.runCommissionReleaseLoop(ctx)
		}
		if s.consumer.SubscriptionService != nil {
			go s.runRenewalScanLoop(ctx)
		}
		if s.consumer.BackupService != nil && s.consumer.Config != nil && s.consumer.Config.Backup.Enabled {
			go s.runNightlyBackupLoop(ctx)
		}
	}
	return s.server.Run(s.mux)
}

// Stop shuts the server down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runCommissionReleaseLoop(ctx context.Context) {
	runOnce := func() {
		if _, err := s.consumer.CommissionService.ReleaseDueCommissions(time.Now()); err != nil {
			logger.Warnw("worker_commission_release_loop_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(commissionReleaseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runRenewalScanLoop(ctx context.Context) {
	runOnce := func() {
		if _, err := s.consumer.SubscriptionService.ScanRenewals(time.Now()); err != nil {
			logger.Warnw("worker_renewal_scan_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(renewalScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runNightlyBackupLoop enqueues one backup per day at the configured UTC
// hour. Going through the queue keeps a single run even with several
// worker replicas racing the same tick.
func (s *Service) runNightlyBackupLoop(ctx context.Context) {
	for {
		next := nextBackupTime(time.Now().UTC(), s.consumer.Config.Backup.HourUTC)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.consumer.QueueClient.EnqueueBackupRun(queue.BackupRunPayload{}); err != nil {
				logger.Warnw("worker_backup_enqueue_failed", "error", err)
			}
		}
	}
}

func nextBackupTime(now time.Time, hourUTC int) time.Time {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 3
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
