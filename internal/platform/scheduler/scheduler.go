package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

const backupRunTimeout = 5 * time.Minute

// BackupScheduler runs periodic snapshot exports attributed to the system
// actor. A run that overlaps a still-active previous run is skipped.
type BackupScheduler struct {
	cron      *cron.Cron
	backupSvc portssvc.BackupSvcFacade
	logger    *slog.Logger
	spec      string
}

// NewBackupScheduler creates a scheduler for the given cron spec
// (e.g. "0 2 * * *" for nightly at 02:00).
func NewBackupScheduler(spec string, backupSvc portssvc.BackupSvcFacade, logger *slog.Logger) *BackupScheduler {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	return &BackupScheduler{
		cron:      c,
		backupSvc: backupSvc,
		logger:    logger,
		spec:      spec,
	}
}

// Start registers the backup job and begins the schedule.
func (s *BackupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Backup scheduler started", slog.String("spec", s.spec))
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *BackupScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Backup scheduler stopped")
}

func (s *BackupScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), backupRunTimeout)
	defer cancel()
	ctx = middleware.ContextWithLogger(ctx, s.logger)

	resp, err := s.backupSvc.Export(ctx, domain.SystemActor)
	if err != nil {
		s.logger.Error("Scheduled backup failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Scheduled backup completed",
		slog.Int("expenses", len(resp.Bundle.Expenses)),
		slog.String("storage_key", resp.StorageKey))
}
