package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// backupService snapshots and restores full system state. Snapshots also ship
// to the object store when one is configured, so scheduled runs leave a copy
// outside the database.
type backupService struct {
	backupRepo portsrepo.BackupRepository
	auditSvc   portssvc.AuditSvcFacade
	store      portssvc.AttachmentStore
}

// NewBackupService creates the backup service. store may be nil, in which case
// bundles are only returned inline.
func NewBackupService(backupRepo portsrepo.BackupRepository, auditSvc portssvc.AuditSvcFacade, store portssvc.AttachmentStore) portssvc.BackupSvcFacade {
	return &backupService{backupRepo: backupRepo, auditSvc: auditSvc, store: store}
}

var _ portssvc.BackupSvcFacade = (*backupService)(nil)

func (s *backupService) Export(ctx context.Context, actor domain.Actor) (*dto.ExportBackupResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor != domain.SystemActor {
		if err := requireAdmin(actor); err != nil {
			return nil, err
		}
	}

	bundle, err := s.backupRepo.ExportBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export backup bundle: %w", err)
	}
	bundle.TakenAt = time.Now().UTC()

	resp := &dto.ExportBackupResponse{Bundle: bundle}
	if s.store != nil {
		payload, err := json.Marshal(bundle)
		if err != nil {
			return nil, fmt.Errorf("failed to encode backup bundle: %w", err)
		}
		name := fmt.Sprintf("backups/%s.json", bundle.TakenAt.Format("20060102T150405Z"))
		key, err := s.store.Put(ctx, name, "application/json", payload)
		if err != nil {
			// The caller still receives the bundle; only the offsite copy failed.
			logger.Warn("Failed to ship backup to object store", slog.String("error", err.Error()))
		} else {
			resp.StorageKey = key
		}
	}

	if err := s.auditSvc.Record(ctx, actor, "Exported Backup",
		fmt.Sprintf("%d users, %d expenses, %d audit entries",
			len(bundle.Users), len(bundle.Expenses), len(bundle.AuditLog))); err != nil {
		return nil, err
	}

	logger.Info("Backup exported",
		slog.Int("expenses", len(bundle.Expenses)),
		slog.String("storage_key", resp.StorageKey))
	return resp, nil
}

func (s *backupService) Import(ctx context.Context, bundle domain.BackupBundle, actor domain.Actor) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := s.backupRepo.ImportBundle(ctx, bundle); err != nil {
		return fmt.Errorf("failed to import backup bundle: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Imported Backup",
		fmt.Sprintf("Restored %d users, %d expenses taken at %s",
			len(bundle.Users), len(bundle.Expenses), bundle.TakenAt.Format(time.RFC3339))); err != nil {
		return err
	}

	logger.Info("Backup imported", slog.Int("expenses", len(bundle.Expenses)))
	return nil
}
