package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// BackupSvcFacade snapshots and restores the full system state.
type BackupSvcFacade interface {
	// Export takes a consistent snapshot, ships it to the object store when
	// one is configured, and returns the bundle. Audit-logged.
	Export(ctx context.Context, actor domain.Actor) (*dto.ExportBackupResponse, error)

	// Import replaces all state from a previously exported bundle.
	// Export followed by Import reproduces an equivalent state, including
	// every expense's history and the audit log.
	Import(ctx context.Context, bundle domain.BackupBundle, actor domain.Actor) error
}
