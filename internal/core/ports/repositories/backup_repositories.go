package repositories

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// BackupRepository snapshots and restores the whole store. ExportBundle reads
// everything in one repeatable-read transaction so the snapshot is internally
// consistent even while other sessions mutate the store; ImportBundle replaces
// all state in one transaction so a failed import leaves the store untouched.
type BackupRepository interface {
	ExportBundle(ctx context.Context) (*domain.BackupBundle, error)
	ImportBundle(ctx context.Context, bundle domain.BackupBundle) error
}
