package dto

import "github.com/expensehub/expense_approval_app/internal/core/domain"

// ExportBackupResponse reports where a backup landed and returns the bundle
// inline for download.
type ExportBackupResponse struct {
	StorageKey string               `json:"storageKey,omitempty"`
	Bundle     *domain.BackupBundle `json:"bundle"`
}

// ImportBackupRequest carries a previously exported bundle to restore.
type ImportBackupRequest struct {
	Bundle domain.BackupBundle `json:"bundle" binding:"required"`
}
