package repositories

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// AuditLogRepository is the append-only administrative trail. There is no
// update or delete: entries are immutable once written.
type AuditLogRepository interface {
	// AppendAuditLog persists a new audit entry.
	AppendAuditLog(ctx context.Context, item domain.AuditLogItem) error

	// FindAuditLog retrieves entries newest-first, up to limit (0 = all).
	FindAuditLog(ctx context.Context, limit int) ([]domain.AuditLogItem, error)
}
