package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// AuditSvcFacade is the system-wide administrative trail.
//
// Record failures are fatal for administrative operations: an admin action
// must not succeed silently without its audit entry. Automated system actions
// (auto-approval) treat a failed append as a warning only.
type AuditSvcFacade interface {
	// Record appends one audit entry attributed to the actor.
	Record(ctx context.Context, actor domain.Actor, action string, details string) error

	// List retrieves entries newest-first, up to limit (0 = all).
	List(ctx context.Context, limit int) ([]domain.AuditLogItem, error)
}
