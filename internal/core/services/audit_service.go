package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
)

type auditService struct {
	auditRepo portsrepo.AuditLogRepository
}

// NewAuditService creates the audit trail service.
func NewAuditService(auditRepo portsrepo.AuditLogRepository) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, actor domain.Actor, action string, details string) error {
	item := domain.AuditLogItem{
		AuditID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
	}
	if err := s.auditRepo.AppendAuditLog(ctx, item); err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, limit int) ([]domain.AuditLogItem, error) {
	items, err := s.auditRepo.FindAuditLog(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return items, nil
}
