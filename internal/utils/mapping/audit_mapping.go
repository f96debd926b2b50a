package mapping

import (
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/models"
)

// ToModelAuditLogItem converts a domain AuditLogItem to a model AuditLogItem
func ToModelAuditLogItem(d domain.AuditLogItem) models.AuditLogItem {
	return models.AuditLogItem{
		AuditID:   d.AuditID,
		Timestamp: d.Timestamp,
		ActorID:   d.ActorID,
		ActorName: d.ActorName,
		Action:    d.Action,
		Details:   d.Details,
	}
}

// ToDomainAuditLogItem converts a model AuditLogItem to a domain AuditLogItem
func ToDomainAuditLogItem(m models.AuditLogItem) domain.AuditLogItem {
	return domain.AuditLogItem{
		AuditID:   m.AuditID,
		Timestamp: m.Timestamp,
		ActorID:   m.ActorID,
		ActorName: m.ActorName,
		Action:    m.Action,
		Details:   m.Details,
	}
}

// ToDomainAuditLogSlice converts a slice of model audit rows.
func ToDomainAuditLogSlice(ms []models.AuditLogItem) []domain.AuditLogItem {
	ds := make([]domain.AuditLogItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditLogItem(m)
	}
	return ds
}
