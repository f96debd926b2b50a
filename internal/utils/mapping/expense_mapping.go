package mapping

import (
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/models"
)

func toModelAttachment(a *domain.Attachment) (name, mimeType, key *string) {
	if a == nil {
		return nil, nil, nil
	}
	n, t, k := a.Name, a.MimeType, a.StorageKey
	return &n, &t, &k
}

func toDomainAttachment(name, mimeType, key *string) *domain.Attachment {
	if key == nil {
		return nil
	}
	a := domain.Attachment{StorageKey: *key}
	if name != nil {
		a.Name = *name
	}
	if mimeType != nil {
		a.MimeType = *mimeType
	}
	return &a
}

// ToModelExpense converts a domain Expense to a model Expense. History rows
// are persisted separately.
func ToModelExpense(d domain.Expense) models.Expense {
	m := models.Expense{
		ExpenseID:       d.ExpenseID,
		ReferenceNumber: d.ReferenceNumber,
		RequestorID:     d.RequestorID,
		RequestorName:   d.RequestorName,
		CategoryID:      d.CategoryID,
		ProjectID:       d.ProjectID,
		SiteID:          d.SiteID,
		Amount:          d.Amount,
		Description:     d.Description,
		SubmittedAt:     d.SubmittedAt,
		Status:          string(d.Status),
		IsHighPriority:  d.IsHighPriority,
		Version:         d.Version,
	}
	if d.SubcategoryID != "" {
		sub := d.SubcategoryID
		m.SubcategoryID = &sub
	}
	m.AttachmentName, m.AttachmentType, m.AttachmentKey = toModelAttachment(d.Attachment)
	m.SubAttachmentName, m.SubAttachmentType, m.SubAttachmentKey = toModelAttachment(d.SubcategoryAttachment)
	return m
}

// ToDomainExpense converts a model Expense to a domain Expense. The caller
// attaches history afterwards.
func ToDomainExpense(m models.Expense) domain.Expense {
	d := domain.Expense{
		ExpenseID:       m.ExpenseID,
		ReferenceNumber: m.ReferenceNumber,
		RequestorID:     m.RequestorID,
		RequestorName:   m.RequestorName,
		CategoryID:      m.CategoryID,
		ProjectID:       m.ProjectID,
		SiteID:          m.SiteID,
		Amount:          m.Amount,
		Description:     m.Description,
		SubmittedAt:     m.SubmittedAt,
		Status:          domain.ExpenseStatus(m.Status),
		IsHighPriority:  m.IsHighPriority,
		Version:         m.Version,
	}
	if m.SubcategoryID != nil {
		d.SubcategoryID = *m.SubcategoryID
	}
	d.Attachment = toDomainAttachment(m.AttachmentName, m.AttachmentType, m.AttachmentKey)
	d.SubcategoryAttachment = toDomainAttachment(m.SubAttachmentName, m.SubAttachmentType, m.SubAttachmentKey)
	return d
}

// ToModelExpenseHistory converts a domain HistoryItem to a model row.
func ToModelExpenseHistory(expenseID string, h domain.HistoryItem) models.ExpenseHistory {
	return models.ExpenseHistory{
		ExpenseID: expenseID,
		ActorID:   h.ActorID,
		ActorName: h.ActorName,
		Action:    h.Action,
		Timestamp: h.Timestamp,
		Comment:   h.Comment,
	}
}

// ToDomainHistoryItem converts a model history row to a domain HistoryItem.
func ToDomainHistoryItem(m models.ExpenseHistory) domain.HistoryItem {
	return domain.HistoryItem{
		ActorID:   m.ActorID,
		ActorName: m.ActorName,
		Action:    m.Action,
		Timestamp: m.Timestamp,
		Comment:   m.Comment,
	}
}
