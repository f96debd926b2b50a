package dto

import (
	"time"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AttachmentUpload carries a named blob on submission. Data is base64 on the
// wire (encoding/json []byte convention).
type AttachmentUpload struct {
	Name     string `json:"name" binding:"required"`
	MimeType string `json:"type" binding:"required"`
	Data     []byte `json:"data" binding:"required"`
}

// CreateExpenseRequest defines the payload for submitting a new expense claim.
type CreateExpenseRequest struct {
	CategoryID            string            `json:"categoryId" binding:"required"`
	SubcategoryID         string            `json:"subcategoryId"`
	ProjectID             string            `json:"projectId" binding:"required"`
	SiteID                string            `json:"siteId" binding:"required"`
	Amount                decimal.Decimal   `json:"amount" binding:"required"`
	Description           string            `json:"description" binding:"required"`
	Attachment            *AttachmentUpload `json:"attachment,omitempty"`
	SubcategoryAttachment *AttachmentUpload `json:"subcategoryAttachment,omitempty"`
}

// Attachment slots on an expense claim.
const (
	AttachmentSlotExpense     = "attachment"
	AttachmentSlotSubcategory = "subcategory-attachment"
)

// AttachmentDownload carries a stored blob back to the caller.
type AttachmentDownload struct {
	Name     string
	MimeType string
	Data     []byte
}

// AttachmentListItem is one row of the attachments dashboard: a stored
// attachment together with the expense it belongs to.
type AttachmentListItem struct {
	ExpenseID       string    `json:"expenseID"`
	ReferenceNumber string    `json:"referenceNumber"`
	RequestorName   string    `json:"requestorName"`
	Slot            string    `json:"slot"`
	Name            string    `json:"name"`
	MimeType        string    `json:"type"`
	StorageKey      string    `json:"storageKey"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// ListAttachmentsResponse wraps the attachments dashboard listing.
type ListAttachmentsResponse struct {
	Attachments []AttachmentListItem `json:"attachments"`
}

// Expense queue sort modes.
const (
	SortByPriority = "priority"
	SortByDate     = "date"
)

// ListExpensesParams narrows and orders a role-scoped expense queue.
// Date bounds are inclusive calendar days.
type ListExpensesParams struct {
	Status  string     // optional explicit status filter ("" = role default queue, "All" = everything visible)
	FromDay *time.Time //= start of day, inclusive
	ToDay   *time.Time //= end of day, inclusive
	SortBy  string     // SortByPriority (default) or SortByDate
}

// UpdateStatusRequest defines the payload for a single status transition.
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// BulkUpdateStatusRequest applies one transition with a shared comment to many expenses.
type BulkUpdateStatusRequest struct {
	ExpenseIDs []string `json:"expenseIds" binding:"required,min=1"`
	Status     string   `json:"status" binding:"required"`
	Comment    string   `json:"comment"`
}

// BulkUpdateResult reports what a bulk transition actually did. Batches apply
// per item; missing or ineligible ids are skipped, not errors.
type BulkUpdateResult struct {
	UpdatedCount int      `json:"updatedCount"`
	SkippedCount int      `json:"skippedCount"`
	UpdatedIDs   []string `json:"updatedIds"`
}

// HistoryItemResponse is one lifecycle event of an expense.
type HistoryItemResponse struct {
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment,omitempty"`
}

// AttachmentResponse describes a stored attachment without its contents.
type AttachmentResponse struct {
	Name       string `json:"name"`
	MimeType   string `json:"type"`
	StorageKey string `json:"storageKey"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID             string                `json:"expenseID"`
	ReferenceNumber       string                `json:"referenceNumber"`
	RequestorID           string                `json:"requestorId"`
	RequestorName         string                `json:"requestorName"`
	CategoryID            string                `json:"categoryId"`
	SubcategoryID         string                `json:"subcategoryId,omitempty"`
	ProjectID             string                `json:"projectId"`
	SiteID                string                `json:"siteId"`
	Amount                decimal.Decimal       `json:"amount"`
	Description           string                `json:"description"`
	SubmittedAt           time.Time             `json:"submittedAt"`
	Status                string                `json:"status"`
	IsHighPriority        bool                  `json:"isHighPriority"`
	Attachment            *AttachmentResponse   `json:"attachment,omitempty"`
	SubcategoryAttachment *AttachmentResponse   `json:"subcategoryAttachment,omitempty"`
	History               []HistoryItemResponse `json:"history"`
	Version               int64                 `json:"version"`
}

// ListExpensesResponse wraps a queue listing.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

func toAttachmentResponse(a *domain.Attachment) *AttachmentResponse {
	if a == nil {
		return nil
	}
	return &AttachmentResponse{Name: a.Name, MimeType: a.MimeType, StorageKey: a.StorageKey}
}

// ToExpenseResponse converts a domain.Expense to its response DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	history := make([]HistoryItemResponse, len(e.History))
	for i, h := range e.History {
		history[i] = HistoryItemResponse{
			ActorID:   h.ActorID,
			ActorName: h.ActorName,
			Action:    h.Action,
			Timestamp: h.Timestamp,
			Comment:   h.Comment,
		}
	}
	return ExpenseResponse{
		ExpenseID:             e.ExpenseID,
		ReferenceNumber:       e.ReferenceNumber,
		RequestorID:           e.RequestorID,
		RequestorName:         e.RequestorName,
		CategoryID:            e.CategoryID,
		SubcategoryID:         e.SubcategoryID,
		ProjectID:             e.ProjectID,
		SiteID:                e.SiteID,
		Amount:                e.Amount,
		Description:           e.Description,
		SubmittedAt:           e.SubmittedAt,
		Status:                string(e.Status),
		IsHighPriority:        e.IsHighPriority,
		Attachment:            toAttachmentResponse(e.Attachment),
		SubcategoryAttachment: toAttachmentResponse(e.SubcategoryAttachment),
		History:               history,
		Version:               e.Version,
	}
}

// ToExpenseResponses converts a slice of domain expenses.
func ToExpenseResponses(expenses []domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}
