package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a row in the expenses table. Attachments are flattened
// into nullable column triples; history lives in expense_history.
type Expense struct {
	ExpenseID       string          `json:"expenseID"` // Primary Key (UUID)
	ReferenceNumber string          `json:"referenceNumber"`
	RequestorID     string          `json:"requestorID"`
	RequestorName   string          `json:"requestorName"`
	CategoryID      string          `json:"categoryID"`
	SubcategoryID   *string         `json:"subcategoryID,omitempty"`
	ProjectID       string          `json:"projectID"`
	SiteID          string          `json:"siteID"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	Status          string          `json:"status"`
	IsHighPriority  bool            `json:"isHighPriority"`

	AttachmentName *string `json:"attachmentName,omitempty"`
	AttachmentType *string `json:"attachmentType,omitempty"`
	AttachmentKey  *string `json:"attachmentKey,omitempty"`

	SubAttachmentName *string `json:"subAttachmentName,omitempty"`
	SubAttachmentType *string `json:"subAttachmentType,omitempty"`
	SubAttachmentKey  *string `json:"subAttachmentKey,omitempty"`

	Version int64 `json:"version"`
}

// ExpenseHistory represents a row in the expense_history table. Seq preserves
// insertion order within an expense.
type ExpenseHistory struct {
	Seq       int64     `json:"seq"` // Primary Key (bigserial)
	ExpenseID string    `json:"expenseID"`
	ActorID   string    `json:"actorID"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment"`
}
