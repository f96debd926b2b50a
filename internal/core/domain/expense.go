package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the workflow state of an expense claim. The values are the
// wire/display strings and are persisted as-is.
type ExpenseStatus string

const (
	StatusPendingVerification ExpenseStatus = "Pending Verification"
	StatusPendingApproval     ExpenseStatus = "Pending Approval"
	StatusApproved            ExpenseStatus = "Approved"
	StatusRejected            ExpenseStatus = "Rejected"
)

// IsTerminal reports whether no further transitions are permitted from s.
func (s ExpenseStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsValid reports whether s is one of the known workflow states.
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case StatusPendingVerification, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// History action labels. Every status transition appends exactly one history
// item carrying one of these.
const (
	ActionSubmitted    = "Submitted"
	ActionVerified     = "Verified"
	ActionApproved     = "Approved"
	ActionRejected     = "Rejected"
	ActionAutoApproved = "Auto-Approved"
)

// ActionForStatus maps a target status to the history action label recorded
// when an actor moves an expense into it.
func ActionForStatus(newStatus ExpenseStatus) string {
	switch newStatus {
	case StatusPendingApproval:
		return ActionVerified
	case StatusApproved:
		return ActionApproved
	case StatusRejected:
		return ActionRejected
	}
	return ""
}

// HistoryItem is one entry in an expense's append-only lifecycle trail.
// Actor names are captured at write time for historical fidelity.
type HistoryItem struct {
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment,omitempty"`
}

// Attachment is a named blob held in the external attachment store. The core
// never inspects contents, only presence.
type Attachment struct {
	Name       string `json:"name"`
	MimeType   string `json:"type"`
	StorageKey string `json:"storageKey"`
}

// Expense is the aggregate root of the approval workflow.
type Expense struct {
	ExpenseID       string          `json:"expenseID"` // Primary Key (UUID)
	ReferenceNumber string          `json:"referenceNumber"`
	RequestorID     string          `json:"requestorId"`
	RequestorName   string          `json:"requestorName"`
	CategoryID      string          `json:"categoryId"`
	SubcategoryID   string          `json:"subcategoryId,omitempty"`
	ProjectID       string          `json:"projectId"`
	SiteID          string          `json:"siteId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	Status          ExpenseStatus   `json:"status"`
	IsHighPriority  bool            `json:"isHighPriority"`

	Attachment            *Attachment `json:"attachment,omitempty"`
	SubcategoryAttachment *Attachment `json:"subcategoryAttachment,omitempty"`

	// History is append-only and chronological; it always holds at least the
	// submission event.
	History []HistoryItem `json:"history"`

	// Version supports optimistic concurrency on status/priority mutations.
	Version int64 `json:"version"`
}

// LastAction returns the action label of the most recent history item, or ""
// for an (invalid) empty history.
func (e *Expense) LastAction() string {
	if len(e.History) == 0 {
		return ""
	}
	return e.History[len(e.History)-1].Action
}

// AppendHistory records a lifecycle event. Insertion order is chronological
// and entries are never reordered or removed.
func (e *Expense) AppendHistory(actor Actor, action string, at time.Time, comment string) {
	e.History = append(e.History, HistoryItem{
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		Action:    action,
		Timestamp: at,
		Comment:   comment,
	})
}
