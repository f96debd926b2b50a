package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// NotificationKind selects the email template for a workflow event.
type NotificationKind string

const (
	NotifySubmissionReceipt NotificationKind = "submission_receipt" // to the requestor, on submission
	NotifySubmissionAlert   NotificationKind = "submission_alert"   // to all verifiers, on submission
	NotifyStatusChange      NotificationKind = "status_change"      // to the requestor, on any transition
	NotifyVerificationAlert NotificationKind = "verification_alert" // to all approvers, on verification
)

// Notification is the payload handed to the sink. Category and subcategory
// names are resolved by the caller so the sink stays storage-free.
type Notification struct {
	Kind            NotificationKind
	Expense         domain.Expense
	CategoryName    string
	SubcategoryName string
	Comment         string
}

// NotificationSink delivers workflow notifications. Delivery is fire and
// forget: failures are logged by the caller and never roll back the state
// transition that triggered them.
type NotificationSink interface {
	Notify(ctx context.Context, recipients []domain.User, n Notification) error
}
