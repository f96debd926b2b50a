package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// ExpenseReaderSvc defines the read side: direct lookups and the role-scoped
// queue views.
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense the actor is allowed to see.
	// Unknown ids surface apperrors.ErrNotFound.
	GetExpenseByID(ctx context.Context, expenseID string, actor domain.Actor) (*domain.Expense, error)

	// ListExpenses derives the actor's queue: role filter, optional explicit
	// status filter, inclusive calendar-day range, priority or date ordering.
	ListExpenses(ctx context.Context, actor domain.Actor, params dto.ListExpensesParams) ([]domain.Expense, error)

	// GetAttachment loads the stored blob behind one of an expense's
	// attachment slots. Visibility follows GetExpenseByID; an empty slot
	// surfaces apperrors.ErrNotFound.
	GetAttachment(ctx context.Context, expenseID string, slot string, actor domain.Actor) (*dto.AttachmentDownload, error)

	// ListAttachments returns every stored attachment across the collection,
	// newest expense first. Admin only.
	ListAttachments(ctx context.Context, actor domain.Actor) ([]dto.AttachmentListItem, error)
}

// ExpenseSubmitterSvc defines creation of new expense claims.
type ExpenseSubmitterSvc interface {
	// CreateExpense validates references and attachment policy, applies the
	// auto-approval check, persists the aggregate and fires notifications.
	// The returned expense is fully self-consistent (status matches the last
	// history entry) before it is exposed anywhere.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, requestor domain.Actor) (*domain.Expense, error)
}

// ExpenseWorkflowSvc defines the approval state machine operations: single and
// bulk transitions plus the priority flag.
type ExpenseWorkflowSvc interface {
	// UpdateStatus applies one transition. A missing expense is a silent
	// no-op (nil, nil); a transition the actor's role does not permit returns
	// apperrors.ErrInvalidTransition; a stale read returns apperrors.ErrConflict.
	UpdateStatus(ctx context.Context, expenseID string, newStatus domain.ExpenseStatus, actor domain.Actor, comment string) (*domain.Expense, error)

	// BulkUpdateStatus applies UpdateStatus semantics independently per id
	// with one shared comment, records a single audit entry for the batch and
	// notifies per changed expense.
	BulkUpdateStatus(ctx context.Context, expenseIDs []string, newStatus domain.ExpenseStatus, actor domain.Actor, comment string) (*dto.BulkUpdateResult, error)

	// TogglePriority flips the high-priority flag regardless of status and
	// records an audit entry describing the flip direction.
	TogglePriority(ctx context.Context, expenseID string, actor domain.Actor) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense service interfaces.
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseSubmitterSvc
	ExpenseWorkflowSvc
}
