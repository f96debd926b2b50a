package repositories

import (
	"context"
	"time"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// ExpenseFilter narrows expense listings. Zero values mean "no constraint".
// Date bounds are inclusive and compared by calendar day, not time of day.
type ExpenseFilter struct {
	RequestorID string
	Statuses    []domain.ExpenseStatus
	FromDay     *time.Time
	ToDay       *time.Time
}

// ExpenseReader defines read operations for expense aggregates. Implementations
// always return the full aggregate including its history.
type ExpenseReader interface {
	// FindExpenseByID retrieves a single expense with its history.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// FindExpenses retrieves expenses matching the filter, most recent first.
	FindExpenses(ctx context.Context, filter ExpenseFilter) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense aggregates.
//
// Status and priority writes are guarded by an optimistic version check: the
// write applies only when the stored version equals expectedVersion, otherwise
// apperrors.ErrConflict is returned. A missing expense returns
// apperrors.ErrNotFound; callers decide whether that is an error or a no-op.
type ExpenseWriter interface {
	// SaveExpense persists a new expense aggregate, including its initial
	// history entries, atomically.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpenseStatus sets the new status and appends the accompanying
	// history item in a single transaction.
	UpdateExpenseStatus(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error

	// UpdateExpensePriority sets the high-priority flag.
	UpdateExpensePriority(ctx context.Context, expenseID string, expectedVersion int64, isHighPriority bool) error
}

// ExpenseRepositoryFacade combines all expense repository interfaces.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
