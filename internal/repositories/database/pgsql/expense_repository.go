package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	"github.com/expensehub/expense_approval_app/internal/models"
	"github.com/expensehub/expense_approval_app/internal/utils/mapping"
)

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense aggregates.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `
	expense_id, reference_number, requestor_id, requestor_name,
	category_id, subcategory_id, project_id, site_id,
	amount, description, submitted_at, status, is_high_priority,
	attachment_name, attachment_type, attachment_key,
	sub_attachment_name, sub_attachment_type, sub_attachment_key,
	version
`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.ReferenceNumber,
		&m.RequestorID,
		&m.RequestorName,
		&m.CategoryID,
		&m.SubcategoryID,
		&m.ProjectID,
		&m.SiteID,
		&m.Amount,
		&m.Description,
		&m.SubmittedAt,
		&m.Status,
		&m.IsHighPriority,
		&m.AttachmentName,
		&m.AttachmentType,
		&m.AttachmentKey,
		&m.SubAttachmentName,
		&m.SubAttachmentType,
		&m.SubAttachmentKey,
		&m.Version,
	)
	return m, err
}

// SaveExpense inserts a new expense and its initial history rows in one
// transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelExpense(expense)
	insertQuery := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.ExpenseID,
		m.ReferenceNumber,
		m.RequestorID,
		m.RequestorName,
		m.CategoryID,
		m.SubcategoryID,
		m.ProjectID,
		m.SiteID,
		m.Amount,
		m.Description,
		m.SubmittedAt,
		m.Status,
		m.IsHighPriority,
		m.AttachmentName,
		m.AttachmentType,
		m.AttachmentKey,
		m.SubAttachmentName,
		m.SubAttachmentType,
		m.SubAttachmentKey,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense %s: %w", m.ExpenseID, err)
	}

	batch := &pgx.Batch{}
	for _, h := range expense.History {
		hm := mapping.ToModelExpenseHistory(expense.ExpenseID, h)
		batch.Queue(insertHistoryQuery,
			hm.ExpenseID, hm.ActorID, hm.ActorName, hm.Action, hm.Timestamp, hm.Comment)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert history for expense %s: %w", m.ExpenseID, err)
	}

	return r.Commit(ctx, tx)
}

const insertHistoryQuery = `
	INSERT INTO expense_history (expense_id, actor_id, actor_name, action, timestamp, comment)
	VALUES ($1, $2, $3, $4, $5, $6);
`

// FindExpenseByID retrieves an expense with its full history.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	m, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}

	expense := mapping.ToDomainExpense(m)
	historyMap, err := r.findHistoryByExpenseIDs(ctx, []string{expenseID})
	if err != nil {
		return nil, err
	}
	expense.History = historyMap[expenseID]
	return &expense, nil
}

// FindExpenses retrieves expenses matching the filter, most recent first, each
// with its full history.
func (r *PgxExpenseRepository) FindExpenses(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses`
	var clauses []string
	var args []interface{}

	if filter.RequestorID != "" {
		args = append(args, filter.RequestorID)
		clauses = append(clauses, "requestor_id = $"+strconv.Itoa(len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		clauses = append(clauses, "status = ANY($"+strconv.Itoa(len(args))+")")
	}
	// Date bounds compare calendar days, not instants.
	if filter.FromDay != nil {
		args = append(args, *filter.FromDay)
		clauses = append(clauses, "submitted_at::date >= $"+strconv.Itoa(len(args))+"::date")
	}
	if filter.ToDay != nil {
		args = append(args, *filter.ToDay)
		clauses = append(clauses, "submitted_at::date <= $"+strconv.Itoa(len(args))+"::date")
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY submitted_at DESC;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	modelExpenses := []models.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		modelExpenses = append(modelExpenses, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}

	ids := make([]string, len(modelExpenses))
	for i, m := range modelExpenses {
		ids[i] = m.ExpenseID
	}
	historyMap, err := r.findHistoryByExpenseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, len(modelExpenses))
	for i, m := range modelExpenses {
		expenses[i] = mapping.ToDomainExpense(m)
		expenses[i].History = historyMap[m.ExpenseID]
	}
	return expenses, nil
}

// findHistoryByExpenseIDs batch-loads history rows grouped by expense, in
// insertion order.
func (r *PgxExpenseRepository) findHistoryByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]domain.HistoryItem, error) {
	historyMap := make(map[string][]domain.HistoryItem, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return historyMap, nil
	}

	query := `
		SELECT seq, expense_id, actor_id, actor_name, action, timestamp, comment
		FROM expense_history
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, seq;
	`
	rows, err := r.Pool.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.ExpenseHistory
		if err := rows.Scan(&h.Seq, &h.ExpenseID, &h.ActorID, &h.ActorName, &h.Action, &h.Timestamp, &h.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan expense history row: %w", err)
		}
		historyMap[h.ExpenseID] = append(historyMap[h.ExpenseID], mapping.ToDomainHistoryItem(h))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense history rows: %w", err)
	}
	return historyMap, nil
}

// UpdateExpenseStatus applies a version-guarded status change and appends the
// accompanying history row in one transaction.
func (r *PgxExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE expenses
		SET status = $2, version = version + 1
		WHERE expense_id = $1 AND version = $3;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, expenseID, string(newStatus), expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update status of expense %s: %w", expenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, expenseID)
	}

	hm := mapping.ToModelExpenseHistory(expenseID, entry)
	_, err = tx.Exec(ctx, insertHistoryQuery,
		hm.ExpenseID, hm.ActorID, hm.ActorName, hm.Action, hm.Timestamp, hm.Comment)
	if err != nil {
		return fmt.Errorf("failed to insert history for expense %s: %w", expenseID, err)
	}

	return r.Commit(ctx, tx)
}

// UpdateExpensePriority applies a version-guarded priority flip.
func (r *PgxExpenseRepository) UpdateExpensePriority(ctx context.Context, expenseID string, expectedVersion int64, isHighPriority bool) error {
	query := `
		UPDATE expenses
		SET is_high_priority = $2, version = version + 1
		WHERE expense_id = $1 AND version = $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, expenseID, isHighPriority, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update priority of expense %s: %w", expenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, expenseID)
	}
	return nil
}

// classifyMissedUpdate distinguishes a vanished row from a version mismatch
// after a guarded update touched nothing.
func (r *PgxExpenseRepository) classifyMissedUpdate(ctx context.Context, expenseID string) error {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expenses WHERE expense_id = $1);`, expenseID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existence of expense %s: %w", expenseID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrConflict
}
