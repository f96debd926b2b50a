package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	"github.com/expensehub/expense_approval_app/internal/models"
	"github.com/expensehub/expense_approval_app/internal/utils/mapping"
)

type PgxBackupRepository struct {
	BaseRepository
}

// newPgxBackupRepository creates a new repository for full-state snapshots.
func newPgxBackupRepository(pool *pgxpool.Pool) portsrepo.BackupRepository {
	return &PgxBackupRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BackupRepository = (*PgxBackupRepository)(nil)

// ExportBundle reads every table inside one repeatable-read transaction so the
// snapshot is internally consistent while other sessions keep writing.
func (r *PgxBackupRepository) ExportBundle(ctx context.Context) (*domain.BackupBundle, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	bundle := &domain.BackupBundle{}

	if bundle.Users, err = exportUsers(ctx, tx); err != nil {
		return nil, err
	}
	if bundle.Categories, err = exportCategories(ctx, tx); err != nil {
		return nil, err
	}
	if bundle.Projects, err = exportProjects(ctx, tx); err != nil {
		return nil, err
	}
	if bundle.Sites, err = exportSites(ctx, tx); err != nil {
		return nil, err
	}
	if bundle.Expenses, err = exportExpenses(ctx, tx); err != nil {
		return nil, err
	}
	if bundle.AuditLog, err = exportAuditLog(ctx, tx); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return bundle, nil
}

func exportUsers(ctx context.Context, tx pgx.Tx) ([]domain.User, error) {
	rows, err := tx.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return mapping.ToDomainUserSlice(users), nil
}

func exportCategories(ctx context.Context, tx pgx.Tx) ([]domain.Category, error) {
	rows, err := tx.Query(ctx, `
		SELECT category_id, name, attachment_required, auto_approve_amount,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM categories ORDER BY category_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to export categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	index := map[string]int{}
	for rows.Next() {
		var m models.Category
		if err := rows.Scan(
			&m.CategoryID, &m.Name, &m.AttachmentRequired, &m.AutoApproveAmount,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		index[m.CategoryID] = len(categories)
		categories = append(categories, mapping.ToDomainCategory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	subRows, err := tx.Query(ctx, `
		SELECT subcategory_id, category_id, name, attachment_required
		FROM subcategories ORDER BY subcategory_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to export subcategories: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var m models.Subcategory
		if err := subRows.Scan(&m.SubcategoryID, &m.CategoryID, &m.Name, &m.AttachmentRequired); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory row: %w", err)
		}
		if i, ok := index[m.CategoryID]; ok {
			categories[i].Subcategories = append(categories[i].Subcategories, mapping.ToDomainSubcategory(m))
		}
	}
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategory rows: %w", err)
	}
	return categories, nil
}

func exportProjects(ctx context.Context, tx pgx.Tx) ([]domain.Project, error) {
	rows, err := tx.Query(ctx, `
		SELECT project_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM projects ORDER BY project_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to export projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var m models.Project
		if err := rows.Scan(&m.ProjectID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, mapping.ToDomainProject(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

func exportSites(ctx context.Context, tx pgx.Tx) ([]domain.Site, error) {
	rows, err := tx.Query(ctx, `
		SELECT site_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM sites ORDER BY site_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to export sites: %w", err)
	}
	defer rows.Close()

	sites := []domain.Site{}
	for rows.Next() {
		var m models.Site
		if err := rows.Scan(&m.SiteID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, mapping.ToDomainSite(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}
	return sites, nil
}

func exportExpenses(ctx context.Context, tx pgx.Tx) ([]domain.Expense, error) {
	rows, err := tx.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY expense_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to export expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	index := map[string]int{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		index[m.ExpenseID] = len(expenses)
		expenses = append(expenses, mapping.ToDomainExpense(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}

	histRows, err := tx.Query(ctx, `
		SELECT seq, expense_id, actor_id, actor_name, action, timestamp, comment
		FROM expense_history ORDER BY expense_id, seq;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to export expense history: %w", err)
	}
	defer histRows.Close()

	for histRows.Next() {
		var h models.ExpenseHistory
		if err := histRows.Scan(&h.Seq, &h.ExpenseID, &h.ActorID, &h.ActorName, &h.Action, &h.Timestamp, &h.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan expense history row: %w", err)
		}
		if i, ok := index[h.ExpenseID]; ok {
			expenses[i].History = append(expenses[i].History, mapping.ToDomainHistoryItem(h))
		}
	}
	if err := histRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense history rows: %w", err)
	}
	return expenses, nil
}

func exportAuditLog(ctx context.Context, tx pgx.Tx) ([]domain.AuditLogItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT audit_id, timestamp, actor_id, actor_name, action, details
		FROM audit_log ORDER BY timestamp;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to export audit log: %w", err)
	}
	defer rows.Close()

	items := []models.AuditLogItem{}
	for rows.Next() {
		var m models.AuditLogItem
		if err := rows.Scan(&m.AuditID, &m.Timestamp, &m.ActorID, &m.ActorName, &m.Action, &m.Details); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}
	return mapping.ToDomainAuditLogSlice(items), nil
}

// ImportBundle replaces all state in one transaction. A failure at any point
// rolls the whole restore back.
func (r *PgxBackupRepository) ImportBundle(ctx context.Context, bundle domain.BackupBundle) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		TRUNCATE audit_log, expense_history, expenses, subcategories, categories, projects, sites, users;
	`)
	if err != nil {
		return fmt.Errorf("failed to clear tables for import: %w", err)
	}

	batch := &pgx.Batch{}
	for _, u := range bundle.Users {
		m := mapping.ToModelUser(u)
		batch.Queue(`
			INSERT INTO users (user_id, username, name, email, password_hash, role,
			                   created_at, created_by, last_updated_at, last_updated_by, deleted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`, m.UserID, m.Username, m.Name, m.Email, m.PasswordHash, m.Role,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.DeletedAt)
	}
	for _, c := range bundle.Categories {
		m := mapping.ToModelCategory(c)
		batch.Queue(`
			INSERT INTO categories (category_id, name, attachment_required, auto_approve_amount,
			                        created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, m.CategoryID, m.Name, m.AttachmentRequired, m.AutoApproveAmount,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
		for _, s := range c.Subcategories {
			sm := mapping.ToModelSubcategory(s)
			batch.Queue(`
				INSERT INTO subcategories (subcategory_id, category_id, name, attachment_required)
				VALUES ($1, $2, $3, $4);
			`, sm.SubcategoryID, sm.CategoryID, sm.Name, sm.AttachmentRequired)
		}
	}
	for _, p := range bundle.Projects {
		m := mapping.ToModelProject(p)
		batch.Queue(`
			INSERT INTO projects (project_id, name, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, m.ProjectID, m.Name, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	}
	for _, s := range bundle.Sites {
		m := mapping.ToModelSite(s)
		batch.Queue(`
			INSERT INTO sites (site_id, name, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, m.SiteID, m.Name, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	}
	for _, e := range bundle.Expenses {
		m := mapping.ToModelExpense(e)
		batch.Queue(`
			INSERT INTO expenses (`+expenseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
		`, m.ExpenseID, m.ReferenceNumber, m.RequestorID, m.RequestorName,
			m.CategoryID, m.SubcategoryID, m.ProjectID, m.SiteID,
			m.Amount, m.Description, m.SubmittedAt, m.Status, m.IsHighPriority,
			m.AttachmentName, m.AttachmentType, m.AttachmentKey,
			m.SubAttachmentName, m.SubAttachmentType, m.SubAttachmentKey,
			m.Version)
		for _, h := range e.History {
			hm := mapping.ToModelExpenseHistory(e.ExpenseID, h)
			batch.Queue(insertHistoryQuery,
				hm.ExpenseID, hm.ActorID, hm.ActorName, hm.Action, hm.Timestamp, hm.Comment)
		}
	}
	for _, a := range bundle.AuditLog {
		m := mapping.ToModelAuditLogItem(a)
		batch.Queue(`
			INSERT INTO audit_log (audit_id, timestamp, actor_id, actor_name, action, details)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, m.AuditID, m.Timestamp, m.ActorID, m.ActorName, m.Action, m.Details)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to execute import batch: %w", err)
	}
	return r.Commit(ctx, tx)
}
