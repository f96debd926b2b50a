package pgsql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	"github.com/expensehub/expense_approval_app/internal/models"
	"github.com/expensehub/expense_approval_app/internal/utils/mapping"
)

type PgxAuditLogRepository struct {
	BaseRepository
}

// newPgxAuditLogRepository creates a new repository for the audit trail.
func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepository {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogRepository = (*PgxAuditLogRepository)(nil)

// AppendAuditLog inserts one audit row. There is no update path.
func (r *PgxAuditLogRepository) AppendAuditLog(ctx context.Context, item domain.AuditLogItem) error {
	m := mapping.ToModelAuditLogItem(item)
	query := `
		INSERT INTO audit_log (audit_id, timestamp, actor_id, actor_name, action, details)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.AuditID, m.Timestamp, m.ActorID, m.ActorName, m.Action, m.Details)
	if err != nil {
		return fmt.Errorf("failed to insert audit log entry %s: %w", m.AuditID, err)
	}
	return nil
}

// FindAuditLog retrieves entries newest-first, up to limit (0 = all).
func (r *PgxAuditLogRepository) FindAuditLog(ctx context.Context, limit int) ([]domain.AuditLogItem, error) {
	query := `
		SELECT audit_id, timestamp, actor_id, actor_name, action, details
		FROM audit_log
		ORDER BY timestamp DESC
	`
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}
	query += ";"

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
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
