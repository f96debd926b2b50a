package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExpenseRepo:  newPgxExpenseRepository(dbPool),
		CategoryRepo: newPgxCategoryRepository(dbPool),
		ProjectRepo:  newPgxProjectRepository(dbPool),
		SiteRepo:     newPgxSiteRepository(dbPool),
		UserRepo:     newPgxUserRepository(dbPool),
		AuditRepo:    newPgxAuditLogRepository(dbPool),
		BackupRepo:   newPgxBackupRepository(dbPool),
	}
}
