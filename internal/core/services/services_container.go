package services

import (
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/platform/config"
)

// NewServiceContainer wires every application service against the repository
// provider and the external adapters.
func NewServiceContainer(
	cfg *config.Config,
	repos *portsrepo.RepositoryProvider,
	notifier portssvc.NotificationSink,
	attachments portssvc.AttachmentStore,
	policy PolicyEngine,
) *portssvc.ServiceContainer {
	auditSvc := NewAuditService(repos.AuditRepo)
	userSvc := NewUserService(repos.UserRepo, auditSvc)

	return &portssvc.ServiceContainer{
		Expense: NewExpenseService(
			repos.ExpenseRepo,
			repos.CategoryRepo,
			repos.ProjectRepo,
			repos.SiteRepo,
			userSvc,
			auditSvc,
			notifier,
			attachments,
			policy,
		),
		Category:  NewCategoryService(repos.CategoryRepo, auditSvc),
		Project:   NewProjectService(repos.ProjectRepo, auditSvc),
		Site:      NewSiteService(repos.SiteRepo, auditSvc),
		User:      userSvc,
		Audit:     auditSvc,
		Backup:    NewBackupService(repos.BackupRepo, auditSvc, attachments),
		Reporting: NewReportingService(repos.ExpenseRepo, repos.CategoryRepo),

		GoogleOAuth: NewGoogleOAuthService(cfg),
	}
}
