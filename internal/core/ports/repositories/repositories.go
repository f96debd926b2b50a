package repositories

// RepositoryProvider bundles every repository implementation for injection
// into the service container.
type RepositoryProvider struct {
	ExpenseRepo  ExpenseRepositoryFacade
	CategoryRepo CategoryRepositoryFacade
	ProjectRepo  ProjectRepository
	SiteRepo     SiteRepository
	UserRepo     UserRepositoryFacade
	AuditRepo    AuditLogRepository
	BackupRepo   BackupRepository
}
