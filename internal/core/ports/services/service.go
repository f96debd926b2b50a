package services

// ServiceContainer holds instances of all the application services. This is
// the main entry point for accessing service functionality and is used
// throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Expense   ExpenseSvcFacade
	Category  CategorySvcFacade
	Project   ProjectSvcFacade
	Site      SiteSvcFacade
	User      UserSvcFacade
	Audit     AuditSvcFacade
	Backup    BackupSvcFacade
	Reporting ReportingSvcFacade

	GoogleOAuth GoogleOAuthSvcFacade
}
