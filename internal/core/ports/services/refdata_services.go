package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// ProjectSvcFacade manages the project reference list. Mutations are
// admin-gated and audit-logged.
type ProjectSvcFacade interface {
	GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID string, actor domain.Actor) error
}

// SiteSvcFacade manages the site reference list. Mutations are admin-gated
// and audit-logged.
type SiteSvcFacade interface {
	GetSiteByID(ctx context.Context, siteID string) (*domain.Site, error)
	ListSites(ctx context.Context) ([]domain.Site, error)
	CreateSite(ctx context.Context, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Site, error)
	UpdateSite(ctx context.Context, siteID string, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Site, error)
	DeleteSite(ctx context.Context, siteID string, actor domain.Actor) error
}
