package repositories

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// ProjectRepository provides CRUD over the project reference list.
type ProjectRepository interface {
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)
	FindProjects(ctx context.Context) ([]domain.Project, error)
	SaveProject(ctx context.Context, project domain.Project) error
	UpdateProject(ctx context.Context, project domain.Project) error
	DeleteProject(ctx context.Context, projectID string) error
}

// SiteRepository provides CRUD over the site reference list.
type SiteRepository interface {
	FindSiteByID(ctx context.Context, siteID string) (*domain.Site, error)
	FindSites(ctx context.Context) ([]domain.Site, error)
	SaveSite(ctx context.Context, site domain.Site) error
	UpdateSite(ctx context.Context, site domain.Site) error
	DeleteSite(ctx context.Context, siteID string) error
}
