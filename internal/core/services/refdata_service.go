package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// projectService manages the project reference list.
type projectService struct {
	projectRepo portsrepo.ProjectRepository
	auditSvc    portssvc.AuditSvcFacade
}

// NewProjectService creates the project reference service.
func NewProjectService(projectRepo portsrepo.ProjectRepository, auditSvc portssvc.AuditSvcFacade) portssvc.ProjectSvcFacade {
	return &projectService{projectRepo: projectRepo, auditSvc: auditSvc}
}

var _ portssvc.ProjectSvcFacade = (*projectService)(nil)

func (s *projectService) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projectRepo.FindProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) CreateProject(ctx context.Context, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	project := domain.Project{
		ProjectID: uuid.NewString(),
		Name:      req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Created Project", fmt.Sprintf("Project %q", project.Name)); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *projectService) UpdateProject(ctx context.Context, projectID string, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	project.Name = req.Name
	project.LastUpdatedAt = time.Now().UTC()
	project.LastUpdatedBy = actor.UserID
	if err := s.projectRepo.UpdateProject(ctx, *project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Updated Project", fmt.Sprintf("Project %q", project.Name)); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) DeleteProject(ctx context.Context, projectID string, actor domain.Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	if err := s.projectRepo.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return s.auditSvc.Record(ctx, actor, "Deleted Project", fmt.Sprintf("Project %q", project.Name))
}

// siteService manages the site reference list.
type siteService struct {
	siteRepo portsrepo.SiteRepository
	auditSvc portssvc.AuditSvcFacade
}

// NewSiteService creates the site reference service.
func NewSiteService(siteRepo portsrepo.SiteRepository, auditSvc portssvc.AuditSvcFacade) portssvc.SiteSvcFacade {
	return &siteService{siteRepo: siteRepo, auditSvc: auditSvc}
}

var _ portssvc.SiteSvcFacade = (*siteService)(nil)

func (s *siteService) GetSiteByID(ctx context.Context, siteID string) (*domain.Site, error) {
	site, err := s.siteRepo.FindSiteByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find site %s: %w", siteID, err)
	}
	return site, nil
}

func (s *siteService) ListSites(ctx context.Context) ([]domain.Site, error) {
	sites, err := s.siteRepo.FindSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

func (s *siteService) CreateSite(ctx context.Context, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Site, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	site := domain.Site{
		SiteID: uuid.NewString(),
		Name:   req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.siteRepo.SaveSite(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to save site: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Created Site", fmt.Sprintf("Site %q", site.Name)); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *siteService) UpdateSite(ctx context.Context, siteID string, req dto.CreateReferenceRequest, actor domain.Actor) (*domain.Site, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	site, err := s.siteRepo.FindSiteByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find site %s: %w", siteID, err)
	}
	site.Name = req.Name
	site.LastUpdatedAt = time.Now().UTC()
	site.LastUpdatedBy = actor.UserID
	if err := s.siteRepo.UpdateSite(ctx, *site); err != nil {
		return nil, fmt.Errorf("failed to update site: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Updated Site", fmt.Sprintf("Site %q", site.Name)); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *siteService) DeleteSite(ctx context.Context, siteID string, actor domain.Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	site, err := s.siteRepo.FindSiteByID(ctx, siteID)
	if err != nil {
		return fmt.Errorf("failed to find site %s: %w", siteID, err)
	}
	if err := s.siteRepo.DeleteSite(ctx, siteID); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return s.auditSvc.Record(ctx, actor, "Deleted Site", fmt.Sprintf("Site %q", site.Name))
}
