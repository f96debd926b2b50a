package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	"github.com/expensehub/expense_approval_app/internal/models"
	"github.com/expensehub/expense_approval_app/internal/utils/mapping"
)

type PgxProjectRepository struct {
	BaseRepository
}

// newPgxProjectRepository creates a new repository for the project reference list.
func newPgxProjectRepository(pool *pgxpool.Pool) portsrepo.ProjectRepository {
	return &PgxProjectRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ProjectRepository = (*PgxProjectRepository)(nil)

func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `
		SELECT project_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM projects
		WHERE project_id = $1;
	`
	var m models.Project
	err := r.Pool.QueryRow(ctx, query, projectID).Scan(
		&m.ProjectID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	project := mapping.ToDomainProject(m)
	return &project, nil
}

func (r *PgxProjectRepository) FindProjects(ctx context.Context) ([]domain.Project, error) {
	query := `
		SELECT project_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM projects
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
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

func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	m := mapping.ToModelProject(project)
	query := `
		INSERT INTO projects (project_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.ProjectID, m.Name, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert project %s: %w", m.ProjectID, err)
	}
	return nil
}

func (r *PgxProjectRepository) UpdateProject(ctx context.Context, project domain.Project) error {
	m := mapping.ToModelProject(project)
	query := `
		UPDATE projects
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE project_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.ProjectID, m.Name, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", m.ProjectID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM projects WHERE project_id = $1;`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", projectID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type PgxSiteRepository struct {
	BaseRepository
}

// newPgxSiteRepository creates a new repository for the site reference list.
func newPgxSiteRepository(pool *pgxpool.Pool) portsrepo.SiteRepository {
	return &PgxSiteRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SiteRepository = (*PgxSiteRepository)(nil)

func (r *PgxSiteRepository) FindSiteByID(ctx context.Context, siteID string) (*domain.Site, error) {
	query := `
		SELECT site_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM sites
		WHERE site_id = $1;
	`
	var m models.Site
	err := r.Pool.QueryRow(ctx, query, siteID).Scan(
		&m.SiteID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find site %s: %w", siteID, err)
	}
	site := mapping.ToDomainSite(m)
	return &site, nil
}

func (r *PgxSiteRepository) FindSites(ctx context.Context) ([]domain.Site, error) {
	query := `
		SELECT site_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM sites
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
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

func (r *PgxSiteRepository) SaveSite(ctx context.Context, site domain.Site) error {
	m := mapping.ToModelSite(site)
	query := `
		INSERT INTO sites (site_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.SiteID, m.Name, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert site %s: %w", m.SiteID, err)
	}
	return nil
}

func (r *PgxSiteRepository) UpdateSite(ctx context.Context, site domain.Site) error {
	m := mapping.ToModelSite(site)
	query := `
		UPDATE sites
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE site_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.SiteID, m.Name, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update site %s: %w", m.SiteID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSiteRepository) DeleteSite(ctx context.Context, siteID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM sites WHERE site_id = $1;`, siteID)
	if err != nil {
		return fmt.Errorf("failed to delete site %s: %w", siteID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
