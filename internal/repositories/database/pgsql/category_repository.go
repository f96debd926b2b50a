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

type PgxCategoryRepository struct {
	BaseRepository
}

// newPgxCategoryRepository creates a new repository for categories and their
// owned subcategories.
func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

// FindCategoryByID retrieves a category with its subcategories.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `
		SELECT category_id, name, attachment_required, auto_approve_amount,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM categories
		WHERE category_id = $1;
	`
	var m models.Category
	err := r.Pool.QueryRow(ctx, query, categoryID).Scan(
		&m.CategoryID,
		&m.Name,
		&m.AttachmentRequired,
		&m.AutoApproveAmount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}

	category := mapping.ToDomainCategory(m)
	subMap, err := r.findSubcategoriesByCategoryIDs(ctx, []string{categoryID})
	if err != nil {
		return nil, err
	}
	category.Subcategories = subMap[categoryID]
	return &category, nil
}

// FindCategories retrieves all categories with their subcategories, by name.
func (r *PgxCategoryRepository) FindCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT category_id, name, attachment_required, auto_approve_amount,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM categories
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	modelCategories := []models.Category{}
	for rows.Next() {
		var m models.Category
		if err := rows.Scan(
			&m.CategoryID,
			&m.Name,
			&m.AttachmentRequired,
			&m.AutoApproveAmount,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		modelCategories = append(modelCategories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	ids := make([]string, len(modelCategories))
	for i, m := range modelCategories {
		ids[i] = m.CategoryID
	}
	subMap, err := r.findSubcategoriesByCategoryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, len(modelCategories))
	for i, m := range modelCategories {
		categories[i] = mapping.ToDomainCategory(m)
		categories[i].Subcategories = subMap[m.CategoryID]
	}
	return categories, nil
}

func (r *PgxCategoryRepository) findSubcategoriesByCategoryIDs(ctx context.Context, categoryIDs []string) (map[string][]domain.Subcategory, error) {
	subMap := make(map[string][]domain.Subcategory, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return subMap, nil
	}

	query := `
		SELECT subcategory_id, category_id, name, attachment_required
		FROM subcategories
		WHERE category_id = ANY($1)
		ORDER BY category_id, name;
	`
	rows, err := r.Pool.Query(ctx, query, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Subcategory
		if err := rows.Scan(&m.SubcategoryID, &m.CategoryID, &m.Name, &m.AttachmentRequired); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory row: %w", err)
		}
		subMap[m.CategoryID] = append(subMap[m.CategoryID], mapping.ToDomainSubcategory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategory rows: %w", err)
	}
	return subMap, nil
}

// SaveCategory persists a new category.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	query := `
		INSERT INTO categories (category_id, name, attachment_required, auto_approve_amount,
		                        created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CategoryID,
		m.Name,
		m.AttachmentRequired,
		m.AutoApproveAmount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", m.CategoryID, err)
	}
	return nil
}

// UpdateCategory updates name and policy fields of a category.
func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	query := `
		UPDATE categories
		SET name = $2, attachment_required = $3, auto_approve_amount = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE category_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.CategoryID,
		m.Name,
		m.AttachmentRequired,
		m.AutoApproveAmount,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", m.CategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category; subcategories go with it via FK cascade.
func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveSubcategory persists a new subcategory under its category.
func (r *PgxCategoryRepository) SaveSubcategory(ctx context.Context, subcategory domain.Subcategory) error {
	m := mapping.ToModelSubcategory(subcategory)
	query := `
		INSERT INTO subcategories (subcategory_id, category_id, name, attachment_required)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query, m.SubcategoryID, m.CategoryID, m.Name, m.AttachmentRequired)
	if err != nil {
		return fmt.Errorf("failed to insert subcategory %s: %w", m.SubcategoryID, err)
	}
	return nil
}

// UpdateSubcategory updates a subcategory's name and attachment flag.
func (r *PgxCategoryRepository) UpdateSubcategory(ctx context.Context, subcategory domain.Subcategory) error {
	m := mapping.ToModelSubcategory(subcategory)
	query := `
		UPDATE subcategories
		SET name = $2, attachment_required = $3
		WHERE subcategory_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.SubcategoryID, m.Name, m.AttachmentRequired)
	if err != nil {
		return fmt.Errorf("failed to update subcategory %s: %w", m.SubcategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSubcategory removes one subcategory of a category.
func (r *PgxCategoryRepository) DeleteSubcategory(ctx context.Context, categoryID string, subcategoryID string) error {
	query := `DELETE FROM subcategories WHERE subcategory_id = $1 AND category_id = $2;`
	cmdTag, err := r.Pool.Exec(ctx, query, subcategoryID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete subcategory %s: %w", subcategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
