package repositories

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// CategoryReader defines read operations for categories. Categories are always
// loaded with their owned subcategories.
type CategoryReader interface {
	// FindCategoryByID retrieves a specific category with its subcategories.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// FindCategories retrieves all categories, ordered by name.
	FindCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryWriter defines write operations for categories and their owned
// subcategories. Deleting a category removes its subcategories with it.
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	UpdateCategory(ctx context.Context, category domain.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error

	SaveSubcategory(ctx context.Context, subcategory domain.Subcategory) error
	UpdateSubcategory(ctx context.Context, subcategory domain.Subcategory) error
	DeleteSubcategory(ctx context.Context, categoryID string, subcategoryID string) error
}

// CategoryRepositoryFacade combines all category repository interfaces.
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
