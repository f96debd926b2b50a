package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// CategoryReaderSvc defines read operations for categories.
type CategoryReaderSvc interface {
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryWriterSvc defines administrative mutations on categories and their
// owned subcategories. All mutations are admin-gated and audit-logged.
type CategoryWriterSvc interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, actor domain.Actor) (*domain.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, actor domain.Actor) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string, actor domain.Actor) error

	CreateSubcategory(ctx context.Context, categoryID string, req dto.CreateSubcategoryRequest, actor domain.Actor) (*domain.Subcategory, error)
	DeleteSubcategory(ctx context.Context, categoryID string, subcategoryID string, actor domain.Actor) error
}

// CategorySvcFacade combines all category service interfaces.
type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
}
