package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// categoryService manages expense categories and their policy knobs. All
// mutations are admin-only and leave an audit trail.
type categoryService struct {
	categoryRepo portsrepo.CategoryRepositoryFacade
	auditSvc     portssvc.AuditSvcFacade
}

// NewCategoryService creates the category service facade.
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade, auditSvc portssvc.AuditSvcFacade) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo, auditSvc: auditSvc}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func requireAdmin(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: %s role required", apperrors.ErrForbidden, domain.RoleAdmin)
	}
	return nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, actor domain.Actor) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.AutoApproveAmount.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: auto-approve amount must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID:         uuid.NewString(),
		Name:               req.Name,
		AttachmentRequired: req.AttachmentRequired,
		AutoApproveAmount:  req.AutoApproveAmount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Created Category", fmt.Sprintf("Category %q", category.Name)); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, actor domain.Actor) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.AttachmentRequired != nil {
		category.AttachmentRequired = *req.AttachmentRequired
	}
	if req.AutoApproveAmount != nil {
		if req.AutoApproveAmount.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: auto-approve amount must not be negative", apperrors.ErrValidation)
		}
		category.AutoApproveAmount = *req.AutoApproveAmount
	}
	category.LastUpdatedAt = time.Now().UTC()
	category.LastUpdatedBy = actor.UserID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Updated Category", fmt.Sprintf("Category %q", category.Name)); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string, actor domain.Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}
	if err := s.categoryRepo.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return s.auditSvc.Record(ctx, actor, "Deleted Category", fmt.Sprintf("Category %q", category.Name))
}

func (s *categoryService) CreateSubcategory(ctx context.Context, categoryID string, req dto.CreateSubcategoryRequest, actor domain.Actor) (*domain.Subcategory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}

	subcategory := domain.Subcategory{
		SubcategoryID:      uuid.NewString(),
		CategoryID:         category.CategoryID,
		Name:               req.Name,
		AttachmentRequired: req.AttachmentRequired,
	}
	if err := s.categoryRepo.SaveSubcategory(ctx, subcategory); err != nil {
		return nil, fmt.Errorf("failed to save subcategory: %w", err)
	}
	if err := s.auditSvc.Record(ctx, actor, "Created Subcategory", fmt.Sprintf("Subcategory %q under %q", subcategory.Name, category.Name)); err != nil {
		return nil, err
	}
	return &subcategory, nil
}

func (s *categoryService) DeleteSubcategory(ctx context.Context, categoryID string, subcategoryID string, actor domain.Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}
	subcategory := category.FindSubcategory(subcategoryID)
	if subcategory == nil {
		return fmt.Errorf("%w: subcategory %s not found in category %s", apperrors.ErrNotFound, subcategoryID, categoryID)
	}
	if err := s.categoryRepo.DeleteSubcategory(ctx, categoryID, subcategoryID); err != nil {
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}
	return s.auditSvc.Record(ctx, actor, "Deleted Subcategory", fmt.Sprintf("Subcategory %q under %q", subcategory.Name, category.Name))
}
