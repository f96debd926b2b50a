package dto

import (
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest defines the payload for creating a category.
// AutoApproveAmount of zero disables auto-approval for the category.
type CreateCategoryRequest struct {
	Name               string          `json:"name" binding:"required"`
	AttachmentRequired bool            `json:"attachmentRequired"`
	AutoApproveAmount  decimal.Decimal `json:"autoApproveAmount"`
}

// UpdateCategoryRequest defines the payload for updating a category.
type UpdateCategoryRequest struct {
	Name               *string          `json:"name,omitempty"`
	AttachmentRequired *bool            `json:"attachmentRequired,omitempty"`
	AutoApproveAmount  *decimal.Decimal `json:"autoApproveAmount,omitempty"`
}

// CreateSubcategoryRequest defines the payload for adding a subcategory to a category.
type CreateSubcategoryRequest struct {
	Name               string `json:"name" binding:"required"`
	AttachmentRequired bool   `json:"attachmentRequired"`
}

// SubcategoryResponse defines the data returned for a subcategory.
type SubcategoryResponse struct {
	SubcategoryID      string `json:"subcategoryID"`
	CategoryID         string `json:"categoryID"`
	Name               string `json:"name"`
	AttachmentRequired bool   `json:"attachmentRequired"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID         string                `json:"categoryID"`
	Name               string                `json:"name"`
	AttachmentRequired bool                  `json:"attachmentRequired"`
	AutoApproveAmount  decimal.Decimal       `json:"autoApproveAmount"`
	Subcategories      []SubcategoryResponse `json:"subcategories"`
}

// ListCategoriesResponse wraps a category listing.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ToCategoryResponse converts a domain.Category to its response DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	subs := make([]SubcategoryResponse, len(c.Subcategories))
	for i, s := range c.Subcategories {
		subs[i] = SubcategoryResponse{
			SubcategoryID:      s.SubcategoryID,
			CategoryID:         s.CategoryID,
			Name:               s.Name,
			AttachmentRequired: s.AttachmentRequired,
		}
	}
	return CategoryResponse{
		CategoryID:         c.CategoryID,
		Name:               c.Name,
		AttachmentRequired: c.AttachmentRequired,
		AutoApproveAmount:  c.AutoApproveAmount,
		Subcategories:      subs,
	}
}

// ToCategoryResponses converts a slice of domain categories.
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}
