package mapping

import (
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/models"
)

// ToModelCategory converts a domain Category to a model Category. Owned
// subcategories are persisted separately.
func ToModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID:         d.CategoryID,
		Name:               d.Name,
		AttachmentRequired: d.AttachmentRequired,
		AutoApproveAmount:  d.AutoApproveAmount,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategory converts a model Category to a domain Category.
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID:         m.CategoryID,
		Name:               m.Name,
		AttachmentRequired: m.AttachmentRequired,
		AutoApproveAmount:  m.AutoApproveAmount,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelSubcategory converts a domain Subcategory to a model Subcategory
func ToModelSubcategory(d domain.Subcategory) models.Subcategory {
	return models.Subcategory{
		SubcategoryID:      d.SubcategoryID,
		CategoryID:         d.CategoryID,
		Name:               d.Name,
		AttachmentRequired: d.AttachmentRequired,
	}
}

// ToDomainSubcategory converts a model Subcategory to a domain Subcategory
func ToDomainSubcategory(m models.Subcategory) domain.Subcategory {
	return domain.Subcategory{
		SubcategoryID:      m.SubcategoryID,
		CategoryID:         m.CategoryID,
		Name:               m.Name,
		AttachmentRequired: m.AttachmentRequired,
	}
}
