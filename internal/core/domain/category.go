package domain

import "github.com/shopspring/decimal"

// Subcategory refines a category. It is owned by its parent category and is
// never referenced by another category.
type Subcategory struct {
	SubcategoryID      string `json:"subcategoryID"`
	CategoryID         string `json:"categoryID"`
	Name               string `json:"name"`
	AttachmentRequired bool   `json:"attachmentRequired"`
}

// Category classifies expenses and carries the submission policy:
// whether an attachment is mandatory and up to which amount an expense is
// approved without human review.
type Category struct {
	CategoryID         string          `json:"categoryID"`
	Name               string          `json:"name"`
	AttachmentRequired bool            `json:"attachmentRequired"`
	AutoApproveAmount  decimal.Decimal `json:"autoApproveAmount"` // 0 means never auto-approve
	Subcategories      []Subcategory   `json:"subcategories,omitempty"`
	AuditFields
}

// FindSubcategory returns the owned subcategory with the given id, or nil.
func (c *Category) FindSubcategory(subcategoryID string) *Subcategory {
	for i := range c.Subcategories {
		if c.Subcategories[i].SubcategoryID == subcategoryID {
			return &c.Subcategories[i]
		}
	}
	return nil
}
