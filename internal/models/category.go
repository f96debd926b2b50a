package models

import "github.com/shopspring/decimal"

// Category represents a row in the categories table.
type Category struct {
	CategoryID         string          `json:"categoryID"` // Primary Key (UUID)
	Name               string          `json:"name"`
	AttachmentRequired bool            `json:"attachmentRequired"`
	AutoApproveAmount  decimal.Decimal `json:"autoApproveAmount"` // zero disables auto-approval
	AuditFields
}

// Subcategory represents a row in the subcategories table.
type Subcategory struct {
	SubcategoryID      string `json:"subcategoryID"` // Primary Key (UUID)
	CategoryID         string `json:"categoryID"`    // FK to categories
	Name               string `json:"name"`
	AttachmentRequired bool   `json:"attachmentRequired"`
}
