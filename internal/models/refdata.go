package models

// Project represents a row in the projects table.
type Project struct {
	ProjectID string `json:"projectID"` // Primary Key (UUID)
	Name      string `json:"name"`
	AuditFields
}

// Site represents a row in the sites table.
type Site struct {
	SiteID string `json:"siteID"` // Primary Key (UUID)
	Name   string `json:"name"`
	AuditFields
}
