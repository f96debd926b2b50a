package domain

// Project is a free-form reference maintained by administrators; expenses are
// booked against exactly one project.
type Project struct {
	ProjectID string `json:"projectID"`
	Name      string `json:"name"`
	AuditFields
}

// Site is the physical location an expense is booked against.
type Site struct {
	SiteID string `json:"siteID"`
	Name   string `json:"name"`
	AuditFields
}
