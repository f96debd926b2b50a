package dto

import "github.com/expensehub/expense_approval_app/internal/core/domain"

// CreateReferenceRequest is the shared payload for creating a project or site.
type CreateReferenceRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProjectResponse defines the data returned for a project.
type ProjectResponse struct {
	ProjectID string `json:"projectID"`
	Name      string `json:"name"`
}

// SiteResponse defines the data returned for a site.
type SiteResponse struct {
	SiteID string `json:"siteID"`
	Name   string `json:"name"`
}

// ToProjectResponse converts a domain.Project to its response DTO.
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{ProjectID: p.ProjectID, Name: p.Name}
}

// ToSiteResponse converts a domain.Site to its response DTO.
func ToSiteResponse(s *domain.Site) SiteResponse {
	return SiteResponse{SiteID: s.SiteID, Name: s.Name}
}

// ToProjectResponses converts a slice of domain projects.
func ToProjectResponses(projects []domain.Project) []ProjectResponse {
	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = ToProjectResponse(&projects[i])
	}
	return responses
}

// ToSiteResponses converts a slice of domain sites.
func ToSiteResponses(sites []domain.Site) []SiteResponse {
	responses := make([]SiteResponse, len(sites))
	for i := range sites {
		responses[i] = ToSiteResponse(&sites[i])
	}
	return responses
}
