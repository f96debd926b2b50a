package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// refdataHandler handles HTTP requests for the project and site reference
// lists.
type refdataHandler struct {
	projectService portssvc.ProjectSvcFacade
	siteService    portssvc.SiteSvcFacade
}

// newRefdataHandler creates a new refdataHandler.
func newRefdataHandler(ps portssvc.ProjectSvcFacade, ss portssvc.SiteSvcFacade) *refdataHandler {
	return &refdataHandler{projectService: ps, siteService: ss}
}

// registerRefdataRoutes registers project and site routes. Reads are open to
// any authenticated user; mutations require the admin role.
func registerRefdataRoutes(rg *gin.RouterGroup, projectService portssvc.ProjectSvcFacade, siteService portssvc.SiteSvcFacade) {
	h := newRefdataHandler(projectService, siteService)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	projects := rg.Group("/projects")
	{
		projects.GET("", h.listProjects)
		projects.GET("/:id", h.getProject)
		projects.POST("", adminOnly, h.createProject)
		projects.PUT("/:id", adminOnly, h.updateProject)
		projects.DELETE("/:id", adminOnly, h.deleteProject)
	}

	sites := rg.Group("/sites")
	{
		sites.GET("", h.listSites)
		sites.GET("/:id", h.getSite)
		sites.POST("", adminOnly, h.createSite)
		sites.PUT("/:id", adminOnly, h.updateSite)
		sites.DELETE("/:id", adminOnly, h.deleteSite)
	}
}

// listProjects godoc
// @Summary List projects
// @Tags reference
// @Produce json
// @Success 200 {array} dto.ProjectResponse
// @Security BearerAuth
// @Router /projects [get]
func (h *refdataHandler) listProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list projects")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponses(projects))
}

func (h *refdataHandler) getProject(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve project")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// createProject godoc
// @Summary Create a project
// @Tags reference
// @Accept json
// @Produce json
// @Param project body dto.CreateReferenceRequest true "Project details"
// @Success 201 {object} dto.ProjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects [post]
func (h *refdataHandler) createProject(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

func (h *refdataHandler) updateProject(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

func (h *refdataHandler) deleteProject(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondServiceError(c, err, "Failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

// listSites godoc
// @Summary List sites
// @Tags reference
// @Produce json
// @Success 200 {array} dto.SiteResponse
// @Security BearerAuth
// @Router /sites [get]
func (h *refdataHandler) listSites(c *gin.Context) {
	sites, err := h.siteService.ListSites(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list sites")
		return
	}
	c.JSON(http.StatusOK, dto.ToSiteResponses(sites))
}

func (h *refdataHandler) getSite(c *gin.Context) {
	site, err := h.siteService.GetSiteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve site")
		return
	}
	c.JSON(http.StatusOK, dto.ToSiteResponse(site))
}

// createSite godoc
// @Summary Create a site
// @Tags reference
// @Accept json
// @Produce json
// @Param site body dto.CreateReferenceRequest true "Site details"
// @Success 201 {object} dto.SiteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /sites [post]
func (h *refdataHandler) createSite(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	site, err := h.siteService.CreateSite(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to create site")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSiteResponse(site))
}

func (h *refdataHandler) updateSite(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	site, err := h.siteService.UpdateSite(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to update site")
		return
	}
	c.JSON(http.StatusOK, dto.ToSiteResponse(site))
}

func (h *refdataHandler) deleteSite(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	if err := h.siteService.DeleteSite(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondServiceError(c, err, "Failed to delete site")
		return
	}
	c.Status(http.StatusNoContent)
}
