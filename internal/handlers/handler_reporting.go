package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// reportingHandler exposes the admin overview dashboard data.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers the reporting routes. Admin only.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports", middleware.RequireRole(domain.RoleAdmin))
	{
		reports.GET("/overview", h.getOverview)
	}
}

// getOverview godoc
// @Summary Get the system overview
// @Description Aggregates expense counts and amounts by status and category, plus recent workflow activity. Admin only.
// @Tags reports
// @Produce json
// @Param recentLimit query int false "Number of recent activity items" default(10)
// @Success 200 {object} dto.OverviewResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/overview [get]
func (h *reportingHandler) getOverview(c *gin.Context) {
	recentLimit := 0
	if raw := c.Query("recentLimit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid recentLimit"})
			return
		}
		recentLimit = parsed
	}

	overview, err := h.reportingService.Overview(c.Request.Context(), recentLimit)
	if err != nil {
		respondServiceError(c, err, "Failed to build overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}
