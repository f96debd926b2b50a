package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// auditHandler exposes the system-wide administrative audit log.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

// newAuditHandler creates a new auditHandler.
func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers the audit log routes. Admin only.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	audit := rg.Group("/audit-log", middleware.RequireRole(domain.RoleAdmin))
	{
		audit.GET("", h.listAuditLog)
	}
}

// listAuditLog godoc
// @Summary List audit log entries
// @Description Retrieves audit entries newest first. Admin only.
// @Tags audit
// @Produce json
// @Param limit query int false "Maximum entries to return (0 = all)"
// @Success 200 {object} dto.ListAuditLogResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /audit-log [get]
func (h *auditHandler) listAuditLog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = parsed
	}

	items, err := h.auditService.List(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err, "Failed to list audit log")
		return
	}
	c.JSON(http.StatusOK, dto.ListAuditLogResponse{Items: dto.ToAuditLogItemResponses(items)})
}
