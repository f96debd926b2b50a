package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// backupHandler exposes full-system export and restore.
type backupHandler struct {
	backupService portssvc.BackupSvcFacade
}

// newBackupHandler creates a new backupHandler.
func newBackupHandler(bs portssvc.BackupSvcFacade) *backupHandler {
	return &backupHandler{backupService: bs}
}

// registerBackupRoutes registers the backup routes. Admin only.
func registerBackupRoutes(rg *gin.RouterGroup, backupService portssvc.BackupSvcFacade) {
	h := newBackupHandler(backupService)

	backup := rg.Group("/backup", middleware.RequireRole(domain.RoleAdmin))
	{
		backup.POST("/export", h.exportBackup)
		backup.POST("/import", h.importBackup)
	}
}

// exportBackup godoc
// @Summary Export a full system snapshot
// @Description Takes a consistent snapshot of all data and returns it. The bundle is also shipped to the object store when one is configured.
// @Tags backup
// @Produce json
// @Success 200 {object} dto.ExportBackupResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/export [post]
func (h *backupHandler) exportBackup(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	resp, err := h.backupService.Export(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err, "Failed to export backup")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// importBackup godoc
// @Summary Restore from a previously exported snapshot
// @Description Replaces all system state with the bundle's contents, including expense histories and the audit log.
// @Tags backup
// @Accept json
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/import [post]
func (h *backupHandler) importBackup(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.ImportBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.backupService.Import(c.Request.Context(), req.Bundle, actor); err != nil {
		respondServiceError(c, err, "Failed to import backup")
		return
	}
	c.Status(http.StatusNoContent)
}
