package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// expenseHandler handles HTTP requests for expense claims and the approval
// workflow.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es}
}

// registerExpenseRoutes registers all expense-related routes.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:id", h.getExpense)
		expenses.GET("/:id/attachment", h.getAttachment)
		expenses.GET("/:id/subcategory-attachment", h.getSubcategoryAttachment)
		expenses.PATCH("/:id/status", h.updateStatus)
		expenses.POST("/bulk-status", h.bulkUpdateStatus)
		expenses.PATCH("/:id/priority",
			middleware.RequireRole(domain.RoleVerifier, domain.RoleApprover, domain.RoleAdmin),
			h.togglePriority)
	}

	rg.GET("/attachments", middleware.RequireRole(domain.RoleAdmin), h.listAttachments)
}

// createExpense godoc
// @Summary Submit a new expense claim
// @Description Validates references and attachment policy, applies the auto-approval check and stores the claim.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Attachment policy violation"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to create expense")
		return
	}

	logger.Info("Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("reference_number", expense.ReferenceNumber))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// getExpense godoc
// @Summary Get an expense by ID
// @Description Retrieves one expense with its full history. Requestors may only see their own.
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

func (h *expenseHandler) serveAttachment(c *gin.Context, slot string) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	download, err := h.expenseService.GetAttachment(c.Request.Context(), c.Param("id"), slot, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to download attachment")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Name))
	c.Data(http.StatusOK, download.MimeType, download.Data)
}

// getAttachment godoc
// @Summary Download an expense's attachment
// @Description Streams the stored attachment blob. Requestors may only download from their own expenses.
// @Tags expenses
// @Produce octet-stream
// @Param id path string true "Expense ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Expense unknown or no attachment stored"
// @Security BearerAuth
// @Router /expenses/{id}/attachment [get]
func (h *expenseHandler) getAttachment(c *gin.Context) {
	h.serveAttachment(c, dto.AttachmentSlotExpense)
}

// getSubcategoryAttachment godoc
// @Summary Download an expense's subcategory attachment
// @Description Streams the stored subcategory attachment blob. Requestors may only download from their own expenses.
// @Tags expenses
// @Produce octet-stream
// @Param id path string true "Expense ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Expense unknown or no attachment stored"
// @Security BearerAuth
// @Router /expenses/{id}/subcategory-attachment [get]
func (h *expenseHandler) getSubcategoryAttachment(c *gin.Context) {
	h.serveAttachment(c, dto.AttachmentSlotSubcategory)
}

// listAttachments godoc
// @Summary List every stored attachment
// @Description Returns all attachments across all expenses with the expense each belongs to. Admin only.
// @Tags expenses
// @Produce json
// @Success 200 {object} dto.ListAttachmentsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /attachments [get]
func (h *expenseHandler) listAttachments(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	attachments, err := h.expenseService.ListAttachments(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err, "Failed to list attachments")
		return
	}
	c.JSON(http.StatusOK, dto.ListAttachmentsResponse{Attachments: attachments})
}

const dayLayout = "2006-01-02"

// listExpenses godoc
// @Summary List the actor's expense queue
// @Description Returns the role-scoped queue: requestors see their own claims, verifiers and approvers their pending work, admins everything.
// @Tags expenses
// @Produce json
// @Param status query string false "Explicit status filter, or 'All'"
// @Param fromDay query string false "Inclusive start day (YYYY-MM-DD)"
// @Param toDay query string false "Inclusive end day (YYYY-MM-DD)"
// @Param sortBy query string false "priority (default) or date"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	params := dto.ListExpensesParams{
		Status: c.Query("status"),
		SortBy: c.DefaultQuery("sortBy", dto.SortByPriority),
	}
	if raw := c.Query("fromDay"); raw != "" {
		day, err := time.Parse(dayLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid fromDay, expected YYYY-MM-DD"})
			return
		}
		params.FromDay = &day
	}
	if raw := c.Query("toDay"); raw != "" {
		day, err := time.Parse(dayLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid toDay, expected YYYY-MM-DD"})
			return
		}
		params.ToDay = &day
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), actor, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ListExpensesResponse{Expenses: dto.ToExpenseResponses(expenses)})
}

// updateStatus godoc
// @Summary Transition an expense
// @Description Applies one workflow transition. A missing expense is a silent no-op and returns 204.
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param transition body dto.UpdateStatusRequest true "Target status and optional comment"
// @Success 200 {object} dto.ExpenseResponse
// @Success 204 "Expense no longer exists"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transition not permitted or concurrent update"
// @Security BearerAuth
// @Router /expenses/{id}/status [patch]
func (h *expenseHandler) updateStatus(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	expense, err := h.expenseService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.ExpenseStatus(req.Status), actor, req.Comment)
	if err != nil {
		respondServiceError(c, err, "Failed to update expense status")
		return
	}
	if expense == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// bulkUpdateStatus godoc
// @Summary Transition many expenses at once
// @Description Applies one transition independently per expense. Ineligible or missing expenses are skipped, not errors.
// @Tags expenses
// @Accept json
// @Produce json
// @Param transition body dto.BulkUpdateStatusRequest true "Expense IDs, target status and optional shared comment"
// @Success 200 {object} dto.BulkUpdateResult
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/bulk-status [post]
func (h *expenseHandler) bulkUpdateStatus(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.expenseService.BulkUpdateStatus(c.Request.Context(), req.ExpenseIDs, domain.ExpenseStatus(req.Status), actor, req.Comment)
	if err != nil {
		respondServiceError(c, err, "Failed to apply bulk status update")
		return
	}
	c.JSON(http.StatusOK, result)
}

// togglePriority godoc
// @Summary Toggle an expense's high-priority flag
// @Description Flips the priority flag. Works regardless of workflow status.
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent update"
// @Security BearerAuth
// @Router /expenses/{id}/priority [patch]
func (h *expenseHandler) togglePriority(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.TogglePriority(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondServiceError(c, err, "Failed to toggle expense priority")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
