package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
)

// categoryHandler handles HTTP requests for expense categories and their
// subcategories.
type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

// newCategoryHandler creates a new categoryHandler.
func newCategoryHandler(cs portssvc.CategorySvcFacade) *categoryHandler {
	return &categoryHandler{categoryService: cs}
}

// registerCategoryRoutes registers all category-related routes. Reads are open
// to any authenticated user; mutations require the admin role.
func registerCategoryRoutes(rg *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := newCategoryHandler(categoryService)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	categories := rg.Group("/categories")
	{
		categories.GET("", h.listCategories)
		categories.GET("/:id", h.getCategory)
		categories.POST("", adminOnly, h.createCategory)
		categories.PUT("/:id", adminOnly, h.updateCategory)
		categories.DELETE("/:id", adminOnly, h.deleteCategory)
		categories.POST("/:id/subcategories", adminOnly, h.createSubcategory)
		categories.DELETE("/:id/subcategories/:subId", adminOnly, h.deleteSubcategory)
	}
}

// listCategories godoc
// @Summary List categories
// @Description Retrieves all categories with their subcategories.
// @Tags categories
// @Produce json
// @Success 200 {object} dto.ListCategoriesResponse
// @Security BearerAuth
// @Router /categories [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ListCategoriesResponse{Categories: dto.ToCategoryResponses(categories)})
}

// getCategory godoc
// @Summary Get a category by ID
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id} [get]
func (h *categoryHandler) getCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// createCategory godoc
// @Summary Create a category
// @Description Creates a category with its attachment and auto-approval policy. Admin only.
// @Tags categories
// @Accept json
// @Produce json
// @Param category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(category))
}

// updateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body dto.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id} [put]
func (h *categoryHandler) updateCategory(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// deleteCategory godoc
// @Summary Delete a category
// @Description Deletes a category and its subcategories.
// @Tags categories
// @Param id path string true "Category ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *categoryHandler) deleteCategory(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondServiceError(c, err, "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// createSubcategory godoc
// @Summary Add a subcategory to a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param subcategory body dto.CreateSubcategoryRequest true "Subcategory details"
// @Success 201 {object} dto.SubcategoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id}/subcategories [post]
func (h *categoryHandler) createSubcategory(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.categoryService.CreateSubcategory(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondServiceError(c, err, "Failed to create subcategory")
		return
	}
	c.JSON(http.StatusCreated, dto.SubcategoryResponse{
		SubcategoryID:      sub.SubcategoryID,
		CategoryID:         sub.CategoryID,
		Name:               sub.Name,
		AttachmentRequired: sub.AttachmentRequired,
	})
}

// deleteSubcategory godoc
// @Summary Delete a subcategory
// @Tags categories
// @Param id path string true "Category ID"
// @Param subId path string true "Subcategory ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id}/subcategories/{subId} [delete]
func (h *categoryHandler) deleteSubcategory(c *gin.Context) {
	actor, ok := mustGetActor(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteSubcategory(c.Request.Context(), c.Param("id"), c.Param("subId"), actor); err != nil {
		respondServiceError(c, err, "Failed to delete subcategory")
		return
	}
	c.Status(http.StatusNoContent)
}
