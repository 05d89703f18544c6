package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"yamdb/internal/model"
	"yamdb/internal/service"
)

// CatalogHandler serves categories and genres.
type CatalogHandler struct {
	categoryService service.CategoryService
	genreService    service.GenreService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(categoryService service.CategoryService, genreService service.GenreService) *CatalogHandler {
	return &CatalogHandler{categoryService: categoryService, genreService: genreService}
}

type (
	CategoryPage = model.Page[model.Category]
	GenrePage    = model.Page[model.Genre]
)

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Param search query string false "Name substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} CategoryPage
// @Router /categories/ [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.categoryService.List(c.Request().Context(), params)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CategoryInput true "Category"
// @Success 201 {object} model.Category
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /categories/ [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	category, err := h.categoryService.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags categories
// @Security BearerAuth
// @Param slug path string true "Slug"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{slug}/ [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	if err := h.categoryService.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListGenres godoc
// @Summary List genres
// @Tags genres
// @Produce json
// @Param search query string false "Name substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} GenrePage
// @Router /genres/ [get]
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.genreService.List(c.Request().Context(), params)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// CreateGenre godoc
// @Summary Create a genre
// @Tags genres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.GenreInput true "Genre"
// @Success 201 {object} model.Genre
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /genres/ [post]
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var req service.GenreInput
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	genre, err := h.genreService.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, genre)
}

// DeleteGenre godoc
// @Summary Delete a genre
// @Tags genres
// @Security BearerAuth
// @Param slug path string true "Slug"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /genres/{slug}/ [delete]
func (h *CatalogHandler) DeleteGenre(c echo.Context) error {
	if err := h.genreService.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
