package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"yamdb/internal/model"
	"yamdb/internal/service"
)

// TitleHandler serves titles.
type TitleHandler struct {
	titleService service.TitleService
}

// NewTitleHandler creates a new title handler.
func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// TitleRequest is a full or partial title payload. Category and genres are
// referenced by slug.
type TitleRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

func (r TitleRequest) input() service.TitleInput {
	return service.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genre,
	}
}

// TitlePage is a paginated title listing.
type TitlePage = model.Page[model.Title]

// ListTitles godoc
// @Summary List titles
// @Tags titles
// @Produce json
// @Param category query string false "Category slug"
// @Param genre query string false "Genre slug"
// @Param name query string false "Name substring"
// @Param year query int false "Year"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} TitlePage
// @Failure 400 {object} errors.ErrorResponse
// @Router /titles/ [get]
func (h *TitleHandler) ListTitles(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}
	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}

	filter := model.TitleFilter{
		ListParams: params,
		Category:   c.QueryParam("category"),
		Genre:      c.QueryParam("genre"),
		Name:       c.QueryParam("name"),
		Year:       year,
	}
	page, err := h.titleService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetTitle godoc
// @Summary Get a title
// @Tags titles
// @Produce json
// @Param title_id path int true "Title ID"
// @Success 200 {object} model.Title
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/ [get]
func (h *TitleHandler) GetTitle(c echo.Context) error {
	id, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	title, err := h.titleService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, title)
}

// CreateTitle godoc
// @Summary Create a title
// @Tags titles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TitleRequest true "Title"
// @Success 201 {object} model.Title
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /titles/ [post]
func (h *TitleHandler) CreateTitle(c echo.Context) error {
	var req TitleRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	title, err := h.titleService.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, title)
}

// UpdateTitle godoc
// @Summary Update a title
// @Tags titles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param request body TitleRequest true "Fields to change"
// @Success 200 {object} model.Title
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/ [patch]
func (h *TitleHandler) UpdateTitle(c echo.Context) error {
	id, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	var req TitleRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	title, err := h.titleService.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, title)
}

// DeleteTitle godoc
// @Summary Delete a title
// @Tags titles
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/ [delete]
func (h *TitleHandler) DeleteTitle(c echo.Context) error {
	id, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	if err := h.titleService.Delete(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
