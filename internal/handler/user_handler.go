package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"yamdb/internal/model"
	"yamdb/internal/service"
)

// UserHandler serves account administration and the self-service profile.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRequest is a full or partial user payload.
type UserRequest struct {
	Username  *string     `json:"username"`
	Email     *string     `json:"email"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Bio       *string     `json:"bio"`
	Role      *model.Role `json:"role"`
}

func (r UserRequest) input() service.UserInput {
	return service.UserInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

// UserPage is a paginated user listing.
type UserPage = model.Page[model.User]

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} UserPage
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/ [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	users, err := h.userService.List(c.Request().Context(), params)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserRequest true "User data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/ [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	user, err := h.userService.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user by username
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{username}/ [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body UserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{username}/ [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	user, err := h.userService.Update(c.Request().Context(), c.Param("username"), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{username}/ [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), c.Param("username")); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me godoc
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/ [get]
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentUser(c))
}

// UpdateMe godoc
// @Summary Edit the current user's profile
// @Description The role field is ignored.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/ [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	user, err := h.userService.UpdateMe(c.Request().Context(), CurrentUser(c), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}
