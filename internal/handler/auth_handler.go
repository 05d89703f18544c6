package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"yamdb/internal/service"
)

// AuthHandler handles sign-up and token endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUpRequest represents a sign-up request.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest exchanges a confirmation code for a token.
type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code" validate:"max=255"`
}

// TokenResponse carries the issued bearer credential.
type TokenResponse struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// SignUp godoc
// @Summary Register or resend a confirmation code
// @Description Creates the user if needed and emails the confirmation code. Repeating the call with the same username and email resends the code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Sign-up data"
// @Success 200 {object} SignUpRequest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/signup/ [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	user, err := h.authService.SignUp(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, SignUpRequest{Username: user.Username, Email: user.Email})
}

// Token godoc
// @Summary Exchange a confirmation code for a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Username and confirmation code"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/token/ [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.ObtainToken(c.Request().Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: pair.Access, Refresh: pair.Refresh})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh/ [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Logout godoc
// @Summary Logout
// @Description Forgets the refresh token and revokes the presented access token.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout/ [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), req.Refresh, AccessClaims(c)); err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}
