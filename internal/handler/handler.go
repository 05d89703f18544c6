package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"yamdb/internal/auth"
	"yamdb/internal/errors"
	"yamdb/internal/model"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"

	maxPageSize = 100
)

// SetPrincipal stores the authenticated user and the access token claims
// on the request context.
func SetPrincipal(c echo.Context, user *model.User, claims *auth.Claims) {
	c.Set(principalKey, user)
	c.Set(claimsKey, claims)
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(principalKey).(*model.User)
	return user
}

// AccessClaims returns the claims of the presented access token, if any.
func AccessClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

// respondError converts any error into an echo HTTP error with an
// ErrorResponse body.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidBody() error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// bindAndValidate binds the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(req); err != nil {
		return respondError(err)
	}
	return nil
}

// pathID parses a numeric path parameter. Non-numeric ids cannot match any
// row, so they are reported as not found.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, respondError(errors.ErrNotFound)
	}
	return uint(id), nil
}

// listParams reads limit, offset and search from the query string.
func listParams(c echo.Context) (model.ListParams, error) {
	var p model.ListParams
	var err error
	if p.Limit, err = queryInt(c, "limit"); err != nil {
		return p, err
	}
	if p.Offset, err = queryInt(c, "offset"); err != nil {
		return p, err
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	p.Search = c.QueryParam("search")
	return p, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, respondError(errors.InvalidField(name, "A valid non-negative integer is required."))
	}
	return v, nil
}
