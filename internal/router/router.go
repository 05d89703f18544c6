package router

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"gorm.io/gorm"

	"yamdb/internal/auth"
	apperrors "yamdb/internal/errors"
	"yamdb/internal/handler"
	"yamdb/internal/logging"
	"yamdb/internal/model"
	"yamdb/internal/policy"
	"yamdb/internal/repository"
	"yamdb/internal/validation"
)

// APIPrefix is the base path of every API route.
const APIPrefix = "/api/v1"

// Deps bundles what the router needs.
type Deps struct {
	Logger     logging.Logger
	JWTService *auth.JWTService
	TokenStore auth.TokenStoreInterface
	Users      repository.UserRepository

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	CatalogHandler *handler.CatalogHandler
	TitleHandler   *handler.TitleHandler
	ReviewHandler  *handler.ReviewHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, APIPrefix)
		},
	}))
	e.Use(middleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validation.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(APIPrefix, Authenticate(d.JWTService, d.TokenStore, d.Users))

	// Sign-up and token exchange are open to everyone.
	api.POST("/auth/signup/", d.AuthHandler.SignUp)
	api.POST("/auth/token/", d.AuthHandler.Token)
	api.POST("/auth/refresh/", d.AuthHandler.Refresh)
	api.POST("/auth/logout/", d.AuthHandler.Logout)

	me := api.Group("/users/me", Gate(func(u *model.User, _ string) bool { return policy.IsAuthenticated(u) }))
	me.GET("/", d.UserHandler.Me)
	me.PATCH("/", d.UserHandler.UpdateMe)

	users := api.Group("/users", Gate(func(u *model.User, _ string) bool { return policy.IsAdmin(u) }))
	users.GET("/", d.UserHandler.ListUsers)
	users.POST("/", d.UserHandler.CreateUser)
	users.GET("/:username/", d.UserHandler.GetUser)
	users.PATCH("/:username/", d.UserHandler.UpdateUser)
	users.DELETE("/:username/", d.UserHandler.DeleteUser)

	adminOrRead := Gate(policy.AdminOrReadOnly)

	categories := api.Group("/categories", adminOrRead)
	categories.GET("/", d.CatalogHandler.ListCategories)
	categories.POST("/", d.CatalogHandler.CreateCategory)
	categories.DELETE("/:slug/", d.CatalogHandler.DeleteCategory)

	genres := api.Group("/genres", adminOrRead)
	genres.GET("/", d.CatalogHandler.ListGenres)
	genres.POST("/", d.CatalogHandler.CreateGenre)
	genres.DELETE("/:slug/", d.CatalogHandler.DeleteGenre)

	titles := api.Group("/titles")
	titles.GET("/", d.TitleHandler.ListTitles)
	titles.POST("/", d.TitleHandler.CreateTitle, adminOrRead)
	titles.GET("/:title_id/", d.TitleHandler.GetTitle)
	titles.PATCH("/:title_id/", d.TitleHandler.UpdateTitle, adminOrRead)
	titles.DELETE("/:title_id/", d.TitleHandler.DeleteTitle, adminOrRead)

	// Object-level ownership is checked by the services after lookup.
	reviews := titles.Group("/:title_id/reviews", Gate(policy.AuthenticatedOrReadOnly))
	reviews.GET("/", d.ReviewHandler.ListReviews)
	reviews.POST("/", d.ReviewHandler.CreateReview)
	reviews.GET("/:review_id/", d.ReviewHandler.GetReview)
	reviews.PATCH("/:review_id/", d.ReviewHandler.UpdateReview)
	reviews.DELETE("/:review_id/", d.ReviewHandler.DeleteReview)
	reviews.GET("/:review_id/comments/", d.ReviewHandler.ListComments)
	reviews.POST("/:review_id/comments/", d.ReviewHandler.CreateComment)
	reviews.GET("/:review_id/comments/:comment_id/", d.ReviewHandler.GetComment)
	reviews.PATCH("/:review_id/comments/:comment_id/", d.ReviewHandler.UpdateComment)
	reviews.DELETE("/:review_id/comments/:comment_id/", d.ReviewHandler.DeleteComment)
}

// Authenticate resolves an optional bearer token to a user. Requests without
// an Authorization header pass through anonymously; a bad, revoked or
// orphaned token is rejected with 401.
func Authenticate(jwtService *auth.JWTService, tokens auth.TokenStoreInterface, users repository.UserRepository) echo.MiddlewareFunc {
	parse := echojwt.WithConfig(echojwt.Config{
		ContextKey: "jwt_claims",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateTyped(token, auth.TokenTypeAccess)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return nil
			}
			return unauthenticated()
		},
		ContinueOnIgnoredError: true,
	})

	resolve := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("jwt_claims").(*auth.Claims)
			if !ok {
				return next(c)
			}

			ctx := c.Request().Context()
			if revoked, _ := tokens.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
				return unauthenticated()
			}

			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return unauthenticated()
				}
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			handler.SetPrincipal(c, user, claims)
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(resolve(next))
	}
}

// Gate admits a request when allow passes for the current user and the
// request method.
func Gate(allow func(u *model.User, method string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := handler.CurrentUser(c)
			if err := policy.Require(allow(user, c.Request().Method), user); err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

func unauthenticated() error {
	httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Error(c.Request().Context(), "request", args...)
			} else {
				logger.Info(c.Request().Context(), "request", args...)
			}
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validation.Validator
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
