package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	_ "yamdb/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"yamdb/internal/auth"
	"yamdb/internal/cache"
	"yamdb/internal/config"
	"yamdb/internal/db"
	"yamdb/internal/handler"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
	"yamdb/internal/repository"
	"yamdb/internal/router"
	"yamdb/internal/service"
)

// @title YaMDb API
// @version 1.0
// @description Reviews of films, books and music with email confirmation sign-up and JWT authentication.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()
	slog.SetDefault(logger.Slog())
	if !cfg.EnvFileLoaded {
		logger.Info(ctx, "no .env file found, using process environment")
	}

	// Ratings are averages; render them as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "database init", "error", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		logger.Warn(ctx, "RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn(ctx, "failed to drop tables", "error", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.Error(ctx, "migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unreachable, caching and token revocation degraded", "addr", cfg.RedisAddr, "error", err)
	}

	sender, err := mail.New(cfg.Mail, logger)
	if err != nil {
		logger.Error(ctx, "mail init", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	genreRepo := repository.NewGenreRepository(gormDB)
	titleRepo := repository.NewTitleRepository(gormDB)
	reviewRepo := repository.NewReviewRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	titleCache := service.NewTitleCache(cacheClient)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, sender, cfg.Mail, logger)
	userService := service.NewUserService(userRepo, titleCache)
	categoryService := service.NewCategoryService(categoryRepo, titleCache)
	genreService := service.NewGenreService(genreRepo, titleCache)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, titleCache)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, titleCache)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Logger:         logger,
		JWTService:     jwtService,
		TokenStore:     tokenStore,
		Users:          userRepo,
		AuthHandler:    handler.NewAuthHandler(authService),
		UserHandler:    handler.NewUserHandler(userService),
		CatalogHandler: handler.NewCatalogHandler(categoryService, genreService),
		TitleHandler:   handler.NewTitleHandler(titleService),
		ReviewHandler:  handler.NewReviewHandler(reviewService, commentService),
	})

	logger.Info(ctx, "swagger documentation available", "url", swaggerURL(cfg))

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error(ctx, "server start", "error", err)
		os.Exit(1)
	}
}

// swaggerURL accepts SWAGGER_HOST with or without a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
