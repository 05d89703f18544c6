package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"yamdb/internal/auth"
	"yamdb/internal/config"
	"yamdb/internal/db"
	apperrors "yamdb/internal/errors"
	"yamdb/internal/logging"
	"yamdb/internal/model"
	"yamdb/internal/repository"
	"yamdb/internal/service"
)

// Catalog is the seed file layout. Titles reference categories and genres by slug.
type Catalog struct {
	Categories []service.CategoryInput `json:"categories"`
	Genres     []service.GenreInput    `json:"genres"`
	Titles     []SeedTitle             `json:"titles"`
}

// SeedTitle is one title entry of the seed file.
type SeedTitle struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

type stats struct {
	created int
	skipped int
}

func main() {
	source := flag.String("catalog", "", "path or http(s) URL of a JSON catalog")
	adminUsername := flag.String("admin-username", "", "create or promote this superuser")
	adminEmail := flag.String("admin-email", "", "email for a newly created superuser")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()
	slog.SetDefault(logger.Slog())
	if !cfg.EnvFileLoaded {
		logger.Info(ctx, "no .env file found, using process environment")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}

	categoryRepo := repository.NewCategoryRepository(gormDB)
	genreRepo := repository.NewGenreRepository(gormDB)
	titleRepo := repository.NewTitleRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	if *source != "" {
		logger.Info(ctx, "loading catalog", "source", *source)
		catalog, err := loadCatalog(ctx, *source)
		if err != nil {
			logger.Error(ctx, "failed to load catalog", "error", err)
			os.Exit(1)
		}

		s := seeder{
			categories: service.NewCategoryService(categoryRepo, nil),
			genres:     service.NewGenreService(genreRepo, nil),
			titles:     service.NewTitleService(titleRepo, categoryRepo, genreRepo, nil),
			titleRepo:  titleRepo,
		}
		result, err := s.seed(ctx, catalog)
		if err != nil {
			logger.Error(ctx, "failed to seed catalog", "error", err)
			os.Exit(1)
		}
		logger.Info(ctx, "catalog seeded",
			"categories_created", result["categories"].created,
			"genres_created", result["genres"].created,
			"titles_created", result["titles"].created,
			"skipped", result["categories"].skipped+result["genres"].skipped+result["titles"].skipped,
		)
	}

	if *adminUsername != "" {
		user, created, err := ensureSuperuser(ctx, userRepo, *adminUsername, *adminEmail)
		if err != nil {
			logger.Error(ctx, "failed to bootstrap superuser", "error", err)
			os.Exit(1)
		}
		logger.Info(ctx, "superuser ready", "username", user.Username, "email", user.Email, "created", created)
	}
}

// loadCatalog reads a catalog from a local file or an http(s) URL.
func loadCatalog(ctx context.Context, source string) (*Catalog, error) {
	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(ctx, source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &catalog, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog source returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

type seeder struct {
	categories service.CategoryService
	genres     service.GenreService
	titles     service.TitleService
	titleRepo  repository.TitleRepository
}

// seed creates everything in the catalog that does not exist yet. Existing
// slugs and titles with the same name and year are skipped, so the command
// can be re-run.
func (s seeder) seed(ctx context.Context, catalog *Catalog) (map[string]*stats, error) {
	result := map[string]*stats{"categories": {}, "genres": {}, "titles": {}}

	for _, in := range catalog.Categories {
		_, err := s.categories.Create(ctx, in)
		if err := tally(result["categories"], err, apperrors.ErrSlugNotUnique); err != nil {
			return result, fmt.Errorf("category %s: %w", in.Slug, err)
		}
	}

	for _, in := range catalog.Genres {
		_, err := s.genres.Create(ctx, in)
		if err := tally(result["genres"], err, apperrors.ErrSlugNotUnique); err != nil {
			return result, fmt.Errorf("genre %s: %w", in.Slug, err)
		}
	}

	for _, t := range catalog.Titles {
		exists, err := s.titleExists(ctx, t.Name, t.Year)
		if err != nil {
			return result, fmt.Errorf("title %s: %w", t.Name, err)
		}
		if exists {
			result["titles"].skipped++
			continue
		}

		in := service.TitleInput{
			Name:        &t.Name,
			Year:        &t.Year,
			Description: &t.Description,
			Genres:      &t.Genre,
		}
		if t.Category != "" {
			in.Category = &t.Category
		}
		if _, err := s.titles.Create(ctx, in); err != nil {
			return result, fmt.Errorf("title %s: %w", t.Name, err)
		}
		result["titles"].created++
	}

	return result, nil
}

func (s seeder) titleExists(ctx context.Context, name string, year int) (bool, error) {
	filter := model.TitleFilter{Name: name, Year: year}
	filter.Limit = 100
	items, _, err := s.titleRepo.List(ctx, filter)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// tally counts a create outcome; an error matching skip counts as skipped.
func tally(st *stats, err error, skip error) error {
	switch {
	case err == nil:
		st.created++
	case errors.Is(err, skip):
		st.skipped++
	default:
		return err
	}
	return nil
}

// ensureSuperuser creates the account or promotes an existing one to a
// superuser with the admin role.
func ensureSuperuser(ctx context.Context, repo repository.UserRepository, username, email string) (*model.User, bool, error) {
	existing, err := repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("error checking user %s: %w", username, err)
	}

	if existing != nil {
		existing.Role = model.RoleAdmin
		existing.IsSuperuser = true
		existing.IsStaff = true
		if err := repo.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("error promoting user %s: %w", username, err)
		}
		return existing, false, nil
	}

	if email == "" {
		return nil, false, fmt.Errorf("user %s does not exist and no -admin-email was given", username)
	}

	user := &model.User{
		Username:         username,
		Email:            email,
		Role:             model.RoleAdmin,
		IsSuperuser:      true,
		IsStaff:          true,
		ConfirmationCode: auth.DeriveConfirmationCode(email),
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("error creating user %s: %w", username, err)
	}
	return user, true, nil
}
