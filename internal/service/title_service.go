package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
	"yamdb/internal/repository"
)

const maxTitleNameLength = 256

// TitleInput is a partial title payload. Category and genres are given by
// slug; nil fields are left untouched on update.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// TitleService manages titles.
type TitleService interface {
	List(ctx context.Context, filter model.TitleFilter) (*model.Page[model.Title], error)
	Get(ctx context.Context, id uint) (*model.Title, error)
	Create(ctx context.Context, in TitleInput) (*model.Title, error)
	Update(ctx context.Context, id uint, in TitleInput) (*model.Title, error)
	Delete(ctx context.Context, id uint) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	cache      *TitleCache
	now        func() time.Time
}

// NewTitleService builds a TitleService.
func NewTitleService(
	titles repository.TitleRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
	cache *TitleCache,
) TitleService {
	return &titleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter model.TitleFilter) (*model.Page[model.Title], error) {
	items, total, err := s.titles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	return page(items, total), nil
}

// Get returns a title with its category, genres and rating, from cache
// when possible.
func (s *titleService) Get(ctx context.Context, id uint) (*model.Title, error) {
	if cached, ok := s.cache.get(ctx, id); ok {
		return cached, nil
	}

	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	s.cache.put(ctx, title)
	return title, nil
}

func (s *titleService) Create(ctx context.Context, in TitleInput) (*model.Title, error) {
	if in.Name == nil {
		return nil, required("name")
	}
	if in.Year == nil {
		return nil, required("year")
	}

	title := &model.Title{}
	if err := s.apply(ctx, title, in); err != nil {
		return nil, err
	}
	if err := s.titles.Create(ctx, title); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}
	return s.reload(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, id uint, in TitleInput) (*model.Title, error) {
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	if err := s.apply(ctx, title, in); err != nil {
		return nil, err
	}
	if err := s.titles.Update(ctx, title); err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	return s.reload(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id uint) error {
	if err := s.titles.Delete(ctx, id); err != nil {
		return notFound(err, "title")
	}
	s.cache.forget(ctx, id)
	return nil
}

func (s *titleService) reload(ctx context.Context, id uint) (*model.Title, error) {
	s.cache.forget(ctx, id)
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	return title, nil
}

func (s *titleService) apply(ctx context.Context, title *model.Title, in TitleInput) error {
	if in.Name != nil {
		if *in.Name == "" {
			return required("name")
		}
		if utf8.RuneCountInString(*in.Name) > maxTitleNameLength {
			return apperrors.InvalidField("name", "Ensure this field has no more than 256 characters.")
		}
		title.Name = *in.Name
	}
	if in.Year != nil {
		if *in.Year > s.now().Year() {
			return apperrors.InvalidField("year", "Year cannot be greater than the current one.")
		}
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}

	if in.Category != nil {
		if *in.Category == "" {
			title.CategoryID, title.Category = nil, nil
		} else {
			category, err := optional(s.categories.FindBySlug(ctx, *in.Category))
			if err != nil {
				return fmt.Errorf("find category: %w", err)
			}
			if category == nil {
				return apperrors.ErrUnknownSlug.OnField("category")
			}
			title.CategoryID, title.Category = &category.ID, category
		}
	}

	if in.Genres != nil {
		slugs := dedupe(*in.Genres)
		genres, err := s.genres.FindBySlugs(ctx, slugs)
		if err != nil {
			return fmt.Errorf("find genres: %w", err)
		}
		if len(genres) != len(slugs) {
			return apperrors.ErrUnknownSlug.OnField("genre")
		}
		title.Genres = genres
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
