package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
	"yamdb/internal/repository"
	"yamdb/internal/validation"
)

// CategoryInput is the payload for a new category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// GenreInput is the payload for a new genre.
type GenreInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// CategoryService manages categories.
type CategoryService interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Category], error)
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, slug string) error
}

// GenreService manages genres.
type GenreService interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Genre], error)
	Create(ctx context.Context, in GenreInput) (*model.Genre, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	titles *TitleCache
}

// NewCategoryService builds a CategoryService. Deleting a category flushes
// cached titles since they embed it.
func NewCategoryService(repo repository.CategoryRepository, titles *TitleCache) CategoryService {
	return &categoryService{repo: repo, titles: titles}
}

func (s *categoryService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Category], error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return page(items, total), nil
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	category := &model.Category{Name: in.Name, Slug: in.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrSlugNotUnique
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return notFound(err, "category")
	}
	s.titles.flush(ctx)
	return nil
}

type genreService struct {
	repo   repository.GenreRepository
	titles *TitleCache
}

// NewGenreService builds a GenreService.
func NewGenreService(repo repository.GenreRepository, titles *TitleCache) GenreService {
	return &genreService{repo: repo, titles: titles}
}

func (s *genreService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Genre], error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return page(items, total), nil
}

func (s *genreService) Create(ctx context.Context, in GenreInput) (*model.Genre, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	genre := &model.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrSlugNotUnique
		}
		return nil, fmt.Errorf("create genre: %w", err)
	}
	return genre, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return notFound(err, "genre")
	}
	s.titles.flush(ctx)
	return nil
}
