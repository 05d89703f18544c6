package repository

import (
	"context"

	"gorm.io/gorm"

	"yamdb/internal/model"
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, params model.ListParams) ([]model.Category, int64, error)
}

// GenreRepository persists genres.
type GenreRepository interface {
	Create(ctx context.Context, genre *model.Genre) error
	FindBySlug(ctx context.Context, slug string) (*model.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, params model.ListParams) ([]model.Genre, int64, error)
}

// slugStore implements the operations shared by categories and genres.
type slugStore[T model.Category | model.Genre] struct {
	db *gorm.DB
}

func (s slugStore[T]) create(ctx context.Context, v *T) error {
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s slugStore[T]) findBySlug(ctx context.Context, slug string) (*T, error) {
	var v T
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s slugStore[T]) deleteBySlug(ctx context.Context, slug string) error {
	var v T
	return mustAffect(s.db.WithContext(ctx).Where("slug = ?", slug).Delete(&v))
}

func (s slugStore[T]) list(ctx context.Context, params model.ListParams) ([]T, int64, error) {
	search := contains("name", params.Search)

	var total int64
	if err := s.db.WithContext(ctx).Model(new(T)).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	err := s.db.WithContext(ctx).
		Scopes(search, paginate(params)).
		Order("name").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type categoryRepository struct {
	store slugStore[model.Category]
}

// NewCategoryRepository builds a GORM-backed repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{store: slugStore[model.Category]{db: db}}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.store.create(ctx, category)
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.store.findBySlug(ctx, slug)
}

func (r *categoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.store.deleteBySlug(ctx, slug)
}

func (r *categoryRepository) List(ctx context.Context, params model.ListParams) ([]model.Category, int64, error) {
	return r.store.list(ctx, params)
}

type genreRepository struct {
	store slugStore[model.Genre]
}

// NewGenreRepository builds a GORM-backed repository.
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{store: slugStore[model.Genre]{db: db}}
}

func (r *genreRepository) Create(ctx context.Context, genre *model.Genre) error {
	return r.store.create(ctx, genre)
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*model.Genre, error) {
	return r.store.findBySlug(ctx, slug)
}

// FindBySlugs returns the genres whose slugs are listed. Unknown slugs are
// simply absent from the result.
func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error) {
	var genres []model.Genre
	if len(slugs) == 0 {
		return genres, nil
	}
	if err := r.store.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.store.deleteBySlug(ctx, slug)
}

func (r *genreRepository) List(ctx context.Context, params model.ListParams) ([]model.Genre, int64, error) {
	return r.store.list(ctx, params)
}
