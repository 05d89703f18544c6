package repository

import (
	"context"

	"gorm.io/gorm"

	"yamdb/internal/model"
)

const ratingColumn = "(SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleRepository persists titles together with their genre links.
type TitleRepository interface {
	Create(ctx context.Context, title *model.Title) error
	Update(ctx context.Context, title *model.Title) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.Title, error)
	List(ctx context.Context, filter model.TitleFilter) ([]model.Title, int64, error)
}

type titleRepository struct {
	db *gorm.DB
}

// NewTitleRepository builds a GORM-backed repository.
func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// Create inserts the title and links the given genres, which must exist.
func (r *titleRepository) Create(ctx context.Context, title *model.Title) error {
	return r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(title).Error
}

// Update saves scalar fields and replaces the genre set.
func (r *titleRepository) Update(ctx context.Context, title *model.Title) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Save(title).Error; err != nil {
			return err
		}
		return tx.Model(title).Association("Genres").Replace(title.Genres)
	})
}

func (r *titleRepository) Delete(ctx context.Context, id uint) error {
	return mustAffect(r.db.WithContext(ctx).Delete(&model.Title{}, id))
}

func (r *titleRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindByID loads the title with its category, genres and average score.
func (r *titleRepository) FindByID(ctx context.Context, id uint) (*model.Title, error) {
	var title model.Title
	err := r.db.WithContext(ctx).
		Scopes(r.withDetail).
		Where("titles.id = ?", id).
		First(&title).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

// List returns titles matching the filter, oldest first.
func (r *titleRepository) List(ctx context.Context, filter model.TitleFilter) ([]model.Title, int64, error) {
	where := r.filter(filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Title{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []model.Title
	err := r.db.WithContext(ctx).
		Scopes(r.withDetail, where, paginate(filter.ListParams)).
		Order("titles.id").
		Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *titleRepository) withDetail(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Title{}).
		Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres")
}

func (r *titleRepository) filter(f model.TitleFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Category != "" {
			db = db.Where("titles.category_id IN (?)",
				r.db.Model(&model.Category{}).Select("id").Where("slug = ?", f.Category))
		}
		if f.Genre != "" {
			db = db.Where("titles.id IN (?)",
				r.db.Table("title_genres").
					Select("title_genres.title_id").
					Joins("JOIN genres ON genres.id = title_genres.genre_id").
					Where("genres.slug = ?", f.Genre))
		}
		if f.Year != 0 {
			db = db.Where("titles.year = ?", f.Year)
		}
		return contains("titles.name", f.Name)(db)
	}
}
