package repository

import (
	"context"

	"gorm.io/gorm"

	"yamdb/internal/model"
)

// ReviewRepository persists reviews. Lookups are always scoped to a title.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, titleID, id uint) (*model.Review, error)
	ListByTitle(ctx context.Context, titleID uint, params model.ListParams) ([]model.Review, int64, error)
	ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID uint) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository builds a GORM-backed repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. A second review by the same author on the same
// title fails with errors.ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return translate(r.db.WithContext(ctx).Omit("Title", "Author").Create(review).Error)
}

func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Model(review).Select("text", "score").Updates(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, review *model.Review) error {
	return mustAffect(r.db.WithContext(ctx).Delete(review))
}

func (r *reviewRepository) FindByID(ctx context.Context, titleID, id uint) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("title_id = ? AND id = ?", titleID, id).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID uint, params model.ListParams) ([]model.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("title_id = ?", titleID).
		Scopes(paginate(params)).
		Order("id").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
