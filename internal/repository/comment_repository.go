package repository

import (
	"context"

	"gorm.io/gorm"

	"yamdb/internal/model"
)

// CommentRepository persists comments. Lookups are always scoped to a review.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, reviewID, id uint) (*model.Comment, error)
	ListByReview(ctx context.Context, reviewID uint, params model.ListParams) ([]model.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository builds a GORM-backed repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("Review", "Author").Create(comment).Error
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("text").Updates(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, comment *model.Comment) error {
	return mustAffect(r.db.WithContext(ctx).Delete(comment))
}

func (r *commentRepository) FindByID(ctx context.Context, reviewID, id uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("review_id = ? AND id = ?", reviewID, id).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID uint, params model.ListParams) ([]model.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("review_id = ?", reviewID).
		Scopes(paginate(params)).
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}
