package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
	"yamdb/internal/policy"
	"yamdb/internal/repository"
)

// ReviewService manages reviews of a title.
type ReviewService interface {
	List(ctx context.Context, titleID uint, params model.ListParams) (*model.Page[model.Review], error)
	Get(ctx context.Context, titleID, id uint) (*model.Review, error)
	Create(ctx context.Context, author *model.User, titleID uint, text string, score int) (*model.Review, error)
	Update(ctx context.Context, actor *model.User, titleID, id uint, text *string, score *int) (*model.Review, error)
	Delete(ctx context.Context, actor *model.User, titleID, id uint) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
	cache   *TitleCache
}

// NewReviewService builds a ReviewService. Review writes drop the cached
// title since its rating changes.
func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository, cache *TitleCache) ReviewService {
	return &reviewService{reviews: reviews, titles: titles, cache: cache}
}

func (s *reviewService) List(ctx context.Context, titleID uint, params model.ListParams) (*model.Page[model.Review], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	items, total, err := s.reviews.ListByTitle(ctx, titleID, params)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return page(items, total), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, id uint) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, titleID, id)
	if err != nil {
		return nil, notFound(err, "review")
	}
	return review, nil
}

// Create posts the author's review. Each author may review a title once.
func (s *reviewService) Create(ctx context.Context, author *model.User, titleID uint, text string, score int) (*model.Review, error) {
	if err := policy.Require(policy.IsAuthenticated(author), author); err != nil {
		return nil, err
	}
	if err := validateReview(text, score); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByTitleAndAuthor(ctx, titleID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("check review existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateReview
	}

	review := &model.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Author:   author,
		Text:     text,
		Score:    score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.cache.forget(ctx, titleID)
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor *model.User, titleID, id uint, text *string, score *int) (*model.Review, error) {
	review, err := s.modifiable(ctx, actor, titleID, id)
	if err != nil {
		return nil, err
	}

	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	if err := validateReview(review.Text, review.Score); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	s.cache.forget(ctx, titleID)
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *model.User, titleID, id uint) error {
	review, err := s.modifiable(ctx, actor, titleID, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review); err != nil {
		return notFound(err, "review")
	}
	s.cache.forget(ctx, titleID)
	return nil
}

// modifiable loads the review and checks that actor may change it.
// Anonymous callers are rejected before the lookup.
func (s *reviewService) modifiable(ctx context.Context, actor *model.User, titleID, id uint) (*model.Review, error) {
	if err := policy.Require(policy.IsAuthenticated(actor), actor); err != nil {
		return nil, err
	}
	review, err := s.Get(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(policy.CanModify(actor, review.AuthorID), actor); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) requireTitle(ctx context.Context, titleID uint) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return fmt.Errorf("find title: %w", err)
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

func validateReview(text string, score int) error {
	if text == "" {
		return required("text")
	}
	if score < model.MinScore || score > model.MaxScore {
		return apperrors.InvalidField("score", fmt.Sprintf("Score must be between %d and %d.", model.MinScore, model.MaxScore))
	}
	return nil
}
