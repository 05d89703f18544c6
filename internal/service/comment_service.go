package service

import (
	"context"
	"fmt"

	"yamdb/internal/model"
	"yamdb/internal/policy"
	"yamdb/internal/repository"
)

// CommentService manages comments under a review.
type CommentService interface {
	List(ctx context.Context, titleID, reviewID uint, params model.ListParams) (*model.Page[model.Comment], error)
	Get(ctx context.Context, titleID, reviewID, id uint) (*model.Comment, error)
	Create(ctx context.Context, author *model.User, titleID, reviewID uint, text string) (*model.Comment, error)
	Update(ctx context.Context, actor *model.User, titleID, reviewID, id uint, text *string) (*model.Comment, error)
	Delete(ctx context.Context, actor *model.User, titleID, reviewID, id uint) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

// NewCommentService builds a CommentService.
func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{comments: comments, reviews: reviews}
}

func (s *commentService) List(ctx context.Context, titleID, reviewID uint, params model.ListParams) (*model.Page[model.Comment], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	items, total, err := s.comments.ListByReview(ctx, reviewID, params)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return page(items, total), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, id uint) (*model.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, reviewID, id)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, author *model.User, titleID, reviewID uint, text string) (*model.Comment, error) {
	if err := policy.Require(policy.IsAuthenticated(author), author); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, required("text")
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Author:   author,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor *model.User, titleID, reviewID, id uint, text *string) (*model.Comment, error) {
	comment, err := s.modifiable(ctx, actor, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if text != nil {
		if *text == "" {
			return nil, required("text")
		}
		comment.Text = *text
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor *model.User, titleID, reviewID, id uint) error {
	comment, err := s.modifiable(ctx, actor, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment); err != nil {
		return notFound(err, "comment")
	}
	return nil
}

func (s *commentService) modifiable(ctx context.Context, actor *model.User, titleID, reviewID, id uint) (*model.Comment, error) {
	if err := policy.Require(policy.IsAuthenticated(actor), actor); err != nil {
		return nil, err
	}
	comment, err := s.Get(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(policy.CanModify(actor, comment.AuthorID), actor); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) requireReview(ctx context.Context, titleID, reviewID uint) error {
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return notFound(err, "review")
	}
	return nil
}
