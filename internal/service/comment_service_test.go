package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

func TestCommentService_Delete(t *testing.T) {
	// bob's comment on alice's review
	tests := []struct {
		name          string
		actor         *model.User
		expectedError error
	}{
		{"moderator removes someone else's comment", mod, nil},
		{"admin removes someone else's comment", boss, nil},
		{"author removes own comment", bob, nil},
		{"plain user cannot remove another's comment", alice, apperrors.ErrPermissionDenied},
		{"anonymous", nil, apperrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(MockReviewRepository)
			comments := new(MockCommentRepository)
			reviews.On("FindByID", mock.Anything, uint(10), uint(5)).Return(&model.Review{ID: 5, TitleID: 10, AuthorID: alice.ID}, nil)
			comments.On("FindByID", mock.Anything, uint(5), uint(20)).Return(&model.Comment{ID: 20, ReviewID: 5, AuthorID: bob.ID, Author: bob}, nil)
			comments.On("Delete", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(nil)
			svc := NewCommentService(comments, reviews)

			err := svc.Delete(context.Background(), tt.actor, 10, 5, 20)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			comments.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("*model.Comment"))
		})
	}
}

func TestCommentService_CreateUnderMissingReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	comments := new(MockCommentRepository)
	reviews.On("FindByID", mock.Anything, uint(10), uint(5)).Return(nil, gorm.ErrRecordNotFound)
	svc := NewCommentService(comments, reviews)

	_, err := svc.Create(context.Background(), alice, 10, 5, "first")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentService_List(t *testing.T) {
	reviews := new(MockReviewRepository)
	comments := new(MockCommentRepository)
	params := model.ListParams{Limit: 10}
	reviews.On("FindByID", mock.Anything, uint(10), uint(5)).Return(&model.Review{ID: 5}, nil)
	comments.On("ListByReview", mock.Anything, uint(5), params).Return([]model.Comment(nil), int64(0), nil)
	svc := NewCommentService(comments, reviews)

	got, err := svc.List(context.Background(), 10, 5, params)

	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Count)
	assert.NotNil(t, got.Results, "empty listings encode as []")
}
