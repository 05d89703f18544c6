package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

var (
	alice = &model.User{ID: 1, Username: "alice", Role: model.RoleUser}
	bob   = &model.User{ID: 2, Username: "bob", Role: model.RoleUser}
	mod   = &model.User{ID: 3, Username: "mod", Role: model.RoleModerator}
	boss  = &model.User{ID: 4, Username: "boss", Role: model.RoleAdmin}
)

func TestReviewService_Create(t *testing.T) {
	tests := []struct {
		name          string
		author        *model.User
		score         int
		setupMock     func(*MockReviewRepository, *MockTitleRepository)
		expectedError error
	}{
		{
			name:   "first review on a title",
			author: alice,
			score:  8,
			setupMock: func(r *MockReviewRepository, tr *MockTitleRepository) {
				tr.On("Exists", mock.Anything, uint(10)).Return(true, nil)
				r.On("ExistsByTitleAndAuthor", mock.Anything, uint(10), uint(1)).Return(false, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil)
			},
		},
		{
			name:   "second review by the same author",
			author: alice,
			score:  5,
			setupMock: func(r *MockReviewRepository, tr *MockTitleRepository) {
				tr.On("Exists", mock.Anything, uint(10)).Return(true, nil)
				r.On("ExistsByTitleAndAuthor", mock.Anything, uint(10), uint(1)).Return(true, nil)
			},
			expectedError: apperrors.ErrDuplicateReview,
		},
		{
			name:   "concurrent duplicate caught by the unique index",
			author: alice,
			score:  5,
			setupMock: func(r *MockReviewRepository, tr *MockTitleRepository) {
				tr.On("Exists", mock.Anything, uint(10)).Return(true, nil)
				r.On("ExistsByTitleAndAuthor", mock.Anything, uint(10), uint(1)).Return(false, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).
					Return(fmt.Errorf("%w: idx_review_title_author", apperrors.ErrDuplicate))
			},
			expectedError: apperrors.ErrDuplicateReview,
		},
		{
			name:   "another author on the same title",
			author: bob,
			score:  3,
			setupMock: func(r *MockReviewRepository, tr *MockTitleRepository) {
				tr.On("Exists", mock.Anything, uint(10)).Return(true, nil)
				r.On("ExistsByTitleAndAuthor", mock.Anything, uint(10), uint(2)).Return(false, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil)
			},
		},
		{
			name:          "score out of range",
			author:        alice,
			score:         11,
			setupMock:     func(*MockReviewRepository, *MockTitleRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:   "unknown title",
			author: alice,
			score:  7,
			setupMock: func(r *MockReviewRepository, tr *MockTitleRepository) {
				tr.On("Exists", mock.Anything, uint(10)).Return(false, nil)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name:          "anonymous",
			score:         7,
			setupMock:     func(*MockReviewRepository, *MockTitleRepository) {},
			expectedError: apperrors.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(MockReviewRepository)
			titles := new(MockTitleRepository)
			tt.setupMock(reviews, titles)
			svc := NewReviewService(reviews, titles, nil)

			review, err := svc.Create(context.Background(), tt.author, 10, "worth it", tt.score)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, review)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.author.Username, review.AuthorName())
				assert.Equal(t, tt.score, review.Score)
			}
			reviews.AssertExpectations(t)
		})
	}
}

func TestReviewService_UpdatePermissions(t *testing.T) {
	tests := []struct {
		name          string
		actor         *model.User
		expectedError error
	}{
		{"author", alice, nil},
		{"moderator", mod, nil},
		{"admin", boss, nil},
		{"other user", bob, apperrors.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(MockReviewRepository)
			reviews.On("FindByID", mock.Anything, uint(10), uint(5)).
				Return(&model.Review{ID: 5, TitleID: 10, AuthorID: alice.ID, Author: alice, Text: "ok", Score: 6}, nil)
			reviews.On("Update", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil)
			svc := NewReviewService(reviews, new(MockTitleRepository), nil)

			score := 9
			review, err := svc.Update(context.Background(), tt.actor, 10, 5, nil, &score)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 9, review.Score)
			assert.Equal(t, "ok", review.Text)
		})
	}
}

func TestReviewService_DeleteMissingReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	reviews.On("FindByID", mock.Anything, uint(10), uint(99)).Return(nil, gorm.ErrRecordNotFound)
	svc := NewReviewService(reviews, new(MockTitleRepository), nil)

	err := svc.Delete(context.Background(), bob, 10, 99)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_AnonymousRejectedBeforeLookup(t *testing.T) {
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockTitleRepository), nil)

	err := svc.Delete(context.Background(), nil, 10, 5)

	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	reviews.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}
