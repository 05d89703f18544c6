package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yamdb/internal/auth"
	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestUserService_UpdateMe(t *testing.T) {
	me := &model.User{ID: 1, Username: "neo", Email: "neo@matrix.io", Role: model.RoleUser}

	t.Run("role is read-only", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := NewUserService(repo, nil)

		got, err := svc.UpdateMe(context.Background(), me, UserInput{
			Bio:  ptr("The One"),
			Role: ptr(model.RoleAdmin),
		})

		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, got.Role)
		assert.Equal(t, "The One", got.Bio)
		assert.Empty(t, me.Bio, "caller's copy is untouched")
	})

	t.Run("renaming to the reserved name", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, nil)

		_, err := svc.UpdateMe(context.Background(), me, UserInput{Username: ptr("me")})

		assert.ErrorIs(t, err, apperrors.ErrBadName)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("new email re-derives the code", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "one@matrix.io").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := NewUserService(repo, nil)

		got, err := svc.UpdateMe(context.Background(), me, UserInput{Email: ptr("one@matrix.io")})

		require.NoError(t, err)
		assert.Equal(t, auth.DeriveConfirmationCode("one@matrix.io"), got.ConfirmationCode)
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "trinity@matrix.io").Return(&model.User{ID: 2}, nil)
		svc := NewUserService(repo, nil)

		_, err := svc.UpdateMe(context.Background(), me, UserInput{Email: ptr("trinity@matrix.io")})

		assert.ErrorIs(t, err, apperrors.ErrEmailNotUnique)
	})
}

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name          string
		in            UserInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "admin creates a moderator",
			in:   UserInput{Username: ptr("morpheus"), Email: ptr("morpheus@matrix.io"), Role: ptr(model.RoleModerator)},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "morpheus").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "morpheus@matrix.io").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Role == model.RoleModerator && u.ConfirmationCode == auth.DeriveConfirmationCode("morpheus@matrix.io")
				})).Return(nil)
			},
		},
		{
			name:          "missing email",
			in:            UserInput{Username: ptr("morpheus")},
			setupMock:     func(*MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "unknown role",
			in:   UserInput{Username: ptr("morpheus"), Email: ptr("morpheus@matrix.io"), Role: ptr(model.Role("oracle"))},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "morpheus").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "morpheus@matrix.io").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "username taken",
			in:   UserInput{Username: ptr("neo"), Email: ptr("other@matrix.io")},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "neo").Return(&model.User{ID: 1}, nil)
			},
			expectedError: apperrors.ErrUsernameNotUnique,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc := NewUserService(repo, nil)

			user, err := svc.Create(context.Background(), tt.in)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetUnknown(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := NewUserService(repo, nil).Get(context.Background(), "ghost")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_DeleteFlushesTitleCache(t *testing.T) {
	c := newTestTitleCache(t)
	ctx := context.Background()
	c.put(ctx, &model.Title{ID: 4, Name: "Stalker"})

	neo := &model.User{ID: 1, Username: "neo", Email: "neo@matrix.io"}
	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "neo").Return(neo, nil)
	repo.On("Delete", mock.Anything, neo).Return(nil)

	require.NoError(t, NewUserService(repo, c).Delete(ctx, "neo"))

	_, ok := c.get(ctx, 4)
	assert.False(t, ok, "the deleted user's reviews no longer count towards ratings")
	repo.AssertExpectations(t)
}

func TestUserService_UpdateConstraintConflict(t *testing.T) {
	trinity := &model.User{ID: 2, Username: "trinity", Email: "trinity@matrix.io"}

	tests := []struct {
		name          string
		emailOwner    *model.User
		expectedError error
	}{
		{
			name:          "email taken by someone else",
			emailOwner:    &model.User{ID: 1, Username: "neo", Email: "neo@matrix.io"},
			expectedError: apperrors.ErrEmailNotUnique,
		},
		{
			name:          "email free, so the username collided",
			expectedError: apperrors.ErrUsernameNotUnique,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			repo.On("FindByEmail", mock.Anything, "neo@matrix.io").Return(nil, gorm.ErrRecordNotFound).Once()
			repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).
				Return(fmt.Errorf("%w: unique violation", apperrors.ErrDuplicate))
			if tt.emailOwner != nil {
				repo.On("FindByEmail", mock.Anything, "neo@matrix.io").Return(tt.emailOwner, nil).Once()
			} else {
				repo.On("FindByEmail", mock.Anything, "neo@matrix.io").Return(nil, gorm.ErrRecordNotFound).Once()
			}

			_, err := NewUserService(repo, nil).UpdateMe(context.Background(), trinity, UserInput{Email: ptr("neo@matrix.io")})

			assert.ErrorIs(t, err, tt.expectedError)
			repo.AssertExpectations(t)
		})
	}
}
