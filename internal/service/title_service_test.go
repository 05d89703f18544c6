package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yamdb/internal/cache"
	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

func newTestTitleCache(t *testing.T) *TitleCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewTitleCache(cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})))
}

func newTitleService(titles *MockTitleRepository, categories *MockCategoryRepository, genres *MockGenreRepository, c *TitleCache) *titleService {
	svc := NewTitleService(titles, categories, genres, c).(*titleService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestTitleService_Create(t *testing.T) {
	movie := &model.Category{ID: 1, Name: "Movie", Slug: "movie"}
	scifi := model.Genre{ID: 2, Name: "Sci-Fi", Slug: "sci-fi"}

	tests := []struct {
		name          string
		in            TitleInput
		setupMock     func(*MockTitleRepository, *MockCategoryRepository, *MockGenreRepository)
		expectedError error
		expectedField string
	}{
		{
			name: "valid title",
			in:   TitleInput{Name: ptr("The Matrix"), Year: ptr(1999), Category: ptr("movie"), Genres: &[]string{"sci-fi", "sci-fi"}},
			setupMock: func(tr *MockTitleRepository, cr *MockCategoryRepository, gr *MockGenreRepository) {
				cr.On("FindBySlug", mock.Anything, "movie").Return(movie, nil)
				gr.On("FindBySlugs", mock.Anything, []string{"sci-fi"}).Return([]model.Genre{scifi}, nil)
				tr.On("Create", mock.Anything, mock.MatchedBy(func(title *model.Title) bool {
					return *title.CategoryID == 1 && len(title.Genres) == 1
				})).Run(func(args mock.Arguments) { args.Get(1).(*model.Title).ID = 42 }).Return(nil)
				tr.On("FindByID", mock.Anything, uint(42)).Return(&model.Title{ID: 42, Name: "The Matrix"}, nil)
			},
		},
		{
			name:          "year in the future",
			in:            TitleInput{Name: ptr("Resurrections 2"), Year: ptr(2031)},
			setupMock:     func(*MockTitleRepository, *MockCategoryRepository, *MockGenreRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "unknown category",
			in:   TitleInput{Name: ptr("The Matrix"), Year: ptr(1999), Category: ptr("opera")},
			setupMock: func(_ *MockTitleRepository, cr *MockCategoryRepository, _ *MockGenreRepository) {
				cr.On("FindBySlug", mock.Anything, "opera").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUnknownSlug,
			expectedField: "category",
		},
		{
			name: "unknown genre",
			in:   TitleInput{Name: ptr("The Matrix"), Year: ptr(1999), Genres: &[]string{"sci-fi", "noir"}},
			setupMock: func(_ *MockTitleRepository, _ *MockCategoryRepository, gr *MockGenreRepository) {
				gr.On("FindBySlugs", mock.Anything, []string{"sci-fi", "noir"}).Return([]model.Genre{scifi}, nil)
			},
			expectedError: apperrors.ErrUnknownSlug,
			expectedField: "genre",
		},
		{
			name:          "missing name",
			in:            TitleInput{Year: ptr(1999)},
			setupMock:     func(*MockTitleRepository, *MockCategoryRepository, *MockGenreRepository) {},
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles, categories, genres := new(MockTitleRepository), new(MockCategoryRepository), new(MockGenreRepository)
			tt.setupMock(titles, categories, genres)
			svc := newTitleService(titles, categories, genres, nil)

			title, err := svc.Create(context.Background(), tt.in)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.expectedField != "" {
					assert.Contains(t, apperrors.MapErrorToHTTP(err).Fields, tt.expectedField)
				}
				titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(42), title.ID)
			titles.AssertExpectations(t)
		})
	}
}

func TestTitleService_GetUsesCache(t *testing.T) {
	titles := new(MockTitleRepository)
	titles.On("FindByID", mock.Anything, uint(1)).
		Return(&model.Title{ID: 1, Name: "Dune", Rating: decimal.NewNullDecimal(decimal.RequireFromString("8.5"))}, nil).Once()
	svc := newTitleService(titles, new(MockCategoryRepository), new(MockGenreRepository), newTestTitleCache(t))
	ctx := context.Background()

	first, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	second, err := svc.Get(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "Dune", second.Name)
	assert.True(t, first.Rating.Decimal.Equal(second.Rating.Decimal))
	titles.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestTitleCache_ReviewWriteInvalidates(t *testing.T) {
	c := newTestTitleCache(t)
	ctx := context.Background()
	c.put(ctx, &model.Title{ID: 3, Name: "Alien"})

	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	titles.On("Exists", mock.Anything, uint(3)).Return(true, nil)
	reviews.On("ExistsByTitleAndAuthor", mock.Anything, uint(3), alice.ID).Return(false, nil)
	reviews.On("Create", mock.Anything, mock.AnythingOfType("*model.Review")).Return(nil)

	_, err := NewReviewService(reviews, titles, c).Create(ctx, alice, 3, "classic", 9)
	require.NoError(t, err)

	_, ok := c.get(ctx, 3)
	assert.False(t, ok)
}

func TestTitleCache_FlushOnCategoryDelete(t *testing.T) {
	c := newTestTitleCache(t)
	ctx := context.Background()
	c.put(ctx, &model.Title{ID: 1, Name: "Dune"})
	c.put(ctx, &model.Title{ID: 2, Name: "Alien"})

	categories := new(MockCategoryRepository)
	categories.On("DeleteBySlug", mock.Anything, "movie").Return(nil)
	require.NoError(t, NewCategoryService(categories, c).Delete(ctx, "movie"))

	_, ok1 := c.get(ctx, 1)
	_, ok2 := c.get(ctx, 2)
	assert.False(t, ok1)
	assert.False(t, ok2)
}

func TestCategoryService_Create(t *testing.T) {
	t.Run("duplicate slug", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(apperrors.ErrDuplicate)

		_, err := NewCategoryService(repo, nil).Create(context.Background(), CategoryInput{Name: "Movie", Slug: "movie"})
		assert.ErrorIs(t, err, apperrors.ErrSlugNotUnique)
	})

	t.Run("bad slug", func(t *testing.T) {
		repo := new(MockCategoryRepository)

		_, err := NewCategoryService(repo, nil).Create(context.Background(), CategoryInput{Name: "Movie", Slug: "big movie"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGenreService_DeleteUnknown(t *testing.T) {
	repo := new(MockGenreRepository)
	repo.On("DeleteBySlug", mock.Anything, "noir").Return(gorm.ErrRecordNotFound)

	err := NewGenreService(repo, nil).Delete(context.Background(), "noir")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
