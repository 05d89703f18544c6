package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "yamdb/internal/errors"
)

type genreInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type reviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"min=1,max=10"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(&genreInput{Name: "Drama", Slug: "not a slug"})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	require.Contains(t, appErr.Fields, "slug")
	assert.Contains(t, appErr.Fields["slug"][0], "slug may contain only")
}

func TestStruct_ScoreBounds(t *testing.T) {
	tests := []struct {
		score int
		ok    bool
	}{
		{0, false},
		{1, true},
		{10, true},
		{11, false},
	}
	for _, tt := range tests {
		err := Struct(&reviewInput{Text: "ok", Score: tt.score})
		if tt.ok {
			assert.NoError(t, err, "score %d", tt.score)
		} else {
			assert.ErrorIs(t, err, apperrors.ErrValidation, "score %d", tt.score)
		}
	}
}

func TestVar_Email(t *testing.T) {
	assert.NoError(t, Var("email", "neo@matrix.io", "email"))

	err := Var("email", "neo-at-matrix", "email")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"email must be a valid email address"}, appErr.Fields["email"])
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"neo", true},
		{"john.doe+test@x-y_z", true},
		{"Анна", true},
		{"me", false},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
		{strings.Repeat("a", 150), true},
		{strings.Repeat("a", 151), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidUsername(tt.name), tt.name)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("sci-fi_2"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("sci fi"))
	assert.False(t, ValidSlug(strings.Repeat("s", 51)))
}
