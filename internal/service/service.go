package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
	"yamdb/internal/repository"
)

// page wraps a listing so that an empty result still encodes as [].
func page[T any](items []T, total int64) *model.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &model.Page[T]{Count: total, Results: items}
}

// notFound turns gorm's missing-record error into ErrNotFound and wraps
// anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("find %s: %w", what, err)
}

// optional treats a missing record as nil without error.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func required(field string) error {
	return apperrors.InvalidField(field, "This field is required.")
}

// uniqueConflict names the user field a failed write collided on. The
// email is checked against its current owner; anything else is blamed on
// the username.
func uniqueConflict(ctx context.Context, users repository.UserRepository, self *model.User) *apperrors.AppError {
	owner, err := optional(users.FindByEmail(ctx, self.Email))
	if err == nil && owner != nil && owner.Username != self.Username {
		return apperrors.ErrEmailNotUnique
	}
	return apperrors.ErrUsernameNotUnique
}
