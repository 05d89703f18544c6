package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"yamdb/internal/auth"
	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
	"yamdb/internal/repository"
	"yamdb/internal/validation"
)

const maxNameLength = 150

// UserInput is a partial user payload; nil fields are left untouched.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *model.Role
}

// UserService manages accounts on behalf of admins and of users themselves.
type UserService interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error)
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Get(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, username string, in UserInput) (*model.User, error)
	Delete(ctx context.Context, username string) error
	UpdateMe(ctx context.Context, me *model.User, in UserInput) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	titles *TitleCache
}

// NewUserService builds a UserService. Deleting a user cascades to their
// reviews, so it flushes cached title ratings.
func NewUserService(repo repository.UserRepository, titles *TitleCache) UserService {
	return &userService{repo: repo, titles: titles}
}

func (s *userService) List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error) {
	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page(users, total), nil
}

// Create adds a user as an admin would. The account gets the derived
// confirmation code so it can log in through the normal exchange.
func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if in.Username == nil || *in.Username == "" {
		return nil, required("username")
	}
	if in.Email == nil || *in.Email == "" {
		return nil, required("email")
	}

	user := &model.User{Role: model.RoleUser}
	if err := s.apply(ctx, user, in, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.writeError(ctx, err, user, "create user")
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, username string, in UserInput) (*model.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, user, in, true)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user); err != nil {
		return notFound(err, "user")
	}
	s.titles.flush(ctx)
	return nil
}

// UpdateMe edits the caller's own profile. Role changes are ignored.
func (s *userService) UpdateMe(ctx context.Context, me *model.User, in UserInput) (*model.User, error) {
	if me == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user := *me
	return s.save(ctx, &user, in, false)
}

func (s *userService) save(ctx context.Context, user *model.User, in UserInput, allowRole bool) (*model.User, error) {
	if err := s.apply(ctx, user, in, allowRole); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.writeError(ctx, err, user, "update user")
	}
	return user, nil
}

// apply validates in and copies it onto user. Username and email keep the
// same rules as sign-up, and a new email re-derives the confirmation code.
func (s *userService) apply(ctx context.Context, user *model.User, in UserInput, allowRole bool) error {
	if in.Username != nil && *in.Username != user.Username {
		name := *in.Username
		if !validation.ValidUsername(name) {
			return apperrors.ErrBadName
		}
		taken, err := optional(s.repo.FindByUsername(ctx, name))
		if err != nil {
			return fmt.Errorf("find user by username: %w", err)
		}
		if taken != nil {
			return apperrors.ErrUsernameNotUnique
		}
		user.Username = name
	}

	if in.Email != nil && *in.Email != user.Email {
		email := *in.Email
		if utf8.RuneCountInString(email) > validation.MaxEmailLength {
			return apperrors.ErrBadName.OnField("email")
		}
		if err := validation.Var("email", email, "required,email"); err != nil {
			return err
		}
		taken, err := optional(s.repo.FindByEmail(ctx, email))
		if err != nil {
			return fmt.Errorf("find user by email: %w", err)
		}
		if taken != nil {
			return apperrors.ErrEmailNotUnique
		}
		user.Email = email
		user.ConfirmationCode = auth.DeriveConfirmationCode(email)
	}

	if in.FirstName != nil {
		if utf8.RuneCountInString(*in.FirstName) > maxNameLength {
			return apperrors.InvalidField("first_name", "Ensure this field has no more than 150 characters.")
		}
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		if utf8.RuneCountInString(*in.LastName) > maxNameLength {
			return apperrors.InvalidField("last_name", "Ensure this field has no more than 150 characters.")
		}
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}

	if allowRole && in.Role != nil {
		if !in.Role.Valid() {
			return apperrors.InvalidField("role", fmt.Sprintf("%q is not a valid choice.", *in.Role))
		}
		user.Role = *in.Role
	}
	return nil
}

// writeError maps a unique-constraint hit that slipped past the pre-checks.
func (s *userService) writeError(ctx context.Context, err error, user *model.User, op string) error {
	if errors.Is(err, apperrors.ErrDuplicate) {
		return uniqueConflict(ctx, s.repo, user).Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
