package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"yamdb/internal/auth"
	"yamdb/internal/config"
	apperrors "yamdb/internal/errors"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
	"yamdb/internal/model"
	"yamdb/internal/repository"
	"yamdb/internal/validation"
)

// TokenPair is what a successful code exchange returns.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService handles sign-up and credential issuance.
type AuthService interface {
	SignUp(ctx context.Context, username, email string) (*model.User, error)
	ObtainToken(ctx context.Context, username, code string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	sender     mail.Sender
	mailCfg    config.MailConfig
	logger     logging.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	sender mail.Sender,
	mailCfg config.MailConfig,
	logger logging.Logger,
) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		sender:     sender,
		mailCfg:    mailCfg,
		logger:     logger,
	}
}

// SignUp registers a user or, when the exact (username, email) pair is
// already known, re-sends the code. Checks run in order and stop at the
// first failure.
func (s *authService) SignUp(ctx context.Context, username, email string) (*model.User, error) {
	if !validation.ValidUsername(username) {
		return nil, apperrors.ErrBadName
	}
	if utf8.RuneCountInString(email) > validation.MaxEmailLength {
		return nil, apperrors.ErrBadName.OnField("email")
	}
	if err := validation.Var("email", email, "required,email"); err != nil {
		return nil, err
	}

	user, err := s.resolve(ctx, username, email)
	if errors.Is(err, apperrors.ErrDuplicate) {
		// lost an insert race; the winner's row decides the outcome
		user, err = s.resolve(ctx, username, email)
	}
	if errors.Is(err, apperrors.ErrDuplicate) {
		return nil, uniqueConflict(ctx, s.users, &model.User{Username: username, Email: email})
	}
	if err != nil {
		return nil, err
	}

	if err := s.sendCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) resolve(ctx context.Context, username, email string) (*model.User, error) {
	byName, err := optional(s.users.FindByUsername(ctx, username))
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	if byName != nil && byName.Email != email {
		return nil, apperrors.ErrUsernameNotUnique
	}

	byEmail, err := optional(s.users.FindByEmail(ctx, email))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if byEmail != nil && byEmail.Username != username {
		return nil, apperrors.ErrEmailNotUnique
	}

	code := auth.DeriveConfirmationCode(email)
	if byName != nil {
		if byName.ConfirmationCode != code {
			byName.ConfirmationCode = code
			if err := s.users.Update(ctx, byName); err != nil {
				return nil, fmt.Errorf("update confirmation code: %w", err)
			}
		}
		return byName, nil
	}

	user := &model.User{
		Username:         username,
		Email:            email,
		Role:             model.RoleUser,
		ConfirmationCode: code,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info(ctx, "user signed up", "username", user.Username)
	return user, nil
}

func (s *authService) sendCode(ctx context.Context, user *model.User) error {
	err := s.sender.Send(ctx, mail.Message{
		From:    s.mailCfg.From,
		To:      user.Email,
		Subject: s.mailCfg.Subject,
		Body:    user.ConfirmationCode,
	})
	if err != nil {
		s.logger.Error(ctx, "confirmation code delivery failed", "username", user.Username, "error", err)
		return apperrors.DeliveryFailed(err)
	}
	return nil
}

// ObtainToken exchanges a confirmation code for an access and a refresh token.
func (s *authService) ObtainToken(ctx context.Context, username, code string) (*TokenPair, error) {
	if username == "" {
		return nil, apperrors.ErrMissingUsername
	}
	if code == "" {
		return nil, apperrors.ErrMissingCode
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.ConfirmationCode != code {
		return nil, apperrors.ErrCodeMismatch
	}

	access, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refresh, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, s.jwtService.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a stored refresh token and returns a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateTyped(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", apperrors.ErrInvalidRefresh
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidRefresh
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidRefresh
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout forgets the refresh token and, when the caller presented one,
// revokes the access token until it expires.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	claims, err := s.jwtService.ValidateTyped(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return apperrors.ErrInvalidRefresh
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if access != nil {
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, access.Remaining()); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}
	return nil
}
