// Package service contains the business logic layer, between the HTTP
// handlers and the repositories. Services accept plain values, return
// domain models and apperror values, and know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
	"github.com/jdogcodey/blog-api-backend/internal/auth"
	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/repository"
	"github.com/jdogcodey/blog-api-backend/internal/validate"
)

// AuthService handles signup and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	verifier  *auth.Verifier
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	verifier *auth.Verifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		verifier:  verifier,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup validates the form, checks uniqueness, hashes the password,
// creates the user and issues a token for the new account.
//
// All validation violations are reported at once. The duplicate pre-check
// runs as a single combined query and names the colliding field,
// preferring email when both collide; it's a user-experience optimization
// only — the store's UNIQUE constraints catch the race between two
// concurrent signups, and that conflict carries the same shape.
func (s *AuthService) Signup(ctx context.Context, in validate.SignupInput) (*AuthResult, error) {
	in, fieldErrs := validate.Signup(in)
	if len(fieldErrs) > 0 {
		return nil, apperror.ValidationFailedFields(fieldErrs)
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking for duplicates: %w", err)
	}
	if existing != nil {
		field := "username"
		if existing.Email == in.Email {
			field = "email"
		}
		return nil, apperror.Conflict(field)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The UNIQUE backstop fired: surface it exactly like the pre-check.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", in.Username, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks presence of the form fields, runs the password strategy and
// issues a token. Credential failures are opaque: an unknown identifier
// and a wrong password produce identical errors.
func (s *AuthService) Login(ctx context.Context, in validate.LoginInput) (*AuthResult, error) {
	in, fieldErrs := validate.Login(in)
	if len(fieldErrs) > 0 {
		return nil, apperror.ValidationFailedFields(fieldErrs)
	}

	user, err := s.verifier.VerifyPassword(ctx, in.Identifier, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}
