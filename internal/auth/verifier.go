package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/repository"
)

// Verifier resolves request credentials to a full user record. It has two
// independent strategies: password (login) and bearer (every authenticated
// request). Construct it once at startup with its dependencies and pass it
// to the middleware and handlers that need it — there is no global
// registration.
type Verifier struct {
	users     repository.UserRepository
	passwords *PasswordService
	tokens    *TokenService
}

func NewVerifier(users repository.UserRepository, passwords *PasswordService, tokens *TokenService) *Verifier {
	return &Verifier{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
	}
}

// VerifyPassword runs the password strategy: resolve the identifier
// (username or email) to a user and check the plaintext against the stored
// hash.
//
// A missing user and a wrong password both return the same opaque
// unauthorized error, so the response can't be used to enumerate accounts.
func (v *Verifier) VerifyPassword(ctx context.Context, identifier, plaintext string) (*model.User, error) {
	user, err := v.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("auth: looking up user by identifier: %w", err)
	}

	ok, err := v.passwords.Verify(user.PasswordHash, plaintext)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying password: %w", err)
	}
	if !ok {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	return user, nil
}

// VerifyBearer runs the bearer strategy: verify the token's signature and
// expiry, then load the bound user. A valid token for a since-deleted
// account fails the same way as a bad token.
func (v *Verifier) VerifyBearer(ctx context.Context, token string) (*model.User, error) {
	userID, err := v.tokens.Verify(token)
	if err != nil {
		return nil, apperror.Unauthorized("Not logged in")
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Not logged in")
		}
		return nil, fmt.Errorf("auth: looking up token subject: %w", err)
	}

	return user, nil
}
