// Package repository defines the storage contracts the rest of the
// application programs against. Each method returns either the record(s)
// asked for or apperror.ErrNotFound; implementations live in subpackages.
package repository

import (
	"context"

	"github.com/jdogcodey/blog-api-backend/internal/model"
)

type UserRepository interface {
	// Create inserts a new user, assigning ID and timestamps. A username
	// or email collision surfaces as apperror.ErrConflict — the store's
	// UNIQUE constraints are the final backstop behind the signup
	// pre-check.
	Create(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByIdentifier looks a user up by username or email equal to the
	// identifier. Used by login.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)

	// FindByUsernameOrEmail returns any user whose username or email
	// matches, in a single query. Used by the signup duplicate pre-check.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Post, error)
	// Update writes title and content only; ownership never changes.
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
}
