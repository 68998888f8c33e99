package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/repository"
)

// PostRepo implements repository.PostRepository on the shared connection.
type PostRepo struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostRepo)(nil)

// Create inserts a new post, assigning ID and timestamps in-place.
func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.ID = xid.New().String()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.OwnerID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	return nil
}

// GetByID retrieves a post with its owner's username joined in.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.content, p.user_id, p.created_at, p.updated_at, u.username
		 FROM posts p JOIN users u ON u.id = p.user_id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.OwnerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &p, nil
}

// ListByOwner returns all posts belonging to ownerID, newest first.
func (r *PostRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Post, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.user_id, p.created_at, p.updated_at, u.username
		 FROM posts p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ?
		 ORDER BY p.created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts for user %s: %w", ownerID, err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Content,
			&p.OwnerID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.OwnerUsername,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update writes title and content for the given post ID. Ownership is
// deliberately not part of the SET clause — user_id never changes.
// Returns apperror.ErrNotFound if no row was updated.
func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		post.Title,
		post.Content,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of post %s: %w", post.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// Delete removes a post. Deleting an absent (or already-deleted) post is
// apperror.ErrNotFound, not a silent success.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of post %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
