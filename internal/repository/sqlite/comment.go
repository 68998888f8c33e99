package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/repository"
)

// CommentRepo implements repository.CommentRepository on the shared
// connection.
type CommentRepo struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentRepo)(nil)

// Create inserts a new comment, assigning ID and timestamp in-place.
func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO comments (id, content, post_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Content,
		comment.PostID,
		comment.OwnerID,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

// ListByPost returns a post's comments, oldest first, with each
// commenter's username joined in.
func (r *CommentRepo) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT c.id, c.content, c.post_id, c.user_id, c.created_at, u.username
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID,
			&c.Content,
			&c.PostID,
			&c.OwnerID,
			&c.CreatedAt,
			&c.OwnerUsername,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
