package model

import "time"

// Post is a blog post belonging to exactly one user.
//
// OwnerID is set from the authenticated principal at creation and never
// changes afterwards — updates only touch Title and Content.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	OwnerID   string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// OwnerUsername is populated on reads that join the owner, so post
	// listings can show who wrote each post. Not a stored column.
	OwnerUsername string `json:"username,omitempty" db:"-"`

	// Comments is populated on post-detail reads.
	Comments []Comment `json:"comments,omitempty" db:"-"`
}

// Comment is a reply on a post, scoped to an existing Post and created
// only by an authenticated principal.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	Content   string    `json:"content"   db:"content"`
	PostID    string    `json:"postId"    db:"post_id"`
	OwnerID   string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// OwnerUsername is populated on reads that join the commenter.
	OwnerUsername string `json:"username,omitempty" db:"-"`
}
