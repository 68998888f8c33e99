package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/repository"
	"github.com/jdogcodey/blog-api-backend/internal/validate"
)

// BlogService handles profiles, posts and comments.
type BlogService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewBlogService(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *BlogService {
	return &BlogService{
		users:    users,
		posts:    posts,
		comments: comments,
		logger:   logger,
	}
}

// ProfileView is what a profile page shows for a given viewer: the
// target's posts always, the target's profile fields only for
// authenticated viewers, and the email only for the owner.
type ProfileView struct {
	User          *model.Profile
	EditPrivilege bool
	Posts         []model.Post
}

// Profile loads the profile of userID as seen by viewerID (empty for
// anonymous). The target must exist; which fields come back depends on
// who's asking. Each post carries its comments so the profile page can
// render them inline.
func (s *BlogService) Profile(ctx context.Context, userID, viewerID string) (*ProfileView, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByOwner(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("service/blog: listing posts for user %s: %w", target.ID, err)
	}
	for i := range posts {
		comments, err := s.comments.ListByPost(ctx, posts[i].ID)
		if err != nil {
			return nil, fmt.Errorf("service/blog: listing comments for post %s: %w", posts[i].ID, err)
		}
		posts[i].Comments = comments
	}

	view := &ProfileView{Posts: posts}
	switch {
	case viewerID == target.ID:
		p := target.OwnProfile()
		view.User = &p
		view.EditPrivilege = true
	case viewerID != "":
		p := target.PublicProfile()
		view.User = &p
	}

	return view, nil
}

// OwnPosts returns all posts belonging to ownerID.
func (s *BlogService) OwnPosts(ctx context.Context, ownerID string) ([]model.Post, error) {
	posts, err := s.posts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/blog: listing posts for user %s: %w", ownerID, err)
	}
	return posts, nil
}

// CreatePost validates the form and persists a new post. The owner is
// always the authenticated principal — a client-supplied owner field
// never reaches this far.
func (s *BlogService) CreatePost(ctx context.Context, ownerID string, in validate.PostInput) (*model.Post, error) {
	title, content, fieldErrs := validate.NewPost(in)
	if len(fieldErrs) > 0 {
		return nil, apperror.ValidationFailedFields(fieldErrs)
	}

	post := &model.Post{
		Title:   title,
		Content: content,
		OwnerID: ownerID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/blog: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("userID", ownerID),
	)

	return post, nil
}

// PostView is a post as seen by a given viewer.
type PostView struct {
	Post          *model.Post
	User          *model.Profile
	EditPrivilege bool
}

// Post loads a post with its comments as seen by viewerID (empty for
// anonymous). Edit privilege is granted only to the owner, and the
// owner's own profile is included alongside it.
func (s *BlogService) Post(ctx context.Context, postID, viewerID string) (*PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("service/blog: listing comments for post %s: %w", post.ID, err)
	}
	post.Comments = comments

	view := &PostView{Post: post}
	if viewerID != "" && post.OwnerID == viewerID {
		owner, err := s.users.GetByID(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("service/blog: loading post owner %s: %w", viewerID, err)
		}
		p := owner.OwnProfile()
		view.User = &p
		view.EditPrivilege = true
	}

	return view, nil
}

// UpdatePost applies a partial update to a post already cleared by the
// ownership middleware. Fields left out of the request keep their stored
// values; a field supplied as empty fails validation rather than silently
// keeping the old value. The owner never changes.
func (s *BlogService) UpdatePost(ctx context.Context, post *model.Post, in validate.PostInput) (*model.Post, error) {
	title, content, fieldErrs := validate.UpdatePost(in)
	if len(fieldErrs) > 0 {
		return nil, apperror.ValidationFailedFields(fieldErrs)
	}

	if title != nil {
		post.Title = *title
	}
	if content != nil {
		post.Content = *content
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post updated", slog.String("postID", post.ID))

	return post, nil
}

// DeletePost removes a post already cleared by the ownership middleware.
// A repeat delete is NotFound, not a silent success.
func (s *BlogService) DeletePost(ctx context.Context, postID string) error {
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	s.logger.Info("post deleted", slog.String("postID", postID))
	return nil
}

// CreateComment validates the form and persists a comment on an existing
// post. The post is fetched fresh; commenting on an absent post is
// NotFound.
func (s *BlogService) CreateComment(ctx context.Context, postID, ownerID string, in validate.CommentInput) (*model.Comment, error) {
	content, fieldErrs := validate.NewComment(in)
	if len(fieldErrs) > 0 {
		return nil, apperror.ValidationFailedFields(fieldErrs)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content: content,
		PostID:  post.ID,
		OwnerID: ownerID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/blog: creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("commentID", comment.ID),
		slog.String("postID", post.ID),
		slog.String("userID", ownerID),
	)

	return comment, nil
}
