package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
	"github.com/jdogcodey/blog-api-backend/internal/auth"
	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/service"
	"github.com/jdogcodey/blog-api-backend/internal/validate"
)

// BlogHandler serves profiles, posts and comments.
type BlogHandler struct {
	blog   *service.BlogService
	logger *slog.Logger
}

func NewBlogHandler(blog *service.BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{blog: blog, logger: logger}
}

// profilePayload is the data section for profile and post-listing
// responses. User is a pointer so anonymous viewers get no user key at
// all rather than an empty object.
type profilePayload struct {
	User          *model.Profile `json:"user,omitempty"`
	EditPrivilege bool           `json:"editPrivilege"`
	BlogPosts     []model.Post   `json:"blogPosts"`
}

// HandleOwnProfile returns the caller's profile and posts.
//
// HTTP: GET /user — auth required
func (h *BlogHandler) HandleOwnProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.Unauthorized("Not logged in"))
		return
	}

	posts, err := h.blog.OwnPosts(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("loading own profile", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	profile := principal.Profile()
	writeSuccess(w, http.StatusOK, "Your Profile", profilePayload{
		User:          &profile,
		EditPrivilege: true,
		BlogPosts:     posts,
	})
}

// HandleProfile returns a user's profile page as seen by the viewer.
//
// HTTP: GET /user/{id} — auth optional
//
// The owner gets the full profile with editPrivilege true; another
// authenticated viewer gets the public fields (no email) with
// editPrivilege false; an anonymous viewer gets the posts only.
func (h *BlogHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		viewerID = principal.ID
	}

	view, err := h.blog.Profile(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile", profilePayload{
		User:          view.User,
		EditPrivilege: view.EditPrivilege,
		BlogPosts:     view.Posts,
	})
}

// HandleOwnPosts returns only the caller's posts.
//
// HTTP: GET /posts — auth required
func (h *BlogHandler) HandleOwnPosts(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.Unauthorized("Not logged in"))
		return
	}

	posts, err := h.blog.OwnPosts(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("listing own posts", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	profile := principal.Profile()
	writeSuccess(w, http.StatusOK, "Your Posts", profilePayload{
		User:          &profile,
		EditPrivilege: true,
		BlogPosts:     posts,
	})
}

// HandleCreatePost creates a post owned by the caller.
//
// HTTP: POST /posts/new — auth required
// Body: title, content
//
// The owner is forced to the authenticated principal; any owner field in
// the body is ignored by the input type before it can matter.
func (h *BlogHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.Unauthorized("Not logged in"))
		return
	}

	var in validate.PostInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	post, err := h.blog.CreatePost(r.Context(), principal.ID, in)
	if err != nil {
		WriteError(w, err)
		return
	}

	profile := principal.Profile()
	writeSuccess(w, http.StatusCreated, "Post created", profilePayload{
		User:          &profile,
		EditPrivilege: true,
		BlogPosts:     []model.Post{*post},
	})
}

// HandlePost returns a single post with its comments.
//
// HTTP: GET /posts/{postId} — auth optional
//
// editPrivilege is true iff the viewer owns the post; only then is a user
// object included.
func (h *BlogHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		viewerID = principal.ID
	}

	view, err := h.blog.Post(r.Context(), chi.URLParam(r, "postId"), viewerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Post "+view.Post.ID, profilePayload{
		User:          view.User,
		EditPrivilege: view.EditPrivilege,
		BlogPosts:     []model.Post{*view.Post},
	})
}

// HandleUpdatePost applies a partial update to a post the caller owns.
//
// HTTP: PUT /posts/{postId} — auth + ownership required
// Body: title?, content? (at least one)
//
// The ownership middleware has already re-fetched the post and attached
// it; fields absent from the body keep their stored values.
func (h *BlogHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.Unauthorized("Not logged in"))
		return
	}

	post, ok := auth.PostFromContext(r.Context())
	if !ok {
		h.logger.Error("update reached handler without ownership check")
		WriteError(w, apperror.Forbidden("Access Denied"))
		return
	}

	var in validate.PostInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	updated, err := h.blog.UpdatePost(r.Context(), post, in)
	if err != nil {
		WriteError(w, err)
		return
	}

	profile := principal.Profile()
	writeSuccess(w, http.StatusOK, "Post updated successfully", profilePayload{
		User:          &profile,
		EditPrivilege: true,
		BlogPosts:     []model.Post{*updated},
	})
}

// HandleDeletePost deletes a post the caller owns.
//
// HTTP: DELETE /posts/{postId} — auth + ownership required
//
// 204 with no body on success; a repeat delete is 404.
func (h *BlogHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := auth.PostFromContext(r.Context())
	if !ok {
		h.logger.Error("delete reached handler without ownership check")
		WriteError(w, apperror.Forbidden("Access Denied"))
		return
	}

	if err := h.blog.DeletePost(r.Context(), post.ID); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// commentPayload is the data section for comment creation.
type commentPayload struct {
	User     *model.Profile  `json:"user,omitempty"`
	Comments []model.Comment `json:"comments"`
}

// HandleCreateComment adds a comment to an existing post.
//
// HTTP: POST /posts/{postId}/comments/new — auth required
// Body: content
//
// Commenting on an absent post is 404.
func (h *BlogHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.Unauthorized("Not logged in"))
		return
	}

	var in validate.CommentInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	comment, err := h.blog.CreateComment(r.Context(), chi.URLParam(r, "postId"), principal.ID, in)
	if err != nil {
		WriteError(w, err)
		return
	}

	profile := principal.Profile()
	writeSuccess(w, http.StatusCreated, "Comment created", commentPayload{
		User:     &profile,
		Comments: []model.Comment{*comment},
	})
}
