package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/repository"
)

// Principal is the authenticated identity attached to a request: a public
// projection of the user record, never persisted. A request either carries
// exactly one Principal or none at all — there is no "authenticated as
// anonymous" state.
type Principal struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func principalFromUser(u *model.User) Principal {
	return Principal{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// Profile returns the principal as the owner-facing profile projection.
func (p Principal) Profile() model.Profile {
	return model.Profile{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Username:  p.Username,
		Email:     p.Email,
	}
}

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the values stored under them.
type contextKey int

const (
	principalKey contextKey = iota
	postKey
)

// PrincipalFromContext returns the request's Principal.
// The second return is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// PostFromContext returns the post loaded by RequirePostOwner, saving the
// downstream handler a second fetch.
func PostFromContext(ctx context.Context) (*model.Post, bool) {
	p, ok := ctx.Value(postKey).(*model.Post)
	return p, ok
}

// ErrorWriter writes a domain error as an HTTP response. The handler
// package supplies its envelope writer here so middleware responses share
// the exact same shape as handler responses.
type ErrorWriter func(w http.ResponseWriter, err error)

// Middleware gates requests on the bearer strategy and on ownership.
// It holds the verifier, a post source for ownership re-fetches, and the
// error writer — all injected at startup.
type Middleware struct {
	verifier *Verifier
	posts    repository.PostRepository
	writeErr ErrorWriter
}

func NewMiddleware(verifier *Verifier, posts repository.PostRepository, writeErr ErrorWriter) *Middleware {
	return &Middleware{
		verifier: verifier,
		posts:    posts,
		writeErr: writeErr,
	}
}

// RequireAuth enforces authentication. On any bearer failure it
// short-circuits with 401 and never invokes the next stage; on success it
// attaches the Principal to the request context and continues.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			m.writeErr(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principalFromUser(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches a Principal when a valid token is present and
// continues either way. Read endpoints use it to vary their response
// shape by viewer identity without requiring login: a missing or invalid
// token just means the request stays anonymous.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := m.authenticate(r); err == nil {
			ctx := context.WithValue(r.Context(), principalKey, principalFromUser(user))
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelf compares the Principal's id to the {id} path parameter.
// Mismatch is 403; no store access, no side effects. Use after
// RequireAuth.
func (m *Middleware) RequireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			m.writeErr(w, apperror.Unauthorized("Not logged in"))
			return
		}

		if principal.ID != chi.URLParam(r, "id") {
			m.writeErr(w, apperror.Forbidden("Access Denied"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePostOwner gates mutation of a post on ownership. The post is
// re-fetched from the store inside the request — never taken from an
// earlier load or from client input — and only then compared to the
// Principal. Absent post → 404 before any permission check; owner
// mismatch → 403. On success the fresh post is attached to the context
// for the downstream handler. Use after RequireAuth.
func (m *Middleware) RequirePostOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			m.writeErr(w, apperror.Unauthorized("Not logged in"))
			return
		}

		post, err := m.posts.GetByID(r.Context(), chi.URLParam(r, "postId"))
		if err != nil {
			m.writeErr(w, err)
			return
		}

		if post.OwnerID != principal.ID {
			m.writeErr(w, apperror.Forbidden("You do not have permission to edit this post"))
			return
		}

		ctx := context.WithValue(r.Context(), postKey, post)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate extracts the bearer token from the Authorization header and
// runs the bearer strategy.
func (m *Middleware) authenticate(r *http.Request) (*model.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, apperror.Unauthorized("Not logged in")
	}

	return m.verifier.VerifyBearer(r.Context(), strings.TrimSpace(token))
}
