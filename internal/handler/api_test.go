package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdogcodey/blog-api-backend/internal/config"
	"github.com/jdogcodey/blog-api-backend/internal/server"
)

// envelope mirrors the response wrapper every endpoint uses.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// newTestServer wires the full router over an in-memory database.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := server.New(config.Config{
		Port:               0,
		DBPath:             ":memory:",
		JWTSecret:          "integration-test-secret-key",
		BcryptCost:         4,
		CorsAllowedOrigins: []string{"*"},
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return srv.Handler()
}

// do sends a JSON request through the router and decodes the envelope.
func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	}
	return rr, env
}

func signupBody(username string) map[string]string {
	return map[string]string{
		"first_name":       "Test",
		"last_name":        "User",
		"username":         username,
		"email":            username + "@example.com",
		"password":         "Str0ng!pass",
		"confirm_password": "Str0ng!pass",
	}
}

// signup registers a user and returns the bearer token.
func signup(t *testing.T, h http.Handler, username string) string {
	t.Helper()

	rr, env := do(t, h, http.MethodPost, "/signup", "", signupBody(username))
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

// createPost creates a post as the token's owner and returns its id.
func createPost(t *testing.T, h http.Handler, token, title string) string {
	t.Helper()

	rr, env := do(t, h, http.MethodPost, "/posts/new", token, map[string]string{
		"title":   title,
		"content": "content of " + title,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var payload struct {
		BlogPosts []struct {
			ID string `json:"id"`
		} `json:"blogPosts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Len(t, payload.BlogPosts, 1)
	return payload.BlogPosts[0].ID
}

func TestSignup(t *testing.T) {
	h := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		rr, env := do(t, h, http.MethodPost, "/signup", "", signupBody("alice"))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "Sign Up successful", env.Message)

		var payload struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.NotEmpty(t, payload.Token)
		assert.Equal(t, "alice", payload.User.Username)
		assert.Equal(t, "alice@example.com", payload.User.Email)
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("validation errors reported together", func(t *testing.T) {
		rr, env := do(t, h, http.MethodPost, "/signup", "", map[string]string{
			"username": "x",
			"password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, env.Success)
		assert.Contains(t, env.Errors, "first_name")
		assert.Contains(t, env.Errors, "email")
		assert.Contains(t, env.Errors, "password")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		body := signupBody("alice")
		body["username"] = "alice2"
		rr, env := do(t, h, http.MethodPost, "/signup", "", body)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "An account already exists with those details", env.Message)
		assert.Contains(t, env.Errors, "email")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(`{"broken":`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLogin(t *testing.T) {
	h := newTestServer(t)
	signup(t, h, "alice")

	t.Run("by username", func(t *testing.T) {
		rr, env := do(t, h, http.MethodPost, "/login", "", map[string]string{
			"identifier": "alice",
			"password":   "Str0ng!pass",
		})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Login successful", env.Message)
	})

	t.Run("by email", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPost, "/login", "", map[string]string{
			"identifier": "alice@example.com",
			"password":   "Str0ng!pass",
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("wrong password and unknown user are identical", func(t *testing.T) {
		rrWrong, envWrong := do(t, h, http.MethodPost, "/login", "", map[string]string{
			"identifier": "alice", "password": "Wrong1!pass",
		})
		rrGhost, envGhost := do(t, h, http.MethodPost, "/login", "", map[string]string{
			"identifier": "ghost", "password": "Wrong1!pass",
		})

		assert.Equal(t, http.StatusUnauthorized, rrWrong.Code)
		assert.Equal(t, http.StatusUnauthorized, rrGhost.Code)
		assert.Equal(t, envWrong.Message, envGhost.Message)
	})
}

func TestInfoRoutes(t *testing.T) {
	h := newTestServer(t)

	routes := []struct {
		path    string
		message string
	}{
		{"/", "Welcome!"},
		{"/login", "Log In"},
		{"/signup", "Sign up"},
	}

	for _, route := range routes {
		rr, env := do(t, h, http.MethodGet, route.path, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code, route.path)
		assert.Equal(t, route.message, env.Message, route.path)
	}
}

func TestOwnProfile(t *testing.T) {
	h := newTestServer(t)
	token := signup(t, h, "alice")

	t.Run("requires auth", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodGet, "/user", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("returns profile with email", func(t *testing.T) {
		rr, env := do(t, h, http.MethodGet, "/user", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Your Profile", env.Message)

		var payload struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
			EditPrivilege bool `json:"editPrivilege"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.True(t, payload.EditPrivilege)
		assert.Equal(t, "alice@example.com", payload.User.Email)
	})
}

func TestProfileVisibility(t *testing.T) {
	h := newTestServer(t)
	aliceToken := signup(t, h, "alice")
	bobToken := signup(t, h, "bob")

	// Resolve alice's id from a post she owns.
	postID := createPost(t, h, aliceToken, "alices post")
	_, postEnv := do(t, h, http.MethodGet, "/posts/"+postID, "", nil)
	var postPayload struct {
		BlogPosts []struct {
			UserID string `json:"userId"`
		} `json:"blogPosts"`
	}
	require.NoError(t, json.Unmarshal(postEnv.Data, &postPayload))
	require.Len(t, postPayload.BlogPosts, 1)
	aliceID := postPayload.BlogPosts[0].UserID

	rr, _ := do(t, h, http.MethodPost, "/posts/"+postID+"/comments/new", bobToken, map[string]string{
		"content": "nice writeup",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	profile := func(token string) (int, envelope) {
		rr, env := do(t, h, http.MethodGet, "/user/"+aliceID, token, nil)
		return rr.Code, env
	}

	t.Run("owner sees email and edit privilege", func(t *testing.T) {
		code, env := profile(aliceToken)
		assert.Equal(t, http.StatusOK, code)

		var payload struct {
			User          map[string]any `json:"user"`
			EditPrivilege bool           `json:"editPrivilege"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.True(t, payload.EditPrivilege)
		assert.Equal(t, "alice@example.com", payload.User["email"])
	})

	t.Run("other user sees no email", func(t *testing.T) {
		code, env := profile(bobToken)
		assert.Equal(t, http.StatusOK, code)

		var payload struct {
			User          map[string]any `json:"user"`
			EditPrivilege bool           `json:"editPrivilege"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.False(t, payload.EditPrivilege)
		assert.NotNil(t, payload.User)
		assert.NotContains(t, payload.User, "email")
	})

	t.Run("anonymous sees posts only", func(t *testing.T) {
		code, env := profile("")
		assert.Equal(t, http.StatusOK, code)

		var payload struct {
			User      map[string]any   `json:"user"`
			BlogPosts []map[string]any `json:"blogPosts"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Nil(t, payload.User)
		assert.Len(t, payload.BlogPosts, 1)
	})

	t.Run("profile posts carry their comments", func(t *testing.T) {
		code, env := profile("")
		assert.Equal(t, http.StatusOK, code)

		var payload struct {
			BlogPosts []struct {
				Comments []struct {
					Content  string `json:"content"`
					Username string `json:"username"`
				} `json:"comments"`
			} `json:"blogPosts"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		require.Len(t, payload.BlogPosts, 1)
		require.NotEmpty(t, payload.BlogPosts[0].Comments)
		assert.Equal(t, "nice writeup", payload.BlogPosts[0].Comments[0].Content)
		assert.Equal(t, "bob", payload.BlogPosts[0].Comments[0].Username)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodGet, "/user/no-such-id", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPostLifecycle(t *testing.T) {
	h := newTestServer(t)
	aliceToken := signup(t, h, "alice")
	bobToken := signup(t, h, "bob")

	postID := createPost(t, h, aliceToken, "original title")

	t.Run("create requires auth", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPost, "/posts/new", "", map[string]string{
			"title": "t", "content": "c",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("create requires a title", func(t *testing.T) {
		rr, env := do(t, h, http.MethodPost, "/posts/new", aliceToken, map[string]string{
			"content": "no title here",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Posts must have a title", env.Errors["title"])
	})

	t.Run("anonymous read has no edit privilege", func(t *testing.T) {
		rr, env := do(t, h, http.MethodGet, "/posts/"+postID, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var payload struct {
			User          map[string]any `json:"user"`
			EditPrivilege bool           `json:"editPrivilege"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.False(t, payload.EditPrivilege)
		assert.Nil(t, payload.User)
	})

	t.Run("owner read has edit privilege", func(t *testing.T) {
		rr, env := do(t, h, http.MethodGet, "/posts/"+postID, aliceToken, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var payload struct {
			EditPrivilege bool `json:"editPrivilege"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.True(t, payload.EditPrivilege)
	})

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		rr, env := do(t, h, http.MethodPut, "/posts/"+postID, aliceToken, map[string]string{
			"content": "rewritten content",
		})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Post updated successfully", env.Message)

		var payload struct {
			BlogPosts []struct {
				Title   string `json:"title"`
				Content string `json:"content"`
			} `json:"blogPosts"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		require.Len(t, payload.BlogPosts, 1)
		assert.Equal(t, "original title", payload.BlogPosts[0].Title)
		assert.Equal(t, "rewritten content", payload.BlogPosts[0].Content)
	})

	t.Run("update with no fields is rejected", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPut, "/posts/"+postID, aliceToken, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPut, "/posts/"+postID, bobToken, map[string]string{
			"title": "hijacked",
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodDelete, "/posts/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing post is 404 before any permission check", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPut, "/posts/no-such-post", bobToken, map[string]string{
			"title": "whatever",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("owner deletes, repeat delete is 404", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodDelete, "/posts/"+postID, aliceToken, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Zero(t, rr.Body.Len())

		rr, _ = do(t, h, http.MethodDelete, "/posts/"+postID, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr, _ = do(t, h, http.MethodGet, "/posts/"+postID, "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestOwnPosts(t *testing.T) {
	h := newTestServer(t)
	aliceToken := signup(t, h, "alice")
	bobToken := signup(t, h, "bob")

	createPost(t, h, aliceToken, "one")
	createPost(t, h, aliceToken, "two")
	createPost(t, h, bobToken, "bobs")

	rr, env := do(t, h, http.MethodGet, "/posts/", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Your Posts", env.Message)

	var payload struct {
		BlogPosts []struct {
			Title    string `json:"title"`
			Username string `json:"username"`
		} `json:"blogPosts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Len(t, payload.BlogPosts, 2)
	for _, p := range payload.BlogPosts {
		assert.Equal(t, "alice", p.Username)
	}
}

func TestComments(t *testing.T) {
	h := newTestServer(t)
	aliceToken := signup(t, h, "alice")
	bobToken := signup(t, h, "bob")
	postID := createPost(t, h, aliceToken, "discussed")

	t.Run("requires auth", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPost, "/posts/"+postID+"/comments/new", "", map[string]string{
			"content": "anonymous comment",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("any authenticated user may comment", func(t *testing.T) {
		rr, env := do(t, h, http.MethodPost, "/posts/"+postID+"/comments/new", bobToken, map[string]string{
			"content": "great post",
		})
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Comment created", env.Message)
	})

	t.Run("comment appears on the post with its author", func(t *testing.T) {
		rr, env := do(t, h, http.MethodGet, "/posts/"+postID, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var payload struct {
			BlogPosts []struct {
				Comments []struct {
					Content  string `json:"content"`
					Username string `json:"username"`
				} `json:"comments"`
			} `json:"blogPosts"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		require.Len(t, payload.BlogPosts, 1)
		require.Len(t, payload.BlogPosts[0].Comments, 1)
		assert.Equal(t, "great post", payload.BlogPosts[0].Comments[0].Content)
		assert.Equal(t, "bob", payload.BlogPosts[0].Comments[0].Username)
	})

	t.Run("missing post is 404", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPost, "/posts/ghost/comments/new", bobToken, map[string]string{
			"content": "into the void",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodPost, "/posts/"+postID+"/comments/new", bobToken, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBearerTokenHandling(t *testing.T) {
	h := newTestServer(t)
	signup(t, h, "alice")

	cases := []struct {
		name  string
		token string
	}{
		{"garbage token", "not-a-jwt"},
		{"empty bearer", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tc.token))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}
