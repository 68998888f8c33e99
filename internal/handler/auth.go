package handler

import (
	"log/slog"
	"net/http"

	"github.com/jdogcodey/blog-api-backend/internal/model"
	"github.com/jdogcodey/blog-api-backend/internal/service"
	"github.com/jdogcodey/blog-api-backend/internal/validate"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// authPayload is the data section returned by signup and login: a bearer
// token plus the public user projection. The password hash never appears
// here — model.User excludes it from JSON and the profile projection
// doesn't carry it at all.
type authPayload struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

// HandleSignup creates an account.
//
// HTTP: POST /signup
// Body: first_name, last_name, username, email, password, confirm_password
//
// 201 with token + profile on success; 400 with every field violation at
// once; 409 naming the colliding field on a duplicate username or email.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in validate.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		h.logError("signup failed", err)
		WriteError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Sign Up successful", authPayload{
		Token: result.Token,
		User:  result.User.OwnProfile(),
	})
}

// HandleLogin authenticates by username-or-email and password.
//
// HTTP: POST /login
// Body: identifier, password
//
// The 401 on bad credentials is identical for an unknown identifier and a
// wrong password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in validate.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.logError("login failed", err)
		WriteError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", authPayload{
		Token: result.Token,
		User:  result.User.OwnProfile(),
	})
}

// HandleHome is the informational JSON for the landing route.
//
// HTTP: GET /
func (h *AuthHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Welcome!", nil)
}

// HandleLoginPage and HandleSignupPage exist so the frontend can hit the
// same paths it renders; they carry no data.
//
// HTTP: GET /login, GET /signup
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Log In", nil)
}

func (h *AuthHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Sign up", nil)
}

// logError records rejected requests at debug level; the request-logging
// middleware already records status codes, so this only adds the cause.
func (h *AuthHandler) logError(msg string, err error) {
	h.logger.Debug(msg, slog.String("error", err.Error()))
}
