// Package validate implements the field-rule pipeline applied to request
// input before business logic runs. Rules are checked in order and every
// violation is collected, so a response highlights all offending fields at
// once rather than the first.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldErrors maps field name to the first failed rule's message for that
// field. Empty means the input passed.
type FieldErrors map[string]string

func (fe FieldErrors) add(field, message string) {
	if _, exists := fe[field]; !exists {
		fe[field] = message
	}
}

// commonPasswords is a small blocklist of passwords rejected regardless of
// how well they satisfy the character rules.
var commonPasswords = map[string]bool{
	"password": true,
	"123456":   true,
	"qwerty":   true,
}

// passwordSymbols is the fixed set of accepted special characters.
const passwordSymbols = "@$!%*?&"

// SignupInput is the signup form after JSON decoding, before validation.
type SignupInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Signup checks the signup form. On success the returned input has
// whitespace trimmed and the email normalized (lowercased), ready for the
// uniqueness comparison.
func Signup(in SignupInput) (SignupInput, FieldErrors) {
	fe := FieldErrors{}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)

	checkName(fe, "first_name", "First name", in.FirstName)
	checkName(fe, "last_name", "Last name", in.LastName)

	if in.Username == "" {
		fe.add("username", "Username is required")
	}

	if _, err := mail.ParseAddress(in.Email); err != nil || in.Email == "" {
		fe.add("email", "Must be a valid email")
	}

	checkPassword(fe, in.Password)

	if in.ConfirmPassword != in.Password {
		fe.add("confirm_password", "Password confirmation does not match password")
	}

	return in, fe
}

// NormalizeEmail folds case and whitespace so that uniqueness comparisons
// treat "User@Example.com " and "user@example.com" as the same address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkName(fe FieldErrors, field, label, value string) {
	if value == "" {
		fe.add(field, label+" is required")
		return
	}
	for _, r := range value {
		if !unicode.IsLetter(r) {
			fe.add(field, label+" must only contain letters")
			return
		}
	}
}

func checkPassword(fe FieldErrors, password string) {
	if len(password) < 8 {
		fe.add("password", "Password must be at least 8 characters long")
		return
	}

	// The blocklist outranks the character rules: a common password is
	// rejected as such even when it would also fail them.
	if commonPasswords[strings.ToLower(password)] {
		fe.add("password", "Password is too common")
		return
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	switch {
	case !upper:
		fe.add("password", "Password must contain at least one uppercase letter")
	case !lower:
		fe.add("password", "Password must contain at least one lowercase letter")
	case !digit:
		fe.add("password", "Password must contain at least one number")
	case !symbol:
		fe.add("password", fmt.Sprintf("Password must contain at least one special character (%s)", passwordSymbols))
	}
}

// PostInput is the create/update post form.
type PostInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

const (
	maxTitleLength   = 200
	maxContentLength = 5000
	maxCommentLength = 200
)

// NewPost checks a post creation form: both fields required.
func NewPost(in PostInput) (title, content string, fe FieldErrors) {
	fe = FieldErrors{}

	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		content = strings.TrimSpace(*in.Content)
	}

	// Limits count characters, not bytes, so multibyte text isn't
	// shortchanged.
	if title == "" {
		fe.add("title", "Posts must have a title")
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		fe.add("title", fmt.Sprintf("Title must be under %d characters", maxTitleLength))
	}

	if content == "" {
		fe.add("content", "Content is required")
	} else if utf8.RuneCountInString(content) > maxContentLength {
		fe.add("content", fmt.Sprintf("Content must be under %d characters", maxContentLength))
	}

	return title, content, fe
}

// UpdatePost checks a partial update: each field optional, but at least
// one must be present. A nil pointer means "keep the stored value"; a
// field that is present but empty is a violation, not a keep — the two
// are distinct.
func UpdatePost(in PostInput) (title, content *string, fe FieldErrors) {
	fe = FieldErrors{}

	if in.Title == nil && in.Content == nil {
		fe.add("title", "Either title or content must be provided")
		return nil, nil, fe
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			fe.add("title", "Posts must have a title")
		} else if utf8.RuneCountInString(t) > maxTitleLength {
			fe.add("title", fmt.Sprintf("Title must be under %d characters", maxTitleLength))
		}
		title = &t
	}

	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		if c == "" {
			fe.add("content", "Content is required")
		} else if utf8.RuneCountInString(c) > maxContentLength {
			fe.add("content", fmt.Sprintf("Content must be under %d characters", maxContentLength))
		}
		content = &c
	}

	return title, content, fe
}

// CommentInput is the new comment form.
type CommentInput struct {
	Content string `json:"content"`
}

// NewComment checks a comment: non-empty content, capped length.
func NewComment(in CommentInput) (string, FieldErrors) {
	fe := FieldErrors{}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		fe.add("content", "Content is required")
	} else if utf8.RuneCountInString(content) > maxCommentLength {
		fe.add("content", fmt.Sprintf("Content must be under %d characters", maxCommentLength))
	}

	return content, fe
}

// LoginInput is the login form.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login checks presence of both login fields.
func Login(in LoginInput) (LoginInput, FieldErrors) {
	fe := FieldErrors{}

	in.Identifier = strings.TrimSpace(in.Identifier)
	if in.Identifier == "" {
		fe.add("identifier", "Username or email is required")
	}
	if in.Password == "" {
		fe.add("password", "Password is required")
	}

	return in, fe
}
