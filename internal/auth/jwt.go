package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime is how long an issued token stays valid. After expiry the
// client must log in again; there are no refresh tokens.
const tokenLifetime = time.Hour

const issuer = "blog-api"

// Token verification failures, distinguishable with errors.Is. Both map to
// the same 401 at the HTTP layer; the split exists for logging and tests.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// TokenService issues and verifies HS256-signed bearer tokens. It holds
// the process-wide HMAC secret, loaded once at startup and never mutated.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The standard "sub" claim carries the user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given userID, expiring one hour
// from now.
func (s *TokenService) Issue(userID string) (string, error) {
	return s.IssueWithDuration(userID, tokenLifetime)
}

// IssueWithDuration creates a token with a custom expiry. Used by tests to
// produce already-expired or long-lived tokens.
func (s *TokenService) IssueWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a JWT string and returns the userID it binds.
//
// Signature, expiry, issuer and algorithm are all checked. An expired but
// validly signed token fails with ErrTokenExpired — it is never silently
// extended. Restricting valid methods to HS256 closes the algorithm
// confusion hole where a token signed with "none" would slip through.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}

	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}
