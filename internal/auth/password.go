// Package auth provides password hashing, JWT issuance/verification, the
// credential verifier and the authentication/authorization middleware.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. bcrypt generates a per-call random
// salt and embeds it in the output, so two users with the same password get
// different hashes. The cost makes offline guessing expensive; tune it so a
// hash takes a few hundred milliseconds on production hardware.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct rather than free functions so the cost can be injected:
// tests use the bcrypt minimum (4) to avoid paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost.
// Cost 0 (or anything below the bcrypt minimum) falls back to the default.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext password with bcrypt. The output is a
// self-contained string including salt and cost; store it directly.
//
// Returns an error for plaintexts over 72 bytes — bcrypt would silently
// truncate them otherwise.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
//
// Returns (false, nil) on a simple mismatch and (false, err) only when the
// stored hash itself is malformed — callers treat those differently: a
// mismatch is invalid credentials, a malformed hash is a server fault.
func (p *PasswordService) Verify(hash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return true, nil
}
