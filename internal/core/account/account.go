// Package account defines planner users and password handling.
package account

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is a planner account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines account persistence.
type Store interface {
	// Create inserts a user. Returns ErrUsernameTaken for duplicates.
	Create(ctx context.Context, username, passwordHash string, now time.Time) (User, error)

	// Get returns a user by id.
	Get(ctx context.Context, id int64) (User, error)

	// GetByUsername returns a user by name. Returns ErrNotFound if missing.
	GetByUsername(ctx context.Context, username string) (User, error)

	// SetPasswordHash replaces the stored hash for a user.
	SetPasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash. Unsalted
// SHA-256 hex digests written by older releases are still accepted.
func CheckPassword(hash, password string) bool {
	if IsLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(hash))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsLegacyHash reports whether hash is an unsalted SHA-256 digest that should
// be replaced with bcrypt on the next successful login.
func IsLegacyHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
