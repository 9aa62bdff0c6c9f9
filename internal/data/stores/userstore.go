package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/data/db"
)

// UserStore implements account.Store using SQLite.
type UserStore struct {
	db *db.DB
}

var _ account.Store = (*UserStore)(nil)

// NewUserStore creates a new SQLite-backed user store.
func NewUserStore(db *db.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user. Returns account.ErrUsernameTaken for duplicates.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string, now time.Time) (account.User, error) {
	row, err := s.db.Queries().CreateUser(ctx, db.CreateUserParams{
		Username:  username,
		Password:  passwordHash,
		CreatedAt: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return account.User{}, account.ErrUsernameTaken
		}
		return account.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return rowToUser(row), nil
}

// Get returns a user by id. Returns account.ErrNotFound if missing.
func (s *UserStore) Get(ctx context.Context, id int64) (account.User, error) {
	row, err := s.db.Queries().GetUser(ctx, id)
	if IsNotFoundError(err) {
		return account.User{}, account.ErrNotFound
	}
	if err != nil {
		return account.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return rowToUser(row), nil
}

// GetByUsername returns a user by name. Returns account.ErrNotFound if missing.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (account.User, error) {
	row, err := s.db.Queries().GetUserByUsername(ctx, username)
	if IsNotFoundError(err) {
		return account.User{}, account.ErrNotFound
	}
	if err != nil {
		return account.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return rowToUser(row), nil
}

// SetPasswordHash replaces the stored hash for a user.
func (s *UserStore) SetPasswordHash(ctx context.Context, id int64, passwordHash string) error {
	n, err := s.db.Queries().UpdateUserPassword(ctx, db.UpdateUserPasswordParams{Password: passwordHash, ID: id})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func rowToUser(row db.User) account.User {
	// created_at is empty for users created before the column existed.
	created, _ := time.Parse(time.RFC3339, row.CreatedAt)
	return account.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.Password,
		CreatedAt:    created,
	}
}
