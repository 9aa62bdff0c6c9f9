// Package board defines the per-user ongoing/achieved task board kept in SQLite.
package board

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a task does not exist for the user.
	ErrNotFound = errors.New("board task not found")
	// ErrEmptyText is returned when a task would be stored with blank text.
	ErrEmptyText = errors.New("task text cannot be empty")
)

// Status is the lifecycle state of a board task.
type Status string

const (
	StatusOngoing  Status = "ongoing"
	StatusAchieved Status = "achieved"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusOngoing || s == StatusAchieved
}

// TimestampLayout is how timestamps are written to the tasks table. It is the
// second-resolution format databases from the desktop planner already hold.
// Rows added within the same second are ordered by id.
const TimestampLayout = time.DateTime

// Task is a single board entry. ID is the surrogate row id and is the only identity
// used for updates and deletes.
type Task struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status Status // empty means all statuses
	Query  string // case-insensitive substring of the task text
}

// Matches reports whether t passes the filter.
func (f ListFilter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	return q == "" || strings.Contains(strings.ToLower(t.Text), q)
}

// Store defines board persistence. Every method is a single logical operation and
// runs atomically.
type Store interface {
	// Add inserts an ongoing task stamped with now.
	Add(ctx context.Context, userID int64, text string, now time.Time) (Task, error)

	// Get returns a task owned by the user. Returns ErrNotFound if missing.
	Get(ctx context.Context, userID, id int64) (Task, error)

	// List returns the user's tasks ordered by timestamp DESC, newest first.
	List(ctx context.Context, userID int64, filter ListFilter) ([]Task, error)

	// SetStatus moves a task between ongoing and achieved.
	SetStatus(ctx context.Context, userID, id int64, status Status) error

	// Replace deletes the task and inserts a new ongoing one with text and a fresh
	// timestamp in the same transaction. The replacement has a new identity.
	Replace(ctx context.Context, userID, id int64, text string, now time.Time) (Task, error)

	// Delete removes a task. Returns ErrNotFound if missing.
	Delete(ctx context.Context, userID, id int64) error

	// ClearAchieved deletes all achieved tasks for the user and returns the count.
	ClearAchieved(ctx context.Context, userID int64) (int64, error)

	// AchieveAll moves every ongoing task to achieved and returns the count.
	AchieveAll(ctx context.Context, userID int64) (int64, error)
}
