// Package task defines the date-grouped task model and the in-memory collection
// that the planner keeps in sync with its JSON store.
package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID is the stable surrogate identity of a task. It is assigned once at creation and
// is the only handle used to re-locate a record after the visible list was filtered.
type ID string

// NewID returns a fresh time-ordered identity.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return ID(uuid.NewString())
	}
	return ID(id.String())
}

// Priority ranks a task for display.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

// Priorities lists the priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}

// ParsePriority maps s to a known priority, ignoring case. Unknown or empty values
// fall back to PriorityNormal.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a single to-do entry.
type Task struct {
	ID       ID       `json:"id"`
	Text     string   `json:"text"`
	Time     string   `json:"time"`
	Priority Priority `json:"priority"`
	Done     bool     `json:"done"`
	Notes    string   `json:"notes"`
	Created  string   `json:"created"`
}

// Matches reports whether the lowercased query is contained in the task text or notes.
// An empty query matches everything.
func (t Task) Matches(lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Text), lowerQuery) ||
		strings.Contains(strings.ToLower(t.Notes), lowerQuery)
}

// Draft holds the fields supplied when creating a task.
type Draft struct {
	Text     string
	Time     string
	Priority Priority
	Notes    string
}

// Patch holds the mutable fields replaced by an edit. Completion is changed through
// ToggleDone only.
type Patch struct {
	Text     string
	Time     string
	Priority Priority
	Notes    string
}

// DateKey formats the group key for a calendar day.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDateKey parses a group key produced by DateKey.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, key, time.Local)
}

// CreatedStamp formats the creation timestamp stored on a task.
func CreatedStamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func normalizePriority(p Priority) Priority {
	if p.IsValid() {
		return p
	}
	return ParsePriority(string(p))
}

// Normalize fills defaults on a record read from storage. Missing identity and
// creation stamp are assigned from now; unknown priorities become Normal. It
// returns false when the record has no text and should be discarded.
func (t Task) Normalize(now time.Time) (Task, bool) {
	t.Text = clean(t.Text)
	if t.Text == "" {
		return Task{}, false
	}
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Created == "" {
		t.Created = CreatedStamp(now)
	}
	t.Time = clean(t.Time)
	t.Priority = normalizePriority(t.Priority)
	return t, true
}
