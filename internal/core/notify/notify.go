// Package notify defines user-facing notifications shown in the TUI status bar
// and printed by the CLI.
package notify

import "time"

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Queue keeps the most recent notifications, oldest first.
type Queue struct {
	max   int
	items []Notification
}

// NewQueue returns a queue holding at most max notifications.
func NewQueue(max int) *Queue {
	if max < 1 {
		max = 1
	}
	return &Queue{max: max}
}

// Push appends n, evicting the oldest entry when full.
func (q *Queue) Push(n Notification) {
	q.items = append(q.items, n)
	if len(q.items) > q.max {
		q.items = q.items[len(q.items)-q.max:]
	}
}

// Latest returns the newest notification, if any.
func (q *Queue) Latest() (Notification, bool) {
	if len(q.items) == 0 {
		return Notification{}, false
	}
	return q.items[len(q.items)-1], true
}

// All returns a copy of the queued notifications.
func (q *Queue) All() []Notification {
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}
