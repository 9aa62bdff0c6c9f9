package task

import "errors"

var (
	// ErrEmptyText is returned when a task would be created or edited with blank text.
	ErrEmptyText = errors.New("task text cannot be empty")
	// ErrNotFound is returned when an identity no longer exists in its group.
	ErrNotFound = errors.New("task not found")
	// ErrStaleView is returned when a visible position is outside the rendered list.
	ErrStaleView = errors.New("visible position out of range")
	// ErrMalformedStore is returned by stores that degraded to an empty collection
	// because the persisted data could not be decoded.
	ErrMalformedStore = errors.New("task store is malformed")
)
