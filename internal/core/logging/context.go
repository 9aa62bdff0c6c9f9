// Package logging carries request-scoped log fields through context.
package logging

import "context"

type contextKey string

const (
	groupKey  contextKey = "group"
	userIDKey contextKey = "user_id"
)

// WithGroup adds the task group key (a date) to the context.
func WithGroup(ctx context.Context, group string) context.Context {
	return context.WithValue(ctx, groupKey, group)
}

// WithUserID adds the signed-in board user to the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetGroup retrieves the group key from the context.
// Returns empty string if not present.
func GetGroup(ctx context.Context) string {
	if g, ok := ctx.Value(groupKey).(string); ok {
		return g
	}
	return ""
}

// GetUserID retrieves the user id from the context.
// Returns 0 if not present.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}
