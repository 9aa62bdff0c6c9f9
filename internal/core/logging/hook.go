package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts group and user_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if group := GetGroup(ctx); group != "" {
		e.Str("group", group)
	}

	if userID := GetUserID(ctx); userID != 0 {
		e.Int64("user_id", userID)
	}
}
