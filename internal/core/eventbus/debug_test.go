package eventbus_test

import (
	"testing"

	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/eventbus/testbus"
	"github.com/rs/zerolog"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Register with a nop logger to verify no panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	tb.PublishTaskChanged(eventbus.TaskChangedPayload{Group: "2024-05-01", Action: eventbus.ActionAdded})
	tb.PublishTuiStarted(eventbus.TUIStartedPayload{})
	tb.PublishBoardChanged(eventbus.BoardChangedPayload{UserID: 1, TaskID: 2, Action: eventbus.ActionEdited})

	tb.AssertPublished(t, eventbus.EventBoardChanged)
}
