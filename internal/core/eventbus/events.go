// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within tegbar.
package eventbus

import (
	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/notify"
	"github.com/colonyops/tegbar/internal/core/task"
)

// Event names an event type.
type Event string

// Keep list sorted A-Z
const (
	EventBoardChanged          Event = "board.changed"
	EventChatMessage           Event = "chat.message"
	EventNotificationPublished Event = "notification.published"
	EventTaskChanged           Event = "task.changed"
	EventTaskStoreRecovered    Event = "task.store-recovered"
	EventTuiStarted            Event = "tui.started"
	EventTuiStopped            Event = "tui.stopped"
)

// Action describes what happened to a record.
type Action string

const (
	ActionAdded    Action = "added"
	ActionEdited   Action = "edited"
	ActionToggled  Action = "toggled"
	ActionDeleted  Action = "deleted"
	ActionCleared  Action = "cleared"
	ActionAchieved Action = "achieved"
)

// BoardChangedPayload is emitted after a board mutation commits.
type BoardChangedPayload struct {
	UserID int64
	TaskID int64 // zero for bulk actions
	Action Action
	Count  int64
}

// ChatMessagePayload is emitted when a message is appended to a conversation,
// including delayed replies.
type ChatMessagePayload struct {
	Conversation string
	Message      chat.Message
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// TaskChangedPayload is emitted after a personal task mutation is saved.
type TaskChangedPayload struct {
	Group  string
	TaskID task.ID // empty for bulk actions
	Action Action
	Count  int
}

// TaskStoreRecoveredPayload is emitted when a malformed task file was moved
// aside on load.
type TaskStoreRecoveredPayload struct {
	Path   string
	Backup string
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
