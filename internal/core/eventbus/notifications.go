package eventbus

import (
	"fmt"

	"github.com/colonyops/tegbar/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeTaskStoreRecovered(func(p TaskStoreRecoveredPayload) {
		r.notifyf(notify.LevelWarning, "task file was unreadable, moved to %s", p.Backup)
	})

	r.bus.SubscribeTaskChanged(func(p TaskChangedPayload) {
		if p.Action == ActionCleared {
			r.notifyf(notify.LevelInfo, "cleared %d completed tasks", p.Count)
		}
	})

	r.bus.SubscribeBoardChanged(func(p BoardChangedPayload) {
		switch p.Action {
		case ActionCleared:
			r.notifyf(notify.LevelInfo, "removed %d achieved tasks", p.Count)
		case ActionAchieved:
			if p.TaskID == 0 {
				r.notifyf(notify.LevelInfo, "marked %d tasks achieved", p.Count)
			}
		}
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
