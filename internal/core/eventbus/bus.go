package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches events to subscribers on a single goroutine, in
// publish order. Publishing never blocks; events are dropped when the
// buffer is full.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size. Call Start to begin dispatch.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	handlers := make([]func(any), len(bus.subs[env.event]))
	copy(handlers, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// subscribeTyped adapts a typed handler to the untyped dispatch table.
func subscribeTyped[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

func (bus *EventBus) PublishBoardChanged(p BoardChangedPayload) { bus.send(EventBoardChanged, p) }
func (bus *EventBus) PublishChatMessage(p ChatMessagePayload)   { bus.send(EventChatMessage, p) }
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}
func (bus *EventBus) PublishTaskChanged(p TaskChangedPayload) { bus.send(EventTaskChanged, p) }
func (bus *EventBus) PublishTaskStoreRecovered(p TaskStoreRecoveredPayload) {
	bus.send(EventTaskStoreRecovered, p)
}
func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) { bus.send(EventTuiStarted, p) }
func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) { bus.send(EventTuiStopped, p) }

func (bus *EventBus) SubscribeBoardChanged(fn func(BoardChangedPayload)) {
	subscribeTyped(bus, EventBoardChanged, fn)
}

func (bus *EventBus) SubscribeChatMessage(fn func(ChatMessagePayload)) {
	subscribeTyped(bus, EventChatMessage, fn)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribeTyped(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) SubscribeTaskChanged(fn func(TaskChangedPayload)) {
	subscribeTyped(bus, EventTaskChanged, fn)
}

func (bus *EventBus) SubscribeTaskStoreRecovered(fn func(TaskStoreRecoveredPayload)) {
	subscribeTyped(bus, EventTaskStoreRecovered, fn)
}

func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	subscribeTyped(bus, EventTuiStarted, fn)
}

func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	subscribeTyped(bus, EventTuiStopped, fn)
}
