package planner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/internal/core/validate"
)

// ErrNotStarted is returned when sending before Start wired a delivery target.
var ErrNotStarted = errors.New("chat service not started")

// ChatStore persists team conversations.
type ChatStore interface {
	Load(ctx context.Context) (chat.Conversations, error)
	Save(ctx context.Context, convs chat.Conversations) error
}

// ChatOptions tunes reply delays and responders.
type ChatOptions struct {
	TeamDelay      time.Duration
	AssistantDelay time.Duration
	SilentContacts []string
}

// ChatService owns team conversations and the assistant conversation. Team
// conversations are persisted; the assistant conversation lives for the process
// only.
//
// Replies are produced immediately but handed to the deliver function passed to
// Start once their delay elapses. The receiver must call Deliver on the goroutine
// that owns its state.
type ChatService struct {
	store     ChatStore
	tasks     *TaskService
	bus       *eventbus.EventBus
	log       zerolog.Logger
	now       func() time.Time
	opts      ChatOptions
	team      chat.Responder
	assistant *chat.Assistant

	mu        sync.Mutex
	convs     chat.Conversations
	assistLog []chat.Message
	scheduler *chat.Scheduler
}

// NewChatService creates a ChatService seeded with the default contacts.
func NewChatService(store ChatStore, tasks *TaskService, bus *eventbus.EventBus, opts ChatOptions, log zerolog.Logger) *ChatService {
	return &ChatService{
		store:     store,
		tasks:     tasks,
		bus:       bus,
		log:       log.With().Str("component", "chat-service").Logger(),
		now:       time.Now,
		opts:      opts,
		team:      chat.TeamResponder{Silent: opts.SilentContacts},
		assistant: chat.NewAssistant(),
		convs:     chat.SeedConversations(),
	}
}

// Load reads the team conversations. On failure the seed contacts are kept.
func (s *ChatService) Load(ctx context.Context) error {
	convs, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if convs != nil {
		s.convs = convs
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("team conversations could not be loaded, using defaults")
	}
	return err
}

// Start wires the function that receives landed replies. Calling Start again
// replaces the previous scheduler and drops its pending replies.
func (s *ChatService) Start(deliver chat.DeliverFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Close()
	}
	s.scheduler = chat.NewScheduler(deliver, s.log)
}

// Close stops all pending replies.
func (s *ChatService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Close()
	}
}

// Contacts returns the team contacts sorted by name.
func (s *ChatService) Contacts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convs.Contacts()
}

// Conversation returns a copy of a contact's history.
func (s *ChatService) Conversation(contact string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.convs[contact]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chat.ErrUnknownContact, contact)
	}
	return slices.Clone(msgs), nil
}

// AssistantMessages returns a copy of the assistant conversation.
func (s *ChatService) AssistantMessages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.assistLog)
}

// Send appends the user's message to a team conversation, saves it, and
// schedules the contact's acknowledgement. The bool reports whether a reply
// was scheduled.
func (s *ChatService) Send(ctx context.Context, contact, text string) (chat.Message, bool, error) {
	if err := validate.TextField("message", text); err != nil {
		return chat.Message{}, false, err
	}

	now := s.now()
	msg := chat.NewMessage(chat.SenderYou, text, now)

	s.mu.Lock()
	if _, ok := s.convs[contact]; !ok {
		s.mu.Unlock()
		return chat.Message{}, false, fmt.Errorf("%w: %s", chat.ErrUnknownContact, contact)
	}
	if s.scheduler == nil {
		s.mu.Unlock()
		return chat.Message{}, false, ErrNotStarted
	}
	s.convs.Append(contact, msg)
	err := s.saveLocked(ctx)
	scheduler := s.scheduler
	s.mu.Unlock()

	s.publish(contact, msg)
	if err != nil {
		return msg, false, err
	}

	reply, ok := s.team.Respond(contact, text, chat.Snapshot{Now: now})
	if !ok {
		return msg, false, nil
	}
	return msg, scheduler.Schedule(s.opts.TeamDelay, reply), nil
}

// Ask appends a question to the assistant conversation and schedules the answer.
// date selects the task group the assistant reads from and adds to.
func (s *ChatService) Ask(ctx context.Context, text string, date time.Time) (chat.Message, bool, error) {
	if err := validate.TextField("message", text); err != nil {
		return chat.Message{}, false, err
	}

	now := s.now()
	msg := chat.NewMessage(chat.SenderYou, text, now)
	snap := chat.Snapshot{Date: date, Now: now}
	if s.tasks != nil {
		snap.Tasks = s.tasks.Tasks(task.DateKey(date))
	}

	s.mu.Lock()
	if s.scheduler == nil {
		s.mu.Unlock()
		return chat.Message{}, false, ErrNotStarted
	}
	s.assistLog = append(s.assistLog, msg)
	scheduler := s.scheduler
	s.mu.Unlock()

	s.log.Debug().Ctx(ctx).Str("rule", s.assistant.Rule(text)).Msg("assistant question")
	s.publish(chat.AssistantConversation, msg)

	reply, ok := s.assistant.Respond(chat.AssistantConversation, text, snap)
	if !ok {
		return msg, false, nil
	}
	return msg, scheduler.Schedule(s.opts.AssistantDelay, reply), nil
}

// Deliver appends a landed reply to its conversation and applies any task it
// carries. Team replies for a contact that no longer exists are dropped.
func (s *ChatService) Deliver(ctx context.Context, r chat.Reply) error {
	s.mu.Lock()
	var err error
	if r.Conversation == chat.AssistantConversation {
		s.assistLog = append(s.assistLog, r.Message)
	} else {
		if _, ok := s.convs[r.Conversation]; !ok {
			s.mu.Unlock()
			s.log.Debug().Str("contact", r.Conversation).Msg("dropping reply for unknown contact")
			return nil
		}
		s.convs.Append(r.Conversation, r.Message)
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()

	s.publish(r.Conversation, r.Message)
	if err != nil {
		return err
	}

	if r.AddTask != nil && s.tasks != nil {
		if _, err := s.tasks.Add(ctx, r.Group, *r.AddTask); err != nil {
			return fmt.Errorf("add task from reply: %w", err)
		}
	}
	return nil
}

// Cancel drops pending replies for a conversation and returns how many.
func (s *ChatService) Cancel(conversation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return 0
	}
	return s.scheduler.Cancel(conversation)
}

// Pending returns the number of replies waiting for a conversation.
func (s *ChatService) Pending(conversation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return 0
	}
	return s.scheduler.Pending(conversation)
}

func (s *ChatService) saveLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.convs); err != nil {
		s.log.Error().Err(err).Msg("failed to save team conversations")
		return fmt.Errorf("save conversations: %w", err)
	}
	return nil
}

func (s *ChatService) publish(conversation string, msg chat.Message) {
	if s.bus == nil {
		return
	}
	s.bus.PublishChatMessage(eventbus.ChatMessagePayload{Conversation: conversation, Message: msg})
}
