package chat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DeliverFunc receives a reply once its delay elapsed. It is called from a timer
// goroutine and must hand the reply to the owning goroutine rather than mutate
// shared state directly.
type DeliverFunc func(Reply)

// Scheduler delays reply delivery. Each pending reply is a cancellable task keyed by
// its conversation. Replies scheduled for the same conversation are independent and
// carry no ordering guarantee beyond their delays.
type Scheduler struct {
	deliver DeliverFunc
	log     zerolog.Logger

	mu      sync.Mutex
	next    uint64
	pending map[string]map[uint64]*time.Timer
	closed  bool
}

// NewScheduler creates a scheduler that hands landed replies to deliver.
func NewScheduler(deliver DeliverFunc, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		deliver: deliver,
		log:     log,
		pending: make(map[string]map[uint64]*time.Timer),
	}
}

// Schedule delivers r after delay unless its conversation is cancelled first.
// Scheduling on a closed scheduler is a no-op and reports false.
func (s *Scheduler) Schedule(delay time.Duration, r Reply) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	key := r.Conversation
	id := s.next
	s.next++

	if s.pending[key] == nil {
		s.pending[key] = make(map[uint64]*time.Timer)
	}
	s.pending[key][id] = time.AfterFunc(delay, func() {
		if !s.claim(key, id) {
			return
		}
		s.deliver(r)
	})

	return true
}

// claim removes the pending entry and reports whether the timer still owned it.
// A cancelled entry is gone by the time its timer fires.
func (s *Scheduler) claim(key string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timers, ok := s.pending[key]
	if !ok {
		return false
	}
	if _, ok := timers[id]; !ok {
		return false
	}
	delete(timers, id)
	if len(timers) == 0 {
		delete(s.pending, key)
	}
	return true
}

// Cancel drops every pending reply for a conversation and returns how many were
// dropped.
func (s *Scheduler) Cancel(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelLocked(key)
}

func (s *Scheduler) cancelLocked(key string) int {
	timers := s.pending[key]
	for _, t := range timers {
		t.Stop()
	}
	delete(s.pending, key)
	if len(timers) > 0 {
		s.log.Debug().Str("conversation", key).Int("dropped", len(timers)).Msg("cancelled pending replies")
	}
	return len(timers)
}

// Pending returns the number of replies waiting for a conversation.
func (s *Scheduler) Pending(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[key])
}

// Close cancels everything and rejects further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.pending {
		s.cancelLocked(key)
	}
	s.closed = true
}
