package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// ChatStore persists team conversations as a JSON object mapping contact names
// to message arrays.
type ChatStore struct {
	path     string
	log      zerolog.Logger
	now      func() time.Time
	readFile func(string) ([]byte, error)
	rename   func(string, string) error

	mu      sync.Mutex
	blocked error
}

// NewChatStore creates a store backed by the file at path.
func NewChatStore(path string, log zerolog.Logger) *ChatStore {
	return &ChatStore{
		path:     path,
		log:      log,
		now:      time.Now,
		readFile: os.ReadFile,
		rename:   os.Rename,
	}
}

// Load returns the saved conversations. A missing or empty file yields the seed
// contacts. Contacts whose value is not a message array come back empty. A file
// that is not a JSON object is moved aside; if it cannot be read or moved, Save
// fails with ErrNotLoaded until a later Load succeeds.
func (s *ChatStore) Load(ctx context.Context) (chat.Conversations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocked = nil
	data, err := s.readFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return chat.SeedConversations(), nil
		}
		s.blocked = err
		return chat.SeedConversations(), fmt.Errorf("read team file: %w", err)
	}

	if len(data) == 0 {
		return chat.SeedConversations(), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		backup, merr := moveAside(s.path, s.now(), s.rename)
		if merr != nil {
			s.log.Error().Err(merr).Str("path", s.path).Msg("failed to move malformed team file aside")
			s.blocked = merr
			return chat.SeedConversations(), fmt.Errorf("parse team file: %w", err)
		}
		s.log.Warn().Str("path", s.path).Str("backup", backup).Err(err).Msg("team file is malformed, starting with seed contacts")
		return chat.SeedConversations(), fmt.Errorf("parse team file (moved to %s): %w", backup, err)
	}

	convs := make(chat.Conversations, len(raw))
	for contact, value := range raw {
		if contact == chat.AssistantConversation {
			s.log.Warn().Str("contact", contact).Msg("ignoring team contact with reserved name")
			continue
		}
		var msgs []chat.Message
		if err := json.Unmarshal(value, &msgs); err != nil {
			s.log.Debug().Str("contact", contact).Err(err).Msg("resetting unreadable conversation")
			msgs = nil
		}
		if msgs == nil {
			msgs = []chat.Message{}
		}
		convs[contact] = msgs
	}

	return convs, nil
}

// Save writes all conversations atomically.
func (s *ChatStore) Save(ctx context.Context, convs chat.Conversations) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocked != nil {
		return fmt.Errorf("save %s: %w: %w", s.path, ErrNotLoaded, s.blocked)
	}

	data, err := iojson.MarshalIndent(convs)
	if err != nil {
		return fmt.Errorf("encode team chat: %w", err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("write team file: %w", err)
	}
	return nil
}
