package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tegbar/internal/core/chat"
)

func TestChatStore_MissingFileSeeds(t *testing.T) {
	s := NewChatStore(filepath.Join(t.TempDir(), "team.json"), zerolog.Nop())

	convs, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chat.SeedConversations(), convs)
}

func TestChatStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(filepath.Join(t.TempDir(), "team.json"), zerolog.Nop())

	convs := chat.SeedConversations()
	convs.Append("Neo", chat.Message{Sender: chat.SenderYou, Text: "ping", Time: "10:00"})
	require.NoError(t, s.Save(ctx, convs))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, convs, loaded)
}

func TestChatStore_MalformedConversationBecomesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.json")
	raw := `{"Jonas": [{"sender": "Jonas", "text": "hi", "time": "09:00"}], "Neo": "oops", "Jessica": null}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	convs, err := NewChatStore(path, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, convs["Jonas"], 1)
	assert.Empty(t, convs["Neo"])
	assert.NotNil(t, convs["Neo"])
	assert.Empty(t, convs["Jessica"])
}

func TestChatStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.json")
	require.NoError(t, os.WriteFile(path, []byte("["), 0o644))

	s := NewChatStore(path, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }

	convs, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, chat.SeedConversations(), convs)

	backup, err := os.ReadFile(path + ".corrupt.20240501-103000")
	require.NoError(t, err)
	assert.Equal(t, "[", string(backup))
	require.NoError(t, s.Save(context.Background(), convs))
}

func TestChatStore_UnreadableFileBlocksSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "team.json")
	require.NoError(t, os.WriteFile(path, []byte("["), 0o644))

	s := NewChatStore(path, zerolog.Nop())
	s.rename = func(string, string) error { return errors.New("read-only file system") }

	convs, err := s.Load(ctx)
	require.Error(t, err)
	require.ErrorIs(t, s.Save(ctx, convs), ErrNotLoaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[", string(data))
}

func TestChatStore_SkipsReservedContact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.json")
	raw := `{"Jonas": [], "` + chat.AssistantConversation + `": [{"sender": "x", "text": "y", "time": "09:00"}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	convs, err := NewChatStore(path, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, convs, "Jonas")
	assert.NotContains(t, convs, chat.AssistantConversation)
}
