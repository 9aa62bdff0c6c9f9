package planner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/eventbus/testbus"
	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/internal/store/jsonfile"
)

type chatFixture struct {
	svc     *ChatService
	tasks   *TaskService
	store   *jsonfile.ChatStore
	bus     *testbus.Bus
	replies chan chat.Reply
}

func newTestChatService(t *testing.T) chatFixture {
	t.Helper()
	tasks, _, tb := newTestTaskService(t)

	store := jsonfile.NewChatStore(filepath.Join(t.TempDir(), "team.json"), zerolog.Nop())
	svc := NewChatService(store, tasks, tb.EventBus, ChatOptions{
		TeamDelay:      5 * time.Millisecond,
		AssistantDelay: 5 * time.Millisecond,
		SilentContacts: []string{"Neo"},
	}, zerolog.Nop())
	require.NoError(t, svc.Load(context.Background()))

	replies := make(chan chat.Reply, 8)
	svc.Start(func(r chat.Reply) { replies <- r })
	t.Cleanup(svc.Close)

	return chatFixture{svc: svc, tasks: tasks, store: store, bus: tb, replies: replies}
}

func (f chatFixture) nextReply(t *testing.T) chat.Reply {
	t.Helper()
	select {
	case r := <-f.replies:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
		return chat.Reply{}
	}
}

func TestChatService_SeedContacts(t *testing.T) {
	f := newTestChatService(t)
	assert.Equal(t, []string{"Abraham", "Jessica", "Jonas", "Neo"}, f.svc.Contacts())

	msgs, err := f.svc.Conversation("Jonas")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello team!", msgs[0].Text)

	_, err = f.svc.Conversation("Morpheus")
	require.ErrorIs(t, err, chat.ErrUnknownContact)
}

func TestChatService_SendAndDeliver(t *testing.T) {
	f := newTestChatService(t)
	ctx := context.Background()

	msg, scheduled, err := f.svc.Send(ctx, "Jessica", "status?")
	require.NoError(t, err)
	assert.True(t, scheduled)
	assert.Equal(t, chat.SenderYou, msg.Sender)

	reply := f.nextReply(t)
	assert.Equal(t, "Jessica", reply.Conversation)
	assert.Equal(t, "Acknowledged.", reply.Message.Text)

	require.NoError(t, f.svc.Deliver(ctx, reply))
	f.bus.AssertPublished(t, eventbus.EventChatMessage)

	saved, err := f.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved["Jessica"], 2)
	assert.Equal(t, "status?", saved["Jessica"][0].Text)
	assert.Equal(t, "Acknowledged.", saved["Jessica"][1].Text)
}

func TestChatService_SilentContact(t *testing.T) {
	f := newTestChatService(t)

	_, scheduled, err := f.svc.Send(context.Background(), "Neo", "anyone there?")
	require.NoError(t, err)
	assert.False(t, scheduled)
	assert.Equal(t, 0, f.svc.Pending("Neo"))
}

func TestChatService_SendRejectsBlankAndUnknown(t *testing.T) {
	f := newTestChatService(t)
	ctx := context.Background()

	_, _, err := f.svc.Send(ctx, "Jonas", "   ")
	require.Error(t, err)

	_, _, err = f.svc.Send(ctx, "Morpheus", "hi")
	require.ErrorIs(t, err, chat.ErrUnknownContact)
}

func TestChatService_NotStarted(t *testing.T) {
	store := jsonfile.NewChatStore(filepath.Join(t.TempDir(), "team.json"), zerolog.Nop())
	svc := NewChatService(store, nil, nil, ChatOptions{}, zerolog.Nop())

	_, _, err := svc.Send(context.Background(), "Jonas", "hi")
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestChatService_AskAddsTask(t *testing.T) {
	f := newTestChatService(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)

	_, scheduled, err := f.svc.Ask(ctx, "add task: Call mom | 06:00 PM | High | birthday", date)
	require.NoError(t, err)
	require.True(t, scheduled)

	reply := f.nextReply(t)
	require.NotNil(t, reply.AddTask)
	assert.Equal(t, chat.AssistantConversation, reply.Conversation)

	// Nothing is added until the reply lands.
	assert.Empty(t, f.tasks.Tasks(day))

	require.NoError(t, f.svc.Deliver(ctx, reply))

	tasks := f.tasks.Tasks(day)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call mom", tasks[0].Text)
	assert.Equal(t, task.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "birthday", tasks[0].Notes)

	msgs := f.svc.AssistantMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.SenderAssistant, msgs[1].Sender)
}

func TestChatService_AskSummarizesDate(t *testing.T) {
	f := newTestChatService(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)

	_, err := f.tasks.Add(ctx, day, task.Draft{Text: "stand-up", Time: "09:00 AM"})
	require.NoError(t, err)

	_, _, err = f.svc.Ask(ctx, "summarize today's tasks", date)
	require.NoError(t, err)

	reply := f.nextReply(t)
	assert.Contains(t, reply.Message.Text, "1. ○ stand-up @ 09:00 AM [Normal]")
}

func TestChatService_CancelDropsPending(t *testing.T) {
	f := newTestChatService(t)
	f.svc.opts.TeamDelay = time.Hour

	_, scheduled, err := f.svc.Send(context.Background(), "Abraham", "ping")
	require.NoError(t, err)
	require.True(t, scheduled)
	assert.Equal(t, 1, f.svc.Pending("Abraham"))

	assert.Equal(t, 1, f.svc.Cancel("Abraham"))
	assert.Equal(t, 0, f.svc.Pending("Abraham"))
}
