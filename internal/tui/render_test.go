package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/pkg/tuitest"
)

func TestRenderTasks_Empty(t *testing.T) {
	state := NewUIState(time.Now())
	assert.Contains(t, tuitest.StripANSI(RenderTasks(nil, state, 80)), "No tasks for this day.")

	state.Query = "milk"
	assert.Equal(t, `No tasks match "milk".`, tuitest.StripANSI(RenderTasks(nil, state, 80)))
}

func TestRenderTasks_Rows(t *testing.T) {
	items := []task.Task{
		{ID: "a", Text: "Buy milk", Time: "05:00 PM", Priority: task.PriorityHigh},
		{ID: "b", Text: "Call mom", Priority: task.PriorityNormal, Done: true, Notes: strings.Repeat("n", 130)},
	}
	state := UIState{Cursor: 1, Focus: FocusList}

	out := tuitest.StripANSI(RenderTasks(items, state, 0))
	lines := strings.Split(out, "\n")

	assert.Equal(t, "  ○ Buy milk  05:00 PM [High]", lines[0])
	assert.Equal(t, "› ✓ Call mom [Normal]", lines[1])
	assert.Equal(t, "    "+strings.Repeat("n", 117)+"...", lines[2])
}

func TestRenderTasks_IsStateless(t *testing.T) {
	items := []task.Task{{ID: "a", Text: "one", Priority: task.PriorityLow}}
	state := UIState{}

	first := RenderTasks(items, state, 40)
	second := RenderTasks(items, state, 40)
	assert.Equal(t, first, second)
}

func TestRenderConversation(t *testing.T) {
	msgs := []chat.Message{
		{Sender: "Jonas", Text: "Hello team!", Time: "09:12"},
		{Sender: chat.SenderYou, Text: "hi", Time: "09:13"},
	}

	out := tuitest.StripANSI(RenderConversation(msgs, 0))
	assert.Equal(t, "[09:12] Jonas: Hello team!\n[09:13] You: hi", out)
	assert.Equal(t, "No messages yet.", tuitest.StripANSI(RenderConversation(nil, 80)))
}

func TestRenderHistory(t *testing.T) {
	stats := task.Stats{Done: 1, Undone: 1, Total: 2, Percent: 50}
	entries := []task.HistoryEntry{{Group: "2026-10-18", Task: task.Task{Text: "ship", Priority: task.PriorityHigh, Done: true}}}

	out := tuitest.StripANSI(RenderHistory(stats, entries, 0))
	assert.Contains(t, out, "Done 1  Open 1  Total 2  50%")
	assert.Contains(t, out, "2026-10-18  ✓ ship [High]")
}

func TestRenderBoard(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	tasks := []board.Task{
		{ID: 2, Text: "newer", Timestamp: ts, Status: board.StatusOngoing},
		{ID: 1, Text: "older", Timestamp: ts.Add(-time.Hour), Status: board.StatusAchieved},
	}

	out := tuitest.StripANSI(RenderBoard("alice", tasks, 0, 0))
	assert.Contains(t, out, "Signed in as alice")
	assert.Contains(t, out, "› ○ newer  2026-10-18 09:30")
	assert.Contains(t, out, "  ✓ older  2026-10-18 08:30")
}
