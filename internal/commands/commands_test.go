package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/config"
	"github.com/colonyops/tegbar/internal/core/eventbus/testbus"
	"github.com/colonyops/tegbar/internal/data/db"
	"github.com/colonyops/tegbar/internal/data/stores"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/internal/store/jsonfile"
)

const day = "2026-10-18"

func newTestApp(t *testing.T) *planner.App {
	t.Helper()
	dir := t.TempDir()
	tb := testbus.New(t)

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.ExportDir = dir
	cfg.TasksFile = filepath.Join(dir, "tasks.json")
	cfg.TeamFile = filepath.Join(dir, "team.json")

	tasks := planner.NewTaskService(jsonfile.NewTaskStore(cfg.TasksFile, zerolog.Nop()), tb.EventBus, zerolog.Nop())
	require.NoError(t, tasks.Load(context.Background()))

	chats := planner.NewChatService(
		jsonfile.NewChatStore(cfg.TeamFile, zerolog.Nop()),
		tasks, tb.EventBus,
		planner.ChatOptions{TeamDelay: 5 * time.Millisecond, AssistantDelay: 5 * time.Millisecond, SilentContacts: []string{"Neo"}},
		zerolog.Nop(),
	)
	t.Cleanup(chats.Close)

	boards := planner.NewBoardService(stores.NewUserStore(database), stores.NewBoardStore(database), tb.EventBus, zerolog.Nop())

	return planner.NewApp(tasks, boards, chats, &cfg, database, tb.EventBus)
}

// run executes args against a fresh command tree and returns stdout.
func run(t *testing.T, app *planner.App, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	flags := &Flags{Config: app.Config}
	root := &cli.Command{Name: "tegbar", Writer: &out}
	root = RegisterAll(root, flags, app)

	err := root.Run(context.Background(), append([]string{"tegbar"}, args...))
	return out.String(), err
}

func mustRun(t *testing.T, app *planner.App, args ...string) string {
	t.Helper()
	out, err := run(t, app, args...)
	require.NoError(t, err)
	return out
}

func decodeLines[T any](t *testing.T, out string) []T {
	t.Helper()
	var items []T
	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var v T
		require.NoError(t, json.Unmarshal([]byte(line), &v), line)
		items = append(items, v)
	}
	return items
}

func TestTaskCmd_AddListToggleClear(t *testing.T) {
	app := newTestApp(t)

	mustRun(t, app, "task", "add", "--date", day, "--time", "02:30 PM", "--priority", "high", "Write", "report")
	mustRun(t, app, "task", "add", "--date", day, "Call mom")

	lines := decodeLines[taskLine](t, mustRun(t, app, "task", "ls", "--date", day, "--json"))
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Position)
	assert.Equal(t, "Write report", lines[0].Text)
	assert.Equal(t, "02:30 PM", lines[0].Time)
	assert.Equal(t, "High", string(lines[0].Priority))
	assert.Equal(t, "Normal", string(lines[1].Priority))

	toggled := decodeLines[taskLine](t, mustRun(t, app, "task", "done", "--date", day, "1"))
	require.Len(t, toggled, 1)
	assert.True(t, toggled[0].Done)

	assert.Equal(t, "Cleared 1 completed task(s)\n", mustRun(t, app, "task", "clear"))

	tasks := app.Tasks.Tasks(day)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call mom", tasks[0].Text)
}

func TestTaskCmd_AddBlankTextFails(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, app, "task", "add", "--date", day, "   ")
	require.Error(t, err)
	assert.Empty(t, app.Tasks.Tasks(day))
}

func TestTaskCmd_PositionsFollowQuery(t *testing.T) {
	app := newTestApp(t)

	mustRun(t, app, "task", "add", "--date", day, "alpha")
	mustRun(t, app, "task", "add", "--date", day, "beta")
	mustRun(t, app, "task", "add", "--date", day, "alpha two")

	mustRun(t, app, "task", "rm", "--date", day, "--query", "alpha", "2")

	var texts []string
	for _, tk := range app.Tasks.Tasks(day) {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"alpha", "beta"}, texts)

	_, err := run(t, app, "task", "rm", "--date", day, "--query", "alpha", "5")
	require.Error(t, err)
	assert.Len(t, app.Tasks.Tasks(day), 2)
}

func TestTaskCmd_EditKeepsUnsetFields(t *testing.T) {
	app := newTestApp(t)

	mustRun(t, app, "task", "add", "--date", day, "--time", "09:00 AM", "--notes", "room 4", "stand-up")
	mustRun(t, app, "task", "edit", "--date", day, "--priority", "low", "1")

	tasks := app.Tasks.Tasks(day)
	require.Len(t, tasks, 1)
	assert.Equal(t, "stand-up", tasks[0].Text)
	assert.Equal(t, "09:00 AM", tasks[0].Time)
	assert.Equal(t, "room 4", tasks[0].Notes)
	assert.Equal(t, "Low", string(tasks[0].Priority))
}

func TestTaskCmd_ExportAndStats(t *testing.T) {
	app := newTestApp(t)
	mustRun(t, app, "task", "add", "--date", day, "one")

	path := strings.TrimSpace(mustRun(t, app, "task", "export"))
	assert.Equal(t, app.Config.ExportDir, filepath.Dir(path))
	assert.FileExists(t, path)

	assert.Equal(t, "Done 0  Open 1  Total 1  0%\n", mustRun(t, app, "task", "stats"))
}

func TestTaskCmd_ImportFromExport(t *testing.T) {
	src := newTestApp(t)
	mustRun(t, src, "task", "add", "--date", day, "--priority", "high", "carry over")
	mustRun(t, src, "task", "done", "--date", day, "1")
	path := strings.TrimSpace(mustRun(t, src, "task", "export"))

	dst := newTestApp(t)
	assert.Equal(t, "Imported 1 task(s)\n", mustRun(t, dst, "task", "import", "-f", path))

	tasks := dst.Tasks.Tasks(day)
	require.Len(t, tasks, 1)
	assert.Equal(t, "carry over", tasks[0].Text)
	assert.True(t, tasks[0].Done)
	assert.Equal(t, src.Tasks.Tasks(day)[0].ID, tasks[0].ID)

	assert.Equal(t, "Imported 0 task(s)\n", mustRun(t, dst, "task", "import", "-f", path))
	assert.Len(t, dst.Tasks.Tasks(day), 1)
}

func TestTaskCmd_History(t *testing.T) {
	app := newTestApp(t)
	mustRun(t, app, "task", "add", "--date", "2026-10-17", "older")
	mustRun(t, app, "task", "add", "--date", day, "newer")

	lines := strings.Split(strings.TrimSpace(mustRun(t, app, "task", "history")), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "DAY"))
	assert.Contains(t, lines[1], "newer")
	assert.Contains(t, lines[2], "older")
}

func TestConfigCmd_ValidateJSON(t *testing.T) {
	app := newTestApp(t)

	var out validationOutput
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, app, "config", "validate", "--format", "json")), &out))
	assert.True(t, out.Valid)
	assert.Empty(t, out.Errors)

	app.Config.HistoryLimit = 0
	raw, err := run(t, app, "config", "validate", "--format", "json")
	require.Error(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.False(t, out.Valid)
	assert.Contains(t, out.Errors, "history_limit")
}

func TestChatCmd_SendWaitsForReply(t *testing.T) {
	app := newTestApp(t)

	out := mustRun(t, app, "chat", "send", "Jonas", "standup", "moved")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "You: standup moved")
	assert.Contains(t, lines[1], "Jonas: Acknowledged.")

	msgs, err := app.Chat.Conversation("Jonas")
	require.NoError(t, err)
	assert.Equal(t, "Acknowledged.", msgs[len(msgs)-1].Text)
}

func TestChatCmd_SilentContactDoesNotWait(t *testing.T) {
	app := newTestApp(t)

	out := mustRun(t, app, "chat", "send", "Neo", "ping")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestChatCmd_UnknownContact(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, app, "chat", "show", "Morpheus")
	require.Error(t, err)
}

func TestAskCmd_AddsTask(t *testing.T) {
	app := newTestApp(t)

	out := mustRun(t, app, "ask", "--plain", "--date", day, "add task: Call mom | 06:00 PM | high")
	assert.Contains(t, out, "Added task 'Call mom'")

	tasks := app.Tasks.Tasks(day)
	require.Len(t, tasks, 1)
	assert.Equal(t, "06:00 PM", tasks[0].Time)
	assert.Equal(t, "High", string(tasks[0].Priority))
}

func TestBoardCmd_Lifecycle(t *testing.T) {
	app := newTestApp(t)

	mustRun(t, app, "account", "signup", "--user", "ada", "--password", "s3cret")

	auth := []string{"board", "--user", "ada", "--password", "s3cret"}
	added := decodeLines[board.Task](t, mustRun(t, app, append(auth, "add", "Ship", "it")...))
	require.Len(t, added, 1)
	assert.Equal(t, board.StatusOngoing, added[0].Status)

	id := strconv.FormatInt(added[0].ID, 10)
	mustRun(t, app, append(auth, "achieve", id)...)
	mustRun(t, app, append(auth, "reopen", id)...)
	ongoing := decodeLines[board.Task](t, mustRun(t, app, append(auth, "ls", "--status", "ongoing", "--json")...))
	require.Len(t, ongoing, 1)

	assert.Equal(t, "Achieved 1 task(s)\n", mustRun(t, app, append(auth, "achieve", "--all")...))
	achieved := decodeLines[board.Task](t, mustRun(t, app, append(auth, "ls", "--status", "achieved", "--json")...))
	require.Len(t, achieved, 1)
	assert.Equal(t, "Ship it", achieved[0].Text)

	assert.Equal(t, "Cleared 1 achieved task(s)\n", mustRun(t, app, append(auth, "clear")...))
}

func TestBoardCmd_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	mustRun(t, app, "account", "signup", "--user", "ada", "--password", "s3cret")

	_, err := run(t, app, "board", "--user", "ada", "--password", "nope", "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid username or password")
}

func TestDoctorCmd_JSON(t *testing.T) {
	app := newTestApp(t)
	mustRun(t, app, "task", "add", "--date", day, "one")

	var report struct {
		Healthy bool        `json:"healthy"`
		Summary summaryJSON `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, app, "doctor", "--format", "json")), &report))
	assert.True(t, report.Healthy)
	assert.Zero(t, report.Summary.Failed)
	assert.Positive(t, report.Summary.Passed)
}
