package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tegbar/internal/core/task"
)

const group = "2024-05-01"

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func newTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	s := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"), zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestTaskStore_LoadMissingFile(t *testing.T) {
	s := newTaskStore(t)

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestTaskStore_LoadEmptyFile(t *testing.T) {
	s := newTaskStore(t)
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o644))

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestTaskStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTaskStore(t)

	c := task.NewCollection()
	a, err := c.Add(group, task.Draft{Text: "Café ☕ <draft>", Time: "09:00", Priority: task.PriorityHigh, Notes: "ünïcode"}, fixedNow)
	require.NoError(t, err)
	_, err = c.Add("2024-05-02", task.Draft{Text: "Second day"}, fixedNow)
	require.NoError(t, err)
	c.ToggleDone(group, a.ID)

	require.NoError(t, s.Save(ctx, c))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Groups(), loaded.Groups())
}

func TestTaskStore_SaveIsReadable(t *testing.T) {
	s := newTaskStore(t)

	c := task.NewCollection()
	_, err := c.Add(group, task.Draft{Text: "Café <b>"}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), c))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Café <b>", "non-ASCII and markup are preserved")
	assert.True(t, strings.HasPrefix(content, "{\n  \""+group+"\": ["), "two-space indent")

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestTaskStore_LoadNormalizesRecords(t *testing.T) {
	s := newTaskStore(t)
	raw := `{
  "2024-05-01": [
    {"text": "no id", "priority": "urgent"},
    {"id": "keep", "text": "complete", "time": "10:00", "priority": "Low", "done": true, "notes": "n", "created": "2024-04-30T08:00:00Z"},
    {"text": "   "},
    "not an object"
  ],
  "2024-05-02": [{"text": ""}]
}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0o644))

	c, err := s.Load(context.Background())
	require.NoError(t, err)

	groups := c.Groups()
	require.Len(t, groups, 1, "groups left empty are omitted")
	tasks := groups[group]
	require.Len(t, tasks, 2)

	assert.Equal(t, "no id", tasks[0].Text)
	assert.NotEmpty(t, tasks[0].ID)
	assert.Equal(t, task.PriorityNormal, tasks[0].Priority)
	assert.Equal(t, task.CreatedStamp(fixedNow), tasks[0].Created)

	assert.Equal(t, task.Task{
		ID: "keep", Text: "complete", Time: "10:00", Priority: task.PriorityLow,
		Done: true, Notes: "n", Created: "2024-04-30T08:00:00Z",
	}, tasks[1])
}

func TestTaskStore_LoadMalformedPreservesFile(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{this is not json"},
		{"top level array", `[{"text": "x"}]`},
		{"group is not an array", `{"2024-05-01": {"text": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTaskStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.data), 0o644))

			c, err := s.Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, task.ErrMalformedStore)
			assert.Equal(t, 0, c.Len())

			var recovered *RecoveredError
			require.ErrorAs(t, err, &recovered)
			assert.Equal(t, s.Path()+".corrupt.20240501-103000", recovered.Backup)

			backup, err := os.ReadFile(recovered.Backup)
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(backup))

			_, err = os.Stat(s.Path())
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestTaskStore_ChangedOnDisk(t *testing.T) {
	ctx := context.Background()
	s := newTaskStore(t)

	c := task.NewCollection()
	_, err := c.Add(group, task.Draft{Text: "mine"}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, c))

	changed, err := s.ChangedOnDisk()
	require.NoError(t, err)
	assert.False(t, changed, "own writes are not external changes")

	other := NewTaskStore(s.Path(), zerolog.Nop())
	_, err = c.Add(group, task.Draft{Text: "theirs"}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, other.Save(ctx, c))

	changed, err = s.ChangedOnDisk()
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = s.Load(ctx)
	require.NoError(t, err)
	changed, err = s.ChangedOnDisk()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTaskStore_SaveFailureKeepsCollection(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewTaskStore(filepath.Join(blocker, "tasks.json"), zerolog.Nop())
	c := task.NewCollection()
	_, err := c.Add(group, task.Draft{Text: "stays"}, fixedNow)
	require.NoError(t, err)

	require.Error(t, s.Save(context.Background(), c))
	assert.Equal(t, 1, c.Len())
}

func TestTaskStore_UnmovableMalformedFileBlocksSave(t *testing.T) {
	ctx := context.Background()
	s := newTaskStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{broken"), 0o644))
	s.rename = func(string, string) error { return errors.New("read-only file system") }

	_, err := s.Load(ctx)
	var recovered *RecoveredError
	require.ErrorAs(t, err, &recovered)
	assert.Empty(t, recovered.Backup)

	c := task.NewCollection()
	_, err = c.Add(group, task.Draft{Text: "new"}, fixedNow)
	require.NoError(t, err)
	require.ErrorIs(t, s.Save(ctx, c), ErrNotLoaded)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestTaskStore_ReadFailureBlocksSaveUntilReload(t *testing.T) {
	ctx := context.Background()
	s := newTaskStore(t)
	original := `{"2024-05-01": [{"id": "a", "text": "keep me"}]}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(original), 0o644))
	s.readFile = func(string) ([]byte, error) { return nil, errors.New("input/output error") }

	c, err := s.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, task.ErrMalformedStore)
	assert.Equal(t, 0, c.Len())

	_, err = c.Add(group, task.Draft{Text: "new"}, fixedNow)
	require.NoError(t, err)
	require.ErrorIs(t, s.Save(ctx, c), ErrNotLoaded)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, original, string(data))

	s.readFile = os.ReadFile
	c, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	require.NoError(t, s.Save(ctx, c))
}
