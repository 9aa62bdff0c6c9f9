package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tegbar/internal/core/task"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()

	c := task.NewCollection()
	_, err := c.Add(group, task.Draft{Text: "ship it"}, fixedNow)
	require.NoError(t, err)

	path, err := Export(dir, c, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tegbar_export_20240501_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string][]task.Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c.Groups(), decoded)
}
