package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, ".tegbar_tasks.json", filepath.Base(cfg.TasksFile))
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, time.Second, cfg.Chat.TeamDelay)
	assert.Equal(t, 600*time.Millisecond, cfg.Chat.AssistantDelay)
	assert.Equal(t, []string{"Neo"}, cfg.Chat.SilentContacts)
	assert.Equal(t, filepath.Join(dataDir, "tegbar.db"), cfg.DatabasePath())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "tokyo-night", cfg.TUI.Theme)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
tasks_file: `+filepath.Join(dir, "tasks.json")+`
history_limit: 25
chat:
  team_delay: 250ms
  silent_contacts: []
tui:
  theme: gruvbox
`)

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tasks.json"), cfg.TasksFile)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Chat.TeamDelay)
	assert.Equal(t, 600*time.Millisecond, cfg.Chat.AssistantDelay, "unset values keep defaults")
	assert.Empty(t, cfg.Chat.SilentContacts, "explicit empty list is kept")
	assert.Equal(t, "gruvbox", cfg.TUI.Theme)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := writeConfig(t, "team_file: ~/chat.json\n")
	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "chat.json"), cfg.TeamFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "history_limit: [\n")
	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown theme", mutate: func(c *Config) { c.TUI.Theme = "neon" }, wantField: "tui.theme"},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantField: "data_dir"},
		{name: "negative history", mutate: func(c *Config) { c.HistoryLimit = -1 }, wantField: "history_limit"},
		{name: "negative delay", mutate: func(c *Config) { c.Chat.TeamDelay = -time.Second }, wantField: "chat.team_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.NotEmpty(t, fieldErrs)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestValidateDeep_ExportDirIsFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	file := filepath.Join(t.TempDir(), "export")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.ExportDir = file

	err := cfg.ValidateDeep()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "export_dir", fieldErrs[0].Field)
}
