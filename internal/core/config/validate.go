package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tegbar/internal/core/styles"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("tasks_file", c.TasksFile, notEmpty),
		criterio.Run("team_file", c.TeamFile, notEmpty),
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("history_limit", c.HistoryLimit, positive),
		criterio.Run("database.max_open_conns", c.Database.MaxOpenConns, positive),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
		c.validateDelays(),
	)
}

// ValidateDeep adds filesystem checks on top of Validate. It is used by the
// config check command.
func (c *Config) ValidateDeep() error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		criterio.Run("tasks_file", c.TasksFile, parentIsDirectory),
		criterio.Run("team_file", c.TeamFile, parentIsDirectory),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("export_dir", c.ExportDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateDelays() error {
	var errs criterio.FieldErrorsBuilder
	if c.Chat.TeamDelay < 0 {
		errs = errs.Append("chat.team_delay", errors.New("must not be negative"))
	}
	if c.Chat.AssistantDelay < 0 {
		errs = errs.Append("chat.assistant_delay", errors.New("must not be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", errors.New("must not be negative"))
	}
	return errs.ToError()
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func positive(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}

func parentIsDirectory(path string) error {
	if path == "" {
		return nil
	}
	return isDirectoryOrNotExist(filepath.Dir(path))
}

func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
