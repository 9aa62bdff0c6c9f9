// Package config handles configuration loading and validation for tegbar.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	TasksFile    string         `yaml:"tasks_file"`
	TeamFile     string         `yaml:"team_file"`
	ExportDir    string         `yaml:"export_dir"`    // empty means the working directory
	HistoryLimit int            `yaml:"history_limit"` // rows shown on the history page
	Database     DatabaseConfig `yaml:"database"`
	Chat         ChatConfig     `yaml:"chat"`
	TUI          TUIConfig      `yaml:"tui"`
	DataDir      string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the SQLite connection used by the board.
type DatabaseConfig struct {
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// ChatConfig controls the mock chat replies.
type ChatConfig struct {
	TeamDelay      time.Duration `yaml:"team_delay"`
	AssistantDelay time.Duration `yaml:"assistant_delay"`
	SilentContacts []string      `yaml:"silent_contacts"` // contacts that never reply
}

// TUIConfig holds interface preferences.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		TasksFile:    filepath.Join(home, ".tegbar_tasks.json"),
		TeamFile:     filepath.Join(home, ".tegbar_team.json"),
		HistoryLimit: 100,
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5 * time.Second,
		},
		Chat: ChatConfig{
			TeamDelay:      time.Second,
			AssistantDelay: 600 * time.Millisecond,
			SilentContacts: []string{"Neo"},
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()
	cfg.TasksFile = expandHome(cfg.TasksFile)
	cfg.TeamFile = expandHome(cfg.TeamFile)
	cfg.ExportDir = expandHome(cfg.ExportDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TasksFile == "" {
		c.TasksFile = defaults.TasksFile
	}
	if c.TeamFile == "" {
		c.TeamFile = defaults.TeamFile
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = defaults.HistoryLimit
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Chat.TeamDelay == 0 {
		c.Chat.TeamDelay = defaults.Chat.TeamDelay
	}
	if c.Chat.AssistantDelay == 0 {
		c.Chat.AssistantDelay = defaults.Chat.AssistantDelay
	}
	if c.Chat.SilentContacts == nil {
		c.Chat.SilentContacts = defaults.Chat.SilentContacts
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// DatabasePath returns the SQLite file used by the board.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "tegbar.db")
}

// ExportTarget returns the directory exports are written to.
func (c *Config) ExportTarget() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
