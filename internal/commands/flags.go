package commands

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/config"
	"github.com/colonyops/tegbar/internal/planner"
)

const (
	RootUsage       = "Plan your days, keep a board, and talk to your team"
	RootDescription = `tegbar is a terminal planner. Tasks are grouped by day and stored in a JSON
file; a per-user board of ongoing and achieved tasks lives in SQLite; a mock team
chat and a keyword assistant can answer questions and add tasks for you.

Run 'tegbar' with no arguments to open the interactive planner.`
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Warnings collects non-fatal startup problems shown when the TUI opens
	Warnings []string
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tegbar", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tegbar")
}

// GlobalFlags returns the root command flags bound to f.
func GlobalFlags(f *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("TEGBAR_LOG_LEVEL"),
			Value:       "info",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to <data-dir>/tegbar.log)",
			Sources:     cli.EnvVars("TEGBAR_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("TEGBAR_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("TEGBAR_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &f.DataDir,
		},
	}
}

// RegisterAll adds every subcommand to root.
func RegisterAll(root *cli.Command, f *Flags, app *planner.App) *cli.Command {
	root = NewTaskCmd(f, app).Register(root)
	root = NewChatCmd(f, app).Register(root)
	root = NewAskCmd(f, app).Register(root)
	root = NewAccountCmd(f, app).Register(root)
	root = NewBoardCmd(f, app).Register(root)
	root = NewConfigCmd(f).Register(root)
	root = NewDoctorCmd(f, app).Register(root)
	return root
}
