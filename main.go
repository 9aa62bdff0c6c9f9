package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/commands"
	"github.com/colonyops/tegbar/internal/core/config"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/logging"
	"github.com/colonyops/tegbar/internal/core/styles"
	"github.com/colonyops/tegbar/internal/data/db"
	"github.com/colonyops/tegbar/internal/data/stores"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/internal/store/jsonfile"
	"github.com/colonyops/tegbar/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	// A .env next to the working directory may provide TEGBAR_* settings.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}

	var (
		logCloser  func()
		plannerApp = &planner.App{}
		database   *db.DB
		busCancel  context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:        "tegbar",
		Usage:       commands.RootUsage,
		UsageText:   "tegbar [global options] command [command options]",
		Description: commands.RootDescription,
		Version:     build(),
		Flags:       commands.GlobalFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; the TUI owns the terminal
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tegbar.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Validation ensures the theme name is known
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, err
			}

			bus := eventbus.New(256)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			svcLogger := logging.Component("planner")

			tasks := planner.NewTaskService(
				jsonfile.NewTaskStore(cfg.TasksFile, logging.Component("task-store")),
				bus,
				svcLogger,
			)
			if err := tasks.Load(ctx); err != nil {
				flags.Warnings = append(flags.Warnings, loadWarning(err))
			}

			chatSvc := planner.NewChatService(
				jsonfile.NewChatStore(cfg.TeamFile, logging.Component("chat-store")),
				tasks,
				bus,
				planner.ChatOptions{
					TeamDelay:      cfg.Chat.TeamDelay,
					AssistantDelay: cfg.Chat.AssistantDelay,
					SilentContacts: cfg.Chat.SilentContacts,
				},
				svcLogger,
			)
			if err := chatSvc.Load(ctx); err != nil {
				flags.Warnings = append(flags.Warnings, "Team conversations could not be loaded; starting with the default contacts.")
			}

			boardSvc := planner.NewBoardService(
				stores.NewUserStore(database),
				stores.NewBoardStore(database),
				bus,
				svcLogger,
			)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*plannerApp = *planner.NewApp(tasks, boardSvc, chatSvc, cfg, database, bus)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if plannerApp.Chat != nil {
				plannerApp.Chat.Close()
			}

			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, plannerApp)

	app = commands.RegisterAll(app, flags, plannerApp)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'tegbar --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

// openDatabase opens the board database. A corrupted file is moved aside and a
// fresh database is created in its place.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backup, rerr := stores.RecoverFromCorruption(cfg.DataDir, time.Now())
	if rerr != nil {
		return nil, fmt.Errorf("open database: %w (recovery failed: %w)", err, rerr)
	}
	log.Warn().Str("path", cfg.DatabasePath()).Str("backup", backup).Msg("database was corrupted, started a new one")

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database after recovery: %w", err)
	}
	return database, nil
}

func loadWarning(err error) string {
	var recovered *jsonfile.RecoveredError
	if errors.As(err, &recovered) && recovered.Backup != "" {
		return fmt.Sprintf("Tasks file was unreadable and has been moved to %s. Starting with an empty list.", recovered.Backup)
	}
	return fmt.Sprintf("Tasks could not be loaded: %v", err)
}
