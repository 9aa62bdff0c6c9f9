package commands

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/logging"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/internal/store/jsonfile"
	"github.com/colonyops/tegbar/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *planner.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *planner.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps := tui.Deps{App: cmd.app}

	// Pick up edits made by other tegbar processes while the planner is open.
	watcher, err := jsonfile.NewFileWatcher(logging.Component("watcher"))
	if err != nil {
		log.Warn().Err(err).Msg("file watcher unavailable, external edits will not be picked up")
	} else {
		defer func() { _ = watcher.Close() }()
		events, err := watcher.Watch(ctx, cmd.app.Config.TasksFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cmd.app.Config.TasksFile).Msg("failed to watch tasks file")
		} else {
			deps.FileEvents = events
		}
	}

	m := tui.New(deps, tui.Opts{Warnings: cmd.flags.Warnings})
	p := tea.NewProgram(m)

	cmd.app.Chat.Start(tui.Deliverer(p))
	defer cmd.app.Chat.Close()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
