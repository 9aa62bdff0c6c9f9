package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/logging"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// BoardCmd implements the tegbar board command group. Every subcommand signs in
// first and operates on that user's board only.
type BoardCmd struct {
	flags *Flags
	app   *planner.App
	creds credentials

	// ls flags
	status     string
	query      string
	jsonOutput bool

	// achieve flags
	all bool
}

// NewBoardCmd creates a new board command.
func NewBoardCmd(flags *Flags, app *planner.App) *BoardCmd {
	return &BoardCmd{flags: flags, app: app}
}

// Register adds the board command to the application.
func (cmd *BoardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "board",
		Usage: "Manage your ongoing/achieved board",
		Description: `Board commands require an account (see 'tegbar account signup').

Examples:
  tegbar board --user ada add "Ship the release"
  tegbar board --user ada ls --status ongoing
  tegbar board --user ada achieve 3
  tegbar board --user ada achieve --all
  tegbar board --user ada clear`,
		Flags: cmd.creds.Flags(),
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an ongoing task",
				UsageText: "tegbar board add <text>",
				Action:    cmd.signedIn(cmd.runAdd),
			},
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List board tasks",
				UsageText: "tegbar board ls [--status ongoing|achieved] [--query <q>] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "status",
						Aliases:     []string{"s"},
						Usage:       "filter by status (ongoing, achieved)",
						Destination: &cmd.status,
					},
					&cli.StringFlag{
						Name:        "query",
						Aliases:     []string{"q"},
						Usage:       "filter by text",
						Destination: &cmd.query,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.signedIn(cmd.runLs),
			},
			{
				Name:      "achieve",
				Usage:     "Mark a task achieved",
				UsageText: "tegbar board achieve <id> | --all",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "all",
						Usage:       "achieve every ongoing task",
						Destination: &cmd.all,
					},
				},
				Action: cmd.signedIn(cmd.runAchieve),
			},
			{
				Name:      "reopen",
				Usage:     "Move an achieved task back to ongoing",
				UsageText: "tegbar board reopen <id>",
				Action:    cmd.signedIn(cmd.runReopen),
			},
			{
				Name:      "edit",
				Usage:     "Replace a task's text",
				UsageText: "tegbar board edit <id> <text>",
				Action:    cmd.signedIn(cmd.runEdit),
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a task",
				UsageText: "tegbar board rm <id>",
				Action:    cmd.signedIn(cmd.runRm),
			},
			{
				Name:      "clear",
				Usage:     "Delete all achieved tasks",
				UsageText: "tegbar board clear",
				Action:    cmd.signedIn(cmd.runClear),
			},
		},
	})

	return app
}

type boardAction func(ctx context.Context, c *cli.Command, user account.User) error

// signedIn resolves credentials and logs in before running fn.
func (cmd *BoardCmd) signedIn(fn boardAction) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if err := cmd.creds.resolve("Sign in"); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		user, err := cmd.app.Board.Login(ctx, cmd.creds.username, cmd.creds.password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		return fn(logging.WithUserID(ctx, user.ID), c, user)
	}
}

func (cmd *BoardCmd) runAdd(ctx context.Context, c *cli.Command, user account.User) error {
	t, err := cmd.app.Board.Add(ctx, user.ID, textArgs(c, 0))
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *BoardCmd) runLs(ctx context.Context, c *cli.Command, user account.User) error {
	tasks, err := cmd.app.Board.List(ctx, user.ID, board.ListFilter{
		Status: board.Status(cmd.status),
		Query:  cmd.query,
	})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks on your board")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tADDED\tTEXT")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Status, t.Timestamp.Format("2006-01-02 15:04"), t.Text)
	}
	return w.Flush()
}

func (cmd *BoardCmd) runAchieve(ctx context.Context, c *cli.Command, user account.User) error {
	if cmd.all {
		n, err := cmd.app.Board.AchieveAll(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("achieve all: %w", err)
		}
		_, err = fmt.Fprintf(c.Root().Writer, "Achieved %d task(s)\n", n)
		return err
	}

	id, err := idArg(c, 0)
	if err != nil {
		return err
	}
	if err := cmd.app.Board.Achieve(ctx, user.ID, id); err != nil {
		return fmt.Errorf("achieve: %w", err)
	}
	return nil
}

func (cmd *BoardCmd) runReopen(ctx context.Context, c *cli.Command, user account.User) error {
	id, err := idArg(c, 0)
	if err != nil {
		return err
	}
	if err := cmd.app.Board.Reopen(ctx, user.ID, id); err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	return nil
}

func (cmd *BoardCmd) runEdit(ctx context.Context, c *cli.Command, user account.User) error {
	id, err := idArg(c, 0)
	if err != nil {
		return err
	}
	t, err := cmd.app.Board.Edit(ctx, user.ID, id, textArgs(c, 1))
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *BoardCmd) runRm(ctx context.Context, c *cli.Command, user account.User) error {
	id, err := idArg(c, 0)
	if err != nil {
		return err
	}
	if err := cmd.app.Board.Delete(ctx, user.ID, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (cmd *BoardCmd) runClear(ctx context.Context, c *cli.Command, user account.User) error {
	n, err := cmd.app.Board.ClearAchieved(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	_, err = fmt.Fprintf(c.Root().Writer, "Cleared %d achieved task(s)\n", n)
	return err
}
