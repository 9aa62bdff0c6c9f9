package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// AccountCmd implements the tegbar account command group.
type AccountCmd struct {
	flags *Flags
	app   *planner.App
	creds credentials
}

// NewAccountCmd creates a new account command.
func NewAccountCmd(flags *Flags, app *planner.App) *AccountCmd {
	return &AccountCmd{flags: flags, app: app}
}

// Register adds the account command to the application.
func (cmd *AccountCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "account",
		Usage: "Manage board accounts",
		Description: `Accounts own a private task board stored in the local database.

Examples:
  tegbar account signup --user ada
  TEGBAR_PASSWORD=secret tegbar account login --user ada`,
		Commands: []*cli.Command{
			{
				Name:      "signup",
				Usage:     "Create an account",
				UsageText: "tegbar account signup [--user <name>] [--password <pw>]",
				Flags:     cmd.creds.Flags(),
				Action:    cmd.runSignUp,
			},
			{
				Name:      "login",
				Usage:     "Check credentials",
				UsageText: "tegbar account login [--user <name>] [--password <pw>]",
				Flags:     cmd.creds.Flags(),
				Action:    cmd.runLogin,
			},
		},
	})

	return app
}

func (cmd *AccountCmd) runSignUp(ctx context.Context, c *cli.Command) error {
	if err := cmd.creds.resolve("Create an account"); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	user, err := cmd.app.Board.SignUp(ctx, cmd.creds.username, cmd.creds.password)
	if err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			return fmt.Errorf("username %q is already taken", cmd.creds.username)
		}
		return fmt.Errorf("sign up: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, user)
}

func (cmd *AccountCmd) runLogin(ctx context.Context, c *cli.Command) error {
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
	return iojson.WriteLine(c.Root().Writer, user)
}
