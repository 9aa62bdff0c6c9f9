package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tegbar/internal/core/validate"
)

// credentials holds the --user/--password pair shared by account and board commands.
type credentials struct {
	username string
	password string
}

func (cr *credentials) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "username",
			Sources:     cli.EnvVars("TEGBAR_USER"),
			Destination: &cr.username,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "password (prompted when omitted on a terminal)",
			Sources:     cli.EnvVars("TEGBAR_PASSWORD"),
			Destination: &cr.password,
		},
	}
}

// resolve fills missing values with an interactive form. Without a terminal the
// values must come from flags or the environment.
func (cr *credentials) resolve(title string) error {
	if strings.TrimSpace(cr.username) != "" && cr.password != "" {
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("--user and --password are required (or set TEGBAR_USER and TEGBAR_PASSWORD)")
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Username").
				Validate(validate.Required).
				Value(&cr.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validate.Password).
				Value(&cr.password),
		),
	).Run()
}
