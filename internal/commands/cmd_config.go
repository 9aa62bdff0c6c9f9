package commands

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/tegbar/pkg/iojson"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tegbar config validate [options]",
				Description: "Validates the configuration, including that the configured files and directories are usable.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "tegbar config show",
				Description: "Prints the configuration after defaults and home expansion were applied.",
				Action:      cmd.runShow,
			},
		},
	})

	return app
}

type validationOutput struct {
	Valid  bool              `json:"valid"`
	Path   string            `json:"path"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	err := cmd.flags.Config.ValidateDeep()

	out := validationOutput{Valid: err == nil, Path: cmd.flags.ConfigPath}
	if err != nil {
		out.Errors = map[string]string{}
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				out.Errors[fe.Field] = fe.Err.Error()
			}
		} else {
			out.Errors["config"] = err.Error()
		}
	}

	if cmd.format == "json" {
		if err := iojson.WriteLine(c.Root().Writer, out); err != nil {
			return err
		}
	} else {
		w := c.Root().Writer
		for _, field := range slices.Sorted(maps.Keys(out.Errors)) {
			_, _ = fmt.Fprintf(w, "✗ %s: %s\n", field, out.Errors[field])
		}
		if out.Valid {
			_, _ = fmt.Fprintf(w, "✓ %s is valid\n", out.Path)
		}
	}

	if !out.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cmd.flags.Config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
