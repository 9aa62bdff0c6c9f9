package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/planner"
)

// ContactCompleter returns a ShellCompleteFunc that suggests chat contacts as the
// first positional argument.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ContactCompleter(app *planner.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
			// contact already given
			return
		}

		w := cmd.Root().Writer
		for _, name := range app.Chat.Contacts() {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}
