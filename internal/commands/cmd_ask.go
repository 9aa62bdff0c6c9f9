package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tegbar/internal/planner"
)

// AskCmd sends a single question to the assistant.
type AskCmd struct {
	flags *Flags
	app   *planner.App

	date  string
	plain bool
}

// NewAskCmd creates a new ask command.
func NewAskCmd(flags *Flags, app *planner.App) *AskCmd {
	return &AskCmd{flags: flags, app: app}
}

// Register adds the ask command to the application.
func (cmd *AskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ask",
		Usage:     "Ask the assistant",
		UsageText: "tegbar ask <text> [--date <day>] [--plain]",
		Description: `Sends one message to the assistant and prints its answer.

The assistant reads and adds to the tasks of --date.

Examples:
  tegbar ask "summarize today's tasks"
  tegbar ask "add task: Call mom | 06:00 PM | High | birthday"
  tegbar ask help`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "day the assistant works on",
				Value:       "today",
				Destination: &cmd.date,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print the answer without markdown rendering",
				Destination: &cmd.plain,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AskCmd) run(ctx context.Context, c *cli.Command) error {
	day, err := parseDay(cmd.date, time.Now())
	if err != nil {
		return err
	}

	replies := startReplies(cmd.app.Chat)
	defer cmd.app.Chat.Close()

	_, scheduled, err := cmd.app.Chat.Ask(ctx, textArgs(c, 0), day)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	if !scheduled {
		return nil
	}

	reply, err := awaitReply(ctx, replies, cmd.app.Config.Chat.AssistantDelay)
	if err != nil {
		return err
	}
	if err := cmd.app.Chat.Deliver(ctx, reply); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}

	out := reply.Message.Text
	if !cmd.plain && term.IsTerminal(int(os.Stdout.Fd())) {
		out = renderMarkdown(out)
	}
	_, err = fmt.Fprintln(c.Root().Writer, strings.TrimRight(out, "\n"))
	return err
}

// renderMarkdown renders assistant text for a terminal and falls back to the raw
// text when rendering fails.
func renderMarkdown(text string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return text
	}

	// hard line breaks: the assistant lays out lists line by line
	rendered, err := r.Render(strings.ReplaceAll(text, "\n", "  \n"))
	if err != nil {
		return text
	}
	return rendered
}
