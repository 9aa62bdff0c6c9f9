package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// ChatCmd implements the tegbar chat command group.
type ChatCmd struct {
	flags *Flags
	app   *planner.App

	jsonOutput bool
	noWait     bool
}

// NewChatCmd creates a new chat command.
func NewChatCmd(flags *Flags, app *planner.App) *ChatCmd {
	return &ChatCmd{flags: flags, app: app}
}

// Register adds the chat command to the application.
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "chat",
		Usage: "Talk to your team",
		Description: `Chat commands read and write the team conversations file shared with the
planner. Contacts acknowledge messages after a short delay; some stay silent.

Examples:
  tegbar chat contacts
  tegbar chat show Jonas
  tegbar chat send Jonas "standup moved to 10"`,
		Commands: []*cli.Command{
			{
				Name:      "contacts",
				Usage:     "List contacts",
				UsageText: "tegbar chat contacts [--json]",
				Flags:     []cli.Flag{cmd.jsonFlag()},
				Action:    cmd.runContacts,
			},
			{
				Name:          "show",
				Usage:         "Print a conversation",
				UsageText:     "tegbar chat show <contact> [--json]",
				Flags:         []cli.Flag{cmd.jsonFlag()},
				ShellComplete: ContactCompleter(cmd.app),
				Action:        cmd.runShow,
			},
			{
				Name:      "send",
				Usage:     "Send a message and wait for the reply",
				UsageText: "tegbar chat send <contact> <message> [--no-wait]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "no-wait",
						Usage:       "do not wait for the contact to reply",
						Destination: &cmd.noWait,
					},
				},
				ShellComplete: ContactCompleter(cmd.app),
				Action:        cmd.runSend,
			},
		},
	})

	return app
}

func (cmd *ChatCmd) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}
}

func (cmd *ChatCmd) runContacts(_ context.Context, c *cli.Command) error {
	out := c.Root().Writer
	for _, name := range cmd.app.Chat.Contacts() {
		if cmd.jsonOutput {
			msgs, _ := cmd.app.Chat.Conversation(name)
			if err := iojson.WriteLine(out, contactLine{Name: name, Messages: len(msgs)}); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintln(out, name)
	}
	return nil
}

type contactLine struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

func (cmd *ChatCmd) runShow(_ context.Context, c *cli.Command) error {
	contact := c.Args().First()
	if contact == "" {
		return errors.New("contact is required")
	}

	msgs, err := cmd.app.Chat.Conversation(contact)
	if err != nil {
		return err
	}

	if len(msgs) == 0 && !cmd.jsonOutput {
		fmt.Fprintf(os.Stderr, "No messages with %s yet\n", contact)
		return nil
	}
	return printMessages(c.Root().Writer, msgs, cmd.jsonOutput)
}

func (cmd *ChatCmd) runSend(ctx context.Context, c *cli.Command) error {
	contact := c.Args().First()
	if contact == "" {
		return errors.New("contact is required")
	}

	replies := startReplies(cmd.app.Chat)
	defer cmd.app.Chat.Close()

	msg, scheduled, err := cmd.app.Chat.Send(ctx, contact, textArgs(c, 1))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	out := c.Root().Writer
	if err := printMessages(out, []chat.Message{msg}, false); err != nil {
		return err
	}

	if !scheduled || cmd.noWait {
		return nil
	}

	reply, err := awaitReply(ctx, replies, cmd.app.Config.Chat.TeamDelay)
	if err != nil {
		return err
	}
	if err := cmd.app.Chat.Deliver(ctx, reply); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}
	return printMessages(out, []chat.Message{reply.Message}, false)
}

// startReplies wires the chat service to a buffered channel so a one-shot command
// can wait for the reply it triggered.
func startReplies(svc *planner.ChatService) <-chan chat.Reply {
	replies := make(chan chat.Reply, 4)
	svc.Start(func(r chat.Reply) {
		select {
		case replies <- r:
		default:
			log.Warn().Str("conversation", r.Conversation).Msg("reply dropped, receiver is not listening")
		}
	})
	return replies
}

// awaitReply waits for the next reply, allowing a grace period on top of the
// configured delay.
func awaitReply(ctx context.Context, replies <-chan chat.Reply, delay time.Duration) (chat.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, delay+5*time.Second)
	defer cancel()

	select {
	case r := <-replies:
		return r, nil
	case <-ctx.Done():
		return chat.Reply{}, fmt.Errorf("wait for reply: %w", ctx.Err())
	}
}

func printMessages(w io.Writer, msgs []chat.Message, jsonOutput bool) error {
	for _, m := range msgs {
		if jsonOutput {
			if err := iojson.WriteLine(w, m); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", m.Time, m.Sender, m.Text); err != nil {
			return err
		}
	}
	return nil
}
