package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// TaskCmd implements the tegbar task command group.
type TaskCmd struct {
	flags *Flags
	app   *planner.App

	// shared selection flags
	date  string
	query string

	// add/edit flags
	text     string
	at       string
	priority string
	notes    string

	// ls flags
	group      string
	jsonOutput bool

	// export flags
	dir string

	// history flags
	limit int

	importReader iojson.FileReader[map[string][]task.Task]
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *planner.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

func (cmd *TaskCmd) tasks() *planner.TaskService {
	return cmd.app.Tasks
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Manage dated tasks",
		Description: `Task commands operate on the same JSON file as the interactive planner.

Tasks are addressed by their number in 'tegbar task ls' for the same --date and
--query, which mirrors how the list is shown in the planner.

Examples:
  tegbar task add "Write report" --time "02:30 PM" --priority high
  tegbar task ls --date tomorrow
  tegbar task done 2
  tegbar task edit 1 --notes "bring slides"
  tegbar task export --dir ~/backups`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.lsCmd(),
			cmd.editCmd(),
			cmd.doneCmd(),
			cmd.rmCmd(),
			cmd.clearCmd(),
			cmd.exportCmd(),
			cmd.importCmd(),
			cmd.statsCmd(),
			cmd.historyCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "date",
		Aliases:     []string{"d"},
		Usage:       "day to operate on (YYYY-MM-DD, today, tomorrow, yesterday, +N, -N)",
		Value:       "today",
		Destination: &cmd.date,
	}
}

func (cmd *TaskCmd) queryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "query",
		Aliases:     []string{"q"},
		Usage:       "only consider tasks whose text or notes contain this",
		Destination: &cmd.query,
	}
}

func (cmd *TaskCmd) fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Usage:       "task text",
			Destination: &cmd.text,
		},
		&cli.StringFlag{
			Name:        "time",
			Aliases:     []string{"t"},
			Usage:       "time of day, free form (e.g. 02:30 PM)",
			Destination: &cmd.at,
		},
		&cli.StringFlag{
			Name:        "priority",
			Aliases:     []string{"p"},
			Usage:       "priority (low, normal, high)",
			Destination: &cmd.priority,
		},
		&cli.StringFlag{
			Name:        "notes",
			Aliases:     []string{"n"},
			Usage:       "free form notes",
			Destination: &cmd.notes,
		},
	}
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "tegbar task add <text> [--date <day>] [--time <time>] [--priority <p>] [--notes <notes>]",
		Flags:     append([]cli.Flag{cmd.dateFlag()}, cmd.fieldFlags()...),
		Action:    cmd.runAdd,
	}
}

func (cmd *TaskCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks for a day",
		UsageText: "tegbar task ls [--date <day>] [--query <q>] [--group <glob>] [--json]",
		Description: `Lists the tasks of a single day in display order.

With --group, lists every stored day whose key matches the glob instead,
for example --group "2026-10-*".`,
		Flags: []cli.Flag{
			cmd.dateFlag(),
			cmd.queryFlag(),
			&cli.StringFlag{
				Name:        "group",
				Aliases:     []string{"g"},
				Usage:       "glob over day keys (YYYY-MM-DD)",
				Destination: &cmd.group,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *TaskCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a task",
		UsageText: "tegbar task edit <n> [--text <t>] [--time <time>] [--priority <p>] [--notes <notes>]",
		Description: `Replaces the given fields of task <n>. Fields that are not passed keep
their current value. Completion is changed with 'tegbar task done'.`,
		Flags:  append([]cli.Flag{cmd.dateFlag(), cmd.queryFlag()}, cmd.fieldFlags()...),
		Action: cmd.runEdit,
	}
}

func (cmd *TaskCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Toggle a task between done and not done",
		UsageText: "tegbar task done <n> [--date <day>] [--query <q>]",
		Flags:     []cli.Flag{cmd.dateFlag(), cmd.queryFlag()},
		Action:    cmd.runDone,
	}
}

func (cmd *TaskCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "tegbar task rm <n> [--date <day>] [--query <q>]",
		Flags:     []cli.Flag{cmd.dateFlag(), cmd.queryFlag()},
		Action:    cmd.runRm,
	}
}

func (cmd *TaskCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Remove completed tasks from every day",
		UsageText: "tegbar task clear",
		Action:    cmd.runClear,
	}
}

func (cmd *TaskCmd) exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a timestamped copy of all tasks",
		UsageText: "tegbar task export [--dir <dir>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "target directory (defaults to export_dir or the working directory)",
				Destination: &cmd.dir,
			},
		},
		Action: cmd.runExport,
	}
}

func (cmd *TaskCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Merge tasks from an export file",
		UsageText: "tegbar task import [-f <file>]",
		Description: `Reads a tasks document (the export format) and appends its tasks to the
matching days. Tasks whose id already exists are skipped.

Examples:
  tegbar task import -f tegbar_export_20261018_093000.json
  cat backup.json | tegbar task import`,
		Flags:  []cli.Flag{cmd.importReader.Flag()},
		Action: cmd.runImport,
	}
}

func (cmd *TaskCmd) statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show completion statistics",
		UsageText: "tegbar task stats [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runStats,
	}
}

func (cmd *TaskCmd) historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List tasks across all days, newest day first",
		UsageText: "tegbar task history [--limit <n>]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"l"},
				Usage:       "maximum rows (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
		},
		Action: cmd.runHistory,
	}
}

func (cmd *TaskCmd) day() (string, error) {
	d, err := parseDay(cmd.date, time.Now())
	if err != nil {
		return "", err
	}
	return task.DateKey(d), nil
}

func (cmd *TaskCmd) draft(text string) task.Draft {
	return task.Draft{
		Text:     text,
		Time:     cmd.at,
		Priority: task.ParsePriority(cmd.priority),
		Notes:    cmd.notes,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	group, err := cmd.day()
	if err != nil {
		return err
	}

	text := cmd.text
	if text == "" {
		text = textArgs(c, 0)
	}

	t, err := cmd.tasks().Add(ctx, group, cmd.draft(text))
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, taskLine{Group: group, Task: t})
}

// taskLine is the JSON lines output format for task commands.
type taskLine struct {
	Group    string `json:"group"`
	Position int    `json:"position,omitempty"`
	task.Task
}

func (cmd *TaskCmd) runLs(_ context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.group != "" {
		keys, err := cmd.tasks().Keys(cmd.group)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := cmd.printDay(out, key); err != nil {
				return err
			}
		}
		return nil
	}

	group, err := cmd.day()
	if err != nil {
		return err
	}
	return cmd.printDay(out, group)
}

func (cmd *TaskCmd) printDay(out io.Writer, group string) error {
	view := cmd.tasks().View(group, cmd.query)

	if cmd.jsonOutput {
		for i := range view.Len() {
			t, err := cmd.tasks().VisibleAt(view, i)
			if err != nil {
				continue
			}
			if err := iojson.WriteLine(out, taskLine{Group: group, Position: i + 1, Task: t}); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if view.Len() == 0 {
		if cmd.group == "" {
			fmt.Fprintf(os.Stderr, "No tasks for %s\n", group)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "%s\n#\tDONE\tTIME\tPRIORITY\tTEXT\n", group)
	for i := range view.Len() {
		t, err := cmd.tasks().VisibleAt(view, i)
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, doneMark(t), t.Time, t.Priority, t.Text)
	}
	return w.Flush()
}

func (cmd *TaskCmd) selection(c *cli.Command) (task.View, int, error) {
	group, err := cmd.day()
	if err != nil {
		return task.View{}, 0, err
	}
	pos, err := positionArg(c, 0)
	if err != nil {
		return task.View{}, 0, err
	}
	return cmd.tasks().View(group, cmd.query), pos, nil
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	view, pos, err := cmd.selection(c)
	if err != nil {
		return err
	}

	current, err := cmd.tasks().VisibleAt(view, pos)
	if err != nil {
		return err
	}

	patch := task.Patch{
		Text:     current.Text,
		Time:     current.Time,
		Priority: current.Priority,
		Notes:    current.Notes,
	}
	if c.IsSet("text") {
		patch.Text = cmd.text
	}
	if c.IsSet("time") {
		patch.Time = cmd.at
	}
	if c.IsSet("priority") {
		patch.Priority = task.ParsePriority(cmd.priority)
	}
	if c.IsSet("notes") {
		patch.Notes = cmd.notes
	}

	if err := cmd.tasks().EditVisible(ctx, view, pos, patch); err != nil {
		return fmt.Errorf("edit task: %w", err)
	}

	updated, err := cmd.tasks().VisibleAt(cmd.tasks().View(view.Group, cmd.query), pos)
	if err != nil {
		// the edit moved the task out of the filtered list
		return nil
	}
	return iojson.WriteLine(c.Root().Writer, taskLine{Group: view.Group, Position: pos + 1, Task: updated})
}

func (cmd *TaskCmd) runDone(ctx context.Context, c *cli.Command) error {
	view, pos, err := cmd.selection(c)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().ToggleVisible(ctx, view, pos)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, taskLine{Group: view.Group, Position: pos + 1, Task: t})
}

func (cmd *TaskCmd) runRm(ctx context.Context, c *cli.Command) error {
	view, pos, err := cmd.selection(c)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().VisibleAt(view, pos)
	if err != nil {
		return err
	}
	if err := cmd.tasks().DeleteVisible(ctx, view, pos); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Deleted %q from %s\n", t.Text, view.Group)
	return nil
}

func (cmd *TaskCmd) runClear(ctx context.Context, c *cli.Command) error {
	n, err := cmd.tasks().ClearCompleted(ctx)
	if err != nil {
		return fmt.Errorf("clear completed: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(os.Stderr, "No completed tasks to clear")
		return nil
	}
	_, err = fmt.Fprintf(c.Root().Writer, "Cleared %d completed task(s)\n", n)
	return err
}

func (cmd *TaskCmd) runExport(_ context.Context, c *cli.Command) error {
	dir := cmd.dir
	if dir == "" {
		dir = cmd.app.Config.ExportTarget()
	}

	path, err := cmd.tasks().Export(dir)
	if err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}
	_, err = fmt.Fprintln(c.Root().Writer, path)
	return err
}

func (cmd *TaskCmd) runImport(ctx context.Context, c *cli.Command) error {
	groups, err := cmd.importReader.Read()
	if err != nil {
		return err
	}

	n, err := cmd.tasks().Import(ctx, groups)
	if err != nil {
		return fmt.Errorf("import tasks: %w", err)
	}
	_, err = fmt.Fprintf(c.Root().Writer, "Imported %d task(s)\n", n)
	return err
}

func (cmd *TaskCmd) runStats(_ context.Context, c *cli.Command) error {
	stats := cmd.tasks().Stats()
	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, stats)
	}
	_, err := fmt.Fprintf(c.Root().Writer, "Done %d  Open %d  Total %d  %d%%\n",
		stats.Done, stats.Undone, stats.Total, stats.Percent)
	return err
}

func (cmd *TaskCmd) runHistory(_ context.Context, c *cli.Command) error {
	entries := cmd.tasks().History(cmd.limit)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks yet")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DAY\tDONE\tPRIORITY\tTEXT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Group, doneMark(e.Task), e.Task.Priority, e.Task.Text)
	}
	return w.Flush()
}
