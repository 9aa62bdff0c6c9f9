package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tegbar/internal/core/task"
)

// parseDay resolves a --date value relative to now. Accepted forms are "today",
// "tomorrow", "yesterday", signed day offsets such as "+2" or "-1", and
// YYYY-MM-DD.
func parseDay(s string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch v := strings.ToLower(strings.TrimSpace(s)); {
	case v == "" || v == "today":
		return today, nil
	case v == "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case v == "yesterday":
		return today.AddDate(0, 0, -1), nil
	case strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-"):
		n, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day offset %q", s)
		}
		return today.AddDate(0, 0, n), nil
	default:
		d, err := time.ParseInLocation(time.DateOnly, v, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD, today, tomorrow, yesterday or +N/-N", s)
		}
		return d, nil
	}
}

// positionArg reads the 1-based list position at index i and returns it 0-based.
func positionArg(c *cli.Command, i int) (int, error) {
	raw := c.Args().Get(i)
	if raw == "" {
		return 0, errors.New("task number is required (see the # column of 'tegbar task ls')")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid task number %q", raw)
	}
	return n - 1, nil
}

// idArg reads a board task id at index i.
func idArg(c *cli.Command, i int) (int64, error) {
	raw := c.Args().Get(i)
	if raw == "" {
		return 0, errors.New("task id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

// textArgs joins the positional arguments starting at index from.
func textArgs(c *cli.Command, from int) string {
	args := c.Args().Slice()
	if from >= len(args) {
		return ""
	}
	return strings.Join(args[from:], " ")
}

func doneMark(t task.Task) string {
	if t.Done {
		return "✓"
	}
	return "○"
}
