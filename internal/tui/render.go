package tui

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/styles"
	"github.com/colonyops/tegbar/internal/core/task"
)

const (
	notesPreviewLen = 120
	cursorMarker    = "›"
	progressWidth   = 30
)

// RenderTasks draws the task list for one group. It keeps no state between
// calls: the output depends only on the arguments.
func RenderTasks(items []task.Task, state UIState, width int) string {
	if len(items) == 0 {
		if state.Query != "" {
			return styles.StatusBarStyle.Render(fmt.Sprintf("No tasks match %q.", state.Query))
		}
		return styles.StatusBarStyle.Render("No tasks for this day.\nPress a to add one.")
	}

	var b strings.Builder
	for i, t := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderTaskRow(t, i == state.Cursor && state.Focus == FocusList, width))
	}
	return b.String()
}

func renderTaskRow(t task.Task, selected bool, width int) string {
	marker := " "
	textStyle := styles.TaskNormalStyle
	if selected {
		marker = cursorMarker
		textStyle = styles.TaskSelectedStyle
	}

	icon := styles.IconOpen
	if t.Done {
		icon = styles.IconDone
		textStyle = styles.TaskDoneStyle
	}

	badge := lipgloss.NewStyle().
		Foreground(styles.PriorityColor(string(t.Priority))).
		Render("[" + string(t.Priority) + "]")

	line := fmt.Sprintf("%s %s %s", marker, icon, textStyle.Render(t.Text))
	if t.Time != "" {
		line += styles.ChatTimeStyle.Render("  " + t.Time)
	}
	line += " " + badge

	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}

	if t.Notes == "" {
		return line
	}
	return line + "\n" + styles.TaskNotesStyle.Render(previewNotes(t.Notes))
}

func previewNotes(notes string) string {
	notes = strings.ReplaceAll(notes, "\n", " ")
	if len([]rune(notes)) < notesPreviewLen {
		return notes
	}
	return string([]rune(notes)[:notesPreviewLen-3]) + "..."
}

// RenderWeek draws the day strip. counts maps group keys to task counts.
func RenderWeek(state UIState, counts map[string]int) string {
	days := state.Days()
	cells := make([]string, 0, len(days))
	for _, d := range days {
		key := task.DateKey(d)
		label := d.Format("Mon") + "\n" + d.Format("02 Jan")
		if n := counts[key]; n > 0 {
			label += fmt.Sprintf("\n%d", n)
		} else {
			label += "\n "
		}

		style := styles.TabInactiveStyle
		if key == state.Group() {
			style = styles.TabActiveStyle
		}
		cells = append(cells, style.Align(lipgloss.Center).Width(10).Render(label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderTabs draws the page tab bar.
func RenderTabs(active Page) string {
	tabs := make([]string, 0, len(pages))
	for i, p := range pages {
		label := fmt.Sprintf("%d %s %s", i+1, p.icon(), p)
		if p == active {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderContacts draws the contact list with pending reply markers.
func RenderContacts(contacts []string, active string, pending map[string]int) string {
	lines := make([]string, 0, len(contacts))
	for _, c := range contacts {
		marker := " "
		style := lipgloss.NewStyle().Foreground(styles.ColorForString(c))
		if c == active {
			marker = cursorMarker
			style = style.Bold(true)
		}
		line := marker + " " + style.Render(c)
		if pending[c] > 0 {
			line += styles.ChatTimeStyle.Render(" …")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderConversation draws a message history, oldest first.
func RenderConversation(msgs []chat.Message, width int) string {
	if len(msgs) == 0 {
		return styles.StatusBarStyle.Render("No messages yet.")
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		sender := lipgloss.NewStyle().Foreground(styles.ColorForString(m.Sender)).Bold(true).Render(m.Sender)
		if m.FromYou() {
			sender = styles.ChatSelfStyle.Render(m.Sender)
		}

		head := styles.ChatTimeStyle.Render("["+m.Time+"]") + " " + sender + ": "
		body := m.Text
		if width > 0 {
			body = ansi.Wrap(body, max(width-lipgloss.Width(head), 20), " ")
		}
		indent := strings.Repeat(" ", lipgloss.Width(head))
		body = strings.ReplaceAll(body, "\n", "\n"+indent)

		lines = append(lines, head+body)
	}
	return strings.Join(lines, "\n")
}

// RenderHistory draws completion stats followed by recent tasks.
func RenderHistory(stats task.Stats, entries []task.HistoryEntry, width int) string {
	filled := 0
	if stats.Total > 0 {
		filled = stats.Done * progressWidth / stats.Total
	}
	bar := lipgloss.NewStyle().Foreground(styles.ColorSuccess).Render(strings.Repeat("█", filled)) +
		styles.StatusBarStyle.Render(strings.Repeat("░", progressWidth-filled))

	summary := fmt.Sprintf("Done %d  Open %d  Total %d  %d%%", stats.Done, stats.Undone, stats.Total, stats.Percent)

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render(summary))
	b.WriteByte('\n')
	b.WriteString(bar)
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(styles.StatusBarStyle.Render("No task history yet."))
		return b.String()
	}

	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		icon := styles.IconOpen
		if e.Task.Done {
			icon = styles.IconDone
		}
		line := fmt.Sprintf("%s  %s %s [%s]", styles.ChatTimeStyle.Render(e.Group), icon, e.Task.Text, e.Task.Priority)
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		b.WriteString(line)
	}
	return b.String()
}

// BoardLayout is the timestamp format shown on the board page.
const BoardLayout = "2006-01-02 15:04"

// RenderBoard draws a user's board, newest first.
func RenderBoard(user string, tasks []board.Task, cursor int, width int) string {
	header := styles.ModalTitleStyle.Render("Signed in as " + user)
	if len(tasks) == 0 {
		return header + "\n\n" + styles.StatusBarStyle.Render("Board is empty. Press a to add a task.")
	}

	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		marker := " "
		style := styles.TaskNormalStyle
		if i == cursor {
			marker = cursorMarker
			style = styles.TaskSelectedStyle
		}
		icon := styles.IconOpen
		if t.Status == board.StatusAchieved {
			icon = styles.IconDone
			style = styles.TaskDoneStyle
		}
		line := fmt.Sprintf("%s %s %s  %s", marker, icon, style.Render(t.Text),
			styles.ChatTimeStyle.Render(t.Timestamp.Format(BoardLayout)))
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		lines = append(lines, line)
	}
	return header + "\n\n" + strings.Join(lines, "\n")
}
