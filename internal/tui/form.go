package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tegbar/internal/core/styles"
	"github.com/colonyops/tegbar/internal/core/task"
)

const formWidth = 44

type formResult int

const (
	formPending formResult = iota
	formSubmitted
	formCancelled
)

type formField struct {
	label string
	input textinput.Model
}

// inputForm is a modal of stacked text inputs with an optional priority
// selector as its last row. tab and shift+tab move focus; enter submits.
type inputForm struct {
	title    string
	fields   []formField
	priority int // index into task.Priorities, -1 when the form has no selector
	focus    int
	err      string
}

func newInput(value, placeholder string) textinput.Model {
	input := textinput.New()
	input.SetValue(value)
	input.CursorEnd()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.CharLimit = 256
	input.SetWidth(formWidth - 4)
	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Cursor.Color = styles.ColorPrimary
	input.SetStyles(inputStyles)
	return input
}

func newInputForm(title string, fields ...formField) *inputForm {
	f := &inputForm{title: title, fields: fields, priority: -1}
	f.fields[0].input.Focus()
	return f
}

// newTaskForm builds the add/edit form. t is nil when adding.
func newTaskForm(t *task.Task) *inputForm {
	title := "New Task"
	var text, when, notes string
	prio := task.PriorityNormal
	if t != nil {
		title = "Edit Task"
		text, when, notes, prio = t.Text, t.Time, t.Notes, t.Priority
	}

	f := newInputForm(title,
		formField{label: "Title", input: newInput(text, "Task title")},
		formField{label: "Time", input: newInput(when, "e.g. 03:30 PM")},
		formField{label: "Notes", input: newInput(notes, "")},
	)
	f.priority = priorityIndex(prio)
	return f
}

func newLoginForm(signUp bool) *inputForm {
	title := "Log In"
	if signUp {
		title = "Sign Up"
	}
	password := newInput("", "")
	password.EchoMode = textinput.EchoPassword
	return newInputForm(title,
		formField{label: "Username", input: newInput("", "")},
		formField{label: "Password", input: password},
	)
}

func newTextForm(title, value string) *inputForm {
	return newInputForm(title, formField{label: "Task", input: newInput(value, "What needs doing?")})
}

func priorityIndex(p task.Priority) int {
	for i, v := range task.Priorities {
		if v == p {
			return i
		}
	}
	return 1
}

func (f *inputForm) rows() int {
	if f.priority >= 0 {
		return len(f.fields) + 1
	}
	return len(f.fields)
}

func (f *inputForm) onPriority() bool {
	return f.priority >= 0 && f.focus == len(f.fields)
}

func (f *inputForm) setFocus(i int) {
	f.focus = (i + f.rows()) % f.rows()
	for j := range f.fields {
		if j == f.focus {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

// Update routes a key press to the focused row.
func (f *inputForm) Update(msg tea.Msg) (formResult, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc":
			return formCancelled, nil
		case "enter":
			return formSubmitted, nil
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return formPending, nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return formPending, nil
		}

		if f.onPriority() {
			switch key.String() {
			case "left", "h":
				f.priority = (f.priority + len(task.Priorities) - 1) % len(task.Priorities)
			case "right", "l", "space":
				f.priority = (f.priority + 1) % len(task.Priorities)
			}
			return formPending, nil
		}
	}

	if f.onPriority() {
		return formPending, nil
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return formPending, cmd
}

// Value returns the trimmed value of field i.
func (f *inputForm) Value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// Raw returns the untrimmed value of field i.
func (f *inputForm) Raw(i int) string {
	return f.fields[i].input.Value()
}

// Priority returns the selected priority.
func (f *inputForm) Priority() task.Priority {
	if f.priority < 0 {
		return task.PriorityNormal
	}
	return task.Priorities[f.priority]
}

// Draft converts a task form into a draft.
func (f *inputForm) Draft() task.Draft {
	return task.Draft{Text: f.Value(0), Time: f.Value(1), Priority: f.Priority(), Notes: f.Value(2)}
}

// Patch converts a task form into an edit patch.
func (f *inputForm) Patch() task.Patch {
	return task.Patch{Text: f.Value(0), Time: f.Value(1), Priority: f.Priority(), Notes: f.Value(2)}
}

// View renders the form body.
func (f *inputForm) View() string {
	rows := []string{styles.ModalTitleStyle.Render(f.title), ""}
	for i, field := range f.fields {
		style := styles.FormFieldStyle
		if i == f.focus {
			style = styles.FormFieldFocusedStyle
		}
		rows = append(rows, style.Render(field.label+"\n"+field.input.View()))
	}

	if f.priority >= 0 {
		style := styles.FormFieldStyle
		if f.onPriority() {
			style = styles.FormFieldFocusedStyle
		}
		choices := make([]string, len(task.Priorities))
		for i, p := range task.Priorities {
			if i == f.priority {
				choices[i] = styles.ButtonSelectedStyle.Render(string(p))
			} else {
				choices[i] = styles.ButtonStyle.Render(string(p))
			}
		}
		rows = append(rows, style.Render("Priority\n"+lipgloss.JoinHorizontal(lipgloss.Top, choices...)))
	}

	if f.err != "" {
		rows = append(rows, styles.ErrorStyle.Render(f.err))
	}
	rows = append(rows, styles.ModalHelpStyle.Render("tab next  enter save  esc cancel"))

	return styles.ModalStyle.Width(formWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
