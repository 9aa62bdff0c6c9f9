// Package tui implements the Bubble Tea TUI for tegbar.
package tui

import (
	"time"

	"github.com/colonyops/tegbar/internal/core/styles"
	"github.com/colonyops/tegbar/internal/core/task"
)

// Page identifies a top-level tab.
type Page int

const (
	PageTasks Page = iota
	PageTeam
	PageAssistant
	PageHistory
	PageBoard
)

var pages = []Page{PageTasks, PageTeam, PageAssistant, PageHistory, PageBoard}

// String returns the tab label.
func (p Page) String() string {
	switch p {
	case PageTasks:
		return "Tasks"
	case PageTeam:
		return "Team"
	case PageAssistant:
		return "Assistant"
	case PageHistory:
		return "History"
	case PageBoard:
		return "Board"
	default:
		return "unknown"
	}
}

func (p Page) icon() string {
	switch p {
	case PageTasks:
		return styles.IconCheckList
	case PageTeam:
		return styles.IconMail
	case PageAssistant:
		return styles.IconBrain
	case PageHistory:
		return styles.IconHistory
	default:
		return styles.IconBoard
	}
}

// Focus is the widget that receives key presses.
type Focus int

const (
	FocusList Focus = iota
	FocusSearch
	FocusForm
	FocusComposer
)

// weekDays is the length of the day strip.
const weekDays = 7

// UIState is everything the renderers need to know about the user's position in
// the UI. It carries no task data; renderers receive snapshots separately.
type UIState struct {
	Page  Page
	Focus Focus

	Today      time.Time // local midnight of the current day
	Date       time.Time // selected day
	WeekOffset int       // days from Today to the first day of the strip

	Query   string
	Cursor  int
	Contact string
}

// NewUIState starts on the tasks page with today selected.
func NewUIState(now time.Time) UIState {
	today := midnight(now)
	return UIState{
		Page:  PageTasks,
		Today: today,
		Date:  today,
	}
}

// Group returns the task group key of the selected day.
func (s UIState) Group() string {
	return task.DateKey(s.Date)
}

// Days returns the days shown in the week strip.
func (s UIState) Days() []time.Time {
	start := s.Today.AddDate(0, 0, s.WeekOffset)
	days := make([]time.Time, weekDays)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// ShiftWeek moves the strip by whole weeks. The selected day is left alone.
func (s *UIState) ShiftWeek(weeks int) {
	s.WeekOffset += weeks * weekDays
}

// SelectDay makes day the selected group and resets list position.
func (s *UIState) SelectDay(day time.Time) {
	s.Date = midnight(day)
	s.Cursor = 0
}

// ShiftDay moves the selection by n days, scrolling the strip when the new day
// falls outside it.
func (s *UIState) ShiftDay(n int) {
	s.SelectDay(s.Date.AddDate(0, 0, n))

	offset := daysBetween(s.Today, s.Date)
	switch {
	case offset < s.WeekOffset:
		s.WeekOffset -= weekDays
	case offset >= s.WeekOffset+weekDays:
		s.WeekOffset += weekDays
	}
}

// MoveCursor moves the list cursor by delta, clamped to n items.
func (s *UIState) MoveCursor(delta, n int) {
	s.Cursor = clamp(s.Cursor+delta, 0, max(n-1, 0))
}

// ClampCursor keeps the cursor inside a list that may have shrunk.
func (s *UIState) ClampCursor(n int) {
	s.MoveCursor(0, n)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
