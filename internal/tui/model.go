package tui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/logging"
	"github.com/colonyops/tegbar/internal/core/notify"
	"github.com/colonyops/tegbar/internal/core/styles"
	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/internal/planner"
	"github.com/colonyops/tegbar/internal/store/jsonfile"
)

// ReplyMsg carries a chat reply whose delay elapsed.
type ReplyMsg struct {
	Reply chat.Reply
}

// Deliverer returns a chat.DeliverFunc that hands replies to the program's
// event loop.
func Deliverer(p *tea.Program) chat.DeliverFunc {
	return func(r chat.Reply) {
		p.Send(ReplyMsg{Reply: r})
	}
}

type tasksFileChangedMsg struct{}

type formKind int

const (
	formNone formKind = iota
	formAddTask
	formEditTask
	formLogin
	formSignUp
	formBoardAdd
	formBoardEdit
)

// Deps are the services the TUI drives.
type Deps struct {
	App *planner.App

	// FileEvents, when set, reports changes to the tasks file made by other
	// processes.
	FileEvents <-chan jsonfile.FileEvent
}

// Opts tunes the initial state.
type Opts struct {
	Warnings []string
	Now      func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx  context.Context
	app  *planner.App
	log  zerolog.Logger
	now  func() time.Time
	opts Opts

	state UIState
	view  task.View
	count map[string]int

	search   textinput.Model
	composer textinput.Model

	form     *inputForm
	formKind formKind
	formTask taskRef // task being edited
	formID   int64   // board task being edited

	modal          Modal
	confirmTask    taskRef
	confirmBoardID int64

	toasts        *ToastController
	notifications *NotificationBuffer
	history       *notify.Queue

	spinner  spinner.Model
	chatView viewport.Model

	fileEvents <-chan jsonfile.FileEvent

	boardUser   *account.User
	boardTasks  []board.Task
	boardCursor int

	width    int
	height   int
	quitting bool
}

// New creates the TUI model and subscribes it to user-facing notifications.
func New(deps Deps, opts Opts) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	search := newInput("", "Search tasks...")
	search.Prompt = "/ "
	search.Blur()

	composer := newInput("", "Type a message")
	composer.Prompt = "> "
	composer.SetWidth(60)
	composer.Blur()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StatusBarStyle

	buf := NewNotificationBuffer()
	if deps.App.Bus != nil {
		deps.App.Bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
			buf.Push(notify.Notification{Level: p.Level, Message: p.Message})
		})
	}

	state := NewUIState(opts.Now())
	contacts := deps.App.Chat.Contacts()
	if len(contacts) > 0 {
		state.Contact = contacts[0]
	}

	m := Model{
		ctx:           context.Background(),
		app:           deps.App,
		log:           logging.Component("tui"),
		now:           opts.Now,
		opts:          opts,
		state:         state,
		search:        search,
		composer:      composer,
		toasts:        NewToastController(),
		notifications: buf,
		history:       notify.NewQueue(50),
		spinner:       s,
		chatView:      viewport.New(viewport.WithWidth(60), viewport.WithHeight(12)),
		fileEvents:    deps.FileEvents,
	}
	m.refreshTasks()
	m.refreshChat()
	return m
}

// taskRef pins the task an open form or modal acts on. Reloads replace the
// visible list underneath it, so positions would drift.
type taskRef struct {
	group string
	id    task.ID
}

// Init starts background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.notifications.WaitForSignal(), m.spinner.Tick}
	if m.fileEvents != nil {
		cmds = append(cmds, m.waitForFileChange())
	}
	for _, w := range m.opts.Warnings {
		m.notifications.Push(notify.Notification{Level: notify.LevelWarning, Message: w})
	}
	if m.app.Bus != nil {
		m.app.Bus.PublishTuiStarted(eventbus.TUIStartedPayload{})
	}
	return tea.Batch(cmds...)
}

// waitForFileChange blocks until the tasks file changes and must be re-issued
// after each message.
func (m Model) waitForFileChange() tea.Cmd {
	ch := m.fileEvents
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return tasksFileChangedMsg{}
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.app.Chat.Close()
	if m.app.Bus != nil {
		m.app.Bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	}
	return m, tea.Quit
}

// State returns the current UI state.
func (m Model) State() UIState {
	return m.state
}

// refreshTasks re-reads the selected group through the service and replaces the
// cached view. Call after every mutation, query change or day change.
func (m *Model) refreshTasks() {
	m.view = m.app.Tasks.View(m.state.Group(), m.state.Query)
	m.state.ClampCursor(m.view.Len())

	snap := m.app.Tasks.Snapshot()
	m.count = make(map[string]int)
	for key, tasks := range snap.Groups() {
		m.count[key] = len(tasks)
	}
}

// refreshChat regenerates the conversation shown on the chat pages.
func (m *Model) refreshChat() {
	var msgs []chat.Message
	switch m.state.Page {
	case PageAssistant:
		msgs = m.app.Chat.AssistantMessages()
	default:
		msgs, _ = m.app.Chat.Conversation(m.state.Contact)
	}
	m.chatView.SetContent(RenderConversation(msgs, m.chatView.Width()))
	m.chatView.GotoBottom()
}

func (m *Model) refreshBoard() {
	if m.boardUser == nil {
		m.boardTasks = nil
		return
	}

	tasks, err := m.app.Board.List(m.ctx, m.boardUser.ID, board.ListFilter{})
	if err != nil {
		m.notifyErr("load board", err)
		return
	}
	m.boardTasks = tasks
	m.boardCursor = clamp(m.boardCursor, 0, max(len(tasks)-1, 0))
}

func (m *Model) notify(level notify.Level, msg string) {
	n := notify.Notification{Level: level, Message: msg, CreatedAt: m.now()}
	m.history.Push(n)
	m.toasts.Push(n)
}

func (m *Model) notifyErr(action string, err error) {
	m.log.Error().Err(err).Str("action", action).Msg("tui action failed")
	m.notify(notify.LevelError, action+": "+err.Error())
}

func (m *Model) startToastTick() tea.Cmd {
	if m.toasts.ticking || !m.toasts.HasToasts() {
		return nil
	}
	m.toasts.ticking = true
	return scheduleToastTick()
}
