package tui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/notify"
	"github.com/colonyops/tegbar/internal/core/task"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatView.SetWidth(max(msg.Width-24, 20))
		m.chatView.SetHeight(max(msg.Height-10, 5))
		m.search.SetWidth(max(msg.Width/3, 20))
		m.composer.SetWidth(max(msg.Width-28, 20))
		m.refreshChat()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg.Reply)

	case tasksFileChangedMsg:
		if reloaded, err := m.app.Tasks.Refresh(m.ctx); err != nil {
			m.notifyErr("reload tasks", err)
		} else if reloaded {
			m.refreshTasks()
			m.notify(notify.LevelInfo, "Tasks reloaded from disk")
		}
		return m, tea.Batch(m.waitForFileChange(), m.startToastTick())

	case drainNotificationsMsg:
		for _, n := range m.notifications.Drain() {
			m.history.Push(n)
			m.toasts.Push(n)
		}
		return m, tea.Batch(m.notifications.WaitForSignal(), m.startToastTick())

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if !m.toasts.HasToasts() {
			m.toasts.ticking = false
			return m, nil
		}
		return m, scheduleToastTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleReply(r chat.Reply) (tea.Model, tea.Cmd) {
	if err := m.app.Chat.Deliver(m.ctx, r); err != nil {
		m.notifyErr("deliver reply", err)
	}
	if r.AddTask != nil {
		m.refreshTasks()
	}

	// Replies land in their own conversation; the viewport only changes when
	// that conversation is on screen.
	if m.showingConversation(r.Conversation) {
		m.refreshChat()
	}
	return m, m.startToastTick()
}

func (m Model) showingConversation(conversation string) bool {
	switch m.state.Page {
	case PageAssistant:
		return conversation == chat.AssistantConversation
	case PageTeam:
		return conversation == m.state.Contact
	default:
		return false
	}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == keyCtrlC {
		return m.quit()
	}

	switch {
	case m.modal.Visible():
		return m.handleModalKey(keyStr)
	case m.form != nil:
		return m.handleFormKey(msg)
	case m.state.Focus == FocusSearch:
		return m.handleSearchKey(msg, keyStr)
	case m.state.Focus == FocusComposer:
		return m.handleComposerKey(msg, keyStr)
	}

	switch keyStr {
	case "q":
		return m.quit()
	case "tab":
		return m.switchPage(pages[(int(m.state.Page)+1)%len(pages)])
	case "shift+tab":
		return m.switchPage(pages[(int(m.state.Page)+len(pages)-1)%len(pages)])
	case "1", "2", "3", "4", "5":
		return m.switchPage(pages[int(keyStr[0]-'1')])
	}

	switch m.state.Page {
	case PageTasks:
		return m.handleTasksKey(keyStr)
	case PageTeam:
		return m.handleTeamKey(keyStr)
	case PageAssistant:
		return m.handleAssistantKey(keyStr)
	case PageHistory:
		if keyStr == "E" {
			return m.export()
		}
	case PageBoard:
		return m.handleBoardKey(keyStr)
	}
	return m, nil
}

func (m Model) switchPage(p Page) (tea.Model, tea.Cmd) {
	m.state.Page = p
	m.state.Focus = FocusList
	switch p {
	case PageTasks:
		m.refreshTasks()
	case PageTeam, PageAssistant:
		m.refreshChat()
	case PageBoard:
		m.refreshBoard()
	}
	return m, nil
}

func (m Model) handleTasksKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "up", "k":
		m.state.MoveCursor(-1, m.view.Len())
	case "down", "j":
		m.state.MoveCursor(1, m.view.Len())
	case "left", "h":
		m.state.ShiftDay(-1)
		m.refreshTasks()
	case "right", "l":
		m.state.ShiftDay(1)
		m.refreshTasks()
	case "[":
		m.state.ShiftWeek(-1)
	case "]":
		m.state.ShiftWeek(1)
	case "t":
		m.state.WeekOffset = 0
		m.state.SelectDay(m.state.Today)
		m.refreshTasks()
	case "/":
		m.state.Focus = FocusSearch
		return m, m.search.Focus()
	case "a":
		m.form = newTaskForm(nil)
		m.formKind = formAddTask
	case "e", keyEnter:
		t, err := m.app.Tasks.VisibleAt(m.view, m.state.Cursor)
		if err != nil {
			return m, nil
		}
		m.form = newTaskForm(&t)
		m.formKind = formEditTask
		m.formTask = taskRef{group: m.view.Group, id: t.ID}
	case "space", "x":
		if _, err := m.app.Tasks.ToggleVisible(m.ctx, m.view, m.state.Cursor); err != nil && !isLookupMiss(err) {
			m.notifyErr("toggle task", err)
		}
		m.refreshTasks()
	case "d":
		t, err := m.app.Tasks.VisibleAt(m.view, m.state.Cursor)
		if err != nil {
			return m, nil
		}
		m.modal = NewModal("Delete Task", fmt.Sprintf("Delete %q?", t.Text))
		m.modal.onConfirm = confirmDeleteTask
		m.confirmTask = taskRef{group: m.view.Group, id: t.ID}
	case "C":
		m.modal = NewModal("Clear Completed", "Remove every completed task on every day?")
		m.modal.onConfirm = confirmClearCompleted
	case "E":
		return m.export()
	}
	return m, m.startToastTick()
}

func isLookupMiss(err error) bool {
	return errors.Is(err, task.ErrNotFound) || errors.Is(err, task.ErrStaleView)
}

func (m Model) export() (tea.Model, tea.Cmd) {
	path, err := m.app.Tasks.Export(m.app.Config.ExportTarget())
	if err != nil {
		m.notifyErr("export", err)
	} else {
		m.notify(notify.LevelInfo, "Exported to "+path)
	}
	return m, m.startToastTick()
}

func (m Model) handleSearchKey(msg tea.KeyPressMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.state.Query = ""
		m.state.Focus = FocusList
		m.refreshTasks()
		return m, nil
	case keyEnter:
		m.search.Blur()
		m.state.Focus = FocusList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := strings.TrimSpace(m.search.Value()); q != m.state.Query {
		m.state.Query = q
		m.state.Cursor = 0
		m.refreshTasks()
	}
	return m, cmd
}

func (m Model) handleTeamKey(keyStr string) (tea.Model, tea.Cmd) {
	contacts := m.app.Chat.Contacts()
	idx := 0
	for i, c := range contacts {
		if c == m.state.Contact {
			idx = i
		}
	}

	switch keyStr {
	case "up", "k":
		idx = max(idx-1, 0)
	case "down", "j":
		idx = min(idx+1, len(contacts)-1)
	case "i", keyEnter:
		m.state.Focus = FocusComposer
		return m, m.composer.Focus()
	case "x":
		return m.stopReplies(m.state.Contact)
	default:
		return m, nil
	}

	// Pending replies for the previous contact keep running and land in that
	// contact's history.
	if len(contacts) > 0 {
		m.state.Contact = contacts[idx]
	}
	m.refreshChat()
	return m, nil
}

func (m Model) handleAssistantKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "i", keyEnter:
		m.state.Focus = FocusComposer
		return m, m.composer.Focus()
	case "x":
		return m.stopReplies(chat.AssistantConversation)
	}
	return m, nil
}

// stopReplies drops the replies still pending for conversation.
func (m Model) stopReplies(conversation string) (tea.Model, tea.Cmd) {
	if m.app.Chat.Cancel(conversation) == 0 {
		return m, nil
	}
	m.notify(notify.LevelInfo, "Stopped waiting for "+conversation)
	m.refreshChat()
	return m, m.startToastTick()
}

func (m Model) handleComposerKey(msg tea.KeyPressMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc:
		m.composer.Blur()
		m.state.Focus = FocusList
		return m, nil
	case keyEnter:
		text := strings.TrimSpace(m.composer.Value())
		if text == "" {
			return m, nil
		}

		var err error
		if m.state.Page == PageAssistant {
			_, _, err = m.app.Chat.Ask(m.ctx, text, m.state.Date)
		} else {
			_, _, err = m.app.Chat.Send(m.ctx, m.state.Contact, text)
		}
		if err != nil {
			m.notifyErr("send message", err)
		}

		m.composer.SetValue("")
		m.refreshChat()
		return m, m.startToastTick()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleBoardKey(keyStr string) (tea.Model, tea.Cmd) {
	if m.boardUser == nil {
		switch keyStr {
		case "L":
			m.form = newLoginForm(false)
			m.formKind = formLogin
		case "S":
			m.form = newLoginForm(true)
			m.formKind = formSignUp
		}
		return m, nil
	}

	userID := m.boardUser.ID
	selected, hasSelected := m.selectedBoardTask()

	switch keyStr {
	case "up", "k":
		m.boardCursor = max(m.boardCursor-1, 0)
	case "down", "j":
		m.boardCursor = min(m.boardCursor+1, max(len(m.boardTasks)-1, 0))
	case "a":
		m.form = newTextForm("New Board Task", "")
		m.formKind = formBoardAdd
	case "e":
		if hasSelected {
			m.form = newTextForm("Edit Board Task", selected.Text)
			m.formKind = formBoardEdit
			m.formID = selected.ID
		}
	case "space", "x":
		if !hasSelected {
			break
		}
		var err error
		if selected.Status == board.StatusAchieved {
			err = m.app.Board.Reopen(m.ctx, userID, selected.ID)
		} else {
			err = m.app.Board.Achieve(m.ctx, userID, selected.ID)
		}
		if err != nil && !errors.Is(err, board.ErrNotFound) {
			m.notifyErr("update board task", err)
		}
		m.refreshBoard()
	case "d":
		if hasSelected {
			m.modal = NewModal("Delete Board Task", fmt.Sprintf("Delete %q?", selected.Text))
			m.modal.onConfirm = confirmDeleteBoardTask
			m.confirmBoardID = selected.ID
		}
	case "A":
		m.modal = NewModal("Achieve All", "Mark every ongoing task achieved?")
		m.modal.onConfirm = confirmAchieveAll
	case "C":
		m.modal = NewModal("Clear Achieved", "Delete every achieved task?")
		m.modal.onConfirm = confirmClearAchieved
	case "o":
		m.boardUser = nil
		m.boardTasks = nil
		m.boardCursor = 0
	}
	return m, m.startToastTick()
}

func (m Model) selectedBoardTask() (board.Task, bool) {
	if m.boardCursor < 0 || m.boardCursor >= len(m.boardTasks) {
		return board.Task{}, false
	}
	return m.boardTasks[m.boardCursor], true
}

func (m Model) handleModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
		return m, nil
	case keyEsc, "n":
		m.modal = Modal{}
		return m, nil
	case keyEnter, "y":
		action := m.modal.onConfirm
		confirmed := keyStr == "y" || m.modal.ConfirmSelected()
		m.modal = Modal{}
		if confirmed {
			m.runConfirmed(action)
		}
		return m, m.startToastTick()
	}
	return m, nil
}

func (m *Model) runConfirmed(action confirmAction) {
	switch action {
	case confirmDeleteTask:
		if _, err := m.app.Tasks.Delete(m.ctx, m.confirmTask.group, m.confirmTask.id); err != nil {
			m.notifyErr("delete task", err)
		}
		m.refreshTasks()
	case confirmDeleteBoardTask:
		if err := m.app.Board.Delete(m.ctx, m.boardUser.ID, m.confirmBoardID); err != nil && !errors.Is(err, board.ErrNotFound) {
			m.notifyErr("delete board task", err)
		}
		m.refreshBoard()
	case confirmClearCompleted:
		n, err := m.app.Tasks.ClearCompleted(m.ctx)
		switch {
		case err != nil:
			m.notifyErr("clear completed", err)
		case n == 0:
			m.notify(notify.LevelInfo, "Nothing to clear")
		}
		m.refreshTasks()
	case confirmClearAchieved:
		if n, err := m.app.Board.ClearAchieved(m.ctx, m.boardUser.ID); err != nil {
			m.notifyErr("clear achieved", err)
		} else if n == 0 {
			m.notify(notify.LevelInfo, "Nothing to clear")
		}
		m.refreshBoard()
	case confirmAchieveAll:
		if n, err := m.app.Board.AchieveAll(m.ctx, m.boardUser.ID); err != nil {
			m.notifyErr("achieve all", err)
		} else if n == 0 {
			m.notify(notify.LevelInfo, "No ongoing tasks")
		}
		m.refreshBoard()
	}
}

func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	result, cmd := m.form.Update(msg)
	switch result {
	case formCancelled:
		m.form = nil
		m.formKind = formNone
		return m, nil
	case formSubmitted:
		if err := m.submitForm(); err != nil {
			m.form.err = formError(err)
			return m, nil
		}
		m.form = nil
		m.formKind = formNone
		return m, m.startToastTick()
	}
	return m, cmd
}

// submitForm applies the open form. A returned error keeps the form open;
// storage failures are reported as toasts and close it.
func (m *Model) submitForm() error {
	f := m.form
	switch m.formKind {
	case formAddTask:
		_, err := m.app.Tasks.Add(m.ctx, m.state.Group(), f.Draft())
		if errors.Is(err, task.ErrEmptyText) {
			return err
		}
		if err != nil {
			m.notifyErr("save task", err)
		}
		m.refreshTasks()
		m.state.Cursor = max(m.view.Len()-1, 0)

	case formEditTask:
		_, err := m.app.Tasks.Edit(m.ctx, m.formTask.group, m.formTask.id, f.Patch())
		if errors.Is(err, task.ErrEmptyText) {
			return err
		}
		if err != nil {
			m.notifyErr("save task", err)
		}
		m.refreshTasks()

	case formLogin, formSignUp:
		var (
			user account.User
			err  error
		)
		if m.formKind == formSignUp {
			user, err = m.app.Board.SignUp(m.ctx, f.Value(0), f.Raw(1))
		} else {
			user, err = m.app.Board.Login(m.ctx, f.Value(0), f.Raw(1))
		}
		if err != nil {
			return err
		}
		m.boardUser = &user
		m.boardCursor = 0
		m.refreshBoard()

	case formBoardAdd:
		if _, err := m.app.Board.Add(m.ctx, m.boardUser.ID, f.Value(0)); err != nil {
			if errors.Is(err, board.ErrEmptyText) {
				return err
			}
			m.notifyErr("add board task", err)
		}
		m.refreshBoard()

	case formBoardEdit:
		if _, err := m.app.Board.Edit(m.ctx, m.boardUser.ID, m.formID, f.Value(0)); err != nil {
			if errors.Is(err, board.ErrEmptyText) {
				return err
			}
			if !errors.Is(err, board.ErrNotFound) {
				m.notifyErr("edit board task", err)
			}
		}
		m.refreshBoard()
	}
	return nil
}

// formError turns a validation error into a single line for the form footer.
func formError(err error) string {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fe.Field+" "+fe.Err.Error())
		}
		return strings.Join(parts, ", ")
	}
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, account.ErrUsernameTaken):
		return "Username already exists"
	}
	return err.Error()
}

