package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tegbar/internal/core/chat"
	"github.com/colonyops/tegbar/internal/core/styles"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	mainView := m.renderMain(w)

	var content string
	switch {
	case m.modal.Visible():
		content = m.modal.Overlay(mainView, w, h)
	case m.form != nil:
		content = overlayCenter(mainView, m.form.View(), w, h)
	default:
		content = mainView
	}

	if m.toasts.HasToasts() {
		content = m.toasts.Overlay(content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderMain(width int) string {
	var body string
	switch m.state.Page {
	case PageTasks:
		body = m.renderTasksPage(width)
	case PageTeam:
		body = m.renderTeamPage()
	case PageAssistant:
		body = m.renderAssistantPage()
	case PageHistory:
		body = RenderHistory(m.app.Tasks.Stats(), m.app.Tasks.History(m.historyLimit()), width)
	case PageBoard:
		body = m.renderBoardPage(width)
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", width))
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTabs(m.state.Page),
		divider,
		body,
		m.renderHelp(),
	)
}

func (m Model) historyLimit() int {
	if m.app.Config != nil && m.app.Config.HistoryLimit > 0 {
		return m.app.Config.HistoryLimit
	}
	return 100
}

func (m Model) renderTasksPage(width int) string {
	title := styles.ModalTitleStyle.Render("Tasks  " + m.state.Date.Format("Monday, 02 January 2006"))
	header := title
	if m.state.Focus == FocusSearch || m.state.Query != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, title, "   ", m.search.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		RenderWeek(m.state, m.count),
		"",
		RenderTasks(m.view.Items, m.state, width),
	)
}

func (m Model) renderTeamPage() string {
	contacts := m.app.Chat.Contacts()
	pending := make(map[string]int, len(contacts))
	for _, c := range contacts {
		pending[c] = m.app.Chat.Pending(c)
	}

	left := lipgloss.NewStyle().Width(20).Render(RenderContacts(contacts, m.state.Contact, pending))
	right := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.state.Contact),
		m.chatView.View(),
		m.typingLine(m.state.Contact),
		m.composer.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m Model) renderAssistantPage() string {
	title := fmt.Sprintf("%s  (tasks for %s)", chat.SenderAssistant, m.state.Group())
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(title),
		m.chatView.View(),
		m.typingLine(chat.AssistantConversation),
		m.composer.View(),
	)
}

func (m Model) typingLine(conversation string) string {
	if m.app.Chat.Pending(conversation) == 0 {
		return ""
	}
	return m.spinner.View() + styles.StatusBarStyle.Render(" typing")
}

func (m Model) renderBoardPage(width int) string {
	if m.boardUser == nil {
		return styles.StatusBarStyle.Render("Log in to see your board.")
	}
	return RenderBoard(m.boardUser.Username, m.boardTasks, m.boardCursor, width)
}

func (m Model) renderHelp() string {
	switch {
	case m.state.Focus == FocusSearch:
		return renderHelp(helpSearch)
	case m.state.Focus == FocusComposer:
		return renderHelp(helpComposer)
	}

	switch m.state.Page {
	case PageTasks:
		return renderHelp(helpTasks, helpGlobal)
	case PageTeam:
		return renderHelp(helpTeam, helpGlobal)
	case PageAssistant:
		return renderHelp(helpAssistant, helpGlobal)
	case PageHistory:
		return renderHelp(helpHistory, helpGlobal)
	default:
		if m.boardUser == nil {
			return renderHelp(helpBoardSignedOut, helpGlobal)
		}
		return renderHelp(helpBoard, helpGlobal)
	}
}
