package tui

import (
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tegbar/internal/core/styles"
)

// Modal represents a confirmation dialog.
type Modal struct {
	title           string
	message         string
	visible         bool
	confirmSelected bool
	onConfirm       confirmAction
}

// confirmAction names what a confirmed modal should do.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmClearCompleted
	confirmDeleteTask
	confirmDeleteBoardTask
	confirmClearAchieved
	confirmAchieveAll
)

// NewModal creates a visible modal with the confirm button selected.
func NewModal(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		confirmSelected: true,
	}
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

// Visible returns whether the modal should be displayed.
func (m Modal) Visible() bool {
	return m.visible
}

// Overlay renders the modal centered over background.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}

	var confirmBtn, cancelBtn string
	if m.confirmSelected {
		confirmBtn = styles.ButtonSelectedStyle.Render("Confirm")
		cancelBtn = styles.ButtonStyle.Render("Cancel")
	} else {
		confirmBtn = styles.ButtonStyle.Render("Confirm")
		cancelBtn = styles.ButtonSelectedStyle.Render("Cancel")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)
	buttonRow := lipgloss.NewStyle().MarginTop(1).Render(buttons)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		buttonRow,
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  esc cancel"),
	)

	return overlayCenter(background, styles.ModalStyle.Render(content), width, height)
}

// overlayCenter composites fg centered over background.
func overlayCenter(background, fg string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	fgLayer := lipgloss.NewLayer(fg)

	fgW := lipgloss.Width(fg)
	fgH := lipgloss.Height(fg)
	fgLayer.X(max((width-fgW)/2, 0)).Y(max((height-fgH)/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, fgLayer).Render()
}
