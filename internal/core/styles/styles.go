// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	TextMutedStyle     lipgloss.Style
	TextSuccessStyle   lipgloss.Style
	TextWarningStyle   lipgloss.Style

	// Page tabs.
	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style

	// Task rows.
	TaskSelectedStyle lipgloss.Style
	TaskNormalStyle   lipgloss.Style
	TaskDoneStyle     lipgloss.Style
	TaskNotesStyle    lipgloss.Style

	// Chat.
	ChatSenderStyle lipgloss.Style
	ChatSelfStyle   lipgloss.Style
	ChatTimeStyle   lipgloss.Style

	StatusBarStyle lipgloss.Style
	HelpStyle      lipgloss.Style
	ErrorStyle     lipgloss.Style

	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style

	// Modal buttons.
	ButtonStyle         lipgloss.Style
	ButtonSelectedStyle lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
)

// ColorPool is used for deterministic color hashing of contact names.
var ColorPool []color.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	TabActiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)
	TabInactiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(ColorMuted)

	TaskSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	TaskNormalStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	TaskDoneStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Strikethrough(true)
	TaskNotesStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		PaddingLeft(4)

	ChatSenderStyle = lipgloss.NewStyle().Bold(true)
	ChatSelfStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	ChatTimeStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)

	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorMuted).
		PaddingLeft(1)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)

	ButtonStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 2)
	ButtonSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorPrimary).
		Bold(true).
		Padding(0, 2)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastInfoStyle = toast.BorderForeground(ColorPrimary)
	ToastWarningStyle = toast.BorderForeground(ColorWarning)
	ToastErrorStyle = toast.BorderForeground(ColorError)

	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		PaddingLeft(1)

	ColorPool = []color.Color{
		ColorPrimary,
		ColorSecondary,
		ColorSuccess,
		ColorWarning,
		ColorError,
		blend(ColorPrimary, ColorError),
		blend(ColorSecondary, ColorWarning),
	}
}

// PriorityColor maps a priority label to a palette color.
func PriorityColor(priority string) color.Color {
	switch priority {
	case "High":
		return ColorError
	case "Low":
		return ColorMuted
	default:
		return ColorWarning
	}
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) color.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// blend mixes two palette colors in Lab space; falls back to a when either
// color cannot be converted.
func blend(a, b color.Color) color.Color {
	ca, okA := colorful.MakeColor(a)
	cb, okB := colorful.MakeColor(b)
	if !okA || !okB {
		return a
	}
	return ca.BlendLab(cb, 0.5).Clamped()
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
