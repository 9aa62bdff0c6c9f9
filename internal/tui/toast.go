package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tegbar/internal/core/notify"
	"github.com/colonyops/tegbar/internal/core/styles"
)

const (
	defaultToastTTL   = 4 * time.Second
	defaultMaxToasts  = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastController manages the lifecycle of active toast notifications.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds a notification, evicting the oldest toast past defaultMaxToasts.
func (c *ToastController) Push(n notify.Notification) {
	c.toasts = append(c.toasts, toast{notification: n, remaining: defaultToastTTL})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and drops expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool { return len(c.toasts) > 0 }

// View renders the toast stack, oldest at the top.
func (c *ToastController) View() string {
	if len(c.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(c.toasts))
	for _, t := range c.toasts {
		rendered = append(rendered, renderToast(t))
	}
	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.Level {
	case notify.LevelError:
		icon = styles.IconNotifyError
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		icon = styles.IconNotifyWarning
		style = styles.ToastWarningStyle
	default:
		icon = styles.IconNotifyInfo
		style = styles.ToastInfoStyle
	}

	return style.Width(toastWidth).Render(icon + " " + t.notification.Message)
}

// Overlay composites the toast stack over background in the lower-right corner.
func (c *ToastController) Overlay(background string, width, height int) string {
	content := c.View()
	if content == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(content)

	x := max(width-lipgloss.Width(content)-1, 0)
	y := max(height-lipgloss.Height(content), 0)
	toastLayer.X(x).Y(y).Z(2)

	return lipgloss.NewCompositor(bgLayer, toastLayer).Render()
}
