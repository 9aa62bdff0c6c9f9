package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/colonyops/tegbar/internal/core/styles"
)

const (
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
)

func binding(keys, help string) key.Binding {
	k := strings.Fields(keys)
	return key.NewBinding(key.WithKeys(k...), key.WithHelp(k[0], help))
}

var (
	helpTasks = []key.Binding{
		binding("a", "add"),
		binding("e", "edit"),
		binding("space x", "toggle"),
		binding("d", "delete"),
		binding("/", "search"),
		binding("h l", "day"),
		binding("[ ]", "week"),
		binding("t", "today"),
		binding("C", "clear done"),
		binding("E", "export"),
	}
	helpTeam = []key.Binding{
		binding("j k", "contact"),
		binding("i enter", "write"),
		binding("x", "stop reply"),
	}
	helpAssistant = []key.Binding{
		binding("i enter", "ask"),
		binding("x", "stop reply"),
	}
	helpHistory = []key.Binding{
		binding("E", "export"),
	}
	helpBoardSignedOut = []key.Binding{
		binding("L", "log in"),
		binding("S", "sign up"),
	}
	helpBoard = []key.Binding{
		binding("a", "add"),
		binding("e", "edit"),
		binding("space", "achieve/reopen"),
		binding("d", "delete"),
		binding("A", "achieve all"),
		binding("C", "clear achieved"),
		binding("o", "log out"),
	}
	helpComposer = []key.Binding{
		binding("enter", "send"),
		binding("esc", "back"),
	}
	helpSearch = []key.Binding{
		binding("enter", "keep"),
		binding("esc", "clear"),
	}
	helpGlobal = []key.Binding{
		binding("tab", "page"),
		binding("q", "quit"),
	}
)

// renderHelp renders a short help line for bindings.
func renderHelp(bindings ...[]key.Binding) string {
	var parts []string
	for _, group := range bindings {
		for _, b := range group {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
	}
	return styles.HelpStyle.Render(strings.Join(parts, "  "))
}
