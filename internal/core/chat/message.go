// Package chat models the mock team chat and the keyword-routed assistant.
package chat

import (
	"errors"
	"slices"
	"sort"
	"time"
)

// ErrUnknownContact is returned when a conversation does not exist.
var ErrUnknownContact = errors.New("unknown contact")

const (
	// SenderYou marks messages written by the local user.
	SenderYou = "You"
	// SenderAssistant is the display name of the assistant.
	SenderAssistant = "Tegbar AI"
)

// ClockLayout is the display format for message times.
const ClockLayout = "15:04"

// Message is a single chat line.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Time   string `json:"time"`
}

// NewMessage stamps a message with the wall-clock time of now.
func NewMessage(sender, text string, now time.Time) Message {
	return Message{Sender: sender, Text: text, Time: now.Format(ClockLayout)}
}

// FromYou reports whether the local user wrote the message.
func (m Message) FromYou() bool {
	return m.Sender == SenderYou
}

// Conversations maps a contact name to its ordered message history.
type Conversations map[string][]Message

// SeedConversations returns the contacts shown on first run.
func SeedConversations() Conversations {
	return Conversations{
		"Jonas":   {{Sender: "Jonas", Text: "Hello team!", Time: "09:12"}},
		"Neo":     {},
		"Abraham": {},
		"Jessica": {},
	}
}

// Contacts returns the contact names sorted alphabetically.
func (c Conversations) Contacts() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Append adds a message to a contact's history, creating it if needed.
func (c Conversations) Append(contact string, m Message) {
	c[contact] = append(c[contact], m)
}

// Clone returns a deep copy.
func (c Conversations) Clone() Conversations {
	out := make(Conversations, len(c))
	for name, msgs := range c {
		out[name] = slices.Clone(msgs)
	}
	return out
}
