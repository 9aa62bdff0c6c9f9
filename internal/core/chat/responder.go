package chat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/colonyops/tegbar/internal/core/task"
)

// Snapshot is the read-only state a responder may consult. It is built on the UI
// goroutine before a reply is scheduled.
type Snapshot struct {
	Date  time.Time
	Tasks []task.Task
	Now   time.Time
}

// Reply is a response waiting to be delivered to a conversation.
type Reply struct {
	Conversation string
	Message      Message

	// AddTask, when set, asks the receiver to create a task in Group once the reply
	// lands. Responders never touch the collection themselves.
	AddTask *task.Draft
	Group   string
}

// Responder turns user input into a canned reply. The second return value is false
// when the responder stays silent.
type Responder interface {
	Respond(contact, text string, snap Snapshot) (Reply, bool)
}

// TeamResponder acknowledges every message except for contacts listed as silent.
type TeamResponder struct {
	Silent []string
}

// Respond implements Responder.
func (r TeamResponder) Respond(contact, text string, snap Snapshot) (Reply, bool) {
	if strings.TrimSpace(text) == "" || slices.Contains(r.Silent, contact) {
		return Reply{}, false
	}
	return Reply{
		Conversation: contact,
		Message:      NewMessage(contact, "Acknowledged.", snap.Now),
	}, true
}

// AssistantConversation is the conversation key used for assistant replies. It is
// reserved: stores never load a team contact under this name.
const AssistantConversation = "@assistant"

const (
	addTaskPrefix = "add task:"

	assistantHelp = "I can add tasks with: add task: Title | 02:30 PM | High | notes\n" +
		"Or summarize today's tasks with: summarize today's tasks"
	assistantFallback = "I can help with tasks. Try: 'add task: Buy milk | 05:00 PM | Normal | from store' " +
		"or 'summarize today's tasks'."
)

type rule struct {
	name  string
	match func(lower string) bool
	reply func(text string, snap Snapshot) Reply
}

// Assistant answers with the first matching keyword rule.
type Assistant struct {
	rules []rule
}

// NewAssistant builds the assistant with its fixed rule order.
func NewAssistant() *Assistant {
	return &Assistant{rules: []rule{
		{
			name:  "add-task",
			match: func(lt string) bool { return strings.HasPrefix(lt, addTaskPrefix) },
			reply: replyAddTask,
		},
		{
			name: "summarize",
			match: func(lt string) bool {
				return strings.Contains(lt, "summarize") ||
					strings.Contains(lt, "summary") ||
					(strings.Contains(lt, "today") && strings.Contains(lt, "task"))
			},
			reply: replySummary,
		},
		{
			name: "help",
			match: func(lt string) bool {
				return strings.Contains(lt, "help") || strings.Contains(lt, "how") || strings.Contains(lt, "tips")
			},
			reply: func(_ string, snap Snapshot) Reply { return assistantReply(assistantHelp, snap) },
		},
	}}
}

// Respond implements Responder. The assistant always answers non-blank input.
func (a *Assistant) Respond(_ string, text string, snap Snapshot) (Reply, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return Reply{}, false
	}

	lt := strings.ToLower(t)
	for _, r := range a.rules {
		if r.match(lt) {
			return r.reply(t, snap), true
		}
	}
	return assistantReply(assistantFallback, snap), true
}

// Rule returns the name of the rule that would answer text, or "fallback".
func (a *Assistant) Rule(text string) string {
	lt := strings.ToLower(strings.TrimSpace(text))
	for _, r := range a.rules {
		if r.match(lt) {
			return r.name
		}
	}
	return "fallback"
}

func assistantReply(text string, snap Snapshot) Reply {
	return Reply{
		Conversation: AssistantConversation,
		Message:      NewMessage(SenderAssistant, text, snap.Now),
	}
}

func replyAddTask(text string, snap Snapshot) Reply {
	rest := strings.TrimSpace(text[len(addTaskPrefix):])
	parts := strings.Split(rest, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	draft := task.Draft{Text: "Untitled task", Priority: task.PriorityNormal}
	if parts[0] != "" {
		draft.Text = parts[0]
	}
	if len(parts) >= 2 {
		draft.Time = parts[1]
	}
	if len(parts) >= 3 && parts[2] != "" {
		draft.Priority = task.ParsePriority(parts[2])
	}
	if len(parts) >= 4 {
		draft.Notes = parts[3]
	}

	date := task.DateKey(snap.Date)
	r := assistantReply(fmt.Sprintf("Added task '%s' for %s (priority: %s).", draft.Text, date, draft.Priority), snap)
	r.AddTask = &draft
	r.Group = date
	return r
}

func replySummary(_ string, snap Snapshot) Reply {
	date := task.DateKey(snap.Date)
	if len(snap.Tasks) == 0 {
		return assistantReply(fmt.Sprintf("No tasks for %s.", date), snap)
	}
	return assistantReply("Tasks:\n"+Summarize(snap.Tasks), snap)
}

// Summarize renders tasks as a numbered checklist.
func Summarize(tasks []task.Task) string {
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		mark := "○"
		if t.Done {
			mark = "✓"
		}
		when := ""
		if t.Time != "" {
			when = " @ " + t.Time
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s%s [%s]", i+1, mark, t.Text, when, t.Priority))
	}
	return strings.Join(lines, "\n")
}
