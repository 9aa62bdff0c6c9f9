package task

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Collection maps a grouping key to its ordered task list. Insertion order within a
// group is display order. Groups never hold an empty list.
//
// A Collection is not safe for concurrent use; the planner only touches it from the
// goroutine that owns the UI.
type Collection struct {
	groups map[string][]Task
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{groups: map[string][]Task{}}
}

// FromGroups builds a collection from an existing mapping. The input is copied and
// empty groups are dropped.
func FromGroups(groups map[string][]Task) *Collection {
	c := NewCollection()
	for key, tasks := range groups {
		if len(tasks) == 0 {
			continue
		}
		c.groups[key] = slices.Clone(tasks)
	}
	return c
}

// Groups returns a deep copy of the underlying mapping, suitable for serialization.
func (c *Collection) Groups() map[string][]Task {
	out := make(map[string][]Task, len(c.groups))
	for key, tasks := range c.groups {
		out[key] = slices.Clone(tasks)
	}
	return out
}

// Clone returns an independent copy of the collection.
func (c *Collection) Clone() *Collection {
	return FromGroups(c.groups)
}

// Len returns the number of tasks across all groups.
func (c *Collection) Len() int {
	n := 0
	for _, tasks := range c.groups {
		n += len(tasks)
	}
	return n
}

// Has reports whether the group key exists.
func (c *Collection) Has(group string) bool {
	_, ok := c.groups[group]
	return ok
}

// Keys returns the group keys in ascending order. When pattern is non-empty only keys
// matching the doublestar glob are returned (e.g. "2026-10-*").
func (c *Collection) Keys(pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid group pattern %q", pattern)
	}

	keys := make([]string, 0, len(c.groups))
	for key := range c.groups {
		if pattern != "" {
			ok, err := doublestar.Match(pattern, key)
			if err != nil {
				return nil, fmt.Errorf("match group %q: %w", key, err)
			}
			if !ok {
				continue
			}
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Add appends a new task built from d to the group. The identity and creation stamp
// are assigned here from now.
func (c *Collection) Add(group string, d Draft, now time.Time) (Task, error) {
	text := clean(d.Text)
	if text == "" {
		return Task{}, ErrEmptyText
	}

	t := Task{
		ID:       NewID(),
		Text:     text,
		Time:     clean(d.Time),
		Priority: normalizePriority(d.Priority),
		Notes:    clean(d.Notes),
		Created:  CreatedStamp(now),
	}

	c.groups[group] = append(c.groups[group], t)
	return t, nil
}

// Insert appends an existing record, such as one read from an export, keeping its
// identity and creation stamp. The record is normalized first. It reports false
// when the record has no text or its identity is already present in any group.
func (c *Collection) Insert(group string, t Task, now time.Time) (Task, bool) {
	t, ok := t.Normalize(now)
	if !ok || c.contains(t.ID) {
		return Task{}, false
	}
	c.groups[group] = append(c.groups[group], t)
	return t, true
}

// Get returns the task with the given identity.
func (c *Collection) Get(group string, id ID) (Task, bool) {
	idx := c.index(group, id)
	if idx < 0 {
		return Task{}, false
	}
	return c.groups[group][idx], true
}

// Edit replaces the mutable fields of the matching task. A missing identity is a
// no-op and reports false. Blank text is rejected before anything changes.
func (c *Collection) Edit(group string, id ID, p Patch) (bool, error) {
	text := clean(p.Text)
	if text == "" {
		return false, ErrEmptyText
	}

	idx := c.index(group, id)
	if idx < 0 {
		return false, nil
	}

	t := &c.groups[group][idx]
	t.Text = text
	t.Time = clean(p.Time)
	t.Priority = normalizePriority(p.Priority)
	t.Notes = clean(p.Notes)
	return true, nil
}

// ToggleDone flips the completion flag and returns the updated task.
func (c *Collection) ToggleDone(group string, id ID) (Task, bool) {
	idx := c.index(group, id)
	if idx < 0 {
		return Task{}, false
	}

	t := &c.groups[group][idx]
	t.Done = !t.Done
	return *t, true
}

// Delete removes the task. When the group becomes empty the key is removed too.
func (c *Collection) Delete(group string, id ID) bool {
	idx := c.index(group, id)
	if idx < 0 {
		return false
	}

	tasks := slices.Delete(c.groups[group], idx, idx+1)
	if len(tasks) == 0 {
		delete(c.groups, group)
	} else {
		c.groups[group] = tasks
	}
	return true
}

// Filter yields the tasks of a group whose text or notes contain query, ignoring case.
// The sequence is lazy and can be ranged over more than once; each pass reads the group
// as it is at that moment.
func (c *Collection) Filter(group, query string) iter.Seq[Task] {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(yield func(Task) bool) {
		for _, t := range c.groups[group] {
			if !t.Matches(q) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// View captures the visible subsequence for a group and query.
func (c *Collection) View(group, query string) View {
	return View{
		Group: group,
		Query: query,
		Items: slices.Collect(c.Filter(group, query)),
	}
}

// ClearCompleted removes every done task across all groups in one pass and returns
// how many were removed. Zero means there was nothing to clear.
func (c *Collection) ClearCompleted() int {
	removed := 0
	for key, tasks := range c.groups {
		kept := slices.DeleteFunc(tasks, func(t Task) bool { return t.Done })
		removed += len(tasks) - len(kept)
		if len(kept) == 0 {
			delete(c.groups, key)
			continue
		}
		c.groups[key] = kept
	}
	return removed
}

// Stats summarizes completion across all groups.
type Stats struct {
	Done    int `json:"done"`
	Undone  int `json:"undone"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Stats counts done and undone tasks.
func (c *Collection) Stats() Stats {
	var s Stats
	for _, tasks := range c.groups {
		for _, t := range tasks {
			if t.Done {
				s.Done++
			} else {
				s.Undone++
			}
		}
	}
	s.Total = s.Done + s.Undone
	if s.Total > 0 {
		s.Percent = s.Done * 100 / s.Total
	}
	return s
}

// HistoryEntry pairs a task with the group it belongs to.
type HistoryEntry struct {
	Group string `json:"group"`
	Task  Task   `json:"task"`
}

// History returns up to limit tasks, newest group first and in stored order within a
// group. A limit of zero or less returns everything.
func (c *Collection) History(limit int) []HistoryEntry {
	keys := make([]string, 0, len(c.groups))
	for key := range c.groups {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	var out []HistoryEntry
	for _, key := range keys {
		for _, t := range c.groups[key] {
			out = append(out, HistoryEntry{Group: key, Task: t})
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func (c *Collection) contains(id ID) bool {
	for _, tasks := range c.groups {
		if slices.ContainsFunc(tasks, func(t Task) bool { return t.ID == id }) {
			return true
		}
	}
	return false
}

func (c *Collection) index(group string, id ID) int {
	return slices.IndexFunc(c.groups[group], func(t Task) bool { return t.ID == id })
}
