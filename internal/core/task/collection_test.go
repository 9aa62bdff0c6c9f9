package task

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2026-10-18"

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func mustAdd(t *testing.T, c *Collection, group, text string) Task {
	t.Helper()
	added, err := c.Add(group, Draft{Text: text}, fixedNow)
	require.NoError(t, err)
	return added
}

func texts(seq []Task) []string {
	out := make([]string, 0, len(seq))
	for _, t := range seq {
		out = append(out, t.Text)
	}
	return out
}

func TestCollection_Add(t *testing.T) {
	t.Run("assigns identity and defaults", func(t *testing.T) {
		c := NewCollection()

		added, err := c.Add(day, Draft{Text: "  Buy milk  ", Time: "05:00 PM"}, fixedNow)
		require.NoError(t, err)

		assert.NotEmpty(t, added.ID)
		assert.Equal(t, "Buy milk", added.Text)
		assert.Equal(t, PriorityNormal, added.Priority)
		assert.False(t, added.Done)
		assert.Equal(t, CreatedStamp(fixedNow), added.Created)

		all := slices.Collect(c.Filter(day, ""))
		require.Len(t, all, 1)
		assert.Equal(t, added, all[0])
	})

	t.Run("identities are unique within a group", func(t *testing.T) {
		c := NewCollection()
		seen := map[ID]bool{}
		for range 50 {
			added := mustAdd(t, c, day, "same text")
			assert.False(t, seen[added.ID], "duplicate id %s", added.ID)
			seen[added.ID] = true
		}
	})

	t.Run("rejects blank text without changing state", func(t *testing.T) {
		c := NewCollection()

		_, err := c.Add(day, Draft{Text: "   "}, fixedNow)
		require.ErrorIs(t, err, ErrEmptyText)
		assert.Equal(t, 0, c.Len())
		assert.False(t, c.Has(day))
	})
}

func TestCollection_Edit(t *testing.T) {
	c := NewCollection()
	a := mustAdd(t, c, day, "draft report")

	ok, err := c.Edit(day, a.ID, Patch{Text: "final report", Time: "10:00", Priority: PriorityHigh, Notes: "send to Abraham"})
	require.NoError(t, err)
	require.True(t, ok)

	got, found := c.Get(day, a.ID)
	require.True(t, found)
	assert.Equal(t, "final report", got.Text)
	assert.Equal(t, PriorityHigh, got.Priority)
	assert.Equal(t, a.Created, got.Created, "created never changes")

	ok, err = c.Edit(day, "missing", Patch{Text: "x"})
	require.NoError(t, err)
	assert.False(t, ok, "unknown identity is a no-op")

	_, err = c.Edit(day, a.ID, Patch{Text: ""})
	require.ErrorIs(t, err, ErrEmptyText)
	got, _ = c.Get(day, a.ID)
	assert.Equal(t, "final report", got.Text)
}

func TestCollection_ToggleDoneIsItsOwnInverse(t *testing.T) {
	c := NewCollection()
	a := mustAdd(t, c, day, "water plants")

	first, ok := c.ToggleDone(day, a.ID)
	require.True(t, ok)
	assert.True(t, first.Done)

	second, ok := c.ToggleDone(day, a.ID)
	require.True(t, ok)
	assert.Equal(t, a.Done, second.Done)

	_, ok = c.ToggleDone(day, "missing")
	assert.False(t, ok)
}

func TestCollection_Delete(t *testing.T) {
	c := NewCollection()
	a := mustAdd(t, c, day, "one")
	b := mustAdd(t, c, day, "two")

	require.True(t, c.Delete(day, a.ID))
	for got := range c.Filter(day, "") {
		assert.NotEqual(t, a.ID, got.ID)
	}
	assert.True(t, c.Has(day))

	require.True(t, c.Delete(day, b.ID))
	assert.False(t, c.Has(day), "empty group key is removed")
	assert.NotContains(t, c.Groups(), day)

	assert.False(t, c.Delete(day, b.ID))
}

func TestCollection_Filter(t *testing.T) {
	c := NewCollection()
	mustAdd(t, c, day, "Buy milk")
	_, err := c.Add(day, Draft{Text: "Call Jonas", Notes: "about the MILK order"}, fixedNow)
	require.NoError(t, err)
	mustAdd(t, c, day, "Gym")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps stored order", query: "", want: []string{"Buy milk", "Call Jonas", "Gym"}},
		{name: "case insensitive text match", query: "MILK", want: []string{"Buy milk", "Call Jonas"}},
		{name: "notes match", query: "order", want: []string{"Call Jonas"}},
		{name: "no match", query: "zzz", want: []string{}},
		{name: "whitespace is trimmed", query: "  gym ", want: []string{"Gym"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(slices.Collect(c.Filter(day, tt.query)))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("sequence is restartable", func(t *testing.T) {
		seq := c.Filter(day, "milk")
		first := slices.Collect(seq)
		second := slices.Collect(seq)
		assert.Equal(t, first, second)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		n := 0
		for range c.Filter(day, "") {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})
}

func TestCollection_ClearCompleted(t *testing.T) {
	c := NewCollection()
	for i, text := range []string{"a", "b", "c", "d", "e"} {
		added := mustAdd(t, c, day, text)
		if i < 3 {
			c.ToggleDone(day, added.ID)
		}
	}
	done := mustAdd(t, c, "2026-10-19", "only done")
	c.ToggleDone("2026-10-19", done.ID)

	removed := c.ClearCompleted()
	assert.Equal(t, 4, removed)

	remaining := slices.Collect(c.Filter(day, ""))
	require.Len(t, remaining, 2)
	for _, r := range remaining {
		assert.False(t, r.Done)
	}
	assert.False(t, c.Has("2026-10-19"))

	assert.Equal(t, 0, c.ClearCompleted(), "second pass has nothing to clear")
}

func TestCollection_Keys(t *testing.T) {
	c := NewCollection()
	mustAdd(t, c, "2026-10-19", "x")
	mustAdd(t, c, "2026-10-01", "y")
	mustAdd(t, c, "2026-11-02", "z")

	keys, err := c.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-01", "2026-10-19", "2026-11-02"}, keys)

	keys, err = c.Keys("2026-10-*")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-01", "2026-10-19"}, keys)

	_, err = c.Keys("2026-[")
	assert.Error(t, err)
}

func TestCollection_StatsAndHistory(t *testing.T) {
	c := NewCollection()
	a := mustAdd(t, c, "2026-10-17", "older")
	mustAdd(t, c, "2026-10-18", "newer 1")
	mustAdd(t, c, "2026-10-18", "newer 2")
	c.ToggleDone("2026-10-17", a.ID)

	assert.Equal(t, Stats{Done: 1, Undone: 2, Total: 3, Percent: 33}, c.Stats())
	assert.Equal(t, Stats{}, NewCollection().Stats())

	h := c.History(2)
	require.Len(t, h, 2)
	assert.Equal(t, "2026-10-18", h[0].Group)
	assert.Equal(t, "newer 1", h[0].Task.Text)
	assert.Equal(t, "newer 2", h[1].Task.Text)

	assert.Len(t, c.History(0), 3)
}

func TestCollection_CloneDoesNotAlias(t *testing.T) {
	c := NewCollection()
	a := mustAdd(t, c, day, "original")

	snap := c.Clone()
	c.ToggleDone(day, a.ID)

	got, _ := snap.Get(day, a.ID)
	assert.False(t, got.Done)

	groups := c.Groups()
	groups[day][0].Text = "mutated copy"
	got, _ = c.Get(day, a.ID)
	assert.Equal(t, "original", got.Text)
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("high"))
	assert.Equal(t, PriorityLow, ParsePriority(" LOW "))
	assert.Equal(t, PriorityNormal, ParsePriority("urgent"))
	assert.Equal(t, PriorityNormal, ParsePriority(""))
}

func TestCollection_Insert(t *testing.T) {
	c := NewCollection()
	existing := mustAdd(t, c, day, "already here")

	kept, ok := c.Insert("2026-10-19", Task{ID: "imported-1", Text: " from export ", Created: "2026-01-01T00:00:00Z", Done: true}, fixedNow)
	require.True(t, ok)
	assert.Equal(t, ID("imported-1"), kept.ID)
	assert.Equal(t, "from export", kept.Text)
	assert.Equal(t, "2026-01-01T00:00:00Z", kept.Created)
	assert.True(t, kept.Done)

	fresh, ok := c.Insert(day, Task{Text: "no id"}, fixedNow)
	require.True(t, ok)
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, CreatedStamp(fixedNow), fresh.Created)

	_, ok = c.Insert(day, Task{ID: existing.ID, Text: "clash"}, fixedNow)
	assert.False(t, ok)
	_, ok = c.Insert(day, Task{ID: "imported-1", Text: "clash in another group"}, fixedNow)
	assert.False(t, ok)
	_, ok = c.Insert(day, Task{Text: "   "}, fixedNow)
	assert.False(t, ok)

	assert.Equal(t, 3, c.Len())
}
