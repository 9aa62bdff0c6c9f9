package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Records A, B, C in that order; the filter shows only B and C. Acting on visible
// position 0 must reach B, never A.
func TestView_ResolveAfterFilter(t *testing.T) {
	setup := func(t *testing.T) (*Collection, Task, Task, Task) {
		t.Helper()
		c := NewCollection()
		a := mustAdd(t, c, day, "A: laundry")
		b, err := c.Add(day, Draft{Text: "B: pay rent", Notes: "visible"}, fixedNow)
		require.NoError(t, err)
		cc, err := c.Add(day, Draft{Text: "C: call mom", Notes: "visible"}, fixedNow)
		require.NoError(t, err)
		return c, a, b, cc
	}

	t.Run("delete", func(t *testing.T) {
		c, a, b, cc := setup(t)
		v := c.View(day, "visible")
		require.Equal(t, 2, v.Len())

		id, err := v.Resolve(0)
		require.NoError(t, err)
		require.True(t, c.Delete(day, id))

		_, hasA := c.Get(day, a.ID)
		_, hasB := c.Get(day, b.ID)
		_, hasC := c.Get(day, cc.ID)
		assert.True(t, hasA)
		assert.False(t, hasB)
		assert.True(t, hasC)
	})

	t.Run("toggle", func(t *testing.T) {
		c, a, _, cc := setup(t)
		v := c.View(day, "visible")

		id, err := v.Resolve(1)
		require.NoError(t, err)
		c.ToggleDone(day, id)

		gotA, _ := c.Get(day, a.ID)
		gotC, _ := c.Get(day, cc.ID)
		assert.False(t, gotA.Done)
		assert.True(t, gotC.Done)
	})

	t.Run("edit", func(t *testing.T) {
		c, a, b, _ := setup(t)
		v := c.View(day, "visible")

		id, err := v.Resolve(0)
		require.NoError(t, err)
		ok, err := c.Edit(day, id, Patch{Text: "B: pay rent today"})
		require.NoError(t, err)
		require.True(t, ok)

		gotA, _ := c.Get(day, a.ID)
		gotB, _ := c.Get(day, b.ID)
		assert.Equal(t, "A: laundry", gotA.Text)
		assert.Equal(t, "B: pay rent today", gotB.Text)
	})

	t.Run("out of range", func(t *testing.T) {
		c, _, _, _ := setup(t)
		v := c.View(day, "visible")

		_, err := v.Resolve(2)
		require.ErrorIs(t, err, ErrStaleView)
		_, err = v.Resolve(-1)
		require.ErrorIs(t, err, ErrStaleView)
	})

	t.Run("stale view after delete is a no-op", func(t *testing.T) {
		c, _, b, _ := setup(t)
		v := c.View(day, "visible")
		require.True(t, c.Delete(day, b.ID))

		id, err := v.Resolve(0)
		require.NoError(t, err)
		assert.False(t, c.Delete(day, id))
		assert.Equal(t, 2, c.Len())
	})
}
