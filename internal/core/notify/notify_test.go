package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue(2)

	_, ok := q.Latest()
	assert.False(t, ok)

	q.Push(Notification{Level: LevelInfo, Message: "one"})
	q.Push(Notification{Level: LevelWarning, Message: "two"})
	q.Push(Notification{Level: LevelError, Message: "three"})

	all := q.All()
	require.Len(t, all, 2)
	assert.Equal(t, "two", all[0].Message)

	latest, ok := q.Latest()
	require.True(t, ok)
	assert.Equal(t, LevelError, latest.Level)
}
