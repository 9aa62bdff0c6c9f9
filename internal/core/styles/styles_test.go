package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorForString_Deterministic(t *testing.T) {
	for _, name := range []string{"Jonas", "Neo", "Abraham", "Jessica"} {
		assert.Equal(t, ColorForString(name), ColorForString(name))
	}
}

func TestThemes_AllResolvable(t *testing.T) {
	names := ThemeNames()
	require.Contains(t, names, DefaultTheme)

	for _, name := range names {
		p, ok := GetPalette(name)
		require.True(t, ok, name)
		SetTheme(p)
		assert.NotNil(t, ColorPool[len(ColorPool)-1], name)
		assert.NotNil(t, GlamourStyle().Document.Color, name)
	}

	SetTheme(themes[DefaultTheme])
}

func TestPriorityColor(t *testing.T) {
	assert.Equal(t, ColorError, PriorityColor("High"))
	assert.Equal(t, ColorWarning, PriorityColor("Normal"))
	assert.Equal(t, ColorMuted, PriorityColor("Low"))
}
