package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism/internal/ansi"
	"prism/internal/derive"
	"prism/internal/oklch"
)

func TestBuildBaseColorsDarkWallpaper(t *testing.T) {
	swatches := []ansi.SwatchInput{
		{Hex: "#ff0000", Population: 100},
		{Hex: "#102030", Population: 900},
	}
	slots := ansi.AssignSwatchesToAnsiSlots(swatches)

	base := BuildBaseColors(swatches, slots)

	background, ok := oklch.FromHex(base.Background)
	require.True(t, ok)
	foreground, ok := oklch.FromHex(base.Foreground)
	require.True(t, ok)

	assert.LessOrEqual(t, background.L, 0.23)
	assert.InDelta(t, 0.88, foreground.L, 0.02)
	assert.False(t, derive.IsLightTheme(base.Background, base.Foreground))
	assert.Equal(t, slots.Get(ansi.SlotRed), base.Red)
	assert.Equal(t, slots.Get(ansi.SlotBlue), base.Blue)
}

func TestBuildBaseColorsLightWallpaper(t *testing.T) {
	swatches := []ansi.SwatchInput{{Hex: "#f0e8d8", Population: 500}}

	base := BuildBaseColors(swatches, ansi.AssignSwatchesToAnsiSlots(swatches))

	assert.True(t, derive.IsLightTheme(base.Background, base.Foreground))
	for _, value := range []string{base.Black, base.White, base.Red, base.Magenta} {
		assert.True(t, oklch.IsValidHex(value), value)
	}
}

func TestBuildBaseColorsWithoutSwatchesKeepsDefaultSurfaces(t *testing.T) {
	base := BuildBaseColors(nil, ansi.Colors{})
	defaults := derive.DefaultBaseColors()

	assert.Equal(t, defaults, base)
}
