package oklch

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHexRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "#", "ff0000", "#fff", "#ff00000", "#gg0000", " #ff0000", "#ff0000 ", "0xff0000"} {
		_, ok := FromHex(input)
		assert.False(t, ok, "expected %q to be rejected", input)
	}
}

func TestFromHexIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	upper, ok := FromHex("#7AA2F7")
	require.True(t, ok)
	lower, ok := FromHex("#7aa2f7")
	require.True(t, ok)

	assert.Equal(t, lower, upper)
}

func TestFromHexKnownValues(t *testing.T) {
	t.Parallel()

	red, ok := FromHex("#ff0000")
	require.True(t, ok)
	assert.InDelta(t, 0.628, red.L, 0.001)
	assert.InDelta(t, 0.2577, red.C, 0.001)
	assert.InDelta(t, 29.23, red.H, 0.05)

	blue, ok := FromHex("#0000ff")
	require.True(t, ok)
	assert.InDelta(t, 264.05, blue.H, 0.05)

	black, ok := FromHex("#000000")
	require.True(t, ok)
	assert.Equal(t, Color{}, black)

	white, ok := FromHex("#ffffff")
	require.True(t, ok)
	assert.InDelta(t, 1.0, white.L, 0.0001)
	assert.Less(t, white.C, 0.001)
}

func TestRoundTripWithinOneStep(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"#ff0000", "#00ff00", "#0000ff", "#808080", "#1a1b26", "#c0caf5", "#ffffff", "#000000", "#e0af68"} {
		c, ok := FromHex(input)
		require.True(t, ok, input)
		assertHexNear(t, input, c.Hex())
	}
}

func TestHexClipsOutOfGamut(t *testing.T) {
	t.Parallel()

	out := Color{L: 0.9, C: 0.4, H: 140}.Hex()
	assert.True(t, IsValidHex(out), out)

	assert.Equal(t, "#ffffff", Color{L: 1.5, C: 0, H: 0}.Hex())
	assert.Equal(t, "#000000", Color{L: 0, C: 0, H: 0}.Hex())
}

func TestNormalizeHex(t *testing.T) {
	t.Parallel()

	normalized, ok := NormalizeHex("#ABCDEF")
	require.True(t, ok)
	assert.Equal(t, "#abcdef", normalized)

	_, ok = NormalizeHex("abcdef")
	assert.False(t, ok)
}

func TestHueDistanceIsCircular(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 20.0, HueDistance(350, 10), 1e-9)
	assert.InDelta(t, 20.0, HueDistance(10, 350), 1e-9)
	assert.InDelta(t, 180.0, HueDistance(0, 180), 1e-9)
	assert.InDelta(t, 0.0, HueDistance(360, 0), 1e-9)
	assert.InDelta(t, 29.0, HueDistance(-1, 28), 1e-9)
}

func TestNormalizeHue(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, NormalizeHue(360), 1e-9)
	assert.InDelta(t, 350.0, NormalizeHue(-10), 1e-9)
	assert.InDelta(t, 30.0, NormalizeHue(750), 1e-9)
}

func assertHexNear(t *testing.T, expected string, actual string) {
	t.Helper()

	require.True(t, IsValidHex(actual), "invalid hex %q", actual)
	for i := 1; i < 7; i += 2 {
		want, err := strconv.ParseUint(expected[i:i+2], 16, 8)
		require.NoError(t, err)
		got, err := strconv.ParseUint(actual[i:i+2], 16, 8)
		require.NoError(t, err)
		assert.InDelta(t, float64(want), float64(got), 1, "expected %s, got %s", expected, actual)
	}
}
