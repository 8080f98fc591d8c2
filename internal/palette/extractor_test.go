package palette

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"prism/internal/ansi"
	"prism/internal/oklch"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadrantImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	fillRect(img, image.Rect(0, 0, 128, 128), color.NRGBA{R: 198, G: 48, B: 59, A: 255})
	fillRect(img, image.Rect(128, 0, 256, 128), color.NRGBA{R: 24, G: 144, B: 242, A: 255})
	fillRect(img, image.Rect(0, 128, 128, 256), color.NRGBA{R: 242, G: 188, B: 12, A: 255})
	fillRect(img, image.Rect(128, 128, 256, 256), color.NRGBA{R: 36, G: 184, B: 92, A: 255})
	return img
}

func TestExtractFromImageProducesSwatches(t *testing.T) {
	t.Parallel()

	extraction, err := NewExtractor().ExtractFromImage(quadrantImage(), ExtractOptions{
		CandidateCount:   12,
		MaxDimension:     180,
		Quality:          1,
		QuantizationBits: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 256, extraction.SourceWidth)
	assert.Equal(t, 256, extraction.SourceHeight)
	assert.LessOrEqual(t, extraction.SampleWidth, 180)
	assert.LessOrEqual(t, extraction.SampleHeight, 180)
	require.GreaterOrEqual(t, len(extraction.Swatches), 4)

	for index, swatch := range extraction.Swatches {
		assert.True(t, oklch.IsValidHex(swatch.Hex), swatch.Hex)
		assert.Positive(t, swatch.Population)
		if index > 0 {
			assert.LessOrEqual(t, swatch.Population, extraction.Swatches[index-1].Population)
		}
	}
}

func TestExtractedSwatchesFeedTheAssigner(t *testing.T) {
	t.Parallel()

	// No downscaling, so each quadrant stays a single quantized bin.
	extraction, err := NewExtractor().ExtractFromImage(quadrantImage(), ExtractOptions{MaxDimension: 1024, Quality: 1})
	require.NoError(t, err)
	require.Len(t, extraction.Swatches, 4)
	for _, swatch := range extraction.Swatches {
		assert.Equal(t, 128*128, swatch.Population)
	}

	result := ansi.NewAssigner(ansi.DefaultOptions()).Assign(extraction.Swatches)
	assert.Equal(t, "#1c94f4", result.Slot(ansi.SlotBlue).Hex)

	natural := 0
	for _, slot := range ansi.Slots {
		if result.Slot(slot).Source == ansi.SourceNatural {
			natural++
		}
	}
	assert.Equal(t, 4, natural)
}

func TestExtractFromImageRejectsTransparentImages(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))

	_, err := NewExtractor().ExtractFromImage(img, ExtractOptions{})
	assert.Error(t, err)
}

func TestExtractFromImageRejectsEmptyImages(t *testing.T) {
	t.Parallel()

	_, err := NewExtractor().ExtractFromImage(image.NewNRGBA(image.Rectangle{}), ExtractOptions{})
	assert.Error(t, err)
}

func TestExtractFromPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wallpaper.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, quadrantImage()))
	require.NoError(t, file.Close())

	extraction, err := NewExtractor().ExtractFromPath(path, DefaultExtractOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, extraction.Swatches)

	_, err = NewExtractor().ExtractFromPath(filepath.Join(t.TempDir(), "missing.png"), DefaultExtractOptions())
	assert.Error(t, err)
}

func TestDeduplicateSwatchesMergesPopulation(t *testing.T) {
	t.Parallel()

	swatches := []swatch{
		{color: colorFromHex(t, "#c6303b"), population: 10},
		{color: colorFromHex(t, "#c7313c"), population: 5},
		{color: colorFromHex(t, "#1890f2"), population: 8},
	}

	unique := deduplicateSwatches(swatches, 0.02)
	require.Len(t, unique, 2)
	assert.Equal(t, 15, unique[0].population)
	assert.Equal(t, 8, unique[1].population)
}

func TestNormalizeExtractOptionsFillsDefaults(t *testing.T) {
	t.Parallel()

	normalized := NormalizeExtractOptions(ExtractOptions{MaxDimension: 5000, QuantizationBits: 9})
	assert.Equal(t, 1024, normalized.MaxDimension)
	assert.Equal(t, 6, normalized.QuantizationBits)
	assert.Equal(t, defaultExtractOptions.CandidateCount, normalized.CandidateCount)
	assert.GreaterOrEqual(t, normalized.WorkerCount, 1)
}

func fillRect(img *image.NRGBA, rect image.Rectangle, fill color.NRGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
}

func colorFromHex(t *testing.T, hex string) colorful.Color {
	t.Helper()

	parsed, err := colorful.Hex(hex)
	require.NoError(t, err)
	return parsed
}
