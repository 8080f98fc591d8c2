package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism/internal/config"
	"prism/internal/db"
	"prism/internal/derive"
	"prism/internal/oklch"
	"prism/internal/themes"
)

func newThemeServiceForTest(t *testing.T) *ThemeService {
	t.Helper()

	database, err := db.Bootstrap(context.Background(), filepath.Join(t.TempDir(), "themes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	settings, err := config.Load("")
	require.NoError(t, err)

	return NewThemeService(func() config.Settings { return settings }, themes.NewRepository(database), nil)
}

func writeWallpaper(t *testing.T, path string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	fills := []color.NRGBA{
		{R: 230, G: 40, B: 40, A: 255},
		{R: 40, G: 200, B: 60, A: 255},
		{R: 30, G: 150, B: 240, A: 255},
		{R: 20, G: 22, B: 34, A: 255},
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			quadrant := (y/32)*2 + x/32
			img.SetNRGBA(x, y, fills[quadrant])
		}
	}

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func TestGenerateFromWallpaperBuildsFullTheme(t *testing.T) {
	service := newThemeServiceForTest(t)
	path := filepath.Join(t.TempDir(), "wall.png")
	writeWallpaper(t, path)

	generated, err := service.GenerateFromWallpaper(path)
	require.NoError(t, err)

	assert.Equal(t, path, generated.Path)
	assert.NotEmpty(t, generated.Extraction.Swatches)
	for _, key := range derive.AllKeys {
		assert.True(t, oklch.IsValidHex(generated.Colors.Get(key)), string(key))
	}
	assert.Equal(t, generated.Colors.Blue, generated.Colors.Accent)
	assert.Equal(t, derive.IsLightTheme(generated.Colors.Background, generated.Colors.Foreground), generated.IsLight)
}

func TestGenerateFromWallpaperUsesCacheUntilFileChanges(t *testing.T) {
	service := newThemeServiceForTest(t)
	path := filepath.Join(t.TempDir(), "wall.png")
	writeWallpaper(t, path)

	first, err := service.GenerateFromWallpaper(path)
	require.NoError(t, err)
	second, err := service.GenerateFromWallpaper(path)
	require.NoError(t, err)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	_, err = service.GenerateFromWallpaper(path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)

	service.cacheMu.RLock()
	defer service.cacheMu.RUnlock()
	require.Len(t, service.cache, 1)
	for _, entry := range service.cache {
		assert.Equal(t, info.ModTime().UnixNano(), entry.sourceModUnixNano)
	}
}

func TestGenerateFromWallpaperRejectsBadPaths(t *testing.T) {
	service := newThemeServiceForTest(t)

	_, err := service.GenerateFromWallpaper("   ")
	assert.Error(t, err)

	_, err = service.GenerateFromWallpaper(filepath.Join(t.TempDir(), "missing.png"))
	assert.EqualError(t, err, "wallpaper not found")

	_, err = service.GenerateFromWallpaper(t.TempDir())
	assert.Error(t, err)
}

func TestPaletteCacheEvictsOldestEntry(t *testing.T) {
	service := newThemeServiceForTest(t)

	for i := 0; i <= maxPaletteCacheEntries; i++ {
		service.storeCachedPalette(fmt.Sprintf("key-%d", i), int64(i), WallpaperPalette{})
	}

	assert.Len(t, service.cache, maxPaletteCacheEntries)
}

func TestHandleWallpaperChangeEmitsPalette(t *testing.T) {
	service := newThemeServiceForTest(t)
	path := filepath.Join(t.TempDir(), "wall.png")
	writeWallpaper(t, path)

	var events []string
	var payloads []any
	service.SetEmitter(func(eventName string, payload any) {
		events = append(events, eventName)
		payloads = append(payloads, payload)
	})

	service.HandleWallpaperChange(path)
	service.HandleWallpaperChange(filepath.Join(t.TempDir(), "missing.png"))

	require.Equal(t, []string{EventWallpaperPalette}, events)
	generated, ok := payloads[0].(WallpaperPalette)
	require.True(t, ok)
	assert.Equal(t, path, generated.Path)
}

func TestSaveThemeRederivesUnlockedKeys(t *testing.T) {
	service := newThemeServiceForTest(t)

	colors := derive.DefaultThemeColors()
	colors.Accent = "#ff00ff"
	colors.Border = "#00ff00"

	saved, err := service.SaveTheme(themes.Theme{
		Name:   "Night",
		Colors: colors,
		Locks:  derive.ColorLockState{derive.KeyBorder: true},
	})
	require.NoError(t, err)

	assert.Equal(t, colors.Blue, saved.Colors.Accent)
	assert.Equal(t, "#00ff00", saved.Colors.Border)

	loaded, err := service.LoadTheme("night")
	require.NoError(t, err)
	assert.Equal(t, saved.Colors, loaded.Colors)

	list, err := service.ListThemes()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Night", list[0].Name)
}

func TestLoadAndDeleteMissingTheme(t *testing.T) {
	service := newThemeServiceForTest(t)

	_, err := service.LoadTheme("ghost")
	assert.EqualError(t, err, `theme "ghost" does not exist`)

	err = service.DeleteTheme("ghost")
	assert.EqualError(t, err, `theme "ghost" does not exist`)
}

func TestAssignAndDeriveUseSettings(t *testing.T) {
	service := newThemeServiceForTest(t)

	result := service.AssignSwatches(nil)
	for _, slot := range result.Slots {
		assert.True(t, oklch.IsValidHex(slot.Hex))
	}

	colors := service.DeriveAllColors(derive.DefaultBaseColors(), nil, nil)
	assert.Equal(t, derive.DefaultThemeColors(), colors)
	assert.False(t, service.IsLightTheme(colors.Background, colors.Foreground))
}
