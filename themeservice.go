package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"prism/internal/ansi"
	"prism/internal/config"
	"prism/internal/derive"
	"prism/internal/palette"
	"prism/internal/themes"
)

const EventWallpaperPalette = "theme:wallpaper-palette"

const maxPaletteCacheEntries = 32

type Emitter func(eventName string, payload any)

// WallpaperPalette is everything generated from one wallpaper image.
type WallpaperPalette struct {
	Path        string             `json:"path"`
	Extraction  palette.Extraction `json:"extraction"`
	Assignment  ansi.Result        `json:"assignment"`
	Colors      derive.ThemeColors `json:"colors"`
	IsLight     bool               `json:"isLight"`
	GeneratedAt string             `json:"generatedAt"`
}

type paletteCacheEntry struct {
	palette           WallpaperPalette
	sourceModUnixNano int64
	cachedAt          time.Time
}

type ThemeService struct {
	settings  func() config.Settings
	themes    *themes.Repository
	extractor *palette.Extractor
	logger    *slog.Logger

	cacheMu sync.RWMutex
	cache   map[string]paletteCacheEntry

	emitMu sync.Mutex
	emit   Emitter
}

func NewThemeService(settings func() config.Settings, repository *themes.Repository, logger *slog.Logger) *ThemeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeService{
		settings:  settings,
		themes:    repository,
		extractor: palette.NewExtractor(),
		logger:    logger,
		cache:     make(map[string]paletteCacheEntry),
	}
}

func (s *ThemeService) SetEmitter(emitter Emitter) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.emit = emitter
}

func (s *ThemeService) DefaultColors() derive.ThemeColors {
	return derive.DefaultThemeColors()
}

func (s *ThemeService) DeriveAllColors(base derive.BaseColors, locks derive.ColorLockState, current *derive.ThemeColors) derive.ThemeColors {
	return derive.NewDeriver(s.settings().DeriveOptions()).Derive(base, locks, current)
}

func (s *ThemeService) AssignSwatches(swatches []ansi.SwatchInput) ansi.Result {
	return ansi.NewAssigner(s.settings().AssignOptions()).Assign(swatches)
}

func (s *ThemeService) IsLightTheme(background string, foreground string) bool {
	return derive.IsLightTheme(background, foreground)
}

// GenerateFromWallpaper extracts swatches from the image at path, assigns
// them to slots and derives a full theme. Results are cached per path until
// the file's modification time changes.
func (s *ThemeService) GenerateFromWallpaper(path string) (WallpaperPalette, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return WallpaperPalette{}, errors.New("wallpaper path is required")
	}

	resolvedPath, err := filepath.Abs(trimmedPath)
	if err != nil {
		return WallpaperPalette{}, fmt.Errorf("resolve wallpaper path: %w", err)
	}

	sourceInfo, err := os.Stat(resolvedPath)
	if err != nil {
		return WallpaperPalette{}, errors.New("wallpaper not found")
	}
	if sourceInfo.IsDir() {
		return WallpaperPalette{}, errors.New("wallpaper path is a directory")
	}
	sourceModUnixNano := sourceInfo.ModTime().UnixNano()

	settings := s.settings()
	cacheKey := buildPaletteCacheKey(resolvedPath, settings)
	if cached, ok := s.loadCachedPalette(cacheKey, sourceModUnixNano); ok {
		return cached, nil
	}

	extraction, err := s.extractor.ExtractFromPath(resolvedPath, settings.ExtractOptions())
	if err != nil {
		return WallpaperPalette{}, fmt.Errorf("generate wallpaper palette: %w", err)
	}

	assignment := ansi.NewAssigner(settings.AssignOptions()).Assign(extraction.Swatches)
	base := palette.BuildBaseColors(extraction.Swatches, assignment.Colors())
	colors := derive.NewDeriver(settings.DeriveOptions()).Derive(base, nil, nil)

	generated := WallpaperPalette{
		Path:        resolvedPath,
		Extraction:  extraction,
		Assignment:  assignment,
		Colors:      colors,
		IsLight:     derive.IsLightTheme(colors.Background, colors.Foreground),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	s.storeCachedPalette(cacheKey, sourceModUnixNano, generated)

	return generated, nil
}

// HandleWallpaperChange regenerates the palette for path and pushes it to the
// frontend. Failures are logged; the previous palette stays in place.
func (s *ThemeService) HandleWallpaperChange(path string) {
	generated, err := s.GenerateFromWallpaper(path)
	if err != nil {
		s.logger.Warn("wallpaper palette generation failed", "path", path, "err", err)
		return
	}

	s.logger.Info("wallpaper palette updated", "path", generated.Path, "swatches", len(generated.Extraction.Swatches))

	s.emitMu.Lock()
	emitter := s.emit
	s.emitMu.Unlock()

	if emitter != nil {
		emitter(EventWallpaperPalette, generated)
	}
}

func (s *ThemeService) ListThemes() ([]themes.Theme, error) {
	return s.themes.List(context.Background())
}

func (s *ThemeService) LoadTheme(name string) (themes.Theme, error) {
	theme, err := s.themes.Get(context.Background(), name)
	if errors.Is(err, themes.ErrThemeNotFound) {
		return themes.Theme{}, fmt.Errorf("theme %q does not exist", strings.TrimSpace(name))
	}
	return theme, err
}

// SaveTheme stores theme under its name, replacing any theme with the same
// name. Colors are re-derived first so derived keys stay consistent with the
// base colors and locks.
func (s *ThemeService) SaveTheme(theme themes.Theme) (themes.Theme, error) {
	current := theme.Colors
	theme.Colors = s.DeriveAllColors(current.Base(), theme.Locks, &current)

	saved, err := s.themes.Save(context.Background(), theme)
	if err != nil {
		return themes.Theme{}, err
	}

	s.logger.Debug("theme saved", "name", saved.Name)
	return saved, nil
}

func (s *ThemeService) DeleteTheme(name string) error {
	err := s.themes.Delete(context.Background(), name)
	if errors.Is(err, themes.ErrThemeNotFound) {
		return fmt.Errorf("theme %q does not exist", strings.TrimSpace(name))
	}
	return err
}

func buildPaletteCacheKey(path string, settings config.Settings) string {
	extract := settings.ExtractOptions()
	assign := settings.AssignOptions()
	deriveOptions := settings.DeriveOptions()

	return fmt.Sprintf(
		"%s|md:%d|q:%d|cand:%d|qb:%d|at:%d|mind:%0.4f|w:%d|minc:%0.4f|maxh:%0.4f|sc:%0.4f|bb:%0.4f|sb:%0.4f|bd:%0.4f",
		path,
		extract.MaxDimension,
		extract.Quality,
		extract.CandidateCount,
		extract.QuantizationBits,
		extract.AlphaThreshold,
		extract.MinDelta,
		extract.WorkerCount,
		assign.MinReliableChroma,
		assign.MaxHueDistance,
		assign.SynthesisChromaFactor,
		deriveOptions.BrightBoost,
		deriveOptions.SelectionBlend,
		deriveOptions.BorderBlend,
	)
}

func (s *ThemeService) loadCachedPalette(cacheKey string, sourceModUnixNano int64) (WallpaperPalette, bool) {
	s.cacheMu.RLock()
	entry, ok := s.cache[cacheKey]
	s.cacheMu.RUnlock()
	if !ok || entry.sourceModUnixNano != sourceModUnixNano {
		return WallpaperPalette{}, false
	}

	return entry.palette, true
}

func (s *ThemeService) storeCachedPalette(cacheKey string, sourceModUnixNano int64, generated WallpaperPalette) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[cacheKey] = paletteCacheEntry{
		palette:           generated,
		sourceModUnixNano: sourceModUnixNano,
		cachedAt:          time.Now(),
	}

	if len(s.cache) <= maxPaletteCacheEntries {
		return
	}

	oldestKey := ""
	oldestAt := time.Now()
	for key, entry := range s.cache {
		if oldestKey == "" || entry.cachedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.cachedAt
		}
	}

	if oldestKey != "" {
		delete(s.cache, oldestKey)
	}
}
