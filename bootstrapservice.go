package main

import (
	"prism/internal/config"
	"prism/internal/derive"
	"prism/internal/themes"
)

const defaultThemeModePreferenceAtBootup = "system"

type StartupSnapshot struct {
	Settings            config.Settings    `json:"settings"`
	Themes              []themes.Theme     `json:"themes"`
	DefaultColors       derive.ThemeColors `json:"defaultColors"`
	Wallpaper           *WallpaperPalette  `json:"wallpaper,omitempty"`
	WallpaperError      string             `json:"wallpaperError,omitempty"`
	ThemeModePreference string             `json:"themeModePreference"`
}

type BootstrapService struct {
	settings *SettingsService
	themes   *ThemeService
}

func NewBootstrapService(settingsService *SettingsService, themeService *ThemeService) *BootstrapService {
	return &BootstrapService{settings: settingsService, themes: themeService}
}

// GetInitialState gathers what the frontend needs on first paint. A broken
// wallpaper does not fail startup; its error is reported in the snapshot.
func (s *BootstrapService) GetInitialState() (StartupSnapshot, error) {
	settings := s.settings.GetSettings()

	savedThemes, err := s.themes.ListThemes()
	if err != nil {
		return StartupSnapshot{}, err
	}

	snapshot := StartupSnapshot{
		Settings:            settings,
		Themes:              savedThemes,
		DefaultColors:       derive.DefaultThemeColors(),
		ThemeModePreference: defaultThemeModePreferenceAtBootup,
	}

	if settings.WallpaperPath != "" {
		generated, err := s.themes.GenerateFromWallpaper(settings.WallpaperPath)
		if err != nil {
			snapshot.WallpaperError = err.Error()
		} else {
			snapshot.Wallpaper = &generated
		}
	}

	return snapshot, nil
}
