package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"prism/internal/config"
)

type SettingsService struct {
	configPath string
	logger     *slog.Logger

	mu                sync.RWMutex
	settings          config.Settings
	onWallpaperChange func(path string)
}

func NewSettingsService(configPath string, settings config.Settings, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{configPath: configPath, settings: settings, logger: logger}
}

// OnWallpaperChange registers fn to run after the wallpaper path changes.
func (s *SettingsService) OnWallpaperChange(fn func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWallpaperChange = fn
}

func (s *SettingsService) GetSettings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *SettingsService) SetWallpaperPath(path string) (config.Settings, error) {
	cleaned, err := normalizePath(path)
	if err != nil {
		return config.Settings{}, err
	}

	s.mu.Lock()
	next := s.settings
	next.WallpaperPath = cleaned
	if err := config.Save(s.configPath, next); err != nil {
		s.mu.Unlock()
		return config.Settings{}, err
	}
	s.settings = next
	callback := s.onWallpaperChange
	s.mu.Unlock()

	s.logger.Info("wallpaper path changed", "path", cleaned)
	if callback != nil {
		callback(cleaned)
	}

	return next, nil
}

// Reload re-reads the config file, keeping the current settings on error.
func (s *SettingsService) Reload() (config.Settings, error) {
	loaded, err := config.Load(s.configPath)
	if err != nil {
		return config.Settings{}, err
	}

	s.mu.Lock()
	previousPath := s.settings.WallpaperPath
	s.settings = loaded
	callback := s.onWallpaperChange
	s.mu.Unlock()

	if callback != nil && loaded.WallpaperPath != "" && loaded.WallpaperPath != previousPath {
		callback(loaded.WallpaperPath)
	}

	return loaded, nil
}

func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	return filepath.Clean(absPath), nil
}
