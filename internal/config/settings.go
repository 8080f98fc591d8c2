// Package config resolves on-disk locations and loads user settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"prism/internal/ansi"
	"prism/internal/derive"
	"prism/internal/palette"
)

const (
	KeyBrightBoost           = "derive.bright_boost"
	KeySelectionBlend        = "derive.selection_blend"
	KeyBorderBlend           = "derive.border_blend"
	KeyMinReliableChroma     = "assign.min_reliable_chroma"
	KeyMaxHueDistance        = "assign.max_hue_distance"
	KeySynthesisChromaFactor = "assign.synthesis_chroma_factor"
	KeyExtractMaxDimension   = "extract.max_dimension"
	KeyExtractCandidateCount = "extract.candidate_count"
	KeyWallpaperPath         = "wallpaper.path"
	KeyLogLevel              = "log.level"

	envPrefix = "PRISM"
)

// Settings is the resolved user configuration.
type Settings struct {
	Derive        derive.Options         `json:"derive"`
	Assign        ansi.Options           `json:"assign"`
	Extract       palette.ExtractOptions `json:"extract"`
	WallpaperPath string                 `json:"wallpaperPath"`
	LogLevel      string                 `json:"logLevel"`
}

// Load reads settings with the precedence defaults < file at path < PRISM_*
// environment variables. A missing or empty file is not an error.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, path); err != nil {
		return Settings{}, fmt.Errorf("load config: %w", err)
	}

	extract := palette.DefaultExtractOptions()
	extract.MaxDimension = v.GetInt(KeyExtractMaxDimension)
	extract.CandidateCount = v.GetInt(KeyExtractCandidateCount)

	return Settings{
		Derive: derive.Options{
			BrightBoost:    v.GetFloat64(KeyBrightBoost),
			SelectionBlend: v.GetFloat64(KeySelectionBlend),
			BorderBlend:    v.GetFloat64(KeyBorderBlend),
		},
		Assign: ansi.Options{
			MinReliableChroma:     v.GetFloat64(KeyMinReliableChroma),
			MaxHueDistance:        v.GetFloat64(KeyMaxHueDistance),
			SynthesisChromaFactor: v.GetFloat64(KeySynthesisChromaFactor),
		},
		Extract:       palette.NormalizeExtractOptions(extract),
		WallpaperPath: strings.TrimSpace(v.GetString(KeyWallpaperPath)),
		LogLevel:      v.GetString(KeyLogLevel),
	}, nil
}

// Save writes settings to path as yaml, creating its directory if needed.
func Save(path string, settings Settings) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set(KeyBrightBoost, settings.Derive.BrightBoost)
	v.Set(KeySelectionBlend, settings.Derive.SelectionBlend)
	v.Set(KeyBorderBlend, settings.Derive.BorderBlend)
	v.Set(KeyMinReliableChroma, settings.Assign.MinReliableChroma)
	v.Set(KeyMaxHueDistance, settings.Assign.MaxHueDistance)
	v.Set(KeySynthesisChromaFactor, settings.Assign.SynthesisChromaFactor)
	v.Set(KeyExtractMaxDimension, settings.Extract.MaxDimension)
	v.Set(KeyExtractCandidateCount, settings.Extract.CandidateCount)
	v.Set(KeyWallpaperPath, settings.WallpaperPath)
	v.Set(KeyLogLevel, settings.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (s Settings) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func setDefaults(v *viper.Viper) {
	deriveDefaults := derive.DefaultOptions()
	assignDefaults := ansi.DefaultOptions()
	extractDefaults := palette.DefaultExtractOptions()

	v.SetDefault(KeyBrightBoost, deriveDefaults.BrightBoost)
	v.SetDefault(KeySelectionBlend, deriveDefaults.SelectionBlend)
	v.SetDefault(KeyBorderBlend, deriveDefaults.BorderBlend)
	v.SetDefault(KeyMinReliableChroma, assignDefaults.MinReliableChroma)
	v.SetDefault(KeyMaxHueDistance, assignDefaults.MaxHueDistance)
	v.SetDefault(KeySynthesisChromaFactor, assignDefaults.SynthesisChromaFactor)
	v.SetDefault(KeyExtractMaxDimension, extractDefaults.MaxDimension)
	v.SetDefault(KeyExtractCandidateCount, extractDefaults.CandidateCount)
	v.SetDefault(KeyWallpaperPath, "")
	v.SetDefault(KeyLogLevel, "info")
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (s Settings) DeriveOptions() derive.Options {
	return s.Derive
}

func (s Settings) AssignOptions() ansi.Options {
	return s.Assign
}

func (s Settings) ExtractOptions() palette.ExtractOptions {
	return s.Extract
}
