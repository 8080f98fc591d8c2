package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	BaseDir    string
	DBPath     string
	ConfigPath string
	CacheDir   string
}

// ResolvePaths locates (and creates) the per-user directories for appSlug.
func ResolvePaths(appSlug string) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user cache dir: %w", err)
	}

	paths := Paths{
		BaseDir:    filepath.Join(configDir, appSlug),
		DBPath:     filepath.Join(configDir, appSlug, "themes.db"),
		ConfigPath: filepath.Join(configDir, appSlug, "config.yaml"),
		CacheDir:   filepath.Join(cacheRoot, appSlug),
	}

	for _, dir := range []string{paths.BaseDir, paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return paths, nil
}
