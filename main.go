package main

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/wailsapp/wails/v3/pkg/application"

	"prism/internal/config"
	"prism/internal/db"
	"prism/internal/themes"
)

// Wails uses Go's `embed` package to embed the frontend files into the binary.
// Any files in the frontend/dist folder will be embedded into the binary and
// made available to the frontend.
// See https://pkg.go.dev/embed for more information.

//go:embed all:frontend/dist
var assets embed.FS

func init() {
	application.RegisterEvent[WallpaperPalette](EventWallpaperPalette)
}

func main() {
	if err := run(); err != nil {
		slog.Error("prism exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	paths, err := config.ResolvePaths("prism")
	if err != nil {
		return err
	}

	settings, err := config.Load(paths.ConfigPath)
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      settings.SlogLevel(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqliteDB, err := db.Bootstrap(ctx, paths.DBPath)
	if err != nil {
		return err
	}
	defer sqliteDB.Close()

	settingsService := NewSettingsService(paths.ConfigPath, settings, logger)
	themeService := NewThemeService(settingsService.GetSettings, themes.NewRepository(sqliteDB), logger)
	bootstrapService := NewBootstrapService(settingsService, themeService)
	wallpaperService := NewWallpaperService(func() string {
		return settingsService.GetSettings().WallpaperPath
	})

	app := application.New(application.Options{
		Name:        "Prism",
		Description: "Terminal color theme editor",
		Logger:      logger,
		Services: []application.Service{
			application.NewService(settingsService),
			application.NewService(themeService),
			application.NewService(bootstrapService),
			application.NewServiceWithOptions(wallpaperService, application.ServiceOptions{
				Route: "/wallpaper",
			}),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	themeService.SetEmitter(func(eventName string, payload any) {
		app.Event.Emit(eventName, payload)
	})

	watch := newWallpaperWatch(ctx, themeService.HandleWallpaperChange, logger)
	defer watch.Close()

	settingsService.OnWallpaperChange(func(path string) {
		if err := watch.Switch(path); err != nil {
			logger.Warn("wallpaper watcher disabled", "path", path, "err", err)
		}
		go themeService.HandleWallpaperChange(path)
	})

	if err := watch.Switch(settings.WallpaperPath); err != nil {
		logger.Warn("wallpaper watcher disabled", "path", settings.WallpaperPath, "err", err)
	}

	app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title: "Prism",
		Mac: application.MacWindow{
			InvisibleTitleBarHeight: 50,
			Backdrop:                application.MacBackdropTranslucent,
			TitleBar:                application.MacTitleBarHiddenInset,
		},
		BackgroundColour: application.NewRGB(26, 27, 38),
		URL:              "/",
	})

	return app.Run()
}
