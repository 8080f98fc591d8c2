package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// WallpaperService serves the configured wallpaper image so the frontend can
// show it next to the generated palette.
type WallpaperService struct {
	currentPath func() string
}

func NewWallpaperService(currentPath func() string) *WallpaperService {
	return &WallpaperService{currentPath: currentPath}
}

func (s *WallpaperService) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		rw.Header().Set("Allow", "GET, HEAD")
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resolvedPath, err := s.resolveWallpaperPath()
	if err != nil {
		http.Error(rw, "wallpaper not found", http.StatusNotFound)
		return
	}

	rw.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(rw, req, resolvedPath)
}

func (s *WallpaperService) resolveWallpaperPath() (string, error) {
	configured := ""
	if s.currentPath != nil {
		configured = strings.TrimSpace(s.currentPath())
	}
	if configured == "" {
		return "", errors.New("wallpaper path is not configured")
	}

	resolvedPath, err := filepath.Abs(filepath.Clean(configured))
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("wallpaper path is a directory")
	}

	return resolvedPath, nil
}
