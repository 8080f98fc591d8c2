// Package themes persists named theme palettes and their lock state.
package themes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prism/internal/derive"
)

var ErrThemeNotFound = errors.New("theme not found")

type Theme struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	Colors        derive.ThemeColors    `json:"colors"`
	Locks         derive.ColorLockState `json:"locks"`
	WallpaperPath string                `json:"wallpaperPath,omitempty"`
	CreatedAt     string                `json:"createdAt"`
	UpdatedAt     string                `json:"updatedAt"`
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database, now: time.Now}
}

const selectColumns = "id, name, colors_json, locks_json, wallpaper_path, created_at, updated_at"

func (r *Repository) List(ctx context.Context) ([]Theme, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT "+selectColumns+" FROM themes ORDER BY name COLLATE NOCASE",
	)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	themes := make([]Theme, 0)
	for rows.Next() {
		theme, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate theme rows: %w", err)
	}

	return themes, nil
}

func (r *Repository) Get(ctx context.Context, name string) (Theme, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Theme{}, errors.New("theme name is required")
	}

	row := r.db.QueryRowContext(
		ctx,
		"SELECT "+selectColumns+" FROM themes WHERE name = ?",
		trimmed,
	)
	theme, err := scanTheme(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Theme{}, ErrThemeNotFound
		}
		return Theme{}, fmt.Errorf("get theme %q: %w", trimmed, err)
	}

	return theme, nil
}

// Save inserts theme or replaces the colors, locks and wallpaper of the
// existing theme with the same name.
func (r *Repository) Save(ctx context.Context, theme Theme) (Theme, error) {
	name := strings.TrimSpace(theme.Name)
	if name == "" {
		return Theme{}, errors.New("theme name is required")
	}

	colorsJSON, err := json.Marshal(theme.Colors)
	if err != nil {
		return Theme{}, fmt.Errorf("encode theme colors: %w", err)
	}

	locks := theme.Locks
	if locks == nil {
		locks = derive.NewLockState()
	}
	locksJSON, err := json.Marshal(locks)
	if err != nil {
		return Theme{}, fmt.Errorf("encode theme locks: %w", err)
	}

	now := r.now().UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(
		ctx,
		`INSERT INTO themes(name, colors_json, locks_json, wallpaper_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			colors_json = excluded.colors_json,
			locks_json = excluded.locks_json,
			wallpaper_path = excluded.wallpaper_path,
			updated_at = excluded.updated_at`,
		name,
		string(colorsJSON),
		string(locksJSON),
		strings.TrimSpace(theme.WallpaperPath),
		now,
		now,
	); err != nil {
		return Theme{}, fmt.Errorf("save theme %q: %w", name, err)
	}

	return r.Get(ctx, name)
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	result, err := r.db.ExecContext(ctx, "DELETE FROM themes WHERE name = ?", trimmed)
	if err != nil {
		return fmt.Errorf("delete theme %q: %w", trimmed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted theme count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrThemeNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTheme(row rowScanner) (Theme, error) {
	var theme Theme
	var colorsJSON string
	var locksJSON string
	if err := row.Scan(
		&theme.ID,
		&theme.Name,
		&colorsJSON,
		&locksJSON,
		&theme.WallpaperPath,
		&theme.CreatedAt,
		&theme.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Theme{}, err
		}
		return Theme{}, fmt.Errorf("scan theme row: %w", err)
	}

	if err := json.Unmarshal([]byte(colorsJSON), &theme.Colors); err != nil {
		return Theme{}, fmt.Errorf("decode colors of theme %q: %w", theme.Name, err)
	}
	theme.Locks = derive.NewLockState()
	if err := json.Unmarshal([]byte(locksJSON), &theme.Locks); err != nil {
		return Theme{}, fmt.Errorf("decode locks of theme %q: %w", theme.Name, err)
	}

	return theme, nil
}
