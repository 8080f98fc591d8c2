package derive

import "prism/internal/oklch"

var defaultOptions = Options{
	BrightBoost:    0.18,
	SelectionBlend: 0.30,
	BorderBlend:    0.12,
}

// Options tunes the derivation rules.
type Options struct {
	BrightBoost    float64 `json:"brightBoost"`
	SelectionBlend float64 `json:"selectionBlend"`
	BorderBlend    float64 `json:"borderBlend"`
}

// DefaultOptions returns the stock derivation rules.
func DefaultOptions() Options {
	return defaultOptions
}

func (o Options) normalized() Options {
	normalized := o

	if normalized.BrightBoost <= 0 {
		normalized.BrightBoost = defaultOptions.BrightBoost
	}
	normalized.BrightBoost = clampFloat(normalized.BrightBoost, 0, 1)

	if normalized.SelectionBlend <= 0 {
		normalized.SelectionBlend = defaultOptions.SelectionBlend
	}
	normalized.SelectionBlend = clampFloat(normalized.SelectionBlend, 0, 1)

	if normalized.BorderBlend <= 0 {
		normalized.BorderBlend = defaultOptions.BorderBlend
	}
	normalized.BorderBlend = clampFloat(normalized.BorderBlend, 0, 1)

	return normalized
}

// Deriver computes derived theme colors with a fixed set of options. The zero
// value uses the defaults. It holds no state between calls.
type Deriver struct {
	options Options
}

func NewDeriver(options Options) Deriver {
	return Deriver{options: options.normalized()}
}

// DeriveAllColors derives the full palette with the default options.
func DeriveAllColors(base BaseColors, locks ColorLockState, current *ThemeColors) ThemeColors {
	return NewDeriver(defaultOptions).Derive(base, locks, current)
}

// Derive fills every derived key from base. A locked key keeps its value
// from current when current holds a valid color for it; otherwise the key is
// recomputed as if unlocked.
//
// The order matters: selection is blended toward accent, so accent is
// resolved first.
func (d Deriver) Derive(base BaseColors, locks ColorLockState, current *ThemeColors) ThemeColors {
	options := d.options.normalized()

	var colors ThemeColors
	for _, key := range BaseKeys {
		colors.Set(key, resolveBase(base.get(key), defaultBaseColors.get(key)))
	}

	resolve := func(key Key, compute func() string) {
		if locks.Locked(key) && current != nil {
			if kept, ok := oklch.NormalizeHex(current.Get(key)); ok {
				colors.Set(key, kept)
				return
			}
		}
		colors.Set(key, compute())
	}

	resolve(KeyAccent, func() string {
		return colors.Blue
	})

	for _, pair := range brightSources {
		source := colors.Get(pair.base)
		resolve(pair.bright, func() string {
			return oklch.AdjustLightness(source, options.BrightBoost)
		})
	}

	resolve(KeyCursor, func() string {
		return colors.Foreground
	})

	resolve(KeySelection, func() string {
		return oklch.Blend(colors.Background, colors.Accent, options.SelectionBlend)
	})

	resolve(KeyBorder, func() string {
		return oklch.Blend(colors.Background, colors.Foreground, options.BorderBlend)
	})

	return colors
}

// IsLightTheme reports whether background is lighter than foreground in
// OKLCH. Unparseable input is treated as a dark theme.
func IsLightTheme(background string, foreground string) bool {
	bg, ok := oklch.FromHex(background)
	if !ok {
		return false
	}
	fg, ok := oklch.FromHex(foreground)
	if !ok {
		return false
	}
	return bg.L > fg.L
}

func resolveBase(value string, fallback string) string {
	if normalized, ok := oklch.NormalizeHex(value); ok {
		return normalized
	}
	return fallback
}

func clampFloat(value float64, minimum float64, maximum float64) float64 {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}
