package derive

var defaultBaseColors = BaseColors{
	Background: "#1a1b26",
	Foreground: "#c0caf5",
	Black:      "#15161e",
	Red:        "#f7768e",
	Green:      "#9ece6a",
	Yellow:     "#e0af68",
	Blue:       "#7aa2f7",
	Magenta:    "#bb9af7",
	Cyan:       "#7dcfff",
	White:      "#a9b1d6",
}

// DefaultBaseColors returns the built-in palette used for any missing base
// color.
func DefaultBaseColors() BaseColors {
	return defaultBaseColors
}

// DefaultThemeColors derives the full palette from the built-in base colors.
func DefaultThemeColors() ThemeColors {
	return DeriveAllColors(defaultBaseColors, nil, nil)
}
