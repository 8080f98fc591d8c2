// Package derive computes the full 22-color theme palette from ten base
// colors, honoring per-key locks on the derived entries.
package derive

import "fmt"

// Key names one of the 22 theme color slots. Values match the JSON field names
// used in theme manifests.
type Key string

const (
	KeyBackground Key = "background"
	KeyForeground Key = "foreground"
	KeyBlack      Key = "black"
	KeyRed        Key = "red"
	KeyGreen      Key = "green"
	KeyYellow     Key = "yellow"
	KeyBlue       Key = "blue"
	KeyMagenta    Key = "magenta"
	KeyCyan       Key = "cyan"
	KeyWhite      Key = "white"

	KeyBrightBlack   Key = "brightBlack"
	KeyBrightRed     Key = "brightRed"
	KeyBrightGreen   Key = "brightGreen"
	KeyBrightYellow  Key = "brightYellow"
	KeyBrightBlue    Key = "brightBlue"
	KeyBrightMagenta Key = "brightMagenta"
	KeyBrightCyan    Key = "brightCyan"
	KeyBrightWhite   Key = "brightWhite"
	KeyCursor        Key = "cursor"
	KeySelection     Key = "selection"
	KeyBorder        Key = "border"
	KeyAccent        Key = "accent"
)

// BaseKeys are the user-chosen colors every derivation starts from.
var BaseKeys = []Key{
	KeyBackground, KeyForeground, KeyBlack, KeyRed, KeyGreen,
	KeyYellow, KeyBlue, KeyMagenta, KeyCyan, KeyWhite,
}

// DerivedKeys are computed from the base colors unless locked.
var DerivedKeys = []Key{
	KeyBrightBlack, KeyBrightRed, KeyBrightGreen, KeyBrightYellow,
	KeyBrightBlue, KeyBrightMagenta, KeyBrightCyan, KeyBrightWhite,
	KeyCursor, KeySelection, KeyBorder, KeyAccent,
}

// AllKeys lists base keys followed by derived keys.
var AllKeys = append(append([]Key{}, BaseKeys...), DerivedKeys...)

// brightSources maps each bright variant to the base color it brightens.
var brightSources = []struct {
	bright Key
	base   Key
}{
	{KeyBrightBlack, KeyBlack},
	{KeyBrightRed, KeyRed},
	{KeyBrightGreen, KeyGreen},
	{KeyBrightYellow, KeyYellow},
	{KeyBrightBlue, KeyBlue},
	{KeyBrightMagenta, KeyMagenta},
	{KeyBrightCyan, KeyCyan},
	{KeyBrightWhite, KeyWhite},
}

// ParseKey returns the Key named s.
func ParseKey(s string) (Key, error) {
	for _, key := range AllKeys {
		if string(key) == s {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown theme color %q", s)
}

// IsDerived reports whether k is one of the 12 derived keys.
func (k Key) IsDerived() bool {
	for _, key := range DerivedKeys {
		if key == k {
			return true
		}
	}
	return false
}

// BaseColors holds the ten base colors. Empty fields fall back to the
// built-in default palette.
type BaseColors struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Black      string `json:"black"`
	Red        string `json:"red"`
	Green      string `json:"green"`
	Yellow     string `json:"yellow"`
	Blue       string `json:"blue"`
	Magenta    string `json:"magenta"`
	Cyan       string `json:"cyan"`
	White      string `json:"white"`
}

// ThemeColors is a fully populated theme palette.
type ThemeColors struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Black      string `json:"black"`
	Red        string `json:"red"`
	Green      string `json:"green"`
	Yellow     string `json:"yellow"`
	Blue       string `json:"blue"`
	Magenta    string `json:"magenta"`
	Cyan       string `json:"cyan"`
	White      string `json:"white"`

	BrightBlack   string `json:"brightBlack"`
	BrightRed     string `json:"brightRed"`
	BrightGreen   string `json:"brightGreen"`
	BrightYellow  string `json:"brightYellow"`
	BrightBlue    string `json:"brightBlue"`
	BrightMagenta string `json:"brightMagenta"`
	BrightCyan    string `json:"brightCyan"`
	BrightWhite   string `json:"brightWhite"`
	Cursor        string `json:"cursor"`
	Selection     string `json:"selection"`
	Border        string `json:"border"`
	Accent        string `json:"accent"`
}

func (c *ThemeColors) field(key Key) *string {
	switch key {
	case KeyBackground:
		return &c.Background
	case KeyForeground:
		return &c.Foreground
	case KeyBlack:
		return &c.Black
	case KeyRed:
		return &c.Red
	case KeyGreen:
		return &c.Green
	case KeyYellow:
		return &c.Yellow
	case KeyBlue:
		return &c.Blue
	case KeyMagenta:
		return &c.Magenta
	case KeyCyan:
		return &c.Cyan
	case KeyWhite:
		return &c.White
	case KeyBrightBlack:
		return &c.BrightBlack
	case KeyBrightRed:
		return &c.BrightRed
	case KeyBrightGreen:
		return &c.BrightGreen
	case KeyBrightYellow:
		return &c.BrightYellow
	case KeyBrightBlue:
		return &c.BrightBlue
	case KeyBrightMagenta:
		return &c.BrightMagenta
	case KeyBrightCyan:
		return &c.BrightCyan
	case KeyBrightWhite:
		return &c.BrightWhite
	case KeyCursor:
		return &c.Cursor
	case KeySelection:
		return &c.Selection
	case KeyBorder:
		return &c.Border
	case KeyAccent:
		return &c.Accent
	default:
		return nil
	}
}

// Get returns the color stored under key, or "" for an unknown key.
func (c ThemeColors) Get(key Key) string {
	if field := c.field(key); field != nil {
		return *field
	}
	return ""
}

// Set stores value under key. Unknown keys are ignored.
func (c *ThemeColors) Set(key Key, value string) {
	if field := c.field(key); field != nil {
		*field = value
	}
}

// Map returns the palette keyed by color name, e.g. for config templating.
func (c ThemeColors) Map() map[string]string {
	out := make(map[string]string, len(AllKeys))
	for _, key := range AllKeys {
		out[string(key)] = c.Get(key)
	}
	return out
}

// Base extracts the ten base colors.
func (c ThemeColors) Base() BaseColors {
	return BaseColors{
		Background: c.Background,
		Foreground: c.Foreground,
		Black:      c.Black,
		Red:        c.Red,
		Green:      c.Green,
		Yellow:     c.Yellow,
		Blue:       c.Blue,
		Magenta:    c.Magenta,
		Cyan:       c.Cyan,
		White:      c.White,
	}
}

func (b BaseColors) get(key Key) string {
	colors := ThemeColors{
		Background: b.Background,
		Foreground: b.Foreground,
		Black:      b.Black,
		Red:        b.Red,
		Green:      b.Green,
		Yellow:     b.Yellow,
		Blue:       b.Blue,
		Magenta:    b.Magenta,
		Cyan:       b.Cyan,
		White:      b.White,
	}
	return colors.Get(key)
}

// ColorLockState marks derived keys whose current value must be preserved.
type ColorLockState map[Key]bool

// NewLockState returns a lock state with every derived key unlocked.
func NewLockState() ColorLockState {
	locks := make(ColorLockState, len(DerivedKeys))
	for _, key := range DerivedKeys {
		locks[key] = false
	}
	return locks
}

// Locked reports whether key is locked. A nil state locks nothing.
func (s ColorLockState) Locked(key Key) bool {
	return s[key]
}
