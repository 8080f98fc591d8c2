// Package ansi maps weighted color swatches onto the six hue-bearing ANSI
// terminal colors, synthesizing a color for any slot without a natural match.
package ansi

import "fmt"

// Slot is one of the six ANSI colors that carry a hue.
type Slot int

const (
	SlotRed Slot = iota
	SlotYellow
	SlotGreen
	SlotCyan
	SlotBlue
	SlotMagenta
)

// Slots lists every slot in canonical order.
var Slots = [...]Slot{SlotRed, SlotYellow, SlotGreen, SlotCyan, SlotBlue, SlotMagenta}

var slotNames = [...]string{"red", "yellow", "green", "cyan", "blue", "magenta"}

// OKLCH target hue in degrees for each slot.
var targetHues = [...]float64{29, 110, 142, 195, 264, 328}

func (s Slot) valid() bool {
	return s >= SlotRed && s <= SlotMagenta
}

func (s Slot) String() string {
	if !s.valid() {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// TargetHue is the canonical OKLCH hue the slot is matched against.
func (s Slot) TargetHue() float64 {
	if !s.valid() {
		return 0
	}
	return targetHues[s]
}

// ParseSlot returns the slot named name.
func ParseSlot(name string) (Slot, error) {
	for _, slot := range Slots {
		if slotNames[slot] == name {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("unknown ansi slot %q", name)
}

func (s Slot) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid ansi slot %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	parsed, err := ParseSlot(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Colors holds one hex color per slot. It is always fully populated when
// returned from this package.
type Colors struct {
	Red     string `json:"red"`
	Yellow  string `json:"yellow"`
	Green   string `json:"green"`
	Cyan    string `json:"cyan"`
	Blue    string `json:"blue"`
	Magenta string `json:"magenta"`
}

func (c *Colors) field(slot Slot) *string {
	switch slot {
	case SlotRed:
		return &c.Red
	case SlotYellow:
		return &c.Yellow
	case SlotGreen:
		return &c.Green
	case SlotCyan:
		return &c.Cyan
	case SlotBlue:
		return &c.Blue
	case SlotMagenta:
		return &c.Magenta
	default:
		return nil
	}
}

func (c Colors) Get(slot Slot) string {
	if field := c.field(slot); field != nil {
		return *field
	}
	return ""
}

func (c *Colors) Set(slot Slot, hex string) {
	if field := c.field(slot); field != nil {
		*field = hex
	}
}

// Map returns the colors keyed by slot.
func (c Colors) Map() map[Slot]string {
	out := make(map[Slot]string, len(Slots))
	for _, slot := range Slots {
		out[slot] = c.Get(slot)
	}
	return out
}
