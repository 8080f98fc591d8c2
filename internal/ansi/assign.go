package ansi

import (
	"math"
	"sort"

	"prism/internal/oklch"
)

// hueTieEpsilon treats hue distances this close as equal so population
// decides, instead of floating point noise.
const hueTieEpsilon = 1e-9

var defaultOptions = Options{
	MinReliableChroma:     0.03,
	MaxHueDistance:        60,
	SynthesisChromaFactor: 0.6,
}

// neutralDonor seeds synthesis when there is no input at all.
var neutralDonor = oklch.Color{L: 0.6, C: 0.05, H: 0}

// Options tunes matching and synthesis.
type Options struct {
	// MinReliableChroma is the chroma below which a swatch's hue is noise.
	MinReliableChroma float64 `json:"minReliableChroma"`
	// MaxHueDistance is the widest hue gap, in degrees, a natural match may span.
	MaxHueDistance float64 `json:"maxHueDistance"`
	// SynthesisChromaFactor scales donor chroma for synthesized slots.
	SynthesisChromaFactor float64 `json:"synthesisChromaFactor"`
}

func DefaultOptions() Options {
	return defaultOptions
}

func (o Options) normalized() Options {
	normalized := o

	if normalized.MinReliableChroma <= 0 {
		normalized.MinReliableChroma = defaultOptions.MinReliableChroma
	}
	normalized.MinReliableChroma = clampFloat(normalized.MinReliableChroma, 0.001, 0.4)

	if normalized.MaxHueDistance <= 0 {
		normalized.MaxHueDistance = defaultOptions.MaxHueDistance
	}
	normalized.MaxHueDistance = clampFloat(normalized.MaxHueDistance, 1, 180)

	if normalized.SynthesisChromaFactor <= 0 {
		normalized.SynthesisChromaFactor = defaultOptions.SynthesisChromaFactor
	}
	normalized.SynthesisChromaFactor = clampFloat(normalized.SynthesisChromaFactor, 0.01, 2)

	return normalized
}

// SwatchInput is a candidate color weighted by prominence, e.g. pixel count.
type SwatchInput struct {
	Hex        string `json:"hex"`
	Population int    `json:"population"`
}

// Source records how a slot got its color.
type Source string

const (
	SourceNatural     Source = "natural"
	SourceSynthesized Source = "synthesized"
)

// SlotAssignment describes the color chosen for one slot.
type SlotAssignment struct {
	Hex    string `json:"hex"`
	Source Source `json:"source"`
	// SwatchIndex is the index into the input of the swatch that filled the
	// slot naturally, or -1 when synthesized.
	SwatchIndex int `json:"swatchIndex"`
}

// Result is the full outcome of an assignment run.
type Result struct {
	Slots [len(Slots)]SlotAssignment `json:"slots"`
}

// Colors flattens the result to one hex per slot.
func (r Result) Colors() Colors {
	var colors Colors
	for _, slot := range Slots {
		colors.Set(slot, r.Slots[slot].Hex)
	}
	return colors
}

func (r Result) Slot(slot Slot) SlotAssignment {
	if !slot.valid() {
		return SlotAssignment{SwatchIndex: -1}
	}
	return r.Slots[slot]
}

// Assigner maps swatches to slots. The zero value uses the default options
// and is safe for concurrent use.
type Assigner struct {
	options Options
}

func NewAssigner(options Options) Assigner {
	return Assigner{options: options.normalized()}
}

// AssignSwatchesToAnsiSlots runs the default assigner and returns one color
// per slot. It never fails; an empty input yields six synthesized colors.
func AssignSwatchesToAnsiSlots(swatches []SwatchInput) Colors {
	return NewAssigner(defaultOptions).Assign(swatches).Colors()
}

type classifiedSwatch struct {
	index      int
	color      oklch.Color
	population int
	hex        string
}

type candidate struct {
	swatch   classifiedSwatch
	distance float64
}

// Assign matches swatches to slots greedily, most constrained slot first, and
// synthesizes colors for whatever remains.
//
// The slot order is fixed from the initial candidate counts and is not
// revisited as swatches get consumed, so a slot can take a swatch another
// slot wanted more. That is accepted: this is not an optimal matching.
func (a Assigner) Assign(swatches []SwatchInput) Result {
	options := a.options.normalized()

	chromatic, achromatic := classifySwatches(swatches, options.MinReliableChroma)

	candidates := make([][]candidate, len(Slots))
	for _, slot := range Slots {
		candidates[slot] = slotCandidates(slot, chromatic, options.MaxHueDistance)
	}

	order := append([]Slot(nil), Slots[:]...)
	sort.SliceStable(order, func(i, j int) bool {
		return len(candidates[order[i]]) < len(candidates[order[j]])
	})

	var result Result
	assigned := make(map[Slot]oklch.Color, len(Slots))
	consumed := make(map[int]bool, len(chromatic))

	for _, slot := range order {
		for _, option := range candidates[slot] {
			if consumed[option.swatch.index] {
				continue
			}
			consumed[option.swatch.index] = true
			assigned[slot] = option.swatch.color
			result.Slots[slot] = SlotAssignment{
				Hex:         option.swatch.hex,
				Source:      SourceNatural,
				SwatchIndex: option.swatch.index,
			}
			break
		}
	}

	fallback, hasFallback := mostPopulous(achromatic)
	for _, slot := range Slots {
		if _, ok := assigned[slot]; ok {
			continue
		}

		donor, ok := nearestAssignedDonor(slot, assigned)
		if !ok {
			donor = neutralDonor
			if hasFallback {
				donor = fallback.color
			}
		}

		result.Slots[slot] = SlotAssignment{
			Hex:         synthesize(donor, slot, options.SynthesisChromaFactor),
			Source:      SourceSynthesized,
			SwatchIndex: -1,
		}
	}

	return result
}

func classifySwatches(swatches []SwatchInput, minChroma float64) ([]classifiedSwatch, []classifiedSwatch) {
	chromatic := make([]classifiedSwatch, 0, len(swatches))
	achromatic := make([]classifiedSwatch, 0)

	for index, input := range swatches {
		color, ok := oklch.FromHex(input.Hex)
		if !ok {
			continue
		}

		hex, _ := oklch.NormalizeHex(input.Hex)
		classified := classifiedSwatch{
			index:      index,
			color:      color,
			population: maxInt(input.Population, 0),
			hex:        hex,
		}

		if color.C >= minChroma {
			chromatic = append(chromatic, classified)
		} else {
			achromatic = append(achromatic, classified)
		}
	}

	return chromatic, achromatic
}

func slotCandidates(slot Slot, chromatic []classifiedSwatch, maxDistance float64) []candidate {
	target := slot.TargetHue()
	out := make([]candidate, 0, len(chromatic))
	for _, swatch := range chromatic {
		distance := oklch.HueDistance(swatch.color.H, target)
		if distance > maxDistance {
			continue
		}
		out = append(out, candidate{swatch: swatch, distance: distance})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if math.Abs(out[i].distance-out[j].distance) > hueTieEpsilon {
			return out[i].distance < out[j].distance
		}
		return out[i].swatch.population > out[j].swatch.population
	})

	return out
}

// nearestAssignedDonor picks the naturally assigned slot whose target hue is
// closest to slot's target. Equal distances go to the earlier slot.
func nearestAssignedDonor(slot Slot, assigned map[Slot]oklch.Color) (oklch.Color, bool) {
	var donor oklch.Color
	found := false
	bestDistance := math.Inf(1)

	for _, other := range Slots {
		color, ok := assigned[other]
		if !ok {
			continue
		}
		distance := oklch.HueDistance(other.TargetHue(), slot.TargetHue())
		if distance < bestDistance {
			bestDistance = distance
			donor = color
			found = true
		}
	}

	return donor, found
}

func mostPopulous(swatches []classifiedSwatch) (classifiedSwatch, bool) {
	if len(swatches) == 0 {
		return classifiedSwatch{}, false
	}

	best := swatches[0]
	for _, swatch := range swatches[1:] {
		if swatch.population > best.population {
			best = swatch
		}
	}
	return best, true
}

func synthesize(donor oklch.Color, slot Slot, chromaFactor float64) string {
	return oklch.Color{
		L: donor.L,
		C: donor.C * chromaFactor,
		H: slot.TargetHue(),
	}.Hex()
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

func maxInt(left int, right int) int {
	if left > right {
		return left
	}
	return right
}
