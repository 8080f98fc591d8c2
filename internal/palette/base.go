package palette

import (
	"prism/internal/ansi"
	"prism/internal/derive"
	"prism/internal/oklch"
)

const (
	surfaceChromaCap = 0.04
	textChromaCap    = 0.03
	darkSurfaceL     = 0.22
	lightSurfaceL    = 0.94
)

// BuildBaseColors turns an extraction and its slot assignment into the base
// colors of a theme. The most populous swatch sets the surface hue and
// whether the theme is dark or light; the six chromatic keys come from slots.
func BuildBaseColors(swatches []ansi.SwatchInput, slots ansi.Colors) derive.BaseColors {
	base := derive.DefaultBaseColors()

	dominant, ok := dominantSwatch(swatches)
	if ok {
		light := dominant.L >= 0.5
		hue := dominant.H
		chroma := minFloat(dominant.C, surfaceChromaCap)
		textChroma := minFloat(dominant.C, textChromaCap)

		if light {
			base.Background = oklch.Color{L: maxFloat(dominant.L, lightSurfaceL), C: chroma, H: hue}.Hex()
			base.Foreground = oklch.Color{L: 0.28, C: textChroma, H: hue}.Hex()
			base.Black = oklch.Color{L: 0.35, C: textChroma, H: hue}.Hex()
			base.White = oklch.Color{L: 0.86, C: chroma, H: hue}.Hex()
		} else {
			base.Background = oklch.Color{L: minFloat(dominant.L, darkSurfaceL), C: chroma, H: hue}.Hex()
			base.Foreground = oklch.Color{L: 0.88, C: textChroma, H: hue}.Hex()
			base.Black = oklch.Color{L: 0.18, C: chroma, H: hue}.Hex()
			base.White = oklch.Color{L: 0.78, C: textChroma, H: hue}.Hex()
		}
	}

	for _, slot := range ansi.Slots {
		value := slots.Get(slot)
		if !oklch.IsValidHex(value) {
			continue
		}
		switch slot {
		case ansi.SlotRed:
			base.Red = value
		case ansi.SlotYellow:
			base.Yellow = value
		case ansi.SlotGreen:
			base.Green = value
		case ansi.SlotCyan:
			base.Cyan = value
		case ansi.SlotBlue:
			base.Blue = value
		case ansi.SlotMagenta:
			base.Magenta = value
		}
	}

	return base
}

func dominantSwatch(swatches []ansi.SwatchInput) (oklch.Color, bool) {
	var best oklch.Color
	bestPopulation := -1
	for _, swatch := range swatches {
		color, ok := oklch.FromHex(swatch.Hex)
		if !ok {
			continue
		}
		if swatch.Population > bestPopulation {
			best = color
			bestPopulation = swatch.Population
		}
	}
	return best, bestPopulation >= 0
}

func minFloat(left float64, right float64) float64 {
	if left < right {
		return left
	}
	return right
}

func maxFloat(left float64, right float64) float64 {
	if left > right {
		return left
	}
	return right
}
