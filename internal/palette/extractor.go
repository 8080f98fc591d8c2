// Package palette extracts weighted color swatches from wallpaper images.
package palette

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"runtime"
	"sort"
	"sync"

	_ "github.com/gen2brain/avif"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"prism/internal/ansi"
)

const (
	defaultWorkerCap = 8
	maxWorkerCap     = 12
)

var defaultExtractOptions = ExtractOptions{
	MaxDimension:     220,
	Quality:          2,
	CandidateCount:   16,
	QuantizationBits: 5,
	AlphaThreshold:   16,
	MinDelta:         0.04,
	WorkerCount:      0,
}

type ExtractOptions struct {
	MaxDimension     int     `json:"maxDimension"`
	Quality          int     `json:"quality"`
	CandidateCount   int     `json:"candidateCount"`
	QuantizationBits int     `json:"quantizationBits"`
	AlphaThreshold   int     `json:"alphaThreshold"`
	MinDelta         float64 `json:"minDelta"`
	WorkerCount      int     `json:"workerCount"`
}

// Extraction is the swatch list for one image plus the sizes it was sampled at.
type Extraction struct {
	Swatches     []ansi.SwatchInput `json:"swatches"`
	SourceWidth  int                `json:"sourceWidth"`
	SourceHeight int                `json:"sourceHeight"`
	SampleWidth  int                `json:"sampleWidth"`
	SampleHeight int                `json:"sampleHeight"`
	Options      ExtractOptions     `json:"options"`
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func DefaultExtractOptions() ExtractOptions {
	return defaultExtractOptions
}

func NormalizeExtractOptions(options ExtractOptions) ExtractOptions {
	return options.normalized()
}

func (e *Extractor) ExtractFromPath(path string, options ExtractOptions) (Extraction, error) {
	file, err := os.Open(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return Extraction{}, fmt.Errorf("decode image: %w", err)
	}

	return e.ExtractFromImage(decoded, options)
}

func (e *Extractor) ExtractFromImage(img image.Image, options ExtractOptions) (Extraction, error) {
	normalized := options.normalized()
	bounds := img.Bounds()
	if bounds.Empty() {
		return Extraction{}, errors.New("image has no pixels")
	}

	sampled := downscale(img, normalized.MaxDimension)

	bins, err := buildColorBins(sampled, normalized)
	if err != nil {
		return Extraction{}, err
	}

	boxes := buildBoxes(bins, normalized.CandidateCount)
	swatches := deduplicateSwatches(boxesToSwatches(boxes), normalized.MinDelta)
	if len(swatches) == 0 {
		return Extraction{}, errors.New("no color swatches extracted")
	}

	inputs := make([]ansi.SwatchInput, 0, len(swatches))
	for _, s := range swatches {
		inputs = append(inputs, ansi.SwatchInput{Hex: s.color.Hex(), Population: s.population})
	}

	return Extraction{
		Swatches:     inputs,
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
		SampleWidth:  sampled.Bounds().Dx(),
		SampleHeight: sampled.Bounds().Dy(),
		Options:      normalized,
	}, nil
}

type colorBin struct {
	rq    uint8
	gq    uint8
	bq    uint8
	r     uint8
	g     uint8
	b     uint8
	count int
}

type colorBox struct {
	bins       []colorBin
	population int
	rMin       uint8
	rMax       uint8
	gMin       uint8
	gMax       uint8
	bMin       uint8
	bMax       uint8
	volume     int
}

type swatch struct {
	color      colorful.Color
	population int
}

func (o ExtractOptions) normalized() ExtractOptions {
	normalized := o

	if normalized.MaxDimension <= 0 {
		normalized.MaxDimension = defaultExtractOptions.MaxDimension
	}
	normalized.MaxDimension = clampInt(normalized.MaxDimension, 64, 1024)

	if normalized.Quality <= 0 {
		normalized.Quality = defaultExtractOptions.Quality
	}
	normalized.Quality = clampInt(normalized.Quality, 1, 12)

	if normalized.CandidateCount <= 0 {
		normalized.CandidateCount = defaultExtractOptions.CandidateCount
	}
	normalized.CandidateCount = clampInt(normalized.CandidateCount, 1, 64)

	if normalized.QuantizationBits <= 0 {
		normalized.QuantizationBits = defaultExtractOptions.QuantizationBits
	}
	normalized.QuantizationBits = clampInt(normalized.QuantizationBits, 4, 6)

	normalized.AlphaThreshold = clampInt(normalized.AlphaThreshold, 0, 254)

	if normalized.MinDelta <= 0 {
		normalized.MinDelta = defaultExtractOptions.MinDelta
	}
	normalized.MinDelta = clampFloat(normalized.MinDelta, 0.005, 0.45)

	if normalized.WorkerCount <= 0 {
		defaultWorkers := runtime.GOMAXPROCS(0) - 1
		if defaultWorkers < 1 {
			defaultWorkers = 1
		}
		normalized.WorkerCount = minInt(defaultWorkers, defaultWorkerCap)
	}
	maxWorkers := maxInt(1, minInt(runtime.GOMAXPROCS(0), maxWorkerCap))
	normalized.WorkerCount = clampInt(normalized.WorkerCount, 1, maxWorkers)

	return normalized
}

// downscale converts img to NRGBA, shrinking it so its longest side is at most
// maxDimension.
func downscale(img image.Image, maxDimension int) *image.NRGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	longest := maxInt(width, height)
	if longest > maxDimension {
		scale := float64(maxDimension) / float64(longest)
		width = maxInt(int(math.Round(float64(width)*scale)), 1)
		height = maxInt(int(math.Round(float64(height)*scale)), 1)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

func buildColorBins(img *image.NRGBA, options ExtractOptions) ([]colorBin, error) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("sample image is empty")
	}

	bits := options.QuantizationBits
	channelMask := (1 << bits) - 1
	channelShift := 8 - bits
	indexShift := bits * 2
	histogramSize := 1 << (bits * 3)

	workers := clampInt(options.WorkerCount, 1, height)
	localHistograms := make([][]int, workers)

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		startY, endY := splitRange(height, workers, worker)
		wg.Add(1)
		go func(workerIndex, start, end int) {
			defer wg.Done()
			local := make([]int, histogramSize)

			firstSampleY := start
			if remainder := firstSampleY % options.Quality; remainder != 0 {
				firstSampleY += options.Quality - remainder
			}

			for y := firstSampleY; y < end; y += options.Quality {
				rowOffset := y * img.Stride
				for x := 0; x < width; x += options.Quality {
					offset := rowOffset + x*4
					if int(img.Pix[offset+3]) <= options.AlphaThreshold {
						continue
					}

					rq := (int(img.Pix[offset]) >> channelShift) & channelMask
					gq := (int(img.Pix[offset+1]) >> channelShift) & channelMask
					bq := (int(img.Pix[offset+2]) >> channelShift) & channelMask
					local[(rq<<indexShift)|(gq<<bits)|bq]++
				}
			}

			localHistograms[workerIndex] = local
		}(worker, startY, endY)
	}

	wg.Wait()

	histogram := make([]int, histogramSize)
	totalPixels := 0
	for _, local := range localHistograms {
		for index, count := range local {
			histogram[index] += count
			totalPixels += count
		}
	}

	if totalPixels == 0 {
		return nil, errors.New("no eligible pixels after filtering")
	}

	bins := make([]colorBin, 0, histogramSize/8)
	for index, count := range histogram {
		if count == 0 {
			continue
		}

		rq := uint8((index >> indexShift) & channelMask)
		gq := uint8((index >> bits) & channelMask)
		bq := uint8(index & channelMask)
		bins = append(bins, colorBin{
			rq:    rq,
			gq:    gq,
			bq:    bq,
			r:     quantizedToRGB(rq, bits),
			g:     quantizedToRGB(gq, bits),
			b:     quantizedToRGB(bq, bits),
			count: count,
		})
	}

	return bins, nil
}

func quantizedToRGB(value uint8, bits int) uint8 {
	bucketSize := 256 >> bits
	return uint8(clampInt(int(value)*bucketSize+bucketSize/2, 0, 255))
}

// buildBoxes median-cuts bins until targetCount boxes exist or nothing can be
// split. Populous, wide boxes are split first.
func buildBoxes(bins []colorBin, targetCount int) []colorBox {
	if len(bins) == 0 {
		return nil
	}

	boxes := []colorBox{newColorBox(bins)}
	for len(boxes) < targetCount {
		best := -1
		bestScore := 0.0
		for index, box := range boxes {
			if !box.canSplit() {
				continue
			}
			score := float64(box.population) * math.Log(float64(box.volume)+1)
			if best < 0 || score > bestScore {
				best = index
				bestScore = score
			}
		}
		if best < 0 {
			break
		}

		left, right, ok := splitColorBox(boxes[best])
		if !ok {
			break
		}
		boxes[best] = left
		boxes = append(boxes, right)
	}

	return boxes
}

func newColorBox(bins []colorBin) colorBox {
	box := colorBox{
		bins: bins,
		rMin: math.MaxUint8,
		gMin: math.MaxUint8,
		bMin: math.MaxUint8,
	}

	for _, bin := range bins {
		box.population += bin.count
		box.rMin = min(box.rMin, bin.rq)
		box.rMax = max(box.rMax, bin.rq)
		box.gMin = min(box.gMin, bin.gq)
		box.gMax = max(box.gMax, bin.gq)
		box.bMin = min(box.bMin, bin.bq)
		box.bMax = max(box.bMax, bin.bq)
	}

	if len(bins) > 0 {
		box.volume = int(box.rMax-box.rMin+1) * int(box.gMax-box.gMin+1) * int(box.bMax-box.bMin+1)
	}
	return box
}

func (b colorBox) canSplit() bool {
	return len(b.bins) > 1 && (b.rMax > b.rMin || b.gMax > b.gMin || b.bMax > b.bMin)
}

func splitColorBox(box colorBox) (colorBox, colorBox, bool) {
	if !box.canSplit() {
		return colorBox{}, colorBox{}, false
	}

	axis := longestAxis(box)
	ordered := append([]colorBin(nil), box.bins...)
	sort.Slice(ordered, func(i, j int) bool {
		left := axisValue(ordered[i], axis)
		right := axisValue(ordered[j], axis)
		if left == right {
			return ordered[i].count > ordered[j].count
		}
		return left < right
	})

	half := box.population / 2
	cumulative := 0
	splitIndex := len(ordered) / 2
	for index, bin := range ordered {
		cumulative += bin.count
		if cumulative >= half {
			splitIndex = index + 1
			break
		}
	}
	if splitIndex >= len(ordered) {
		splitIndex = len(ordered) - 1
	}
	if splitIndex <= 0 {
		splitIndex = 1
	}

	return newColorBox(ordered[:splitIndex]), newColorBox(ordered[splitIndex:]), true
}

func longestAxis(box colorBox) int {
	rRange := box.rMax - box.rMin
	gRange := box.gMax - box.gMin
	bRange := box.bMax - box.bMin

	if rRange >= gRange && rRange >= bRange {
		return 0
	}
	if gRange >= bRange {
		return 1
	}
	return 2
}

func axisValue(bin colorBin, axis int) uint8 {
	switch axis {
	case 0:
		return bin.rq
	case 1:
		return bin.gq
	default:
		return bin.bq
	}
}

// boxesToSwatches averages each box weighted by bin counts.
func boxesToSwatches(boxes []colorBox) []swatch {
	swatches := make([]swatch, 0, len(boxes))
	for _, box := range boxes {
		if box.population <= 0 {
			continue
		}

		var rSum, gSum, bSum int
		for _, bin := range box.bins {
			rSum += int(bin.r) * bin.count
			gSum += int(bin.g) * bin.count
			bSum += int(bin.b) * bin.count
		}

		swatches = append(swatches, swatch{
			color: colorful.Color{
				R: float64(rSum/box.population) / 255,
				G: float64(gSum/box.population) / 255,
				B: float64(bSum/box.population) / 255,
			},
			population: box.population,
		})
	}

	sortByPopulation(swatches)
	return swatches
}

// deduplicateSwatches folds swatches closer than threshold in OKLab into the
// more populous one, summing their populations.
func deduplicateSwatches(swatches []swatch, threshold float64) []swatch {
	unique := make([]swatch, 0, len(swatches))
	for _, candidate := range swatches {
		merged := false
		for index := range unique {
			if okLabDistance(candidate.color, unique[index].color) <= threshold {
				unique[index].population += candidate.population
				merged = true
				break
			}
		}
		if !merged {
			unique = append(unique, candidate)
		}
	}

	sortByPopulation(unique)
	return unique
}

func sortByPopulation(swatches []swatch) {
	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].population > swatches[j].population
	})
}

func okLabDistance(left colorful.Color, right colorful.Color) float64 {
	l1, a1, b1 := left.OkLab()
	l2, a2, b2 := right.OkLab()
	return math.Sqrt((l1-l2)*(l1-l2) + (a1-a2)*(a1-a2) + (b1-b2)*(b1-b2))
}

func splitRange(length int, workers int, workerIndex int) (int, int) {
	chunkSize := length / workers
	remainder := length % workers
	start := workerIndex*chunkSize + minInt(workerIndex, remainder)
	end := start + chunkSize
	if workerIndex < remainder {
		end++
	}
	return start, end
}

func clampInt(value int, minimum int, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
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

func minInt(left int, right int) int {
	if left < right {
		return left
	}
	return right
}

func maxInt(left int, right int) int {
	if left > right {
		return left
	}
	return right
}
