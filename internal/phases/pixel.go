package phases

import (
	"context"
	"image"
	"math"

	"github.com/fpang/madphotos-core/internal/colorstats"
	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phash"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// PixelAnalysisPhase computes the pure-pixel statistics row (§4.5's
// pixel-analysis entry) directly against the display tier — no model
// backend is involved, so it implements phase.Phase on its own rather
// than through ModelPhase.
type PixelAnalysisPhase struct {
	Root config.Root
}

func (p PixelAnalysisPhase) Name() string        { return "pixel-analysis" }
func (p PixelAnalysisPhase) SignalTable() string { return "pixel_analysis" }
func (p PixelAnalysisPhase) Multi() bool         { return false }
func (p PixelAnalysisPhase) BatchSize() int      { return 1 }

func (p PixelAnalysisPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p PixelAnalysisPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	d, err := decodeTier(displayPath(p.Root, imageID))
	if err != nil {
		return nil, errNoTier("display", imageID, err)
	}
	return withAnalyzedAt(analyzePixels(d.Image)), nil
}

// analyzePixels implements §4.5's pixel-analysis formulas exactly: mean
// brightness, (p98-p2)/(p98+p2) contrast ratio, per-channel white-balance
// shift against mid-grey, a high-pass noise estimate, clip percentages,
// mean saturation, dominant hue, a color-cast label and low/high-key flags.
func analyzePixels(img image.Image) map[string]any {
	b := img.Bounds()
	var lums []float64
	var sumR, sumG, sumB, sumSat, sumHue float64
	var clipLow, clipHigh, n int

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rr, gg, bb := float64(r>>8), float64(g>>8), float64(bl>>8)
			lum := 0.299*rr + 0.587*gg + 0.114*bb
			lums = append(lums, lum)
			sumR += rr
			sumG += gg
			sumB += bb
			h, s := hueSat(rr, gg, bb)
			sumHue += h
			sumSat += s
			if lum <= 2 {
				clipLow++
			}
			if lum >= 253 {
				clipHigh++
			}
			n++
		}
	}
	if n == 0 {
		n = 1
	}

	meanBrightness := sum(lums) / float64(n)
	p2, p98 := percentile(lums, 2), percentile(lums, 98)
	contrastRatio := 0.0
	if p98+p2 != 0 {
		contrastRatio = (p98 - p2) / (p98 + p2)
	}

	meanR, meanG, meanB := sumR/float64(n), sumG/float64(n), sumB/float64(n)
	grey := (meanR + meanG + meanB) / 3
	wbR, wbB := 0.0, 0.0
	if grey != 0 {
		wbR = (meanR - grey) / grey
		wbB = (meanB - grey) / grey
	}

	noise := highPassStdDev(img)

	colorCast := "neutral"
	switch {
	case wbR > 0.05 && wbB < -0.02:
		colorCast = "warm"
	case wbB > 0.05 && wbR < -0.02:
		colorCast = "cool"
	case math.Abs(wbR) > 0.08:
		if wbR > 0 {
			colorCast = "warm"
		} else {
			colorCast = "cool"
		}
	}

	return map[string]any{
		"mean_brightness": meanBrightness,
		"contrast_ratio":  contrastRatio,
		"mean_r":          meanR,
		"mean_g":          meanG,
		"mean_b":          meanB,
		"wb_shift_r":      wbR,
		"wb_shift_b":      wbB,
		"noise_estimate":  noise,
		"clip_low_pct":    float64(clipLow) / float64(n) * 100,
		"clip_high_pct":   float64(clipHigh) / float64(n) * 100,
		"mean_saturation": sumSat / float64(n),
		"dominant_hue":    sumHue / float64(n),
		"color_cast":      colorCast,
		"low_key":         meanBrightness < 85,
		"high_key":        meanBrightness > 170,
	}
}

func hueSat(r, g, b float64) (hue, sat float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min
	if max == 0 {
		return 0, 0
	}
	sat = delta / max

	if delta == 0 {
		return 0, sat
	}
	switch max {
	case r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}
	return hue, sat
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func percentile(vals []float64, p float64) float64 {
	sorted := append([]float64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p / 100 * float64(len(sorted)-1))
	return sorted[idx]
}

func highPassStdDev(img image.Image) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	var sum, sumSq float64
	var n int
	gray := func(x, y int) float64 {
		r, g, bl, _ := img.At(x, y).RGBA()
		return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			hp := gray(x, y)*4 - gray(x-1, y) - gray(x+1, y) - gray(x, y-1) - gray(x, y+1)
			sum += hp
			sumSq += hp * hp
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return math.Sqrt(sumSq/float64(n) - mean*mean)
}

// DominantColorsPhase runs colorstats.KMeans over the display tier and
// replaces the exactly-5-row palette (§4.5: "exactly 5 rows per image...
// percentage descending, hex + (r,g,b) + (L,a,b) + nearest-CSS4 name").
type DominantColorsPhase struct {
	Root config.Root
}

func (p DominantColorsPhase) Name() string        { return "dominant-colors" }
func (p DominantColorsPhase) SignalTable() string { return "dominant_colors" }
func (p DominantColorsPhase) Multi() bool         { return true }
func (p DominantColorsPhase) BatchSize() int      { return 1 }

func (p DominantColorsPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p DominantColorsPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	d, err := decodeTier(displayPath(p.Root, imageID))
	if err != nil {
		return nil, errNoTier("display", imageID, err)
	}

	samples := colorstats.SamplePixels(d.Image, 20000)
	clusters := colorstats.KMeans(samples, 5, 8)

	rows := make([]store.DominantColor, 0, len(clusters))
	for i, c := range clusters {
		rows = append(rows, store.DominantColor{
			ImageID:    imageID,
			Rank:       i + 1,
			Percentage: c.Percentage,
			Hex:        colorstats.Hex(c.RGB),
			R:          c.RGB.R, G: c.RGB.G, B: c.RGB.B,
			L: c.Centroid.L, A: c.Centroid.A, Blab: c.Centroid.B,
			Name: colorstats.NearestCSS4Name(c.RGB),
		})
	}
	if err := st.UpsertDominantColors(ctx, imageID, rows); err != nil {
		return nil, err
	}
	// DominantColorsPhase commits directly via UpsertDominantColors rather
	// than the framework's generic InsertSignalRow path (the 5-row replace
	// must be transactional); returning nil fields with Multi() true makes
	// the Runner's commit a no-op for this phase.
	return nil, nil
}

// HashesPhase computes the perceptual-hash family (§4.5's hashes entry).
type HashesPhase struct {
	Root config.Root
}

func (p HashesPhase) Name() string        { return "hashes" }
func (p HashesPhase) SignalTable() string { return "image_hashes" }
func (p HashesPhase) Multi() bool         { return false }
func (p HashesPhase) BatchSize() int      { return 1 }

func (p HashesPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p HashesPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	d, err := decodeTier(displayPath(p.Root, imageID))
	if err != nil {
		return nil, errNoTier("display", imageID, err)
	}
	img := d.Image
	return withAnalyzedAt(map[string]any{
		"phash":       phash.PHash(img),
		"ahash":       phash.AHash(img),
		"dhash":       phash.DHash(img),
		"whash":       phash.WHash(img),
		"blur_score":  phash.BlurScore(img),
		"sharpness":   phash.Sharpness(img),
		"entropy":     phash.Entropy(img),
	}), nil
}

var (
	_ phase.Phase = PixelAnalysisPhase{}
	_ phase.Phase = DominantColorsPhase{}
	_ phase.Phase = HashesPhase{}
)
