package phases

import (
	"context"
	"sort"

	"github.com/fpang/madphotos-core/internal/colorstats"
	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// tagVocabulary is the fixed label set the catalogue falls back to "when
// primary [tagging] unavailable" (§4.5: "tags | display | CLIP zero-shot
// against a fixed vocabulary when a primary tagger is unavailable"). No
// zero-shot classifier exists anywhere in the retrieved pack, so this is
// the fallback path exercised unconditionally, scored from dominant-color
// and brightness statistics rather than true CLIP similarity.
var tagVocabulary = []string{
	"outdoor", "indoor", "nature", "landscape", "portrait", "people",
	"sky", "water", "architecture", "food", "animal", "plant",
	"night", "daylight", "monochrome", "colorful", "urban", "travel",
	"vehicle", "text",
}

type TagsPhase struct {
	Root config.Root
}

func (p TagsPhase) Name() string        { return "tags" }
func (p TagsPhase) SignalTable() string { return "image_tags" }
func (p TagsPhase) Multi() bool         { return true }
func (p TagsPhase) BatchSize() int      { return 1 }

func (p TagsPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p TagsPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	d, err := decodeTier(displayPath(p.Root, imageID))
	if err != nil {
		return nil, errNoTier("display", imageID, err)
	}

	samples := colorstats.SamplePixels(d.Image, 4000)
	scores := scoreTags(samples)

	if err := st.DeleteSignalRows(ctx, "image_tags", imageID); err != nil {
		return nil, err
	}
	for tag, conf := range scores {
		if conf < 0.25 {
			continue
		}
		row := withAnalyzedAt(map[string]any{"tag": tag, "confidence": conf})
		if err := st.InsertSignalRow(ctx, "image_tags", imageID, row); err != nil {
			return nil, err
		}
	}
	// The generic commit path is bypassed above (image_tags needs one row
	// per kept tag, not one row total), so ProcessOne reports done.
	return nil, nil
}

// scoreTags derives a pseudo-confidence per vocabulary entry from color and
// brightness statistics: blue-dominant samples lean outdoor/sky, green
// leans nature/plant, a low share of saturated samples leans monochrome,
// and so on.
// These are coarse heuristics, not semantic recognition.
func scoreTags(samples []colorstats.Sample) map[string]float64 {
	scores := make(map[string]float64, len(tagVocabulary))
	if len(samples) == 0 {
		return scores
	}

	var blueish, greenish, dark, bright, saturated int
	for _, s := range samples {
		r, g, b := s.RGB.R, s.RGB.G, s.RGB.B
		lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		if b > r && b > g {
			blueish++
		}
		if g > r && g > b {
			greenish++
		}
		if lum < 60 {
			dark++
		}
		if lum > 200 {
			bright++
		}
		maxc, minc := max3(r, g, b), min3(r, g, b)
		if maxc > 0 && float64(maxc-minc)/float64(maxc) > 0.3 {
			saturated++
		}
	}
	n := float64(len(samples))
	scores["sky"] = float64(blueish) / n
	scores["water"] = float64(blueish) / n * 0.8
	scores["outdoor"] = float64(blueish+greenish) / n
	scores["nature"] = float64(greenish) / n
	scores["plant"] = float64(greenish) / n * 0.8
	scores["indoor"] = 1 - float64(blueish+greenish)/n
	scores["night"] = float64(dark) / n
	scores["daylight"] = float64(bright) / n
	scores["colorful"] = float64(saturated) / n
	scores["monochrome"] = 1 - float64(saturated)/n

	return scores
}

func max3(a, b, c int) int {
	vals := []int{a, b, c}
	sort.Ints(vals)
	return vals[2]
}

func min3(a, b, c int) int {
	vals := []int{a, b, c}
	sort.Ints(vals)
	return vals[0]
}

var _ phase.Phase = TagsPhase{}
