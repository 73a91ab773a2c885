// Package export implements the Exporter (C8, §4.8): a read-only pass
// over the Store that joins every per-image signal into one denormalized
// JSON record, plus three derivative files (faces, game rounds, a
// palette-traversal stream sequence) and a precomputed similarity index.
package export

import (
	"fmt"
	"math"

	"github.com/fpang/madphotos-core/internal/store"
)

// Photo is one per-image denormalized export record (§4.8).
type Photo struct {
	ID           string  `json:"id"`
	FileName     string  `json:"file_name"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	AspectRatio  float64 `json:"aspect_ratio"`
	Orientation  string  `json:"orientation"`

	CameraMake  string `json:"camera_make,omitempty"`
	CameraModel string `json:"camera_model,omitempty"`
	Medium      string `json:"medium,omitempty"`
	FilmStock   string `json:"film_stock,omitempty"`
	Monochrome  bool   `json:"monochrome"`

	Palette     []string `json:"palette,omitempty"`
	DominantHue float64  `json:"dominant_hue"`

	Gemini *GeminiFields `json:"gemini,omitempty"`

	Aesthetic   *ScoreFields   `json:"aesthetic,omitempty"`
	AestheticV2 *ScoreV2Fields `json:"aesthetic_v2,omitempty"`

	Caption            string `json:"caption,omitempty"`
	FlorenceShort      string `json:"florence_short,omitempty"`
	FlorenceDetailed   string `json:"florence_detailed,omitempty"`
	FlorenceMoreDetail string `json:"florence_more_detailed,omitempty"`

	Scene       string `json:"scene,omitempty"`
	Style       string `json:"style,omitempty"`
	Environment string `json:"environment,omitempty"`

	Depth *DepthFields `json:"depth,omitempty"`
	Pixel *PixelFields `json:"pixel,omitempty"`

	FaceCount    int      `json:"face_count"`
	ObjectCount  int      `json:"object_count"`
	TextCount    int      `json:"text_count"`
	EmotionCount int      `json:"emotion_count"`
	TopObjects   []string `json:"top_objects,omitempty"`
	Emotions     []string `json:"emotions,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	DateTaken   string  `json:"date_taken,omitempty"`
	GPSLat      float64 `json:"gps_lat,omitempty"`
	GPSLon      float64 `json:"gps_lon,omitempty"`
	HasGPS      bool    `json:"has_gps"`
	FocalLength float64 `json:"focal_length,omitempty"`

	Tiers map[string]string `json:"tiers,omitempty"`
	Focus [2]int            `json:"focus"`
}

// GeminiFields carries every parsed Gemini field (§4.8).
type GeminiFields struct {
	Exposure             string `json:"exposure,omitempty"`
	Sharpness            string `json:"sharpness,omitempty"`
	LensArtifacts        string `json:"lens_artifacts,omitempty"`
	CompositionTechnique string `json:"composition_technique,omitempty"`
	Depth                string `json:"depth,omitempty"`
	Geometry             string `json:"geometry,omitempty"`
	ColorPalette         string `json:"color_palette,omitempty"`
	SemanticPops         string `json:"semantic_pops,omitempty"`
	GradingStyle         string `json:"grading_style,omitempty"`
	TimeOfDay            string `json:"time_of_day,omitempty"`
	Setting              string `json:"setting,omitempty"`
	Weather              string `json:"weather,omitempty"`
	FacesCount           int    `json:"faces_count"`
	Vibe                 string `json:"vibe,omitempty"`
	AltText              string `json:"alt_text,omitempty"`
}

type ScoreFields struct {
	Score float64 `json:"score"`
	Label string  `json:"label,omitempty"`
}

type ScoreV2Fields struct {
	Topiq     float64 `json:"topiq"`
	Musiq     float64 `json:"musiq"`
	Laion     float64 `json:"laion"`
	Composite float64 `json:"composite"`
	Label     string  `json:"label,omitempty"`
}

type DepthFields struct {
	NearPct float64 `json:"near_pct"`
	MidPct  float64 `json:"mid_pct"`
	FarPct  float64 `json:"far_pct"`
}

type PixelFields struct {
	MeanBrightness float64 `json:"mean_brightness"`
	ContrastRatio  float64 `json:"contrast_ratio"`
	WBShiftR       float64 `json:"wb_shift_r"`
	WBShiftB       float64 `json:"wb_shift_b"`
	NoiseEstimate  float64 `json:"noise_estimate"`
	MeanSaturation float64 `json:"mean_saturation"`
}

// BuildPhoto flattens one store.ExportRow into a Photo record, composing
// tier URLs from baseURL and computing the dominant hue and focus point
// (§4.8).
func BuildPhoto(row store.ExportRow, baseURL string) Photo {
	img := row.Image
	p := Photo{
		ID:          img.ID,
		FileName:    img.FileName,
		Category:    img.Category,
		Subcategory: img.Subcategory,
		Width:       img.Width,
		Height:      img.Height,
		AspectRatio: img.AspectRatio,
		Orientation: img.Orientation,
		CameraMake:  row.CameraMake,
		CameraModel: row.CameraModel,
		Medium:      img.Medium,
		FilmStock:   img.FilmStock,
		Monochrome:  img.Monochrome,
		FaceCount:   row.FaceCount,
		ObjectCount: row.ObjectCount,
		TextCount:   row.TextCount,
		EmotionCount: row.EmotionCount,
		TopObjects:  row.TopObjects,
		Emotions:    row.Emotions,
		Tags:        row.Tags,
	}

	for _, c := range row.DominantColors {
		p.Palette = append(p.Palette, c.Hex)
	}
	p.DominantHue = dominantHue(row.DominantColors)

	if row.HasGemini {
		g := row.Gemini
		p.Gemini = &GeminiFields{
			Exposure: g.Exposure, Sharpness: g.Sharpness, LensArtifacts: g.LensArtifacts,
			CompositionTechnique: g.CompositionTechnique, Depth: g.Depth, Geometry: g.Geometry,
			ColorPalette: g.ColorPalette, SemanticPops: g.SemanticPops, GradingStyle: g.GradingStyle,
			TimeOfDay: g.TimeOfDay, Setting: g.Setting, Weather: g.Weather,
			FacesCount: g.FacesCount, Vibe: g.Vibe, AltText: g.AltText,
		}
	}
	if row.HasAesthetic {
		p.Aesthetic = &ScoreFields{Score: row.AestheticScore, Label: row.AestheticLabel}
	}
	if row.HasAestheticV2 {
		p.AestheticV2 = &ScoreV2Fields{
			Topiq: row.AestheticV2Topiq, Musiq: row.AestheticV2Musiq,
			Laion: row.AestheticV2Laion, Composite: row.AestheticV2Composite, Label: row.AestheticV2Label,
		}
	}
	if row.HasCaption {
		p.Caption = row.Caption
	}
	if row.HasFlorence {
		p.FlorenceShort, p.FlorenceDetailed, p.FlorenceMoreDetail = row.FlorenceShort, row.FlorenceDetail, row.FlorenceMore
	}
	if row.HasScene {
		p.Scene, p.Environment = row.SceneLabel, row.Environment
	}
	if row.HasStyle {
		p.Style = row.StyleLabel
	}
	if row.HasDepth {
		p.Depth = &DepthFields{NearPct: row.NearPct, MidPct: row.MidPct, FarPct: row.FarPct}
	}
	if row.HasPixelAnalysis {
		p.Pixel = &PixelFields{
			MeanBrightness: row.MeanBrightness, ContrastRatio: row.ContrastRatio,
			WBShiftR: row.WBShiftR, WBShiftB: row.WBShiftB,
			NoiseEstimate: row.NoiseEstimate, MeanSaturation: row.MeanSaturation,
		}
	}
	if row.HasEXIF {
		p.DateTaken = row.DateTaken
		p.FocalLength = row.FocalLength
	}
	if row.HasGPS {
		p.GPSLat, p.GPSLon, p.HasGPS = row.GPSLat, row.GPSLon, true
	}

	p.Tiers = tierURLs(row.Tiers, baseURL, img.ID)
	p.Focus = focusPoint(row)
	return p
}

func tierURLs(tiers []store.Tier, baseURL, imageID string) map[string]string {
	if len(tiers) == 0 {
		return nil
	}
	out := make(map[string]string, len(tiers))
	for _, t := range tiers {
		if baseURL != "" {
			out[t.TierName] = fmt.Sprintf("%s/%s/%s/%s.%s", baseURL, t.TierName, t.Format, imageID, extFor(t.Format))
		} else {
			out[t.TierName] = t.LocalPath
		}
	}
	return out
}

func extFor(format string) string {
	if format == "webp" {
		return "webp"
	}
	return "jpg"
}

// dominantHue returns the hue (in degrees) of the palette's most
// saturated entry, via HSL computed from its sRGB value (§4.8: "dominant
// hue derived from the HSL of the most saturated palette entry").
func dominantHue(colors []store.DominantColor) float64 {
	var best store.DominantColor
	bestSat := -1.0
	for _, c := range colors {
		_, s, _ := rgbToHSL(c.R, c.G, c.B)
		if s > bestSat {
			bestSat, best = s, c
		}
	}
	if bestSat < 0 {
		return 0
	}
	h, _, _ := rgbToHSL(best.R, best.G, best.B)
	return h
}

func rgbToHSL(r, g, b int) (h, s, l float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}
	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case rf:
		h = 60 * math.Mod((gf-bf)/d, 6)
	case gf:
		h = 60 * ((bf-rf)/d + 2)
	default:
		h = 60 * ((rf-gf)/d + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, l
}

// focusPoint implements the 6-step priority cascade (§4.8): face boxes,
// then closed-list animal boxes, then person boxes, then saliency peak,
// then foreground centroid, else the image center.
func focusPoint(row store.ExportRow) [2]int {
	if pt, ok := unionCenter(row.FaceBoxes); ok {
		return pt
	}
	if pt, ok := unionCenter(row.AnimalBoxes); ok {
		return pt
	}
	if pt, ok := unionCenter(row.PersonBoxes); ok {
		return pt
	}
	if row.HasSaliency {
		return clampPoint(row.SaliencyPeakX*100, row.SaliencyPeakY*100)
	}
	if row.HasForeground && (row.ForegroundCentroidX != 0 || row.ForegroundCentroidY != 0) {
		return clampPoint(row.ForegroundCentroidX*100, row.ForegroundCentroidY*100)
	}
	return [2]int{50, 50}
}

// unionCenter returns the center of the union bounding box of boxes,
// expressed as a percentage point; boxes are stored as fractional
// [0,1] coordinates by every detector phase in this pack.
func unionCenter(boxes [][4]float64) ([2]int, bool) {
	if len(boxes) == 0 {
		return [2]int{}, false
	}
	x1, y1 := boxes[0][0], boxes[0][1]
	x2, y2 := boxes[0][2], boxes[0][3]
	for _, b := range boxes[1:] {
		x1, y1 = math.Min(x1, b[0]), math.Min(y1, b[1])
		x2, y2 = math.Max(x2, b[2]), math.Max(y2, b[3])
	}
	return clampPoint((x1+x2)/2*100, (y1+y2)/2*100), true
}

func clampPoint(x, y float64) [2]int {
	return [2]int{clampPct(x), clampPct(y)}
}

func clampPct(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
