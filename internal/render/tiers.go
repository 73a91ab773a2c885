// Package render implements the Tier Renderer (C4, §4.4): decode one
// source image, resize down the configured pyramid, apply an optional
// unsharp mask, and encode each (tier, format) pair to disk.
package render

// Unsharp holds the parameters applied after resize when non-zero. A
// zero Radius means no sharpening, matching the "none" entries in §4.4's
// tier table.
type Unsharp struct {
	Radius    float64
	Percent   float64 // amount, expressed as a percentage (0-500 typical)
	Threshold int
}

// TierSpec is one row of §4.4's tier table.
type TierSpec struct {
	Name         string
	LongEdge     int
	JPEGQuality  int
	WebPQuality  int // 0 means no WebP output for this tier
	Progressive  bool
	Subsampling  string // "4:4:4" | "4:2:2" | "4:2:0" — declared here only, not stored on the Tier row; see encode.go
	Sharpen      Unsharp
}

// OriginalTiers is the full 6-tier pyramid rendered for every original
// image.
var OriginalTiers = []TierSpec{
	{Name: "full", LongEdge: 3840, JPEGQuality: 92, WebPQuality: 0, Progressive: true, Subsampling: "4:4:4", Sharpen: Unsharp{0.5, 30, 2}},
	{Name: "display", LongEdge: 2048, JPEGQuality: 88, WebPQuality: 82, Progressive: true, Subsampling: "4:2:2", Sharpen: Unsharp{0.5, 40, 2}},
	{Name: "mobile", LongEdge: 1280, JPEGQuality: 85, WebPQuality: 80, Progressive: true, Subsampling: "4:2:2", Sharpen: Unsharp{0.4, 50, 2}},
	{Name: "thumb", LongEdge: 480, JPEGQuality: 82, WebPQuality: 78, Progressive: false, Subsampling: "4:2:0", Sharpen: Unsharp{0.3, 60, 2}},
	{Name: "micro", LongEdge: 64, JPEGQuality: 70, WebPQuality: 68, Progressive: false, Subsampling: "4:2:0"},
	{Name: "gemini", LongEdge: 2048, JPEGQuality: 90, WebPQuality: 0, Progressive: false, Subsampling: "4:2:2", Sharpen: Unsharp{0.5, 35, 2}},
}

// VariantTiers is the 4-tier subset rendered for AI-generated variants,
// sharing parameters with the 2048/1280/480/64 rows of OriginalTiers.
var VariantTiers = []TierSpec{
	{Name: "v1024", LongEdge: 1024, JPEGQuality: 88, WebPQuality: 82, Progressive: true, Subsampling: "4:2:2", Sharpen: Unsharp{0.5, 40, 2}},
	{Name: "v768", LongEdge: 768, JPEGQuality: 85, WebPQuality: 80, Progressive: true, Subsampling: "4:2:2", Sharpen: Unsharp{0.4, 50, 2}},
	{Name: "v480", LongEdge: 480, JPEGQuality: 82, WebPQuality: 78, Progressive: false, Subsampling: "4:2:0", Sharpen: Unsharp{0.3, 60, 2}},
	{Name: "v64", LongEdge: 64, JPEGQuality: 70, WebPQuality: 68, Progressive: false, Subsampling: "4:2:0"},
}

// Formats returns the format names ("jpeg", "webp") this tier writes, skipping
// WebP when the tier declares no WebP quality (full and gemini, §4.4).
func (t TierSpec) Formats() []string {
	if t.WebPQuality > 0 {
		return []string{"jpeg", "webp"}
	}
	return []string{"jpeg"}
}

func (u Unsharp) Enabled() bool { return u.Radius > 0 }
