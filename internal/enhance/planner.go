// Package enhance implements the Enhancement Planner (C6, §4.6) and
// Enhancer (C7, §4.7): a closed camera-profile table drives a six-step
// correction recipe computed from pixel statistics (and, for v2, semantic
// signals from scene/style/Gemini/depth/face-count), which the enhancer
// then executes as pixel math against a decoded display-tier buffer.
package enhance

import (
	"fmt"
	"math"

	"github.com/fpang/madphotos-core/internal/store"
)

// Inputs gathers everything the planner reads for one image. V1 plans only
// ever populate the Pixel* and Profile fields; the remaining fields are
// v2-only semantic signals, left at their zero value for a v1 plan.
type Inputs struct {
	ImageID string
	Version int
	Profile CameraProfile

	MeanBrightness  float64
	ContrastRatio   float64
	WBShiftR        float64
	WBShiftB        float64
	ClipLowPct      float64
	ClipHighPct     float64
	MeanSaturation  float64
	NoiseEstimate   float64
	LowKey          bool
	HighKey         bool

	// v2 only
	SceneWarm           float64 // additive warmth term from scene classification
	VibeWarmth          float64 // additive warmth term from Gemini's vibe set
	TimeOfDay           string  // "golden_hour" | "blue_hour" | ""
	MoodyVibe           bool
	StyleLabel          string
	FarPct              float64 // from depth_estimations
	DarkScene           bool    // from scene classification
	FaceCount           int
	GeminiExposureLabel string // "good" | "over" | "under" | ""
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Plan computes the full six-step recipe for one image (§4.6). The
// returned plan has Status "planned"; the enhancer transitions it to
// "enhanced" or "failed".
func Plan(in Inputs) store.EnhancementPlan {
	p := store.EnhancementPlan{
		ImageID:       in.ImageID,
		Version:       in.Version,
		PreBrightness: in.MeanBrightness,
		PreContrast:   in.ContrastRatio,
		PreWBR:        in.WBShiftR,
		PreWBB:        in.WBShiftB,
		Status:        store.PlanPlanned,
	}

	planWhiteBalance(&p, in)
	planExposure(&p, in)
	planShadowsHighlights(&p, in)
	planContrast(&p, in)
	planSaturation(&p, in)
	planSharpen(&p, in)

	return p
}

// Step 1: white balance (§4.6 #1).
func planWhiteBalance(p *store.EnhancementPlan, in Inputs) {
	if in.Profile.IsMono || (math.Abs(in.WBShiftR) < 0.02 && math.Abs(in.WBShiftB) < 0.02) {
		p.SkipWB = true
		p.WBReason = "monochrome body or white balance already neutral"
		return
	}

	warmth := 0.0
	if in.Version == 2 {
		warmth = in.SceneWarm + in.VibeWarmth
		switch in.TimeOfDay {
		case "golden_hour":
			warmth += 0.03
		case "blue_hour":
			warmth -= 0.02
		}
	}

	p.WBCorrectionR = clamp(1-in.WBShiftR*in.Profile.WBStrength+warmth, 0.80, 1.25)
	p.WBCorrectionB = clamp(1-in.WBShiftB*in.Profile.WBStrength-warmth, 0.80, 1.25)
	p.WBReason = fmt.Sprintf("wb_shift_r=%.3f wb_shift_b=%.3f strength=%.2f warmth=%.3f", in.WBShiftR, in.WBShiftB, in.Profile.WBStrength, warmth)
}

// Step 2: exposure / gamma (§4.6 #2).
func planExposure(p *store.EnhancementPlan, in Inputs) {
	if in.LowKey || in.HighKey {
		p.SkipExposure = true
		p.ExposureReason = "image already low-key or high-key"
		return
	}

	target := 110.0
	if in.Version == 2 && in.MoodyVibe {
		target -= 0.02 * 255
	}
	deficit := target - in.MeanBrightness

	faceCaution := 1.0
	if in.FaceCount > 0 {
		faceCaution = 0.7
	}
	geminiConf := 1.0
	switch in.GeminiExposureLabel {
	case "good":
		geminiConf = 0.5
	case "over", "under":
		geminiConf = 1.2
	}

	magnitude := in.Profile.ExpStrength * faceCaution * geminiConf
	gamma := 1.0 - (deficit/255.0)*magnitude*1.5
	p.Gamma = clamp(gamma, 0.70, 1.30)
	p.ExposureReason = fmt.Sprintf("target=%.1f mean=%.1f magnitude=%.3f", target, in.MeanBrightness, magnitude)
}

// Step 3: shadow lift / highlight pull (§4.6 #3).
func planShadowsHighlights(p *store.EnhancementPlan, in Inputs) {
	lowExcess := in.ClipLowPct - in.Profile.ShadowThr
	highExcess := in.ClipHighPct - in.Profile.HighlightThr

	bonus := 0.0
	if in.Version == 2 && (in.FarPct > 50 || in.DarkScene) {
		bonus = 0.05
	}

	if lowExcess > 0 {
		p.ShadowLift = math.Min(0.45, lowExcess*0.03+bonus)
	}
	if highExcess > 0 {
		p.HighlightPull = math.Min(0.35, highExcess*0.02+bonus)
	}
	p.ShadowsReason = fmt.Sprintf("clip_low_excess=%.2f clip_high_excess=%.2f bonus=%.2f", lowExcess, highExcess, bonus)
}

// Step 4: contrast (§4.6 #4).
func planContrast(p *store.EnhancementPlan, in Inputs) {
	var base float64
	switch {
	case in.ContrastRatio < 0.55:
		base = 0.6
	case in.ContrastRatio < 0.75:
		base = 0.4
	case in.ContrastRatio < 0.92:
		base = 0.15
	default:
		base = 0
	}

	styleM, vibeM := 1.0, 1.0
	if in.Version == 2 {
		styleM = styleMult(styleContrastMult, in.StyleLabel)
		if in.MoodyVibe {
			vibeM = 1.15
		}
	}

	p.ContrastStrength = clamp(base*styleM*vibeM, 0, 0.8)
	p.SkipContrast = p.ContrastStrength == 0
	p.ContrastReason = fmt.Sprintf("contrast_ratio=%.3f base=%.2f style=%.2f vibe=%.2f", in.ContrastRatio, base, styleM, vibeM)
}

// Step 5: saturation (§4.6 #5).
func planSaturation(p *store.EnhancementPlan, in Inputs) {
	if in.Profile.IsMono {
		p.SkipSaturation = true
		p.SaturationReason = "monochrome body"
		return
	}

	var base float64
	switch {
	case in.MeanSaturation < 0.15:
		base = 1.25
	case in.MeanSaturation < 0.30:
		base = 1.10
	case in.MeanSaturation < 0.55:
		base = 1.00
	default:
		base = 0.90
	}

	styleM, sceneBonus := 1.0, 0.0
	if in.Version == 2 {
		styleM = styleMult(styleSaturationMult, in.StyleLabel)
		if in.DarkScene {
			sceneBonus = -0.05
		}
	}

	scale := clamp(base*styleM+sceneBonus, 0.85, math.Min(1.30, in.Profile.SatCap))
	if math.Abs(scale-1.0) < 0.02 {
		p.SkipSaturation = true
		p.SaturationReason = "saturation scale within neutral band"
		return
	}
	p.SaturationScale = scale
	p.SaturationReason = fmt.Sprintf("mean_saturation=%.3f base=%.2f style=%.2f scene_bonus=%.2f", in.MeanSaturation, base, styleM, sceneBonus)
}

// sharpenRecipe is the closed (radius, percent, threshold) table step 6
// picks from (§4.6 #6).
type sharpenRecipe struct {
	radius    float64
	percent   float64
	threshold int
}

var (
	recipePreserveGrain = sharpenRecipe{0.8, 40, 5}
	recipeMono          = sharpenRecipe{1.3, 70, 2}
	recipeLowNoise      = sharpenRecipe{1.5, 80, 2}
	recipeMidNoise      = sharpenRecipe{1.2, 60, 3}
	recipeHighNoise     = sharpenRecipe{0.8, 40, 5}
)

var styleSharpenMult = map[string]float64{
	"street":      1.2,
	"portrait":    0.9,
	"landscape":   1.1,
	"documentary": 1.0,
}

// Step 6: sharpening (§4.6 #6).
func planSharpen(p *store.EnhancementPlan, in Inputs) {
	var r sharpenRecipe
	switch {
	case in.Profile.PreserveGrain:
		r = recipePreserveGrain
	case in.Profile.IsMono:
		r = recipeMono
	case in.NoiseEstimate < 3:
		r = recipeLowNoise
	case in.NoiseEstimate < 8:
		r = recipeMidNoise
	default:
		r = recipeHighNoise
	}

	styleM := 1.0
	if in.Version == 2 {
		styleM = styleMult(styleSharpenMult, in.StyleLabel)
	}
	faceM := 1.0
	if in.FaceCount > 0 {
		faceM = 0.8
	}

	p.SharpenRadius = r.radius
	p.SharpenPercent = clamp(r.percent*styleM*faceM, 20, 150)
	p.SharpenThreshold = r.threshold
	p.SharpenReason = fmt.Sprintf("noise=%.2f preserve_grain=%v mono=%v style=%.2f face=%.2f", in.NoiseEstimate, in.Profile.PreserveGrain, in.Profile.IsMono, styleM, faceM)
}
