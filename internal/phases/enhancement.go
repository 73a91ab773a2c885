package phases

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/enhance"
	"github.com/fpang/madphotos-core/internal/render"
	"github.com/fpang/madphotos-core/internal/store"
)

// PlanEnhancements runs the Enhancement Planner (§4.6) for every image
// whose plan of the given version is missing or not yet enhanced or
// accepted, or for every image when force is set.
// It is one of the filesystem/cross-table phases (like register/render)
// that does not fit the single-table anti-join phase.Phase contract, since
// a plan's own status (not row presence) decides whether it needs replanning.
func PlanEnhancements(ctx context.Context, st *store.Store, root config.Root, version int, force bool) (planned, skipped, failed int) {
	ids, err := discoverFrom(ctx, st)
	if err != nil {
		log.Error().Err(err).Msg("enhancement-plan: discover failed")
		return 0, 0, 1
	}

	for _, id := range ids {
		if !force {
			existing, err := st.GetPlan(ctx, id, version)
			if err == nil && (existing.Status == store.PlanEnhanced || existing.Status == store.PlanAccepted) {
				skipped++
				continue
			}
		}

		in, err := gatherPlanInputs(ctx, st, id, version)
		if err != nil {
			log.Warn().Err(err).Str("image_id", id).Msg("enhancement-plan: missing inputs, skipping")
			failed++
			continue
		}

		plan := enhance.Plan(in)
		if err := st.UpsertPlan(ctx, plan); err != nil {
			log.Error().Err(err).Str("image_id", id).Msg("enhancement-plan: upsert failed")
			failed++
			continue
		}
		planned++
	}

	log.Info().Int("planned", planned).Int("skipped", skipped).Int("failed", failed).Int("version", version).Msg("enhancement-plan: complete")
	return planned, skipped, failed
}

// gatherPlanInputs reads the pixel-analysis row and, for v2, the scene/
// style/depth/gemini/face-count signals the planner's recipe expands on
// (§4.6's "Input per image").
func gatherPlanInputs(ctx context.Context, st *store.Store, imageID string, version int) (enhance.Inputs, error) {
	in := enhance.Inputs{ImageID: imageID, Version: version}

	row := st.DB().QueryRowContext(ctx, `
		SELECT mean_brightness, contrast_ratio, wb_shift_r, wb_shift_b,
		       clip_low_pct, clip_high_pct, mean_saturation, noise_estimate, low_key, high_key
		FROM pixel_analysis WHERE image_id = ?`, imageID)
	var lowKey, highKey int
	if err := row.Scan(&in.MeanBrightness, &in.ContrastRatio, &in.WBShiftR, &in.WBShiftB,
		&in.ClipLowPct, &in.ClipHighPct, &in.MeanSaturation, &in.NoiseEstimate, &lowKey, &highKey); err != nil {
		return in, fmt.Errorf("pixel-analysis row: %w", err)
	}
	in.LowKey, in.HighKey = lowKey != 0, highKey != 0

	body, err := cameraBodyFor(ctx, st, imageID)
	if err != nil {
		return in, err
	}
	in.Profile = enhance.ProfileForBody(body)

	if version == 2 {
		populateV2Inputs(ctx, st, imageID, &in)
	}
	return in, nil
}

func cameraBodyFor(ctx context.Context, st *store.Store, imageID string) (string, error) {
	var body sql.NullString
	err := st.DB().QueryRowContext(ctx, `SELECT camera_model FROM image_exif WHERE image_id = ?`, imageID).Scan(&body)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return body.String, nil
}

// populateV2Inputs fills the semantic fields the v2 recipe reads; each
// source table is optional (a v2 plan can still be computed for an image
// missing, say, a Gemini call), so every lookup tolerates ErrNoRows.
func populateV2Inputs(ctx context.Context, st *store.Store, imageID string, in *enhance.Inputs) {
	var environment sql.NullString
	if err := st.DB().QueryRowContext(ctx, `SELECT environment FROM scene_classifications WHERE image_id = ?`, imageID).Scan(&environment); err == nil {
		// environment is drawn from the closed {indoor, outdoor, unknown} set
		// (sceneFromColorStats never emits anything finer-grained), so dark-
		// scene detection combines "indoor" with the pixel-analysis brightness
		// already gathered into in.MeanBrightness rather than checking for a
		// label that is never produced.
		in.DarkScene = environment.String == "indoor" && in.MeanBrightness < 80
		if environment.String == "outdoor" {
			in.SceneWarm = 0.01
		}
	}

	var styleLabel sql.NullString
	if err := st.DB().QueryRowContext(ctx, `SELECT label FROM style_classifications WHERE image_id = ?`, imageID).Scan(&styleLabel); err == nil {
		in.StyleLabel = styleLabel.String
	}

	var farPct sql.NullFloat64
	if err := st.DB().QueryRowContext(ctx, `SELECT far_pct FROM depth_estimations WHERE image_id = ?`, imageID).Scan(&farPct); err == nil {
		in.FarPct = farPct.Float64
	}

	var timeOfDay, vibe, exposure sql.NullString
	var facesCount sql.NullInt64
	err := st.DB().QueryRowContext(ctx, `
		SELECT time_of_day, vibe, exposure, faces_count FROM gemini_analysis WHERE image_id = ?`, imageID).
		Scan(&timeOfDay, &vibe, &exposure, &facesCount)
	if err == nil {
		in.TimeOfDay = timeOfDay.String
		in.GeminiExposureLabel = exposure.String
		in.FaceCount = int(facesCount.Int64)
		// vibe is stored "|"-joined (gemini_analysis.vibe can carry several
		// tags per image), so membership needs a split rather than exact
		// equality — otherwise "moody|energetic" silently never matches.
		for _, tag := range strings.Split(vibe.String, "|") {
			if tag == "moody" {
				in.MoodyVibe = true
				in.VibeWarmth = -0.01
				break
			}
		}
	}

	var faceCount int
	if err := st.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM face_detections WHERE image_id = ? AND face_index >= 0`, imageID).Scan(&faceCount); err == nil && faceCount > in.FaceCount {
		in.FaceCount = faceCount
	}
}

// EnhanceImages executes the Enhancer (§4.7) over every planned-but-not-yet-
// enhanced image for the given plan version.
func EnhanceImages(ctx context.Context, st *store.Store, root config.Root, version int, force bool) (enhanced, failed int) {
	ids, err := discoverFrom(ctx, st)
	if err != nil {
		log.Error().Err(err).Msg("enhancement-execute: discover failed")
		return 0, 1
	}

	tier := "enhanced"
	if version == 2 {
		tier = "enhanced_v2"
	}

	for _, id := range ids {
		plan, err := st.GetPlan(ctx, id, version)
		if err != nil {
			continue // no plan yet; enhancement-plan must run first
		}
		if !force && (plan.Status == store.PlanEnhanced || plan.Status == store.PlanAccepted) {
			continue
		}

		if err := enhanceOne(ctx, st, root, tier, &plan); err != nil {
			plan.Status = store.PlanFailed
			plan.ErrorText = err.Error()
			_ = st.UpsertPlan(ctx, plan)
			log.Error().Err(err).Str("image_id", id).Msg("enhancement-execute: failed")
			failed++
			continue
		}
		enhanced++
	}

	log.Info().Int("enhanced", enhanced).Int("failed", failed).Int("version", version).Msg("enhancement-execute: complete")
	return enhanced, failed
}

func enhanceOne(ctx context.Context, st *store.Store, root config.Root, tier string, plan *store.EnhancementPlan) error {
	d, err := decodeTier(displayPath(root, plan.ImageID))
	if err != nil {
		return errNoTier("display", plan.ImageID, err)
	}

	steps := enhance.PlanSteps{
		SkipWB: plan.SkipWB, WBCorrectionR: plan.WBCorrectionR, WBCorrectionB: plan.WBCorrectionB,
		SkipExposure: plan.SkipExposure, Gamma: plan.Gamma,
		ShadowLift: plan.ShadowLift, HighlightPull: plan.HighlightPull,
		SkipContrast: plan.SkipContrast, ContrastStrength: plan.ContrastStrength,
		SkipSaturation: plan.SkipSaturation, SaturationScale: plan.SaturationScale,
		SharpenRadius: plan.SharpenRadius, SharpenPercent: plan.SharpenPercent, SharpenThreshold: plan.SharpenThreshold,
	}
	out := enhance.Execute(d.Image, steps)

	encoded, err := render.EncodeJPEG(out, 92)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	destDir := filepath.Join(root.RenderedTier(tier), "jpeg")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(destDir, plan.ImageID+".jpg")
	if err := writeAtomic(dest, encoded); err != nil {
		return err
	}

	post := analyzePixels(out)
	plan.OutputPath = dest
	plan.PostBrightness, _ = post["mean_brightness"].(float64)
	plan.PostWBShiftR, _ = post["wb_shift_r"].(float64)
	plan.PostContrast, _ = post["contrast_ratio"].(float64)
	plan.OutputSizeBytes = int64(len(encoded))
	plan.Status = store.PlanEnhanced
	plan.ErrorText = ""
	return st.UpsertPlan(ctx, *plan)
}

func writeAtomic(dest string, data []byte) error {
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}
