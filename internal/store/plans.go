package store

import (
	"context"
	"database/sql"
	"time"
)

func planTable(version int) string {
	if version == 2 {
		return "enhancement_plans_v2"
	}
	return "enhancement_plans"
}

// UpsertPlan writes the full 6-step recipe computed by the planner
// (§4.6). --force reruns of the plan phase replace the row in place so
// the enhancer always reads the latest recipe for an image.
func (s *Store) UpsertPlan(ctx context.Context, p EnhancementPlan) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	table := planTable(p.Version)

	_, err := s.exec(ctx, `
		INSERT INTO `+table+` (
			image_id, pre_brightness, pre_contrast, pre_wb_r, pre_wb_b,
			skip_wb, wb_correction_r, wb_correction_b, wb_reason,
			skip_exposure, gamma, exposure_reason,
			shadow_lift, highlight_pull, shadows_reason,
			skip_contrast, contrast_strength, contrast_reason,
			skip_saturation, saturation_scale, saturation_reason,
			sharpen_radius, sharpen_percent, sharpen_threshold, sharpen_reason,
			output_path, post_brightness, post_wb_shift_r, post_contrast, output_size_bytes,
			status, error_text, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(image_id) DO UPDATE SET
			pre_brightness=excluded.pre_brightness, pre_contrast=excluded.pre_contrast,
			pre_wb_r=excluded.pre_wb_r, pre_wb_b=excluded.pre_wb_b,
			skip_wb=excluded.skip_wb, wb_correction_r=excluded.wb_correction_r,
			wb_correction_b=excluded.wb_correction_b, wb_reason=excluded.wb_reason,
			skip_exposure=excluded.skip_exposure, gamma=excluded.gamma, exposure_reason=excluded.exposure_reason,
			shadow_lift=excluded.shadow_lift, highlight_pull=excluded.highlight_pull, shadows_reason=excluded.shadows_reason,
			skip_contrast=excluded.skip_contrast, contrast_strength=excluded.contrast_strength, contrast_reason=excluded.contrast_reason,
			skip_saturation=excluded.skip_saturation, saturation_scale=excluded.saturation_scale, saturation_reason=excluded.saturation_reason,
			sharpen_radius=excluded.sharpen_radius, sharpen_percent=excluded.sharpen_percent,
			sharpen_threshold=excluded.sharpen_threshold, sharpen_reason=excluded.sharpen_reason,
			output_path=excluded.output_path, post_brightness=excluded.post_brightness,
			post_wb_shift_r=excluded.post_wb_shift_r, post_contrast=excluded.post_contrast,
			output_size_bytes=excluded.output_size_bytes,
			status=excluded.status, error_text=excluded.error_text, updated_at=excluded.updated_at`,
		p.ImageID, p.PreBrightness, p.PreContrast, p.PreWBR, p.PreWBB,
		boolToInt(p.SkipWB), p.WBCorrectionR, p.WBCorrectionB, p.WBReason,
		boolToInt(p.SkipExposure), p.Gamma, p.ExposureReason,
		p.ShadowLift, p.HighlightPull, p.ShadowsReason,
		boolToInt(p.SkipContrast), p.ContrastStrength, p.ContrastReason,
		boolToInt(p.SkipSaturation), p.SaturationScale, p.SaturationReason,
		p.SharpenRadius, p.SharpenPercent, p.SharpenThreshold, p.SharpenReason,
		p.OutputPath, p.PostBrightness, p.PostWBShiftR, p.PostContrast, p.OutputSizeBytes,
		p.Status, p.ErrorText, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *Store) GetPlan(ctx context.Context, imageID string, version int) (EnhancementPlan, error) {
	table := planTable(version)
	row := s.db.QueryRowContext(ctx, `
		SELECT image_id, pre_brightness, pre_contrast, pre_wb_r, pre_wb_b,
		       skip_wb, wb_correction_r, wb_correction_b, COALESCE(wb_reason,''),
		       skip_exposure, gamma, COALESCE(exposure_reason,''),
		       shadow_lift, highlight_pull, COALESCE(shadows_reason,''),
		       skip_contrast, contrast_strength, COALESCE(contrast_reason,''),
		       skip_saturation, saturation_scale, COALESCE(saturation_reason,''),
		       sharpen_radius, sharpen_percent, sharpen_threshold, COALESCE(sharpen_reason,''),
		       COALESCE(output_path,''), post_brightness, post_wb_shift_r, post_contrast, output_size_bytes,
		       status, COALESCE(error_text,''), created_at, updated_at
		FROM `+table+` WHERE image_id = ?`, imageID)

	var p EnhancementPlan
	var skipWB, skipExposure, skipContrast, skipSaturation int
	err := row.Scan(
		&p.ImageID, &p.PreBrightness, &p.PreContrast, &p.PreWBR, &p.PreWBB,
		&skipWB, &p.WBCorrectionR, &p.WBCorrectionB, &p.WBReason,
		&skipExposure, &p.Gamma, &p.ExposureReason,
		&p.ShadowLift, &p.HighlightPull, &p.ShadowsReason,
		&skipContrast, &p.ContrastStrength, &p.ContrastReason,
		&skipSaturation, &p.SaturationScale, &p.SaturationReason,
		&p.SharpenRadius, &p.SharpenPercent, &p.SharpenThreshold, &p.SharpenReason,
		&p.OutputPath, &p.PostBrightness, &p.PostWBShiftR, &p.PostContrast, &p.OutputSizeBytes,
		&p.Status, &p.ErrorText, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return EnhancementPlan{}, ErrNotFound
	}
	p.Version = version
	p.SkipWB, p.SkipExposure, p.SkipContrast, p.SkipSaturation = skipWB != 0, skipExposure != 0, skipContrast != 0, skipSaturation != 0
	return p, err
}

func (s *Store) SetPlanStatus(ctx context.Context, imageID string, version int, status, errText string) error {
	table := planTable(version)
	_, err := s.exec(ctx, `UPDATE `+table+` SET status = ?, error_text = ?, updated_at = ? WHERE image_id = ?`,
		status, errText, time.Now().UTC(), imageID)
	return err
}

// ImagesMissingPlan mirrors ImagesMissingSignal for the version-specific
// plan table, since the plan tables are named by version rather than a
// single fixed name.
func (s *Store) ImagesMissingPlan(ctx context.Context, version int) ([]string, error) {
	return s.ImagesMissingSignal(ctx, planTable(version))
}
