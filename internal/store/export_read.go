package store

import "context"

// ExportRow is the denormalized join the exporter (C8) writes one record
// per image from: identity + curation + every signal family that has
// data for that image. Optional signal columns are left at their zero
// value when the corresponding phase never ran for this image — the
// exporter's job is to flatten, not to require completeness.
type ExportRow struct {
	Image          Image
	Tiers          []Tier
	DominantColors []DominantColor

	AestheticScore float64
	AestheticLabel string
	HasAesthetic   bool

	AestheticV2Topiq     float64
	AestheticV2Musiq     float64
	AestheticV2Laion     float64
	AestheticV2Composite float64
	AestheticV2Label     string
	HasAestheticV2       bool

	MeanBrightness   float64
	ContrastRatio    float64
	WBShiftR         float64
	WBShiftB         float64
	NoiseEstimate    float64
	MeanSaturation   float64
	DominantHue      float64
	HasPixelAnalysis bool

	PHash   string
	HasHash bool

	SceneLabel    string
	Environment   string
	HasScene      bool
	StyleLabel    string
	HasStyle      bool

	NearPct, MidPct, FarPct float64
	HasDepth                bool

	Caption         string
	HasCaption      bool
	FlorenceShort   string
	FlorenceDetail  string
	FlorenceMore    string
	HasFlorence     bool

	Gemini    GeminiExport
	HasGemini bool

	CameraMake    string
	CameraModel   string
	Lens          string
	FocalLength   float64
	DateTaken     string
	GPSLat        float64
	GPSLon        float64
	HasGPS        bool
	HasEXIF       bool

	FaceCount    int
	ObjectCount  int
	TextCount    int
	EmotionCount int
	TopObjects   []string
	Emotions     []string

	Tags []string

	SaliencyPeakX, SaliencyPeakY float64
	HasSaliency                  bool
	ForegroundCentroidX          float64
	ForegroundCentroidY          float64
	HasForeground                bool
	FaceBoxes                    [][4]float64
	AnimalBoxes                  [][4]float64
	PersonBoxes                  [][4]float64
}

// GeminiExport mirrors every parsed Gemini field the spec requires in the
// per-image export record (§4.8: "every parsed Gemini field").
type GeminiExport struct {
	Exposure             string
	Sharpness            string
	LensArtifacts        string
	CompositionTechnique string
	Depth                string
	Geometry             string
	ColorPalette         string
	SemanticPops         string
	GradingStyle         string
	TimeOfDay            string
	Setting              string
	Weather              string
	FacesCount           int
	Vibe                 string
	AltText              string
}

var animalLabels = map[string]bool{
	"cat": true, "dog": true, "bird": true, "horse": true, "sheep": true,
	"cow": true, "elephant": true, "bear": true, "zebra": true, "giraffe": true,
}

// LoadExportRow assembles one ExportRow by joining images with its tiers,
// palette and best-effort signal families. The exporter calls this once
// per image rather than the framework issuing one giant multi-way SQL
// join, matching §4.8's description of export as a per-image gather step
// feeding a final denormalized write.
func (s *Store) LoadExportRow(ctx context.Context, imageID string) (ExportRow, error) {
	img, err := s.GetImage(ctx, imageID)
	if err != nil {
		return ExportRow{}, err
	}
	row := ExportRow{Image: img}

	if row.Tiers, err = s.TiersForImage(ctx, imageID); err != nil {
		return ExportRow{}, err
	}
	if row.DominantColors, err = s.DominantColorsForImage(ctx, imageID); err != nil {
		return ExportRow{}, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT score, COALESCE(label,'') FROM aesthetic_scores WHERE image_id = ?`, imageID).
		Scan(&row.AestheticScore, &row.AestheticLabel); err == nil {
		row.HasAesthetic = true
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT topiq, musiq, laion, composite, COALESCE(label,'')
		FROM aesthetic_scores_v2 WHERE image_id = ?`, imageID).
		Scan(&row.AestheticV2Topiq, &row.AestheticV2Musiq, &row.AestheticV2Laion, &row.AestheticV2Composite, &row.AestheticV2Label); err == nil {
		row.HasAestheticV2 = true
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT mean_brightness, contrast_ratio, wb_shift_r, wb_shift_b, noise_estimate, mean_saturation, dominant_hue
		FROM pixel_analysis WHERE image_id = ?`, imageID).
		Scan(&row.MeanBrightness, &row.ContrastRatio, &row.WBShiftR, &row.WBShiftB, &row.NoiseEstimate, &row.MeanSaturation, &row.DominantHue); err == nil {
		row.HasPixelAnalysis = true
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(phash,'') FROM image_hashes WHERE image_id = ?`, imageID).
		Scan(&row.PHash); err == nil && row.PHash != "" {
		row.HasHash = true
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(scene_1,''), COALESCE(environment,'') FROM scene_classifications WHERE image_id = ?`, imageID).
		Scan(&row.SceneLabel, &row.Environment); err == nil && row.SceneLabel != "" {
		row.HasScene = true
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(label,'') FROM style_classifications WHERE image_id = ?`, imageID).
		Scan(&row.StyleLabel); err == nil && row.StyleLabel != "" {
		row.HasStyle = true
	}

	if err := s.db.QueryRowContext(ctx, `SELECT near_pct, mid_pct, far_pct FROM depth_estimations WHERE image_id = ?`, imageID).
		Scan(&row.NearPct, &row.MidPct, &row.FarPct); err == nil {
		row.HasDepth = true
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(caption,'') FROM image_captions WHERE image_id = ?`, imageID).
		Scan(&row.Caption); err == nil && row.Caption != "" {
		row.HasCaption = true
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(short,''), COALESCE(detailed,''), COALESCE(more_detailed,'') FROM florence_captions WHERE image_id = ?`, imageID).
		Scan(&row.FlorenceShort, &row.FlorenceDetail, &row.FlorenceMore); err == nil {
		row.HasFlorence = true
	}

	var g GeminiExport
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(exposure,''), COALESCE(sharpness,''), COALESCE(lens_artifacts,''),
		       COALESCE(composition_technique,''), COALESCE(depth,''), COALESCE(geometry,''),
		       COALESCE(color_palette,''), COALESCE(semantic_pops,''), COALESCE(grading_style,''),
		       COALESCE(time_of_day,''), COALESCE(setting,''), COALESCE(weather,''),
		       COALESCE(faces_count,0), COALESCE(vibe,''), COALESCE(alt_text,'')
		FROM gemini_analysis WHERE image_id = ? AND raw_json != ''`, imageID).
		Scan(&g.Exposure, &g.Sharpness, &g.LensArtifacts, &g.CompositionTechnique, &g.Depth, &g.Geometry,
			&g.ColorPalette, &g.SemanticPops, &g.GradingStyle, &g.TimeOfDay, &g.Setting, &g.Weather,
			&g.FacesCount, &g.Vibe, &g.AltText); err == nil {
		row.Gemini = g
		row.HasGemini = true
	}

	var lat, lon, focal any
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(camera_make,''), COALESCE(camera_model,''), COALESCE(lens,''),
		       focal_length, COALESCE(date_taken,''), gps_lat, gps_lon
		FROM image_exif WHERE image_id = ?`, imageID).
		Scan(&row.CameraMake, &row.CameraModel, &row.Lens, &focal, &row.DateTaken, &lat, &lon); err == nil {
		row.HasEXIF = true
		if f, ok := focal.(float64); ok {
			row.FocalLength = f
		}
		if la, ok := lat.(float64); ok {
			if lo, ok2 := lon.(float64); ok2 {
				row.GPSLat, row.GPSLon = la, lo
				row.HasGPS = true
			}
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM face_detections WHERE image_id = ? AND face_index >= 0`, imageID).
		Scan(&row.FaceCount); err != nil {
		return ExportRow{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM object_detections WHERE image_id = ? AND label != '__none__'`, imageID).
		Scan(&row.ObjectCount); err != nil {
		return ExportRow{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ocr_detections WHERE image_id = ? AND text != ''`, imageID).
		Scan(&row.TextCount); err != nil {
		return ExportRow{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facial_emotions WHERE image_id = ?`, imageID).
		Scan(&row.EmotionCount); err != nil {
		return ExportRow{}, err
	}

	objRows, err := s.db.QueryContext(ctx, `
		SELECT label, bbox_x1, bbox_y1, bbox_x2, bbox_y2 FROM object_detections
		WHERE image_id = ? AND label != '__none__' ORDER BY confidence DESC`, imageID)
	if err != nil {
		return ExportRow{}, err
	}
	for objRows.Next() {
		var label string
		var x1, y1, x2, y2 float64
		if err := objRows.Scan(&label, &x1, &y1, &x2, &y2); err != nil {
			objRows.Close()
			return ExportRow{}, err
		}
		row.TopObjects = append(row.TopObjects, label)
		if label == "person" {
			row.PersonBoxes = append(row.PersonBoxes, [4]float64{x1, y1, x2, y2})
		}
		if animalLabels[label] {
			row.AnimalBoxes = append(row.AnimalBoxes, [4]float64{x1, y1, x2, y2})
		}
	}
	objRows.Close()
	if err := objRows.Err(); err != nil {
		return ExportRow{}, err
	}

	faceRows, err := s.db.QueryContext(ctx, `
		SELECT bbox_x1, bbox_y1, bbox_x2, bbox_y2 FROM face_detections WHERE image_id = ? AND face_index >= 0`, imageID)
	if err != nil {
		return ExportRow{}, err
	}
	for faceRows.Next() {
		var x1, y1, x2, y2 float64
		if err := faceRows.Scan(&x1, &y1, &x2, &y2); err != nil {
			faceRows.Close()
			return ExportRow{}, err
		}
		row.FaceBoxes = append(row.FaceBoxes, [4]float64{x1, y1, x2, y2})
	}
	faceRows.Close()
	if err := faceRows.Err(); err != nil {
		return ExportRow{}, err
	}

	emoRows, err := s.db.QueryContext(ctx, `SELECT DISTINCT dominant_emotion FROM facial_emotions WHERE image_id = ? AND dominant_emotion != ''`, imageID)
	if err != nil {
		return ExportRow{}, err
	}
	for emoRows.Next() {
		var e string
		if err := emoRows.Scan(&e); err != nil {
			emoRows.Close()
			return ExportRow{}, err
		}
		row.Emotions = append(row.Emotions, e)
	}
	emoRows.Close()
	if err := emoRows.Err(); err != nil {
		return ExportRow{}, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT peak_x, peak_y FROM saliency_maps WHERE image_id = ?`, imageID).
		Scan(&row.SaliencyPeakX, &row.SaliencyPeakY); err == nil {
		row.HasSaliency = true
	}
	if err := s.db.QueryRowContext(ctx, `SELECT centroid_x, centroid_y FROM foreground_masks WHERE image_id = ?`, imageID).
		Scan(&row.ForegroundCentroidX, &row.ForegroundCentroidY); err == nil {
		row.HasForeground = true
	}

	tagRows, err := s.db.QueryContext(ctx, `SELECT tag FROM image_tags WHERE image_id = ? ORDER BY confidence DESC`, imageID)
	if err != nil {
		return ExportRow{}, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return ExportRow{}, err
		}
		row.Tags = append(row.Tags, tag)
	}

	return row, tagRows.Err()
}

// FaceDetail is one row of the faces.json derivative export (§4.8): a
// face's box, detection confidence and its paired emotion classification
// when one exists.
type FaceDetail struct {
	BBox             [4]float64
	Confidence       float64
	DominantEmotion  string
	EmotionConfidence float64
}

// FaceDetailsForImage left-joins face_detections with facial_emotions by
// face_index, since the two are written by separate phases keyed on the
// same (image_id, face_index) pair.
func (s *Store) FaceDetailsForImage(ctx context.Context, imageID string) ([]FaceDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.bbox_x1, f.bbox_y1, f.bbox_x2, f.bbox_y2, COALESCE(f.confidence,0),
		       COALESCE(e.dominant_emotion,''), COALESCE(e.confidence,0)
		FROM face_detections f
		LEFT JOIN facial_emotions e ON e.image_id = f.image_id AND e.face_index = f.face_index
		WHERE f.image_id = ? AND f.face_index >= 0
		ORDER BY f.face_index`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FaceDetail
	for rows.Next() {
		var d FaceDetail
		if err := rows.Scan(&d.BBox[0], &d.BBox[1], &d.BBox[2], &d.BBox[3], &d.Confidence, &d.DominantEmotion, &d.EmotionConfidence); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AllAcceptedImageIDs returns every image whose curation_status is "kept",
// the export phase's input set (§4.8: rejected images never reach export).
func (s *Store) AllAcceptedImageIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM images WHERE curation_status = 'kept' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PHashesForImages returns the perceptual hash of every image that has
// one, used by the exporter's similarity inverted index (§4.8) to bucket
// near-duplicates without an O(n^2) pairwise scan.
func (s *Store) PHashesForImages(ctx context.Context, imageIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(imageIDs))
	rows, err := s.db.QueryContext(ctx, `SELECT image_id, phash FROM image_hashes WHERE phash IS NOT NULL AND phash != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	want := make(map[string]bool, len(imageIDs))
	for _, id := range imageIDs {
		want[id] = true
	}
	for rows.Next() {
		var id, phash string
		if err := rows.Scan(&id, &phash); err != nil {
			return nil, err
		}
		if want[id] {
			out[id] = phash
		}
	}
	return out, rows.Err()
}
