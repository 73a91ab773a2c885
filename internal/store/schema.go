package store

// schemaSQL is executed on every Open. Every statement is idempotent
// (CREATE TABLE/INDEX IF NOT EXISTS); the Store never drops or rewrites a
// column, only adds new ones in later revisions of this string (§4.2).
const schemaSQL = `
PRAGMA journal_mode = WAL;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
INSERT OR IGNORE INTO schema_version (version) VALUES (1);

CREATE TABLE IF NOT EXISTS images (
	id               TEXT PRIMARY KEY,
	source_path      TEXT NOT NULL UNIQUE,
	file_name        TEXT NOT NULL,
	category         TEXT NOT NULL,
	subcategory      TEXT NOT NULL,
	source_format    TEXT NOT NULL,
	width            INTEGER NOT NULL,
	height           INTEGER NOT NULL,
	aspect_ratio     REAL NOT NULL,
	orientation      TEXT NOT NULL,
	source_size_bytes INTEGER,
	exif_data        TEXT,
	camera_body      TEXT,
	medium           TEXT,
	film_stock       TEXT,
	monochrome       INTEGER NOT NULL DEFAULT 0,
	curation_status  TEXT NOT NULL DEFAULT 'pending',
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_images_category ON images(category, subcategory);

CREATE TABLE IF NOT EXISTS variants (
	id            TEXT PRIMARY KEY,
	image_id      TEXT NOT NULL REFERENCES images(id),
	variant_type  TEXT NOT NULL,
	source_tier   TEXT NOT NULL DEFAULT 'display',
	status        TEXT NOT NULL DEFAULT 'pending',
	error_text    TEXT,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_variants_image ON variants(image_id);

CREATE TABLE IF NOT EXISTS tiers (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id    TEXT NOT NULL REFERENCES images(id),
	variant_id  TEXT REFERENCES variants(id),
	tier_name   TEXT NOT NULL,
	format      TEXT NOT NULL,
	local_path  TEXT,
	remote_url  TEXT,
	public_url  TEXT,
	width       INTEGER,
	height      INTEGER,
	size_bytes  INTEGER,
	uploaded_at TEXT,
	UNIQUE(image_id, variant_id, tier_name, format)
);
CREATE INDEX IF NOT EXISTS idx_tiers_image ON tiers(image_id);

CREATE TABLE IF NOT EXISTS uploads (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	local_path  TEXT NOT NULL,
	remote_path TEXT NOT NULL,
	size_bytes  INTEGER,
	uploaded_at TEXT NOT NULL,
	verified    INTEGER NOT NULL DEFAULT 0,
	UNIQUE(remote_path)
);

CREATE TABLE IF NOT EXISTS phase_runs (
	run_id           INTEGER PRIMARY KEY AUTOINCREMENT,
	phase            TEXT NOT NULL,
	status           TEXT NOT NULL,
	images_processed INTEGER NOT NULL DEFAULT 0,
	images_failed    INTEGER NOT NULL DEFAULT 0,
	started_at       TEXT NOT NULL,
	completed_at     TEXT,
	error_text       TEXT,
	config           TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_phase ON phase_runs(phase);

CREATE TABLE IF NOT EXISTS enhancement_plans (
	image_id          TEXT PRIMARY KEY REFERENCES images(id),
	pre_brightness REAL, pre_contrast REAL, pre_wb_r REAL, pre_wb_b REAL,
	skip_wb INTEGER, wb_correction_r REAL, wb_correction_b REAL, wb_reason TEXT,
	skip_exposure INTEGER, gamma REAL, exposure_reason TEXT,
	shadow_lift REAL, highlight_pull REAL, shadows_reason TEXT,
	skip_contrast INTEGER, contrast_strength REAL, contrast_reason TEXT,
	skip_saturation INTEGER, saturation_scale REAL, saturation_reason TEXT,
	sharpen_radius REAL, sharpen_percent REAL, sharpen_threshold INTEGER, sharpen_reason TEXT,
	output_path TEXT, post_brightness REAL, post_wb_shift_r REAL, post_contrast REAL, output_size_bytes INTEGER,
	status TEXT NOT NULL DEFAULT 'planned',
	error_text TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS enhancement_plans_v2 (
	image_id          TEXT PRIMARY KEY REFERENCES images(id),
	pre_brightness REAL, pre_contrast REAL, pre_wb_r REAL, pre_wb_b REAL,
	skip_wb INTEGER, wb_correction_r REAL, wb_correction_b REAL, wb_reason TEXT,
	skip_exposure INTEGER, gamma REAL, exposure_reason TEXT,
	shadow_lift REAL, highlight_pull REAL, shadows_reason TEXT,
	skip_contrast INTEGER, contrast_strength REAL, contrast_reason TEXT,
	skip_saturation INTEGER, saturation_scale REAL, saturation_reason TEXT,
	sharpen_radius REAL, sharpen_percent REAL, sharpen_threshold INTEGER, sharpen_reason TEXT,
	output_path TEXT, post_brightness REAL, post_wb_shift_r REAL, post_contrast REAL, output_size_bytes INTEGER,
	status TEXT NOT NULL DEFAULT 'planned',
	error_text TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dominant_colors (
	image_id   TEXT NOT NULL REFERENCES images(id),
	rank       INTEGER NOT NULL,
	percentage REAL NOT NULL,
	hex        TEXT NOT NULL,
	r INTEGER, g INTEGER, b INTEGER,
	l REAL, a REAL, bl REAL,
	name TEXT,
	PRIMARY KEY (image_id, rank)
);

-- Single-row-per-image signal tables (exif, pixel-analysis, hashes,
-- aesthetic, aesthetic-v2, depth, scene, style, gemini, vectors metadata,
-- borders, foreground, saliency, locations gps-derived) share one schema
-- shape per family below, matching mad_database.py's per-signal tables.

-- image_vectors is a resume marker only: the embeddings themselves live in
-- the separate vector index file (<root>/vectors.<engine>) so store.db stays
-- a single small relational file (§6).
CREATE TABLE IF NOT EXISTS image_vectors (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	dinov2_dim INTEGER, siglip_dim INTEGER, clip_dim INTEGER,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS image_exif (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	camera_make TEXT, camera_model TEXT, lens TEXT,
	iso INTEGER, shutter_speed TEXT, aperture REAL, focal_length REAL,
	date_taken TEXT, gps_lat REAL, gps_lon REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pixel_analysis (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	mean_brightness REAL, contrast_ratio REAL,
	mean_r REAL, mean_g REAL, mean_b REAL,
	wb_shift_r REAL, wb_shift_b REAL,
	noise_estimate REAL, clip_low_pct REAL, clip_high_pct REAL,
	mean_saturation REAL, dominant_hue REAL, color_cast TEXT,
	low_key INTEGER, high_key INTEGER,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS image_hashes (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	phash TEXT, ahash TEXT, dhash TEXT, whash TEXT,
	blur_score REAL, sharpness REAL, entropy REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gemini_analysis (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	model TEXT,
	exposure TEXT, sharpness TEXT, lens_artifacts TEXT,
	composition_technique TEXT, depth TEXT, geometry TEXT,
	color_palette TEXT, semantic_pops TEXT, grading_style TEXT,
	time_of_day TEXT, setting TEXT, weather TEXT,
	faces_count INTEGER, vibe TEXT, alt_text TEXT,
	raw_json TEXT NOT NULL DEFAULT '',
	analyzed_at TEXT NOT NULL,
	error TEXT
);

CREATE TABLE IF NOT EXISTS aesthetic_scores (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	score REAL, label TEXT, analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quality_scores (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	exposure_quality REAL,
	sharpness_quality REAL,
	noise_quality REAL,
	composite REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aesthetic_scores_v2 (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	topiq REAL, musiq REAL, laion REAL, composite REAL, label TEXT,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS depth_estimations (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	near_pct REAL, mid_pct REAL, far_pct REAL, complexity REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scene_classifications (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	scene_1 TEXT, score_1 REAL, scene_2 TEXT, score_2 REAL, scene_3 TEXT, score_3 REAL,
	environment TEXT, analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS style_classifications (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	label TEXT, confidence REAL, analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saliency_maps (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	peak_x REAL, peak_y REAL, peak_value REAL, entropy REAL,
	center_bias_ratio REAL, grid_means TEXT, quadrant_means TEXT,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS segmentation_masks (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	segment_count INTEGER, largest_segment_pct REAL, figure_ground_ratio REAL,
	edge_complexity REAL, mean_segment_area REAL, top_areas_json TEXT,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS foreground_masks (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	foreground_pct REAL, background_pct REAL, mean_edge_gradient REAL,
	centroid_x REAL, centroid_y REAL,
	bbox_x1 REAL, bbox_y1 REAL, bbox_x2 REAL, bbox_y2 REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS border_crops (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	detected INTEGER NOT NULL DEFAULT 0,
	crop_top REAL, crop_bottom REAL, crop_left REAL, crop_right REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS image_captions (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	caption TEXT, analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS florence_captions (
	image_id TEXT PRIMARY KEY REFERENCES images(id),
	short TEXT, detailed TEXT, more_detailed TEXT, analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS image_tags (
	image_id TEXT NOT NULL REFERENCES images(id),
	tag TEXT NOT NULL,
	confidence REAL NOT NULL,
	analyzed_at TEXT NOT NULL,
	PRIMARY KEY (image_id, tag)
);

CREATE TABLE IF NOT EXISTS image_locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id TEXT NOT NULL REFERENCES images(id),
	source TEXT NOT NULL,
	lat REAL, lon REAL,
	confidence REAL, accepted INTEGER NOT NULL DEFAULT 0,
	analyzed_at TEXT NOT NULL,
	UNIQUE(image_id, source)
);

-- Multi-row-per-image signal tables (detections, faces, OCR regions).

CREATE TABLE IF NOT EXISTS face_detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id TEXT NOT NULL REFERENCES images(id),
	face_index INTEGER NOT NULL,
	bbox_x1 REAL, bbox_y1 REAL, bbox_x2 REAL, bbox_y2 REAL,
	landmarks_json TEXT, confidence REAL, area_pct REAL,
	analyzed_at TEXT NOT NULL,
	UNIQUE(image_id, face_index)
);

CREATE TABLE IF NOT EXISTS face_identities (
	image_id TEXT NOT NULL REFERENCES images(id),
	face_index INTEGER NOT NULL,
	embedding BLOB,
	identity_id TEXT,
	analyzed_at TEXT NOT NULL,
	PRIMARY KEY (image_id, face_index)
);

CREATE TABLE IF NOT EXISTS facial_emotions (
	image_id TEXT NOT NULL REFERENCES images(id),
	face_index INTEGER NOT NULL,
	dominant_emotion TEXT,
	scores_json TEXT,
	confidence REAL,
	analyzed_at TEXT NOT NULL,
	PRIMARY KEY (image_id, face_index)
);

CREATE TABLE IF NOT EXISTS object_detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id TEXT NOT NULL REFERENCES images(id),
	label TEXT NOT NULL, confidence REAL,
	bbox_x1 REAL, bbox_y1 REAL, bbox_x2 REAL, bbox_y2 REAL,
	area_pct REAL,
	analyzed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_objects_image ON object_detections(image_id);

CREATE TABLE IF NOT EXISTS open_detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id TEXT NOT NULL REFERENCES images(id),
	label TEXT NOT NULL, confidence REAL,
	bbox_x1 REAL, bbox_y1 REAL, bbox_x2 REAL, bbox_y2 REAL,
	area_pct REAL,
	analyzed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_open_detections_image ON open_detections(image_id);

CREATE TABLE IF NOT EXISTS pose_detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id TEXT NOT NULL REFERENCES images(id),
	person_index INTEGER NOT NULL,
	keypoints_json TEXT, bbox_x1 REAL, bbox_y1 REAL, bbox_x2 REAL, bbox_y2 REAL,
	score REAL,
	analyzed_at TEXT NOT NULL,
	UNIQUE(image_id, person_index)
);

CREATE TABLE IF NOT EXISTS ocr_detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_id TEXT NOT NULL REFERENCES images(id),
	text TEXT NOT NULL DEFAULT '',
	confidence REAL,
	polygon_json TEXT,
	analyzed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ocr_image ON ocr_detections(image_id);
`
