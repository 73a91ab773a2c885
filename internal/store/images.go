package store

import (
	"context"
	"database/sql"
	"time"
)

// InsertImage registers a newly discovered source file (§4.1 register
// phase). When source_path already exists the insert does nothing and nil
// is returned, so the register phase can treat a second run of the same
// corpus as a no-op resume rather than a failure.
func (s *Store) InsertImage(ctx context.Context, img Image) error {
	now := time.Now().UTC()
	img.CreatedAt, img.UpdatedAt = now, now
	_, err := s.exec(ctx, `
		INSERT INTO images (
			id, source_path, file_name, category, subcategory, source_format,
			width, height, aspect_ratio, orientation, source_size_bytes,
			exif_data, camera_body, medium, film_stock, monochrome,
			curation_status, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(source_path) DO NOTHING`,
		img.ID, img.SourcePath, img.FileName, img.Category, img.Subcategory, img.SourceFormat,
		img.Width, img.Height, img.AspectRatio, img.Orientation, img.SourceSizeBytes,
		img.EXIFData, img.CameraBody, img.Medium, img.FilmStock, boolToInt(img.Monochrome),
		img.CurationStatus, img.CreatedAt, img.UpdatedAt,
	)
	return err
}

func (s *Store) GetImage(ctx context.Context, id string) (Image, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_path, file_name, category, subcategory, source_format,
		       width, height, aspect_ratio, orientation, source_size_bytes,
		       exif_data, camera_body, medium, film_stock, monochrome,
		       curation_status, created_at, updated_at
		FROM images WHERE id = ?`, id)
	return scanImage(row)
}

func (s *Store) GetImageBySourcePath(ctx context.Context, path string) (Image, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_path, file_name, category, subcategory, source_format,
		       width, height, aspect_ratio, orientation, source_size_bytes,
		       exif_data, camera_body, medium, film_stock, monochrome,
		       curation_status, created_at, updated_at
		FROM images WHERE source_path = ?`, path)
	return scanImage(row)
}

// ListImages returns every registered image ordered by id, the stable
// iteration order every phase's discover step relies on for sharding.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, file_name, category, subcategory, source_format,
		       width, height, aspect_ratio, orientation, source_size_bytes,
		       exif_data, camera_body, medium, film_stock, monochrome,
		       curation_status, created_at, updated_at
		FROM images ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		img, err := scanImageRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// ImagesMissingSignal returns the ids of images with no row in the given
// signal table yet, i.e. the "not yet processed" set (§5 resume
// semantics). phase.Runner does not use it; it checks each candidate id
// with HasSignal instead.
func (s *Store) ImagesMissingSignal(ctx context.Context, signalTable string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id FROM images i
		LEFT JOIN `+signalTable+` t ON t.image_id = i.id
		WHERE t.image_id IS NULL
		ORDER BY i.id`)
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

func (s *Store) SetCurationStatus(ctx context.Context, imageID, status string) error {
	_, err := s.exec(ctx, `UPDATE images SET curation_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), imageID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row *sql.Row) (Image, error)   { return scanImageGeneric(row) }
func scanImageRows(row *sql.Rows) (Image, error) { return scanImageGeneric(row) }

func scanImageGeneric(row rowScanner) (Image, error) {
	var img Image
	var monochrome int
	err := row.Scan(
		&img.ID, &img.SourcePath, &img.FileName, &img.Category, &img.Subcategory, &img.SourceFormat,
		&img.Width, &img.Height, &img.AspectRatio, &img.Orientation, &img.SourceSizeBytes,
		&img.EXIFData, &img.CameraBody, &img.Medium, &img.FilmStock, &monochrome,
		&img.CurationStatus, &img.CreatedAt, &img.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Image{}, ErrNotFound
	}
	img.Monochrome = monochrome != 0
	return img, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
