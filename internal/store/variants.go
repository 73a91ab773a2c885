package store

import (
	"context"
	"time"
)

// InsertVariant registers a planned derivative (e.g. an enhanced export or
// an AI-generated crop) before its tiers are rendered.
func (s *Store) InsertVariant(ctx context.Context, v Variant) error {
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	_, err := s.exec(ctx, `
		INSERT INTO variants (id, image_id, variant_type, source_tier, status, error_text, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, error_text = excluded.error_text, updated_at = excluded.updated_at`,
		v.ID, v.ImageID, v.VariantType, v.SourceTier, v.Status, v.ErrorText, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

func (s *Store) SetVariantStatus(ctx context.Context, id, status, errText string) error {
	_, err := s.exec(ctx, `UPDATE variants SET status = ?, error_text = ?, updated_at = ? WHERE id = ?`,
		status, errText, time.Now().UTC(), id)
	return err
}

func (s *Store) VariantsForImage(ctx context.Context, imageID string) ([]Variant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_id, variant_type, source_tier, status, COALESCE(error_text,''), created_at, updated_at
		FROM variants WHERE image_id = ? ORDER BY created_at`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ImageID, &v.VariantType, &v.SourceTier, &v.Status, &v.ErrorText, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
