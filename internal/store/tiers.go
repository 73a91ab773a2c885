package store

import (
	"context"
	"database/sql"
	"time"
)

// UpsertTier records a rendered tier output (§4.4). Re-running the render
// phase with --force replaces the row for the same (image, variant, tier,
// format) key rather than accumulating duplicates.
func (s *Store) UpsertTier(ctx context.Context, t Tier) error {
	var variantID any
	if t.VariantID != "" {
		variantID = t.VariantID
	}
	// Originals carry a NULL variant_id, which never collides under the
	// UNIQUE key, so an existing row is updated in place first.
	res, err := s.exec(ctx, `
		UPDATE tiers SET local_path = ?, remote_url = ?, public_url = ?, width = ?, height = ?, size_bytes = ?, uploaded_at = ?
		WHERE image_id = ? AND variant_id IS ? AND tier_name = ? AND format = ?`,
		t.LocalPath, t.RemoteURL, t.PublicURL, t.Width, t.Height, t.SizeBytes, t.UploadedAt,
		t.ImageID, variantID, t.TierName, t.Format)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = s.exec(ctx, `
		INSERT INTO tiers (image_id, variant_id, tier_name, format, local_path, remote_url, public_url, width, height, size_bytes, uploaded_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(image_id, variant_id, tier_name, format) DO UPDATE SET
			local_path = excluded.local_path,
			remote_url = excluded.remote_url,
			public_url = excluded.public_url,
			width = excluded.width,
			height = excluded.height,
			size_bytes = excluded.size_bytes,
			uploaded_at = excluded.uploaded_at`,
		t.ImageID, variantID, t.TierName, t.Format, t.LocalPath, t.RemoteURL, t.PublicURL,
		t.Width, t.Height, t.SizeBytes, t.UploadedAt,
	)
	return err
}

// TiersForImage returns every rendered tier of the original (variant_id is
// NULL) belonging to imageID.
func (s *Store) TiersForImage(ctx context.Context, imageID string) ([]Tier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT image_id, COALESCE(variant_id, ''), tier_name, format, COALESCE(local_path,''),
		       COALESCE(remote_url,''), COALESCE(public_url,''), COALESCE(width,0), COALESCE(height,0),
		       COALESCE(size_bytes,0), uploaded_at
		FROM tiers WHERE image_id = ? AND variant_id IS NULL
		ORDER BY tier_name, format`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTierRows(rows)
}

// RenderedImageIDs returns ids of images with at least one tier of the
// original (not a variant) already recorded, the set render skips on
// resume unless --force is set.
func (s *Store) RenderedImageIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT image_id FROM tiers WHERE variant_id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *Store) MarkTierUploaded(ctx context.Context, imageID, tierName, format, remoteURL, publicURL string) error {
	_, err := s.exec(ctx, `
		UPDATE tiers SET remote_url = ?, public_url = ?, uploaded_at = ?
		WHERE image_id = ? AND variant_id IS NULL AND tier_name = ? AND format = ?`,
		remoteURL, publicURL, time.Now().UTC(), imageID, tierName, format)
	return err
}

func scanTierRows(rows *sql.Rows) ([]Tier, error) {
	var out []Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.ImageID, &t.VariantID, &t.TierName, &t.Format, &t.LocalPath,
			&t.RemoteURL, &t.PublicURL, &t.Width, &t.Height, &t.SizeBytes, &t.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
