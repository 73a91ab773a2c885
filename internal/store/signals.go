package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// UpsertSignal writes one single-row-per-image signal (exif, pixel
// analysis, hashes, aesthetic scores, depth, scene, style, gemini
// analysis, saliency, segmentation, foreground, borders, captions, tags
// carrying a unique image_id key, ...) mirroring the abstract
// upsert_signal(table_name, record) contract from §4.2. Every phase in
// internal/phases builds its own record map from typed model output and
// calls this rather than hand-writing a CRUD file per signal table —
// the table count (~25) makes a typed method per table disproportionate
// to what each actually needs: one keyed upsert.
func (s *Store) UpsertSignal(ctx context.Context, table, imageID string, fields map[string]any) error {
	cols := make([]string, 0, len(fields)+1)
	phs := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	updates := make([]string, 0, len(fields))

	cols = append(cols, "image_id")
	phs = append(phs, "?")
	args = append(args, imageID)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := rejectBlobValue(k, fields[k]); err != nil {
			return err
		}
		cols = append(cols, k)
		phs = append(phs, "?")
		args = append(args, fields[k])
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", k, k))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(image_id) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), strings.Join(phs, ", "), strings.Join(updates, ", "),
	)
	_, err := s.exec(ctx, query, args...)
	return err
}

// InsertSignalRow appends one row to a multi-row-per-image signal table
// (faces, objects, open-detections, poses, OCR regions, tags, locations)
// rather than upserting, since these tables key on more than one column
// per image. Callers that re-run a phase with --force first call
// DeleteSignalRows to clear the image's prior rows so re-running never
// duplicates detections.
func (s *Store) InsertSignalRow(ctx context.Context, table, imageID string, fields map[string]any) error {
	cols := []string{"image_id"}
	phs := []string{"?"}
	args := []any{imageID}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := rejectBlobValue(k, fields[k]); err != nil {
			return err
		}
		cols = append(cols, k)
		phs = append(phs, "?")
		args = append(args, fields[k])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(phs, ", "))
	_, err := s.exec(ctx, query, args...)
	return err
}

// DeleteSignalRows clears every row belonging to imageID from a
// multi-row signal table, used before InsertSignalRow when --force
// reprocesses an image that was already detected.
func (s *Store) DeleteSignalRows(ctx context.Context, table, imageID string) error {
	_, err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE image_id = ?", table), imageID)
	return err
}

// HasSignal reports whether imageID already has a row in table.
// phase.Runner calls it for each candidate id to skip images that are
// already processed unless --force is set.
func (s *Store) HasSignal(ctx context.Context, table, imageID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE image_id = ? LIMIT 1", table), imageID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertDominantColors replaces the exactly-five palette rows for an
// image (§4.5 dominant-colors phase) atomically, so a reader never sees
// a half-written palette.
func (s *Store) UpsertDominantColors(ctx context.Context, imageID string, colors []DominantColor) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dominant_colors WHERE image_id = ?`, imageID); err != nil {
			return err
		}
		for _, c := range colors {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO dominant_colors (image_id, rank, percentage, hex, r, g, b, l, a, bl, name)
				VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
				imageID, c.Rank, c.Percentage, c.Hex, c.R, c.G, c.B, c.L, c.A, c.Blab, c.Name,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DominantColorsForImage(ctx context.Context, imageID string) ([]DominantColor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT image_id, rank, percentage, hex, r, g, b, l, a, bl, COALESCE(name,'')
		FROM dominant_colors WHERE image_id = ? ORDER BY rank`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DominantColor
	for rows.Next() {
		var c DominantColor
		if err := rows.Scan(&c.ImageID, &c.Rank, &c.Percentage, &c.Hex, &c.R, &c.G, &c.B, &c.L, &c.A, &c.Blab, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
