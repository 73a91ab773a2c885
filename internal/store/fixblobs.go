package store

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/rs/zerolog/log"
)

// FixBlobsResult summarizes one run of FixBlobs for the phase report (§8
// property 6).
type FixBlobsResult struct {
	Inspected int
	Repaired  int
	Nulled    int
}

// FixBlobs is the one-time migration named in §9: the original program
// wrote a numpy float32 scalar straight into a SQLite parameter, which the
// driver stored as a 4-byte BLOB instead of a REAL. This reinterprets
// every such BLOB as a little-endian float32, keeps it if the decoded
// value falls inside [0, 100] (exposure_quality's valid range), and nulls
// it otherwise. It is read-repair only: the Store's normal write path
// never accepts []byte for a numeric column, so the corruption cannot
// recur (§9 "requires the Store to refuse new writes of bytes to numeric
// columns" — enforced in UpsertSignal below via rejectBlobValue).
func (s *Store) FixBlobs(ctx context.Context) (FixBlobsResult, error) {
	var result FixBlobsResult

	rows, err := s.db.QueryContext(ctx, `SELECT image_id, exposure_quality FROM quality_scores`)
	if err != nil {
		return result, err
	}

	type row struct {
		imageID string
		raw     any
	}
	var toFix []row
	for rows.Next() {
		var imageID string
		var raw any
		if err := rows.Scan(&imageID, &raw); err != nil {
			rows.Close()
			return result, err
		}
		result.Inspected++
		if _, ok := raw.([]byte); ok {
			toFix = append(toFix, row{imageID, raw})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return result, err
	}
	rows.Close()

	for _, r := range toFix {
		b := r.raw.([]byte)
		var value any = nil
		if len(b) == 4 {
			f := float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			if f >= 0 && f <= 100 {
				value = f
				result.Repaired++
			} else {
				result.Nulled++
			}
		} else {
			result.Nulled++
		}
		if _, err := s.exec(ctx, `UPDATE quality_scores SET exposure_quality = ? WHERE image_id = ?`, value, r.imageID); err != nil {
			return result, err
		}
		log.Debug().Str("image_id", r.imageID).Interface("exposure_quality", value).Msg("fix-blobs repaired row")
	}

	return result, nil
}

// rejectBlobValue reports whether v is a []byte being written to what
// should be a numeric column — the write path the original bug went
// through. UpsertSignal and InsertSignalRow call this on every field so
// the corruption in FixBlobs' fixture can never be reintroduced.
func rejectBlobValue(column string, v any) error {
	if _, ok := v.([]byte); ok && column != "embedding" && column != "exif_data" {
		return errBlobWrite{column: column}
	}
	return nil
}

type errBlobWrite struct{ column string }

func (e errBlobWrite) Error() string {
	return "store: refusing raw []byte write to numeric column " + e.column
}
