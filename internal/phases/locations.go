package phases

import (
	"context"
	"database/sql"

	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// LocationsPhase inserts a Location row sourced from the exif phase's GPS
// columns (§4.5: "locations | EXIF | if gps_lat and gps_lon are set,
// insert a Location row with source = gps_exif, confidence = 1.0, accepted
// = false"). It is a multi-row phase (image_locations keys on
// (image_id, source)), so a --force rerun must clear the gps_exif row
// before reinserting.
type LocationsPhase struct{}

func (p LocationsPhase) Name() string        { return "locations" }
func (p LocationsPhase) SignalTable() string { return "image_locations" }
func (p LocationsPhase) Multi() bool         { return true }
func (p LocationsPhase) BatchSize() int      { return 1 }

// Discover returns every image with a GPS fix recorded by the exif phase,
// rather than every image — locations has no output at all for a photo
// with no GPS, so the generic anti-join against image_locations would
// otherwise requeue it on every run.
func (p LocationsPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT image_id FROM image_exif
		WHERE gps_lat IS NOT NULL AND gps_lon IS NOT NULL
		ORDER BY image_id`)
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

func (p LocationsPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	var lat, lon float64
	err := st.DB().QueryRowContext(ctx, `SELECT gps_lat, gps_lon FROM image_exif WHERE image_id = ?`, imageID).Scan(&lat, &lon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := st.DeleteSignalRows(ctx, "image_locations", imageID); err != nil {
		return nil, err
	}
	return withAnalyzedAt(map[string]any{
		"source":     "gps_exif",
		"lat":        lat,
		"lon":        lon,
		"confidence": 1.0,
		"accepted":   0,
	}), nil
}

var _ phase.Phase = LocationsPhase{}
