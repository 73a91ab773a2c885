package phases

import (
	"context"
	"testing"
)

func TestLocationsPhaseDiscoverOnlyGPSTaggedImages(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-gps")
	seedOneImage(t, st, "img-nogps")

	if err := st.UpsertSignal(context.Background(), "image_exif", "img-gps", map[string]any{
		"gps_lat": 48.8566, "gps_lon": 2.3522, "analyzed_at": "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertSignal: %v", err)
	}
	if err := st.UpsertSignal(context.Background(), "image_exif", "img-nogps", map[string]any{
		"analyzed_at": "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertSignal: %v", err)
	}

	p := LocationsPhase{}
	ids, err := p.Discover(context.Background(), st)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ids) != 1 || ids[0] != "img-gps" {
		t.Errorf("Discover = %v, want [img-gps]", ids)
	}
	_ = root
}

func TestLocationsPhaseProcessOneInsertsRow(t *testing.T) {
	st, _ := openPhaseTestStore(t)
	seedOneImage(t, st, "img-gps")
	if err := st.UpsertSignal(context.Background(), "image_exif", "img-gps", map[string]any{
		"gps_lat": 48.8566, "gps_lon": 2.3522, "analyzed_at": "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertSignal: %v", err)
	}

	p := LocationsPhase{}
	fields, err := p.ProcessOne(context.Background(), st, "img-gps")
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if fields["source"] != "gps_exif" || fields["confidence"] != 1.0 {
		t.Errorf("fields = %+v, want source=gps_exif confidence=1.0", fields)
	}
}

func TestLocationsPhaseProcessOneNoGPSReturnsNilFields(t *testing.T) {
	st, _ := openPhaseTestStore(t)
	seedOneImage(t, st, "img-nogps")

	p := LocationsPhase{}
	fields, err := p.ProcessOne(context.Background(), st, "img-nogps")
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if fields != nil {
		t.Errorf("fields = %v, want nil when no EXIF GPS row exists", fields)
	}
}
