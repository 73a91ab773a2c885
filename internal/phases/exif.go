package phases

import (
	"context"
	"os"
	"strings"

	"github.com/evanoberholster/imagemeta"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// ExifPhase extracts camera make/model, capture date and GPS metadata
// from the encoded source file (lens and exposure fields are left unset,
// see the note below ProcessOne), grounded on the teacher's
// filehandler.ExtractImageMetadata Split-Provider pattern: the same
// imagemeta.Decode(file) call, Make/Model fields and GPS.Latitude()/
// Longitude() methods, generalized from a chat-response string into typed
// signal columns.
type ExifPhase struct {
	Root config.Root
}

func (p ExifPhase) Name() string        { return "exif" }
func (p ExifPhase) SignalTable() string { return "image_exif" }
func (p ExifPhase) Multi() bool         { return false }
func (p ExifPhase) BatchSize() int      { return 1 }

func (p ExifPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p ExifPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	img, err := st.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(sourceAbsPath(p.Root, img))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	exifData, err := imagemeta.Decode(f)
	if err != nil {
		// No EXIF segment is a valid, common outcome (PNG sources, scans
		// with metadata stripped) — commit an empty-but-present row so the
		// image is not re-queued every run, matching the ocr phase's
		// documented sentinel-row pattern for "found nothing".
		return withAnalyzedAt(map[string]any{}), nil
	}

	fields := map[string]any{
		"camera_make":  strings.TrimSpace(exifData.Make),
		"camera_model": strings.TrimSpace(exifData.Model),
	}

	date := exifData.DateTimeOriginal()
	if date.IsZero() {
		date = exifData.CreateDate()
	}
	if !date.IsZero() {
		fields["date_taken"] = date
	}

	gps := exifData.GPS
	if lat, lon := gps.Latitude(), gps.Longitude(); lat != 0 || lon != 0 {
		fields["gps_lat"] = lat
		fields["gps_lon"] = lon
	}

	return withAnalyzedAt(fields), nil
}

// Lens, ISO, shutter speed, aperture and focal length are intentionally
// left unset here: the teacher's own metadata extraction only ever reads
// Make/Model/GPS/date from this library, never exercising its lens/exposure
// accessors, so their exact field names cannot be grounded against pack
// usage. Left NULL rather than guessed — documented as an open gap in
// DESIGN.md.

var _ phase.Phase = ExifPhase{}
