package phases

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/render"
	"github.com/fpang/madphotos-core/internal/store"
)

// tierPath locates a rendered tier file for imageID, the input every
// CPU-bound and model-backed phase below reads instead of re-decoding the
// original (§4.5's "Input" column names the tier each phase prefers).
func tierPath(root config.Root, tier, imageID string) string {
	return filepath.Join(root.RenderedTier(tier), "jpeg", imageID+".jpg")
}

func displayPath(root config.Root, imageID string) string { return tierPath(root, "display", imageID) }
func geminiPath(root config.Root, imageID string) string  { return tierPath(root, "gemini", imageID) }

// decodeTier loads a rendered JPEG tier as an *image.RGBA, the shape every
// pixel-math phase below operates on.
func decodeTier(path string) (*render.Decoded, error) {
	d, err := render.Decode(path, false)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// discoverFrom is the standard phase.Phase.Discover implementation: every
// registered image, letting the Runner's uniform resume/shard/limit filter
// decide which ones actually need work.
func discoverFrom(ctx context.Context, st *store.Store) ([]string, error) {
	images, err := st.ListImages(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids, nil
}

func nowStamp() time.Time { return time.Now().UTC() }

func withAnalyzedAt(fields map[string]any) map[string]any {
	fields["analyzed_at"] = nowStamp()
	return fields
}

// errNoTier reports a phase's input tier not being rendered yet, a
// precondition failure rather than a model error — the render phase must
// run first (§4.5's requires field, generalized to every tier-dependent
// phase rather than only face-identity's documented example).
func errNoTier(tier, imageID string, err error) error {
	return fmt.Errorf("phases: %s tier missing for %s: %w", tier, imageID, err)
}
