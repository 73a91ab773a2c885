package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	coreerrors "github.com/fpang/madphotos-core/internal/core/errors"
	"github.com/fpang/madphotos-core/internal/store"
)

// Target describes where a rendered tier's outputs are rooted and which
// id they are named after — an original image or a variant.
type Target struct {
	RenderedRoot string // config.Root.Rendered()
	ID           string // image id or variant id — becomes the file basename
	ImageID      string
	VariantID    string // empty when rendering an original
}

// RenderAll runs every TierSpec in specs against src, writing files
// atomically and upserting a Tier row for each (tier, format) pair
// (§4.4 contract). force re-renders and overwrites existing files; without
// it, an original's tier already present both on disk and in the Store is
// skipped. The Store lookup (TiersForImage) lists original tiers only, so
// variant targets are always rendered.
func RenderAll(ctx context.Context, st *store.Store, src *image.RGBA, target Target, specs []TierSpec, force bool) (rendered, skipped, failed int) {
	existing := map[string]bool{}
	if !force {
		tiers, err := st.TiersForImage(ctx, target.ImageID)
		if err == nil {
			for _, t := range tiers {
				if t.VariantID == target.VariantID {
					existing[t.TierName+"/"+t.Format] = true
				}
			}
		}
	}

	for _, spec := range specs {
		resized := Resize(src, spec.LongEdge)
		sharpened := Sharpen(resized, spec.Sharpen)
		b := sharpened.Bounds()

		for _, format := range spec.Formats() {
			key := spec.Name + "/" + format
			outPath := tierPath(target.RenderedRoot, spec.Name, format, target.ID)
			if !force && existing[key] {
				if _, statErr := os.Stat(outPath); statErr == nil {
					skipped++
					continue
				}
			}

			data, err := Encode(sharpened, format, spec.JPEGQuality, spec.WebPQuality)
			if err != nil {
				log.Error().Err(err).Str("image_id", target.ImageID).Str("tier", spec.Name).Str("format", format).Msg("render: encode failed")
				failed++
				continue
			}

			if err := writeAtomic(outPath, data); err != nil {
				log.Error().Err(err).Str("image_id", target.ImageID).Str("tier", spec.Name).Msg("render: write failed")
				failed++
				continue
			}

			err = st.UpsertTier(ctx, store.Tier{
				ImageID:   target.ImageID,
				VariantID: target.VariantID,
				TierName:  spec.Name,
				Format:    format,
				LocalPath: outPath,
				Width:     b.Dx(),
				Height:    b.Dy(),
				SizeBytes: int64(len(data)),
			})
			if err != nil {
				log.Error().Err(err).Str("image_id", target.ImageID).Str("tier", spec.Name).Msg("render: store upsert failed")
				failed++
				continue
			}
			rendered++
		}
	}
	return rendered, skipped, failed
}

func tierPath(root, tier, format, id string) string {
	ext := "jpg"
	if format == "webp" {
		ext = "webp"
	}
	return filepath.Join(root, tier, format, id+"."+ext)
}

// writeAtomic writes data to a temp file in dir's own directory, then
// renames into place — a rename within one filesystem is atomic, so a
// reader never observes a partially written tier file (§4.4 contract).
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return coreerrors.New(coreerrors.CategoryRender, "mkdir", err)
	}
	tmp := path + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return coreerrors.New(coreerrors.CategoryRender, "write_temp", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return coreerrors.New(coreerrors.CategoryRender, "rename", err)
	}
	return nil
}
