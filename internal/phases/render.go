package phases

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/render"
	"github.com/fpang/madphotos-core/internal/store"
)

// Render decodes every registered original not yet rendered (or, with
// force, every registered original) and writes the full 6-tier pyramid
// (§4.4, §4.5's "render | Image | all tier rows per §C4").
func Render(ctx context.Context, st *store.Store, root config.Root, force bool) (rendered, skipped, failed int) {
	images, err := st.ListImages(ctx)
	if err != nil {
		log.Error().Err(err).Msg("render: list images failed")
		return 0, 0, 1
	}

	already, err := st.RenderedImageIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("render: rendered-set query failed")
		already = map[string]bool{}
	}

	for _, img := range images {
		if !force && already[img.ID] {
			continue
		}

		decoded, err := render.Decode(sourceAbsPath(root, img), img.SourceFormat == ".dng" || img.SourceFormat == ".raw")
		if err != nil {
			log.Warn().Err(err).Str("image_id", img.ID).Msg("render: decode failed")
			failed++
			continue
		}

		target := render.Target{
			RenderedRoot: root.Rendered(),
			ID:           img.ID,
			ImageID:      img.ID,
		}
		r, s, f := render.RenderAll(ctx, st, decoded.Image, target, render.OriginalTiers, force)
		rendered += r
		skipped += s
		failed += f
	}

	log.Info().Int("rendered", rendered).Int("skipped", skipped).Int("failed", failed).Msg("render: complete")
	return rendered, skipped, failed
}

// RenderVariant renders the 4-tier variant pyramid for a generated
// derivative (the Enhancer's output or an AI-generated image) outside the
// phase.Runner, since variants are not a signal-table phase. The variant
// row must already exist in the Store: tier rows reference it.
func RenderVariant(ctx context.Context, st *store.Store, root config.Root, img *render.Decoded, imageID, variantID string, force bool) (rendered, skipped, failed int) {
	target := render.Target{
		RenderedRoot: root.Rendered(),
		ID:           variantID,
		ImageID:      imageID,
		VariantID:    variantID,
	}
	return render.RenderAll(ctx, st, img.Image, target, render.VariantTiers, force)
}
