// Package phases holds the per-phase adapters that wire the Scanner,
// Tier Renderer, Store and model.Client into the generic
// phase.Phase/phase.Runner contract (§4.5's phase catalogue). register and
// render are the two declared exceptions the framework doc comment calls
// out: they run against the filesystem corpus rather than discover()ing
// against a signal table anti-join, so each gets its own small Runner
// method instead of implementing phase.Phase.
package phases

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/identity"
	"github.com/fpang/madphotos-core/internal/render"
	"github.com/fpang/madphotos-core/internal/scanner"
	"github.com/fpang/madphotos-core/internal/store"
)

// Register runs the C3 Scanner over root.Originals() and inserts an Image
// row per newly discovered file (already registered ids are skipped),
// decoding each just far enough to learn its pixel dimensions (§4.5).
func Register(ctx context.Context, st *store.Store, root config.Root) (scanned, inserted, failed int) {
	entries, err := scanner.Scan(root.Originals())
	if err != nil {
		log.Error().Err(err).Msg("register: scan failed")
		return 0, 0, 1
	}

	for _, e := range entries {
		scanned++
		id := identity.Identify(e.RelativePath)

		if existing, err := st.GetImage(ctx, id); err == nil && existing.ID != "" {
			continue
		}

		decoded, err := render.Decode(e.AbsolutePath, e.Raw)
		if err != nil {
			log.Warn().Err(err).Str("path", e.RelativePath).Msg("register: decode failed, skipping")
			failed++
			continue
		}

		ext := filepath.Ext(e.AbsolutePath)
		img := store.Image{
			ID:           id,
			SourcePath:   e.RelativePath,
			FileName:     filepath.Base(e.AbsolutePath),
			Category:     e.Category,
			Subcategory:  e.Subcategory,
			SourceFormat: ext,
			Width:        decoded.Width,
			Height:       decoded.Height,
			AspectRatio:  float64(decoded.Width) / float64(decoded.Height),
			Orientation:  store.OrientationFor(decoded.Width, decoded.Height),
			CurationStatus: "pending",
		}

		if err := st.InsertImage(ctx, img); err != nil {
			log.Error().Err(err).Str("path", e.RelativePath).Msg("register: insert failed")
			failed++
			continue
		}
		inserted++
	}

	log.Info().Int("scanned", scanned).Int("inserted", inserted).Int("failed", failed).Msg("register: complete")
	return scanned, inserted, failed
}

// sourceAbsPath reconstructs an image's absolute on-disk path from its
// stored relative source_path, since the Store only keeps the
// corpus-relative path (images move between machines; the root does not).
func sourceAbsPath(root config.Root, img store.Image) string {
	return filepath.Join(root.Originals(), filepath.FromSlash(img.SourcePath))
}
