package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phases"
	"github.com/fpang/madphotos-core/internal/vectorindex"
)

var vectorsCmd = &cobra.Command{
	Use:   "vectors",
	Short: "write DINOv2/SigLIP/CLIP embeddings into the per-engine vector indexes (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("vectors")
		}
		defer st.Close()

		indexes, closeAll, err := openVectorIndexes(root)
		if err != nil {
			log.Fatal().Err(err).Msg("vectors: open indexes")
		}
		defer closeAll()

		exitWithFailures(runPhase(context.Background(), st, root, phases.VectorsPhase{Root: root, Indexes: indexes}))
	},
}

func init() {
	rootCmd.AddCommand(vectorsCmd)
}

// openVectorIndexes opens the three per-engine sqlite-vec index files
// vectors.go's engineDims map names (§6: "Vector index: <root>/vectors.
// <engine>"), returning a close-everything func for the caller to defer.
func openVectorIndexes(root config.Root) (map[string]*vectorindex.Index, func(), error) {
	dims := map[string]int{"dinov2": 768, "siglip": 768, "clip": 512}
	indexes := make(map[string]*vectorindex.Index, len(dims))
	for engine, dim := range dims {
		idx, err := vectorindex.Open(root.VectorIndexPath(engine), dim)
		if err != nil {
			for _, opened := range indexes {
				opened.Close()
			}
			return nil, nil, err
		}
		indexes[engine] = idx
	}
	return indexes, func() {
		for _, idx := range indexes {
			idx.Close()
		}
	}, nil
}
