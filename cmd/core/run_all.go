package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/export"
	"github.com/fpang/madphotos-core/internal/model"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/phases"
)

var runAllVersion int

// runAllCmd drives every phase in the exact order §6 lists, accumulating
// one failure per phase that reported any failed items and exiting with
// that total (§4.9).
var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "run every phase in pipeline order, from register through export",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("run-all")
		}
		defer st.Close()

		ctx := context.Background()
		client := newModelClient()
		failures := 0

		run := func(p phase.Phase) {
			failures += runPhase(ctx, st, root, p)
		}

		_, _, failed := phases.Register(ctx, st, root)
		failures += boolFailure(failed)
		_, _, failed = phases.Render(ctx, st, root, rootFlags.force)
		failures += boolFailure(failed)

		run(phases.ExifPhase{Root: root})
		run(phases.PixelAnalysisPhase{Root: root})
		run(phases.DominantColorsPhase{Root: root})
		run(phases.HashesPhase{Root: root})

		indexes, closeAll, err := openVectorIndexes(root)
		if err != nil {
			log.Fatal().Err(err).Msg("run-all: open vector indexes")
		}
		run(phases.VectorsPhase{Root: root, Indexes: indexes})
		closeAll()

		if apiKey := config.GeminiAPIKey(); apiKey != "" {
			geminiClient, err := model.NewGeminiClient(ctx, apiKey)
			if err != nil {
				log.Error().Err(err).Msg("run-all: gemini client init failed, skipping gemini phase")
			} else {
				run(phases.GeminiPhase{Root: root, Client: geminiClient})
			}
		} else {
			log.Warn().Msg("run-all: GEMINI_API_KEY not set, skipping gemini phase")
		}

		run(phases.NewAesthetic(root, client))
		run(phases.NewDepth(root, client))
		run(phases.NewScene(root, client))
		run(phases.NewStyle(root, client))
		run(phases.NewOCR(root))
		run(phases.NewCaptions(root, client))
		run(phases.NewFaces(root))
		run(phases.FaceIdentityPhase{Root: root})
		run(phases.EmotionsPhase{Root: root})
		run(phases.NewObjects(root))
		run(phases.NewOpenDetections(root))
		run(phases.NewSegments(root, client))
		run(phases.NewForeground(root, client))
		run(phases.NewPoses(root))
		run(phases.NewSaliency(root, client))
		run(phases.NewBorders(root, client))
		run(phases.LocationsPhase{})
		run(phases.TagsPhase{Root: root})

		_, _, planFailed := phases.PlanEnhancements(ctx, st, root, runAllVersion, rootFlags.force)
		failures += boolFailure(planFailed)
		_, execFailed := phases.EnhanceImages(ctx, st, root, runAllVersion, rootFlags.force)
		failures += boolFailure(execFailed)

		baseURL := exportBaseURL
		if baseURL == "" {
			baseURL = config.BaseUploadURL()
		}
		if err := export.Run(ctx, st, root, baseURL); err != nil {
			log.Error().Err(err).Msg("run-all: export failed")
			failures++
		}

		exitWithFailures(failures)
	},
}

func boolFailure(failed int) int {
	if failed > 0 {
		return 1
	}
	return 0
}

func init() {
	runAllCmd.Flags().IntVar(&runAllVersion, "version", 1, "enhancement plan/execute recipe version (1 or 2)")
	runAllCmd.Flags().StringVar(&exportBaseURL, "base-url", "", "base URL prefix for rendered tier paths used by the final export step")
	rootCmd.AddCommand(runAllCmd)
}
