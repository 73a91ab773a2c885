package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/phases"
)

// modelPhaseCmd builds one subcommand for a ModelPhase constructor; every
// entry in this file shares the same shape (open store, build phase
// against the Heuristic backend, run, report) so one helper serves all of
// them instead of a near-identical Run closure per phase.
func modelPhaseCmd(use, short string, build func(config.Root) phase.Phase) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			root, st, err := openStore()
			if err != nil {
				log.Fatal().Err(err).Str("phase", use).Msg("open store")
			}
			defer st.Close()
			exitWithFailures(runPhase(context.Background(), st, root, build(root)))
		},
	}
}

var aestheticCmd = modelPhaseCmd("aesthetic", "score overall aesthetic quality (C5)", func(root config.Root) phase.Phase {
	return phases.NewAesthetic(root, newModelClient())
})

var aestheticV2Cmd = modelPhaseCmd("aesthetic-v2", "score aesthetic quality with the v2 multi-metric recipe (C5)", func(root config.Root) phase.Phase {
	return phases.NewAestheticV2(root, newModelClient())
})

var depthCmd = modelPhaseCmd("depth", "estimate near/mid/far depth buckets (C5)", func(root config.Root) phase.Phase {
	return phases.NewDepth(root, newModelClient())
})

var sceneCmd = modelPhaseCmd("scene", "classify scene and environment (C5)", func(root config.Root) phase.Phase {
	return phases.NewScene(root, newModelClient())
})

var styleCmd = modelPhaseCmd("style", "classify photographic style (C5)", func(root config.Root) phase.Phase {
	return phases.NewStyle(root, newModelClient())
})

var captionsCmd = modelPhaseCmd("captions", "generate a single descriptive caption (C5)", func(root config.Root) phase.Phase {
	return phases.NewCaptions(root, newModelClient())
})

var florenceCaptionsCmd = modelPhaseCmd("florence-captions", "generate short/detailed/more-detailed captions (C5)", func(root config.Root) phase.Phase {
	return phases.NewFlorenceCaptions(root, newModelClient())
})

var saliencyCmd = modelPhaseCmd("saliency", "locate the visual attention peak (C5)", func(root config.Root) phase.Phase {
	return phases.NewSaliency(root, newModelClient())
})

var bordersCmd = modelPhaseCmd("borders", "detect letterboxing/border crops (C5)", func(root config.Root) phase.Phase {
	return phases.NewBorders(root, newModelClient())
})

var foregroundCmd = modelPhaseCmd("foreground", "segment foreground/background (C5)", func(root config.Root) phase.Phase {
	return phases.NewForeground(root, newModelClient())
})

var segmentsCmd = modelPhaseCmd("segments", "estimate segmentation complexity (C5)", func(root config.Root) phase.Phase {
	return phases.NewSegments(root, newModelClient())
})

func init() {
	rootCmd.AddCommand(
		aestheticCmd, aestheticV2Cmd, depthCmd, sceneCmd, styleCmd,
		captionsCmd, florenceCaptionsCmd, saliencyCmd, bordersCmd, foregroundCmd, segmentsCmd,
	)
}
