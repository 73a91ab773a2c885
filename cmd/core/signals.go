package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/phases"
)

func init() {
	rootCmd.AddCommand(
		exifCmd, pixelAnalysisCmd, dominantColorsCmd, hashesCmd, locationsCmd, tagsCmd,
	)
}

var exifCmd = &cobra.Command{
	Use:   "exif",
	Short: "extract EXIF metadata from the encoded source (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("exif")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.ExifPhase{Root: root}))
	},
}

var pixelAnalysisCmd = &cobra.Command{
	Use:   "pixel-analysis",
	Short: "compute brightness/contrast/noise/white-balance statistics (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("pixel-analysis")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.PixelAnalysisPhase{Root: root}))
	},
}

var dominantColorsCmd = &cobra.Command{
	Use:   "dominant-colors",
	Short: "extract the 5-entry CIELAB palette (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("dominant-colors")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.DominantColorsPhase{Root: root}))
	},
}

var hashesCmd = &cobra.Command{
	Use:   "hashes",
	Short: "compute perceptual hashes and blur/sharpness/entropy (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("hashes")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.HashesPhase{Root: root}))
	},
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "resolve candidate GPS locations (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("locations")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.LocationsPhase{}))
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "score the fixed tag vocabulary against each image (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("tags")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.TagsPhase{Root: root}))
	},
}
