package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/phases"
)

// The planner/enhancer each run in two recipe versions (§4.7). Rather than
// collapse them behind a shared --version flag, each version gets its own
// subcommand, mirroring how every other phase here is one verb per signal:
// run-all picks which pair to invoke via its own --version flag instead.

var enhancementPlanCmd = &cobra.Command{
	Use:   "enhancement-plan",
	Short: "derive the v1 crop/exposure/color enhancement recipe (C6)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("enhancement-plan")
		}
		defer st.Close()
		_, _, failed := phases.PlanEnhancements(context.Background(), st, root, 1, rootFlags.force)
		exitWithFailures(failed)
	},
}

var enhancementPlanV2Cmd = &cobra.Command{
	Use:   "enhancement-plan-v2",
	Short: "derive the v2 crop/exposure/color enhancement recipe (C6)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("enhancement-plan-v2")
		}
		defer st.Close()
		_, _, failed := phases.PlanEnhancements(context.Background(), st, root, 2, rootFlags.force)
		exitWithFailures(failed)
	},
}

var enhancementExecuteCmd = &cobra.Command{
	Use:   "enhancement-execute",
	Short: "render the v1 enhancement plan onto the enhanced tier (C7)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("enhancement-execute")
		}
		defer st.Close()
		_, failed := phases.EnhanceImages(context.Background(), st, root, 1, rootFlags.force)
		exitWithFailures(failed)
	},
}

var enhancementExecuteV2Cmd = &cobra.Command{
	Use:   "enhancement-execute-v2",
	Short: "render the v2 enhancement plan onto the enhanced tier (C7)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("enhancement-execute-v2")
		}
		defer st.Close()
		_, failed := phases.EnhanceImages(context.Background(), st, root, 2, rootFlags.force)
		exitWithFailures(failed)
	},
}

func init() {
	rootCmd.AddCommand(enhancementPlanCmd, enhancementPlanV2Cmd, enhancementExecuteCmd, enhancementExecuteV2Cmd)
}
