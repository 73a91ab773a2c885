package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/phases"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "scan originals and upsert Image rows (C3)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("register")
		}
		defer st.Close()

		_, _, failed := phases.Register(context.Background(), st, root)
		exitWithFailures(failed)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "render the tier pyramid for every registered image (C4)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("render")
		}
		defer st.Close()

		_, _, failed := phases.Render(context.Background(), st, root, rootFlags.force)
		exitWithFailures(failed)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, renderCmd)
}
