package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/model"
	"github.com/fpang/madphotos-core/internal/phases"
)

var geminiCmd = &cobra.Command{
	Use:   "gemini",
	Short: "ask Gemini for the structured technical/composition/color/environment/narrative analysis (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("gemini")
		}
		defer st.Close()

		ctx := context.Background()
		apiKey := config.GeminiAPIKey()
		if apiKey == "" {
			log.Fatal().Msgf("gemini: %s is not set", config.GeminiAPIKeyEnv)
		}
		client, err := model.NewGeminiClient(ctx, apiKey)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini: client init failed")
		}

		exitWithFailures(runPhase(ctx, st, root, phases.GeminiPhase{Root: root, Client: client}))
	},
}

func init() {
	rootCmd.AddCommand(geminiCmd)
}
