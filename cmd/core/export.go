package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/export"
)

var exportBaseURL string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "flatten every accepted image into photos.json and its derivative files (C8)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("export")
		}
		defer st.Close()

		baseURL := exportBaseURL
		if baseURL == "" {
			baseURL = config.BaseUploadURL()
		}

		if err := export.Run(context.Background(), st, root, baseURL); err != nil {
			log.Fatal().Err(err).Msg("export")
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportBaseURL, "base-url", "", "base URL prefix for rendered tier paths (overrides CORE_UPLOAD_BASE_URL)")
	rootCmd.AddCommand(exportCmd)
}
