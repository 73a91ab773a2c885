package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/phases"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "detect and transcribe on-image text (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("ocr")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.NewOCR(root)))
	},
}

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "detect faces and their bounding boxes (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("faces")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.NewFaces(root)))
	},
}

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "detect closed-vocabulary objects (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("objects")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.NewObjects(root)))
	},
}

var openDetectionsCmd = &cobra.Command{
	Use:   "open-detections",
	Short: "detect open-vocabulary objects (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("open-detections")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.NewOpenDetections(root)))
	},
}

var posesCmd = &cobra.Command{
	Use:   "poses",
	Short: "detect body pose keypoints (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("poses")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.NewPoses(root)))
	},
}

var faceIdentityCmd = &cobra.Command{
	Use:   "face-identity",
	Short: "cluster detected faces into stable identities (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("face-identity")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.FaceIdentityPhase{Root: root}))
	},
}

var emotionsCmd = &cobra.Command{
	Use:   "emotions",
	Short: "classify the dominant emotion per detected face (C5)",
	Run: func(cmd *cobra.Command, args []string) {
		root, st, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("emotions")
		}
		defer st.Close()
		exitWithFailures(runPhase(context.Background(), st, root, phases.EmotionsPhase{Root: root}))
	},
}

func init() {
	rootCmd.AddCommand(ocrCmd, facesCmd, objectsCmd, openDetectionsCmd, posesCmd, faceIdentityCmd, emotionsCmd)
}
