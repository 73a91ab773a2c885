package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/model"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// openStore resolves the corpus root and opens its Store, the first step
// of every subcommand below.
func openStore() (config.Root, *store.Store, error) {
	root := config.NewRoot(rootFlags.root)
	st, err := store.Open(root.StorePath())
	if err != nil {
		return root, nil, fmt.Errorf("open store: %w", err)
	}
	return root, st, nil
}

// phaseOptions builds phase.Options from the persistent CLI flags every
// subcommand shares (§6: "--shard N/M --limit N --force --workers W").
func phaseOptions() phase.Options {
	return phase.Options{
		ShardN:  rootFlags.shardN,
		ShardM:  rootFlags.shardM,
		Limit:   rootFlags.limit,
		Force:   rootFlags.force,
		Workers: rootFlags.workers,
	}
}

// newModelClient returns the backend the ModelPhase-backed subcommands
// analyze through, which is always Heuristic; the gemini phase builds its
// own GeminiClient from the API key instead (§9's model.Client
// abstraction keeps every phase below backend-agnostic).
func newModelClient() model.Client {
	return model.NewHeuristic()
}

// runPhase drives one phase through phase.Runner and reports its outcome
// the way every subcommand below does, returning the failure count the
// orchestrator's exit-code accounting needs (§4.9).
func runPhase(ctx context.Context, st *store.Store, root config.Root, p phase.Phase) int {
	r := &phase.Runner{Store: st, Root: root}
	report, err := r.Run(ctx, p, phaseOptions())
	if err != nil {
		log.Error().Err(err).Str("phase", p.Name()).Msg("phase run failed")
		return 1
	}
	log.Info().Str("phase", p.Name()).Int("processed", report.Processed).Int("failed", report.Failed).Str("status", report.Status).Msg("phase complete")
	if report.Failed > 0 {
		return 1
	}
	return 0
}

// exitWithFailures translates an orchestrator failure count into the
// process exit status (§4.9: "Exit status is the count of failed
// phases").
func exitWithFailures(failures int) {
	if failures > 0 {
		os.Exit(failures)
	}
}
