// Command core is the Orchestrator (C9, §4.9): one cobra binary exposing
// every pipeline phase as a subcommand plus an umbrella run-all, matching
// the single-binary-per-concern shape francis-pang-ai-social-media-helper
// uses for each of its cmd/ entries, generalized here to a subcommand tree
// since this pipeline has many more phases than the teacher's single-task
// CLIs.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/madphotos-core/internal/logging"
)

var rootFlags struct {
	root    string
	shardN  int
	shardM  int
	limit   int
	force   bool
	workers int
	batch   int
}

var rootCmd = &cobra.Command{
	Use:   "core",
	Short: "madphotos-core: content-addressed photo pipeline orchestrator",
	Long: `core runs the photo-processing pipeline over one corpus root: register
discovers source files, render produces the tier pyramid, the signal
phases enrich each image with pixel, ML and metadata signals, the
enhancement planner and enhancer compute and apply a per-image correction
recipe, and export flattens everything into the denormalized JSON a
downstream gallery consumes.

Run "core run-all" to execute the full catalogue in order, or invoke any
phase individually with "core <phase> [--shard-n N --shard-m M] [--limit N]
[--force] [--workers W]".`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.root, "root", ".", "corpus root directory")
	rootCmd.PersistentFlags().IntVar(&rootFlags.shardN, "shard-n", 1, "this worker's shard index (0-based, below --shard-m)")
	rootCmd.PersistentFlags().IntVar(&rootFlags.shardM, "shard-m", 1, "total shard count")
	rootCmd.PersistentFlags().IntVar(&rootFlags.limit, "limit", 0, "maximum images to process (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.force, "force", false, "reprocess images that already have a signal row")
	rootCmd.PersistentFlags().IntVar(&rootFlags.workers, "workers", 0, "worker pool size (0 = cpu_count-2)")
	rootCmd.PersistentFlags().IntVar(&rootFlags.batch, "batch", 0, "accepted but not applied; every phase uses its own batch size")
}

func main() {
	logging.Init()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
