// Package phase implements the Signal Phase Framework (C5, §4.5): the
// discover/process/commit/report contract every phase shares, plus the
// resume, sharding, locking and cancellation handling the framework
// provides to every phase. Items are processed and committed one at a
// time; there is no batched processing path.
//
// The control-flow shape is grounded on francis-pang-ai-social-media-helper's
// chat package, which runs external-model calls from a synchronous work
// loop rather than goroutine fan-out (the source's async/semaphore model,
// per §9, maps to a bounded worker pool here).
package phase

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/lock"
	"github.com/fpang/madphotos-core/internal/logging"
	"github.com/fpang/madphotos-core/internal/shardhash"
	"github.com/fpang/madphotos-core/internal/store"
)

// WorkItem is the minimal unit discover() hands to process(); phases
// embed it in a richer per-phase struct when they need more than an id.
type WorkItem struct {
	ImageID string
}

// Result is what process() returns for one work item, committed by
// commit(). Err is non-nil for a per-item failure that must not abort
// the batch (§4.5 batching contract).
type Result struct {
	ImageID string
	Err     error
	// Fields is the record UpsertSignal/InsertSignalRow writes; nil when
	// Err is set.
	Fields map[string]any
}

// Phase is the contract every signal phase implements (§4.5).
type Phase interface {
	// Name is the phase's unique identifier and signal table name for
	// the common case where they coincide (most phases; register and
	// render are the declared exceptions, each with its own Runner
	// wiring in internal/phases).
	Name() string
	// SignalTable names the table discover() anti-joins against to find
	// images with no output yet.
	SignalTable() string
	// Discover returns every candidate image id in stable order; the
	// Runner applies force/shard/limit filtering uniformly.
	Discover(ctx context.Context, st *store.Store) ([]string, error)
	// ProcessOne computes one image's signal. The Runner calls it once per
	// item for every phase, whatever its BatchSize(); there is no batched
	// processing method.
	ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error)
	// BatchSize returns the phase's nominal batch size. The Runner uses it
	// only to pick the progress-log interval (see progressInterval); items
	// are not grouped into batches.
	BatchSize() int
	// Multi reports whether this phase writes multi-row signal tables
	// (InsertSignalRow) instead of the single upsert-per-image shape.
	Multi() bool
}

// Options carries the per-invocation flags every phase command accepts
// (§6 CLI: --shard N/M, --limit N, --force, --workers W).
type Options struct {
	ShardN  int
	ShardM  int
	Limit   int
	Force   bool
	Workers int
}

// Runner drives one phase's discover/process/commit/report loop,
// providing resume, sharding, locking and SIGINT handling uniformly
// (§4.5, §5) so individual Phase implementations stay pure domain logic.
// Each result is committed as it arrives; items are not batched.
type Runner struct {
	Store *store.Store
	Root  config.Root
}

// Report summarizes one phase run for the orchestrator's exit-code
// accounting (§4.9: exit status is the count of failed phases).
type Report struct {
	RunID     int64
	Processed int
	Failed    int
	Status    string
}

// progressInterval picks how often (in items) the framework logs
// progress, clamped to 50-500 items and derived from the phase's own
// batch size so a phase with a small batch reports more often than one
// with a large batch. Commits do not follow this interval: every result
// is committed as it arrives.
func progressInterval(batchSize int) int {
	n := batchSize * 10
	if n < 50 {
		return 50
	}
	if n > 500 {
		return 500
	}
	return n
}

// Run executes p to completion (or interruption), returning a Report.
func (r *Runner) Run(ctx context.Context, p Phase, opts Options) (Report, error) {
	fl, err := lock.Acquire(r.Root.LockPath())
	if err != nil {
		return Report{}, fmt.Errorf("phase %s: %w", p.Name(), err)
	}
	defer fl.Release()

	ids, err := p.Discover(ctx, r.Store)
	if err != nil {
		return Report{}, fmt.Errorf("phase %s: discover: %w", p.Name(), err)
	}
	ids = r.filter(ctx, p, ids, opts)

	runID, err := r.Store.StartRun(ctx, p.Name(), fmt.Sprintf(`{"shard":"%d/%d","limit":%d,"force":%v}`, opts.ShardN, opts.ShardM, opts.Limit, opts.Force))
	if err != nil {
		return Report{}, fmt.Errorf("phase %s: start run: %w", p.Name(), err)
	}

	logger := logging.WithPhase(p.Name(), runID)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	interrupted := int32(0)
	forceExit := int32(0)
	go func() {
		for range sigCh {
			if atomic.AddInt32(&interrupted, 1) == 1 {
				logger.Warn().Msg("received interrupt, draining in-flight work")
			} else {
				atomic.StoreInt32(&forceExit, 1)
				logger.Warn().Msg("second interrupt, exiting without commit")
				os.Exit(130)
			}
		}
	}()

	workers := opts.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers()
	}
	batch := p.BatchSize()
	if batch <= 0 {
		batch = 1
	}

	var processed, failed int64
	start := time.Now()

	work := make(chan string, len(ids))
	for _, id := range ids {
		work <- id
	}
	close(work)

	results := make(chan Result, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				if atomic.LoadInt32(&interrupted) != 0 {
					return
				}
				fields, err := p.ProcessOne(ctx, r.Store, id)
				results <- Result{ImageID: id, Fields: fields, Err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.Err != nil {
			atomic.AddInt64(&failed, 1)
			imgLog := logging.WithImage(logger, res.ImageID)
			imgLog.Error().Err(res.Err).Msg("phase: item failed")
			continue
		}
		if err := r.commit(ctx, p, res); err != nil {
			atomic.AddInt64(&failed, 1)
			logger.Error().Err(err).Str("image_id", res.ImageID).Msg("phase: commit failed")
			continue
		}
		atomic.AddInt64(&processed, 1)

		total := atomic.LoadInt64(&processed) + atomic.LoadInt64(&failed)
		if total%int64(progressInterval(batch)) == 0 {
			rate := float64(total) / time.Since(start).Seconds()
			remaining := len(ids) - int(total)
			eta := 0.0
			if rate > 0 {
				eta = float64(remaining) / rate
			}
			logger.Info().Msgf("%d/%d (%.1f/s, ~%.0fs)", total, len(ids), rate, eta)
		}
	}

	status := store.RunCompleted
	if atomic.LoadInt32(&interrupted) != 0 {
		status = store.RunInterrupted
	} else if failed > 0 && processed == 0 {
		status = store.RunFailed
	}
	if err := r.Store.FinishRun(ctx, runID, status, int(processed), int(failed), ""); err != nil {
		return Report{}, fmt.Errorf("phase %s: finish run: %w", p.Name(), err)
	}

	return Report{RunID: runID, Processed: int(processed), Failed: int(failed), Status: status}, nil
}

// commit writes one item's result. A phase that needs transactional
// multi-row replace semantics (dominant-colors' exactly-five-row palette)
// commits internally in ProcessOne and returns nil Fields to signal this
// is already done, so the framework's generic insert is skipped rather
// than appending a second, malformed row.
func (r *Runner) commit(ctx context.Context, p Phase, res Result) error {
	if res.Fields == nil {
		return nil
	}
	if p.Multi() {
		return r.Store.InsertSignalRow(ctx, p.SignalTable(), res.ImageID, res.Fields)
	}
	return r.Store.UpsertSignal(ctx, p.SignalTable(), res.ImageID, res.Fields)
}

// filter applies resume (unless Force), sharding and limit uniformly so
// no Phase implementation has to reimplement §4.5's shared guarantees.
func (r *Runner) filter(ctx context.Context, p Phase, ids []string, opts Options) []string {
	var out []string
	for _, id := range ids {
		if !opts.Force {
			has, err := r.Store.HasSignal(ctx, p.SignalTable(), id)
			if err == nil && has {
				continue
			}
		}
		if opts.ShardM > 1 && !shardhash.InShard(id, opts.ShardN, opts.ShardM) {
			continue
		}
		out = append(out, id)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}
