package phase

import (
	"context"
	"testing"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/lock"
	"github.com/fpang/madphotos-core/internal/store"
)

// fakePhase is a minimal single-row phase exercising the aesthetic_scores
// table, standing in for a real signal phase so the framework's
// discover/filter/process/commit loop can be tested without a decoder.
type fakePhase struct {
	failID string
}

func (f fakePhase) Name() string        { return "aesthetic_scores" }
func (f fakePhase) SignalTable() string { return "aesthetic_scores" }
func (f fakePhase) BatchSize() int      { return 1 }
func (f fakePhase) Multi() bool         { return false }

func (f fakePhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	imgs, err := st.ListImages(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(imgs))
	for i, img := range imgs {
		ids[i] = img.ID
	}
	return ids, nil
}

func (f fakePhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	if imageID == f.failID {
		return nil, errFakeFailure
	}
	return map[string]any{"score": 5.0, "label": "average", "analyzed_at": "2026-01-01T00:00:00Z"}, nil
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

const errFakeFailure = fakeErr("forced failure")

func newTestRunner(t *testing.T) (*Runner, config.Root) {
	t.Helper()
	dir := t.TempDir()
	root := config.NewRoot(dir)
	st, err := store.Open(root.StorePath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return &Runner{Store: st, Root: root}, root
}

func seedImages(t *testing.T, st *store.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		img := store.Image{ID: id, SourcePath: "originals/" + id + ".jpg", FileName: id + ".jpg", CurationStatus: "kept"}
		if err := st.InsertImage(context.Background(), img); err != nil {
			t.Fatalf("InsertImage(%s): %v", id, err)
		}
	}
}

func TestRunnerProcessesAllDiscoveredImages(t *testing.T) {
	r, _ := newTestRunner(t)
	seedImages(t, r.Store, "img-1", "img-2", "img-3")

	report, err := r.Run(context.Background(), fakePhase{}, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 3 || report.Failed != 0 {
		t.Errorf("report = %+v, want Processed=3 Failed=0", report)
	}
	if report.Status != store.RunCompleted {
		t.Errorf("Status = %q, want %q", report.Status, store.RunCompleted)
	}

	has, err := r.Store.HasSignal(context.Background(), "aesthetic_scores", "img-1")
	if err != nil || !has {
		t.Errorf("HasSignal(img-1) = %v, %v, want true, nil", has, err)
	}
}

func TestRunnerSkipsAlreadyProcessedUnlessForced(t *testing.T) {
	r, _ := newTestRunner(t)
	seedImages(t, r.Store, "img-1", "img-2")

	if _, err := r.Run(context.Background(), fakePhase{}, Options{}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	report, err := r.Run(context.Background(), fakePhase{}, Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Processed != 0 {
		t.Errorf("resumed Run without --force processed %d items, want 0", report.Processed)
	}

	forced, err := r.Run(context.Background(), fakePhase{}, Options{Force: true})
	if err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	if forced.Processed != 2 {
		t.Errorf("forced Run processed %d items, want 2 (re-process all)", forced.Processed)
	}
}

func TestRunnerLimitCapsWorkItems(t *testing.T) {
	r, _ := newTestRunner(t)
	seedImages(t, r.Store, "img-1", "img-2", "img-3")

	report, err := r.Run(context.Background(), fakePhase{}, Options{Limit: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("Processed = %d, want 1 with Limit=1", report.Processed)
	}
}

func TestRunnerCountsPerItemFailuresWithoutAbortingBatch(t *testing.T) {
	r, _ := newTestRunner(t)
	seedImages(t, r.Store, "img-1", "img-2", "img-3")

	report, err := r.Run(context.Background(), fakePhase{failID: "img-2"}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want Processed=2 Failed=1", report)
	}
}

func TestProgressIntervalClampedToRange(t *testing.T) {
	if got := progressInterval(1); got != 50 {
		t.Errorf("progressInterval(1) = %d, want 50 (floor)", got)
	}
	if got := progressInterval(1000); got != 500 {
		t.Errorf("progressInterval(1000) = %d, want 500 (ceiling)", got)
	}
	if got := progressInterval(10); got != 100 {
		t.Errorf("progressInterval(10) = %d, want 100", got)
	}
}

func TestRunnerLockPreventsConcurrentRun(t *testing.T) {
	dir := t.TempDir()
	root := config.NewRoot(dir)
	st, err := store.Open(root.StorePath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	r := &Runner{Store: st, Root: root}
	seedImages(t, r.Store, "img-1")

	held, err := lock.Acquire(root.LockPath())
	if err != nil {
		t.Fatalf("lock.Acquire: %v", err)
	}
	defer held.Release()

	if _, err := r.Run(context.Background(), fakePhase{}, Options{}); err == nil {
		t.Error("Run should fail to acquire the lock while another holder has it")
	}
}
