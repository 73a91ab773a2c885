package render

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/madphotos-core/internal/store"
)

func openRenderTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InsertImage(context.Background(), store.Image{
		ID: "img-1", SourcePath: "originals/a.jpg", FileName: "a.jpg", CurationStatus: "kept",
	}); err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	return st
}

func TestRenderAllWritesEveryTierAndFormat(t *testing.T) {
	st := openRenderTestStore(t)
	root := t.TempDir()
	src := solidRGBA(200, 100, color.RGBA{10, 20, 30, 255})
	target := Target{RenderedRoot: root, ID: "img-1", ImageID: "img-1"}

	specs := []TierSpec{
		{Name: "thumb", LongEdge: 64, JPEGQuality: 80, WebPQuality: 78},
	}
	rendered, skipped, failed := RenderAll(context.Background(), st, src, target, specs, false)
	if failed != 0 {
		t.Fatalf("RenderAll failed=%d, want 0", failed)
	}
	if rendered != 2 { // jpeg + webp
		t.Errorf("rendered = %d, want 2", rendered)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0 on first render", skipped)
	}

	jpegPath := tierPath(root, "thumb", "jpeg", "img-1")
	if _, err := os.Stat(jpegPath); err != nil {
		t.Errorf("expected jpeg tier file at %s: %v", jpegPath, err)
	}
	webpPath := tierPath(root, "thumb", "webp", "img-1")
	if _, err := os.Stat(webpPath); err != nil {
		t.Errorf("expected webp tier file at %s: %v", webpPath, err)
	}

	tiers, err := st.TiersForImage(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("TiersForImage: %v", err)
	}
	if len(tiers) != 2 {
		t.Errorf("TiersForImage = %d rows, want 2", len(tiers))
	}
}

func TestRenderAllSkipsExistingWithoutForce(t *testing.T) {
	st := openRenderTestStore(t)
	root := t.TempDir()
	src := solidRGBA(200, 100, color.RGBA{10, 20, 30, 255})
	target := Target{RenderedRoot: root, ID: "img-1", ImageID: "img-1"}
	specs := []TierSpec{{Name: "thumb", LongEdge: 64, JPEGQuality: 80, WebPQuality: 78}}

	if _, _, failed := RenderAll(context.Background(), st, src, target, specs, false); failed != 0 {
		t.Fatalf("first RenderAll failed=%d", failed)
	}

	rendered, skipped, failed := RenderAll(context.Background(), st, src, target, specs, false)
	if failed != 0 {
		t.Fatalf("second RenderAll failed=%d, want 0", failed)
	}
	if rendered != 0 || skipped != 2 {
		t.Errorf("second RenderAll rendered=%d skipped=%d, want rendered=0 skipped=2", rendered, skipped)
	}
}

func TestRenderAllForceReRenders(t *testing.T) {
	st := openRenderTestStore(t)
	root := t.TempDir()
	src := solidRGBA(200, 100, color.RGBA{10, 20, 30, 255})
	target := Target{RenderedRoot: root, ID: "img-1", ImageID: "img-1"}
	specs := []TierSpec{{Name: "thumb", LongEdge: 64, JPEGQuality: 80, WebPQuality: 78}}

	if _, _, failed := RenderAll(context.Background(), st, src, target, specs, false); failed != 0 {
		t.Fatalf("first RenderAll failed=%d", failed)
	}
	rendered, _, failed := RenderAll(context.Background(), st, src, target, specs, true)
	if failed != 0 {
		t.Fatalf("forced RenderAll failed=%d, want 0", failed)
	}
	if rendered != 2 {
		t.Errorf("forced RenderAll rendered=%d, want 2 (re-render both formats)", rendered)
	}
}
