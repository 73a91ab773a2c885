package phases

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/madphotos-core/internal/render"
	"github.com/fpang/madphotos-core/internal/store"
)

func solidImageForVariant(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{60, 90, 120, 255}}, image.Point{}, draw.Src)
	return img
}

func TestRenderWritesTierPyramidForRegisteredOriginals(t *testing.T) {
	st, root := openPhaseTestStore(t)
	writeOriginal(t, root, "family/a.jpg", 400, 300)
	if _, _, failed := Register(context.Background(), st, root); failed != 0 {
		t.Fatalf("Register failed=%d", failed)
	}

	rendered, skipped, failed := Render(context.Background(), st, root, false)
	if failed != 0 {
		t.Fatalf("Render failed=%d, want 0", failed)
	}
	if rendered == 0 {
		t.Error("expected Render to produce at least one tier output")
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0 on first render", skipped)
	}

	imgs, err := st.ListImages(context.Background())
	if err != nil || len(imgs) != 1 {
		t.Fatalf("ListImages: %v, len=%d", err, len(imgs))
	}
	displayPath := filepath.Join(root.RenderedTier("display"), "jpeg", imgs[0].ID+".jpg")
	if _, err := os.Stat(displayPath); err != nil {
		t.Errorf("expected a rendered display tier at %s: %v", displayPath, err)
	}
}

func TestRenderSkipsAlreadyRenderedWithoutForce(t *testing.T) {
	st, root := openPhaseTestStore(t)
	writeOriginal(t, root, "family/a.jpg", 200, 200)
	if _, _, failed := Register(context.Background(), st, root); failed != 0 {
		t.Fatalf("Register failed=%d", failed)
	}
	if _, _, failed := Render(context.Background(), st, root, false); failed != 0 {
		t.Fatalf("first Render failed=%d", failed)
	}

	rendered, _, failed := Render(context.Background(), st, root, false)
	if failed != 0 {
		t.Fatalf("second Render failed=%d", failed)
	}
	if rendered != 0 {
		t.Errorf("rendered = %d on already-rendered image without force, want 0", rendered)
	}
}

func TestRenderForceReRendersExistingImages(t *testing.T) {
	st, root := openPhaseTestStore(t)
	writeOriginal(t, root, "family/a.jpg", 200, 200)
	if _, _, failed := Register(context.Background(), st, root); failed != 0 {
		t.Fatalf("Register failed=%d", failed)
	}
	if _, _, failed := Render(context.Background(), st, root, false); failed != 0 {
		t.Fatalf("first Render failed=%d", failed)
	}

	rendered, _, failed := Render(context.Background(), st, root, true)
	if failed != 0 {
		t.Fatalf("forced Render failed=%d", failed)
	}
	if rendered == 0 {
		t.Error("forced Render should re-render every tier even though rows already exist")
	}
}

func TestRenderVariantWritesFourTierPyramid(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	if err := st.InsertVariant(context.Background(), store.Variant{
		ID: "variant-a", ImageID: "img-1", VariantType: "enhanced", SourceTier: "display", Status: store.VariantPending,
	}); err != nil {
		t.Fatalf("InsertVariant: %v", err)
	}
	decoded := &render.Decoded{Image: solidImageForVariant(300, 200)}

	rendered, _, failed := RenderVariant(context.Background(), st, root, decoded, "img-1", "variant-a", false)
	if failed != 0 {
		t.Fatalf("RenderVariant failed=%d, want 0", failed)
	}
	if rendered == 0 {
		t.Error("expected RenderVariant to produce at least one tier output")
	}

	var count int
	if err := st.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM tiers WHERE variant_id = ?`, "variant-a").Scan(&count); err != nil {
		t.Fatalf("count variant tiers: %v", err)
	}
	if count == 0 {
		t.Error("expected variant tier rows to be recorded under the variant id")
	}
}
