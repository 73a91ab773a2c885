package render

import (
	"image"
	"image/color"
	"testing"
)

func TestFormatsIncludesWebPWhenConfigured(t *testing.T) {
	tier := TierSpec{Name: "display", WebPQuality: 82}
	got := tier.Formats()
	if len(got) != 2 || got[0] != "jpeg" || got[1] != "webp" {
		t.Errorf("Formats() = %v, want [jpeg webp]", got)
	}
}

func TestFormatsOmitsWebPWhenZero(t *testing.T) {
	tier := TierSpec{Name: "full", WebPQuality: 0}
	got := tier.Formats()
	if len(got) != 1 || got[0] != "jpeg" {
		t.Errorf("Formats() = %v, want [jpeg]", got)
	}
}

func TestUnsharpEnabled(t *testing.T) {
	if (Unsharp{Radius: 0}).Enabled() {
		t.Error("Unsharp with zero radius should be disabled")
	}
	if !(Unsharp{Radius: 0.5}).Enabled() {
		t.Error("Unsharp with non-zero radius should be enabled")
	}
}

func TestOriginalTiersCoversSixTiers(t *testing.T) {
	if len(OriginalTiers) != 6 {
		t.Errorf("len(OriginalTiers) = %d, want 6", len(OriginalTiers))
	}
}

func TestVariantTiersCoversFourTiers(t *testing.T) {
	if len(VariantTiers) != 4 {
		t.Errorf("len(VariantTiers) = %d, want 4", len(VariantTiers))
	}
}

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestResizeDownscalesLongEdge(t *testing.T) {
	img := solidRGBA(4000, 3000, color.RGBA{100, 100, 100, 255})
	out := Resize(img, 2000)
	b := out.Bounds()
	if b.Dx() != 2000 {
		t.Errorf("resized long edge = %d, want 2000", b.Dx())
	}
	wantH := int(3000.0 * (2000.0 / 4000.0))
	if diff := b.Dy() - wantH; diff < -1 || diff > 1 {
		t.Errorf("resized short edge = %d, want ~%d", b.Dy(), wantH)
	}
}

func TestResizeNeverUpscales(t *testing.T) {
	img := solidRGBA(100, 80, color.RGBA{0, 0, 0, 255})
	out := Resize(img, 2000)
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("Resize upscaled a smaller image to %dx%d", b.Dx(), b.Dy())
	}
}

func TestResizePreservesAspectRatio(t *testing.T) {
	img := solidRGBA(1600, 800, color.RGBA{255, 0, 0, 255})
	out := Resize(img, 800)
	b := out.Bounds()
	origRatio := 1600.0 / 800.0
	newRatio := float64(b.Dx()) / float64(b.Dy())
	if diff := origRatio - newRatio; diff < -0.02 || diff > 0.02 {
		t.Errorf("aspect ratio changed: orig=%v new=%v", origRatio, newRatio)
	}
}

func TestSharpenNoOpWhenDisabled(t *testing.T) {
	img := solidRGBA(10, 10, color.RGBA{50, 50, 50, 255})
	out := Sharpen(img, Unsharp{Radius: 0})
	if out != img {
		t.Error("Sharpen should return the same image unchanged when disabled")
	}
}

func TestSharpenFlatRegionBelowThresholdUnchanged(t *testing.T) {
	img := solidRGBA(20, 20, color.RGBA{128, 128, 128, 255})
	out := Sharpen(img, Unsharp{Radius: 1, Percent: 100, Threshold: 2})
	r, g, b, _ := out.At(10, 10).RGBA()
	if r>>8 != 128 || g>>8 != 128 || b>>8 != 128 {
		t.Errorf("Sharpen altered a flat region below threshold: (%d,%d,%d), want (128,128,128)", r>>8, g>>8, b>>8)
	}
}

func TestSharpenPreservesBounds(t *testing.T) {
	img := solidRGBA(16, 16, color.RGBA{10, 200, 30, 255})
	out := Sharpen(img, Unsharp{Radius: 0.5, Percent: 40, Threshold: 2})
	if out.Bounds() != img.Bounds() {
		t.Errorf("Sharpen changed image bounds: %v -> %v", img.Bounds(), out.Bounds())
	}
}
