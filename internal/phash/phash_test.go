package phash

import (
	"image"
	"image/color"
	"testing"
)

func checkerboard(size, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

func solidGray(size int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestAHashLength(t *testing.T) {
	h := AHash(checkerboard(64, 8))
	if len(h) != 16 {
		t.Errorf("AHash length = %d, want 16 hex chars", len(h))
	}
}

func TestDHashLength(t *testing.T) {
	h := DHash(checkerboard(64, 8))
	if len(h) != 16 {
		t.Errorf("DHash length = %d, want 16 hex chars", len(h))
	}
}

func TestPHashLength(t *testing.T) {
	h := PHash(checkerboard(64, 8))
	if len(h) != 16 {
		t.Errorf("PHash length = %d, want 16 hex chars", len(h))
	}
}

func TestWHashLength(t *testing.T) {
	h := WHash(checkerboard(64, 8))
	if len(h) != 16 {
		t.Errorf("WHash length = %d, want 16 hex chars", len(h))
	}
}

func TestHashesDeterministic(t *testing.T) {
	img := checkerboard(64, 8)
	if AHash(img) != AHash(img) {
		t.Error("AHash not deterministic")
	}
	if PHash(img) != PHash(img) {
		t.Error("PHash not deterministic")
	}
}

func TestHashesDistinguishImages(t *testing.T) {
	a := checkerboard(64, 8)
	b := solidGray(64, 128)
	if AHash(a) == AHash(b) {
		t.Error("AHash did not distinguish a checkerboard from a solid gray image")
	}
	if PHash(a) == PHash(b) {
		t.Error("PHash did not distinguish a checkerboard from a solid gray image")
	}
}

func TestBlurScoreSolidIsZero(t *testing.T) {
	if v := BlurScore(solidGray(64, 100)); v != 0 {
		t.Errorf("BlurScore(solid) = %v, want 0", v)
	}
}

func TestBlurScoreHigherForSharpDetail(t *testing.T) {
	flat := BlurScore(solidGray(64, 100))
	sharp := BlurScore(checkerboard(64, 4))
	if sharp <= flat {
		t.Errorf("BlurScore(checkerboard)=%v should exceed BlurScore(solid)=%v", sharp, flat)
	}
}

func TestSharpnessClampedTo1(t *testing.T) {
	s := Sharpness(checkerboard(256, 1))
	if s < 0 || s > 1 {
		t.Errorf("Sharpness = %v, want within [0,1]", s)
	}
}

func TestEntropySolidIsZero(t *testing.T) {
	if e := Entropy(solidGray(64, 50)); e != 0 {
		t.Errorf("Entropy(solid) = %v, want 0", e)
	}
}

func TestEntropyPositiveForVariedImage(t *testing.T) {
	if e := Entropy(checkerboard(64, 4)); e <= 0 {
		t.Errorf("Entropy(checkerboard) = %v, want > 0", e)
	}
}
