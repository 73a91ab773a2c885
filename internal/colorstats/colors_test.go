package colorstats

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestRGBToLabBlackAndWhite(t *testing.T) {
	black := RGBToLab(0, 0, 0)
	if math.Abs(black.L) > 0.01 || math.Abs(black.A) > 0.01 || math.Abs(black.B) > 0.01 {
		t.Errorf("RGBToLab(0,0,0) = %+v, want L=A=B=0", black)
	}

	white := RGBToLab(255, 255, 255)
	if math.Abs(white.L-100) > 0.1 {
		t.Errorf("RGBToLab(255,255,255).L = %v, want ~100", white.L)
	}
}

func TestLabDistZeroForIdenticalColors(t *testing.T) {
	a := RGBToLab(120, 60, 200)
	b := RGBToLab(120, 60, 200)
	if d := a.Dist(b); d > 1e-9 {
		t.Errorf("Dist of identical colors = %v, want 0", d)
	}
}

func TestLabDistIncreasesWithDifference(t *testing.T) {
	base := RGBToLab(100, 100, 100)
	near := RGBToLab(105, 100, 100)
	far := RGBToLab(250, 100, 100)
	if base.Dist(near) >= base.Dist(far) {
		t.Error("Dist should grow with color difference")
	}
}

func TestSamplePixelsRespectsBudget(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}

	samples := SamplePixels(img, 200)
	if len(samples) == 0 {
		t.Fatal("SamplePixels returned no samples")
	}
	if len(samples) > 250 {
		t.Errorf("SamplePixels returned %d samples, expected roughly <= the 200 budget", len(samples))
	}
}

func TestKMeansClusterCountAndPercentages(t *testing.T) {
	var samples []Sample
	colors := []RGB{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	for _, c := range colors {
		for i := 0; i < 20; i++ {
			samples = append(samples, Sample{RGB: c, Lab: RGBToLab(c.R, c.G, c.B)})
		}
	}

	clusters := KMeans(samples, 3, 10)
	if len(clusters) != 3 {
		t.Fatalf("KMeans returned %d clusters, want 3", len(clusters))
	}

	total := 0.0
	for _, c := range clusters {
		total += c.Percentage
	}
	if math.Abs(total-100) > 0.5 {
		t.Errorf("cluster percentages sum to %v, want ~100", total)
	}
}

func TestKMeansClampsKToSampleCount(t *testing.T) {
	samples := []Sample{{RGB: RGB{10, 10, 10}, Lab: RGBToLab(10, 10, 10)}}
	clusters := KMeans(samples, 5, 3)
	if len(clusters) != 1 {
		t.Fatalf("KMeans with 1 sample and k=5 returned %d clusters, want 1", len(clusters))
	}
}

func TestKMeansEmptyInput(t *testing.T) {
	if clusters := KMeans(nil, 5, 3); clusters != nil {
		t.Errorf("KMeans(nil) = %v, want nil", clusters)
	}
}

func TestHexFormat(t *testing.T) {
	if got := Hex(RGB{255, 0, 128}); got != "#ff0080" {
		t.Errorf("Hex() = %q, want #ff0080", got)
	}
}

func TestNearestCSS4NameExactMatch(t *testing.T) {
	if got := NearestCSS4Name(RGB{255, 0, 0}); got != "red" {
		t.Errorf("NearestCSS4Name(255,0,0) = %q, want red", got)
	}
	if got := NearestCSS4Name(RGB{0, 0, 0}); got != "black" {
		t.Errorf("NearestCSS4Name(0,0,0) = %q, want black", got)
	}
}

func TestNearestCSS4NameApproximate(t *testing.T) {
	if got := NearestCSS4Name(RGB{250, 5, 5}); got != "red" {
		t.Errorf("NearestCSS4Name(250,5,5) = %q, want red", got)
	}
}
