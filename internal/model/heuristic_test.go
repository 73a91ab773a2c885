package model

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func writeTestJPEG(t *testing.T, name string, paint func(x, y int) color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, paint(x, y))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func solidImage(v uint8) func(x, y int) color.Color {
	return func(x, y int) color.Color { return color.RGBA{v, v, v, 255} }
}

func checkerImage(x, y int) color.Color {
	if (x/4+y/4)%2 == 0 {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{0, 0, 0, 255}
}

func TestHeuristicAnalyzeUnknownTask(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "a.jpg", solidImage(128))
	if _, err := h.Analyze(context.Background(), "not-a-real-task", path); err == nil {
		t.Error("Analyze should error for an unrecognized task")
	}
}

func TestHeuristicAnalyzeMissingFile(t *testing.T) {
	h := NewHeuristic()
	if _, err := h.Analyze(context.Background(), "depth", "/nonexistent/path.jpg"); err == nil {
		t.Error("Analyze should error when the image file does not exist")
	}
}

func TestHeuristicDepthSumsToHundred(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "checker.jpg", checkerImage)
	out, err := h.Analyze(context.Background(), "depth", path)
	if err != nil {
		t.Fatalf("Analyze(depth): %v", err)
	}
	near, mid, far := out["near_pct"].(float64), out["mid_pct"].(float64), out["far_pct"].(float64)
	if sum := near + mid + far; sum < 99.9 || sum > 100.1 {
		t.Errorf("near+mid+far = %v, want ~100", sum)
	}
}

func TestHeuristicDepthFlatImageIsEvenSplit(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "flat.jpg", solidImage(100))
	out, err := h.Analyze(context.Background(), "depth", path)
	if err != nil {
		t.Fatalf("Analyze(depth): %v", err)
	}
	if out["complexity"].(float64) != 0.0 {
		t.Errorf("complexity for a flat image = %v, want 0", out["complexity"])
	}
}

func TestHeuristicAestheticScoreRange(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "checker.jpg", checkerImage)
	out, err := h.Analyze(context.Background(), "aesthetic", path)
	if err != nil {
		t.Fatalf("Analyze(aesthetic): %v", err)
	}
	score := out["score"].(float64)
	if score < 0 || score > 10 {
		t.Errorf("aesthetic score = %v, want within [0, 10]", score)
	}
	if _, ok := out["label"].(string); !ok {
		t.Error("aesthetic result missing label")
	}
}

func TestHeuristicAestheticV2Composite(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "checker.jpg", checkerImage)
	out, err := h.Analyze(context.Background(), "aesthetic-v2", path)
	if err != nil {
		t.Fatalf("Analyze(aesthetic-v2): %v", err)
	}
	for _, key := range []string{"topiq", "musiq", "laion", "composite", "label"} {
		if _, ok := out[key]; !ok {
			t.Errorf("aesthetic-v2 result missing %q", key)
		}
	}
}

func TestHeuristicSceneIndoorOutdoor(t *testing.T) {
	h := NewHeuristic()
	sky := func(x, y int) color.Color { return color.RGBA{50, 120, 220, 255} }
	path := writeTestJPEG(t, "sky.jpg", sky)
	out, err := h.Analyze(context.Background(), "scene", path)
	if err != nil {
		t.Fatalf("Analyze(scene): %v", err)
	}
	if out["environment"] != "outdoor" {
		t.Errorf("environment for a sky-blue field = %v, want outdoor", out["environment"])
	}
}

func TestHeuristicSaliencyWithinBounds(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "checker.jpg", checkerImage)
	out, err := h.Analyze(context.Background(), "saliency", path)
	if err != nil {
		t.Fatalf("Analyze(saliency): %v", err)
	}
	px, py := out["peak_x"].(float64), out["peak_y"].(float64)
	if px < 0 || px > 1 || py < 0 || py > 1 {
		t.Errorf("saliency peak (%v, %v) out of [0,1] bounds", px, py)
	}
}

func TestHeuristicBordersUndetectedOnUniformImage(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "gray.jpg", solidImage(128))
	out, err := h.Analyze(context.Background(), "borders", path)
	if err != nil {
		t.Fatalf("Analyze(borders): %v", err)
	}
	if out["detected"].(bool) {
		t.Error("borders should not be detected on a mid-gray uniform image")
	}
}

func TestHeuristicBordersDetectedOnBlackRim(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "letterbox.jpg", solidImage(2))
	out, err := h.Analyze(context.Background(), "borders", path)
	if err != nil {
		t.Fatalf("Analyze(borders): %v", err)
	}
	if !out["detected"].(bool) {
		t.Error("borders should be detected on a uniformly near-black image")
	}
}

func TestHeuristicForegroundDefaultsToCenterOnFlatImage(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "flat.jpg", solidImage(100))
	out, err := h.Analyze(context.Background(), "foreground", path)
	if err != nil {
		t.Fatalf("Analyze(foreground): %v", err)
	}
	if out["centroid_x"].(float64) != 0.5 || out["centroid_y"].(float64) != 0.5 {
		t.Errorf("foreground centroid on a flat image = (%v,%v), want (0.5,0.5)", out["centroid_x"], out["centroid_y"])
	}
}

func TestHeuristicSegmentsCountBounded(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "checker.jpg", checkerImage)
	out, err := h.Analyze(context.Background(), "segments", path)
	if err != nil {
		t.Fatalf("Analyze(segments): %v", err)
	}
	count := out["segment_count"].(int)
	if count < 1 || count > 20 {
		t.Errorf("segment_count = %d, want within [1, 20]", count)
	}
}

func TestHeuristicTagsReturnsEmptyMap(t *testing.T) {
	h := NewHeuristic()
	path := writeTestJPEG(t, "flat.jpg", solidImage(100))
	out, err := h.Analyze(context.Background(), "tags", path)
	if err != nil {
		t.Fatalf("Analyze(tags): %v", err)
	}
	if len(out) != 0 {
		t.Errorf("tags result = %v, want empty map (rows supplied separately)", out)
	}
}
