package phases

import (
	"context"
	"image/color"
	"testing"

	"github.com/fpang/madphotos-core/internal/colorstats"
)

func TestMax3Min3(t *testing.T) {
	if got := max3(10, 50, 30); got != 50 {
		t.Errorf("max3 = %d, want 50", got)
	}
	if got := min3(10, 50, 30); got != 10 {
		t.Errorf("min3 = %d, want 10", got)
	}
}

func TestScoreTagsEmptySamples(t *testing.T) {
	scores := scoreTags(nil)
	if len(scores) != 0 {
		t.Errorf("scoreTags(nil) = %v, want empty map", scores)
	}
}

func TestScoreTagsSkyHeavyForBlueSamples(t *testing.T) {
	samples := make([]colorstats.Sample, 100)
	for i := range samples {
		samples[i] = colorstats.Sample{RGB: colorstats.RGB{R: 40, G: 80, B: 220}}
	}
	scores := scoreTags(samples)
	if scores["sky"] < 0.9 {
		t.Errorf("sky score = %v, want close to 1 for uniformly blue samples", scores["sky"])
	}
	if scores["indoor"] > 0.1 {
		t.Errorf("indoor score = %v, want close to 0 for an all-blue/outdoor scene", scores["indoor"])
	}
}

func TestTagsPhaseProcessOneWritesOnlyConfidentTags(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	writeDisplayTier(t, root, "img-1", 32, 32, color.RGBA{30, 60, 220, 255})

	p := TagsPhase{Root: root}
	fields, err := p.ProcessOne(context.Background(), st, "img-1")
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if fields != nil {
		t.Error("TagsPhase.ProcessOne should return nil fields (commits internally)")
	}

	var count int
	if err := st.DB().QueryRowContext(context.Background(), `SELECT COUNT(*) FROM image_tags WHERE image_id = ?`, "img-1").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count == 0 {
		t.Error("expected at least one confident tag row for a strongly blue image")
	}
}

func TestTagsPhaseProcessOneClearsPriorRowsOnRerun(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	writeDisplayTier(t, root, "img-1", 32, 32, color.RGBA{30, 60, 220, 255})

	p := TagsPhase{Root: root}
	if _, err := p.ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("first ProcessOne: %v", err)
	}
	var firstCount int
	st.DB().QueryRowContext(context.Background(), `SELECT COUNT(*) FROM image_tags WHERE image_id = ?`, "img-1").Scan(&firstCount)

	if _, err := p.ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("second ProcessOne: %v", err)
	}
	var secondCount int
	st.DB().QueryRowContext(context.Background(), `SELECT COUNT(*) FROM image_tags WHERE image_id = ?`, "img-1").Scan(&secondCount)

	if secondCount != firstCount {
		t.Errorf("rerun left %d rows, want %d (rows cleared and rewritten, not appended)", secondCount, firstCount)
	}
}
