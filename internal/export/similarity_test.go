package export

import "testing"

func TestBuildSimilarityWeightsAndOrder(t *testing.T) {
	photos := []Photo{
		{ID: "a", Gemini: &GeminiFields{Vibe: "cozy", Setting: "cabin"}, Scene: "forest", TopObjects: []string{"dog"}},
		{ID: "b", Gemini: &GeminiFields{Vibe: "cozy", Setting: "cabin"}, Scene: "forest", TopObjects: []string{"dog"}},
		{ID: "c", Scene: "forest"},
	}

	sim := BuildSimilarity(photos)

	neighborsA := sim["a"]
	if len(neighborsA) == 0 {
		t.Fatal("expected neighbors for photo a")
	}
	if neighborsA[0].ID != "b" {
		t.Errorf("top neighbor of a = %q, want b (shares vibe+object+scene+setting)", neighborsA[0].ID)
	}
	if neighborsA[0].Reason != "shared vibe" {
		t.Errorf("reason = %q, want 'shared vibe' (first in scan order)", neighborsA[0].Reason)
	}
}

func TestBuildSimilarityMatchesOneSharedVibeAmongSeveral(t *testing.T) {
	photos := []Photo{
		{ID: "a", Gemini: &GeminiFields{Vibe: "moody|energetic"}},
		{ID: "b", Gemini: &GeminiFields{Vibe: "energetic|playful"}},
		{ID: "c", Gemini: &GeminiFields{Vibe: "serene"}},
	}
	sim := BuildSimilarity(photos)
	neighborsA := sim["a"]
	if len(neighborsA) != 1 || neighborsA[0].ID != "b" {
		t.Fatalf("neighbors of a = %v, want [b] (shares the 'energetic' vibe tag)", neighborsA)
	}
	if neighborsA[0].Reason != "shared vibe" {
		t.Errorf("reason = %q, want 'shared vibe'", neighborsA[0].Reason)
	}
	if _, ok := sim["c"]; ok {
		t.Errorf("c shares no vibe tag with a or b, want no neighbors, got %v", sim["c"])
	}
}

func TestBuildSimilarityExcludesSelf(t *testing.T) {
	photos := []Photo{
		{ID: "a", Scene: "beach"},
		{ID: "b", Scene: "beach"},
	}
	sim := BuildSimilarity(photos)
	for _, n := range sim["a"] {
		if n.ID == "a" {
			t.Error("BuildSimilarity included the photo itself as its own neighbor")
		}
	}
}

func TestBuildSimilarityNoSignalsProducesNoNeighbors(t *testing.T) {
	photos := []Photo{{ID: "a"}, {ID: "b"}}
	sim := BuildSimilarity(photos)
	if len(sim["a"]) != 0 {
		t.Errorf("expected no neighbors for photos sharing no signal, got %v", sim["a"])
	}
}

func TestBuildSimilarityCapsAtSix(t *testing.T) {
	var photos []Photo
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		photos = append(photos, Photo{ID: id, Scene: "desert"})
	}
	sim := BuildSimilarity(photos)
	if len(sim["a"]) > 6 {
		t.Errorf("BuildSimilarity returned %d neighbors, want at most 6", len(sim["a"]))
	}
}

func TestBuildSimilarityTieBreaksByID(t *testing.T) {
	photos := []Photo{
		{ID: "z", Scene: "desert"},
		{ID: "a", Scene: "desert"},
		{ID: "m", Scene: "desert"},
	}
	sim := BuildSimilarity(photos)
	neighbors := sim["z"]
	if len(neighbors) < 2 {
		t.Fatal("expected at least 2 neighbors")
	}
	if neighbors[0].ID != "a" || neighbors[1].ID != "m" {
		t.Errorf("tie-break order = %v, want ascending id [a m]", neighbors)
	}
}
