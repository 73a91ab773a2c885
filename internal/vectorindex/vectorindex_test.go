package vectorindex

import (
	"math"
	"path/filepath"
	"testing"
)

func TestNormalizeUnitLength(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if got := math.Sqrt(sumSq); got < 0.99 || got > 1.01 {
		t.Errorf("|v| after Normalize = %v, want ~1.0", got)
	}
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	for _, x := range v {
		if x != 0 {
			t.Errorf("Normalize(zero vector) = %v, want all zero", v)
		}
	}
}

func TestOpenCreatesIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.dinov2")
	idx, err := Open(path, 768)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.clip")
	idx, err := Open(path, 512)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	if err := idx.Upsert("img-1", make([]float32, 128)); err == nil {
		t.Error("Upsert should reject an embedding of the wrong dimension")
	}
}

func TestNearestRejectsWrongDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.clip")
	idx, err := Open(path, 512)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	if _, err := idx.Nearest(make([]float32, 10), 5); err == nil {
		t.Error("Nearest should reject a query embedding of the wrong dimension")
	}
}

func TestUpsertAndNearestFindsClosest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.clip")
	idx, err := Open(path, 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	vectors := map[string][]float32{
		"a": {1, 0, 0, 0},
		"b": {0, 1, 0, 0},
		"c": {0.9, 0.1, 0, 0},
	}
	for id, v := range vectors {
		if err := idx.Upsert(id, v); err != nil {
			t.Fatalf("Upsert(%s): %v", id, err)
		}
	}

	ids, err := idx.Nearest([]float32{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("Nearest query closest to 'a' = %v, want [a]", ids)
	}
}

func TestUpsertReplacesPriorEmbedding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.clip")
	idx, err := Open(path, 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	if err := idx.Upsert("img-1", []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if err := idx.Upsert("img-1", []float32{0, 0, 0, 1}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	ids, err := idx.Nearest([]float32{0, 0, 0, 1}, 1)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(ids) != 1 || ids[0] != "img-1" {
		t.Errorf("Nearest after re-Upsert = %v, want [img-1] matching the replaced embedding", ids)
	}
}
