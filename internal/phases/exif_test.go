package phases

import (
	"context"
	"testing"
)

func TestExifPhaseName(t *testing.T) {
	p := ExifPhase{}
	if p.Name() != "exif" || p.SignalTable() != "image_exif" {
		t.Errorf("Name()=%q SignalTable()=%q", p.Name(), p.SignalTable())
	}
	if p.Multi() {
		t.Error("ExifPhase.Multi() should be false")
	}
	if p.BatchSize() != 1 {
		t.Errorf("BatchSize() = %d, want 1", p.BatchSize())
	}
}

func TestExifPhaseProcessOneWithoutEXIFCommitsEmptyRow(t *testing.T) {
	st, root := openPhaseTestStore(t)
	writeOriginal(t, root, "family/a.jpg", 100, 100)
	if _, _, failed := Register(context.Background(), st, root); failed != 0 {
		t.Fatalf("Register failed")
	}
	imgs, err := st.ListImages(context.Background())
	if err != nil || len(imgs) != 1 {
		t.Fatalf("ListImages: %v", err)
	}

	p := ExifPhase{Root: root}
	fields, err := p.ProcessOne(context.Background(), st, imgs[0].ID)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if _, ok := fields["analyzed_at"]; !ok {
		t.Error("ProcessOne result missing analyzed_at even with no EXIF segment present")
	}
}

func TestExifPhaseProcessOneMissingImageErrors(t *testing.T) {
	st, root := openPhaseTestStore(t)
	p := ExifPhase{Root: root}
	if _, err := p.ProcessOne(context.Background(), st, "missing-id"); err == nil {
		t.Error("ProcessOne should error for an unregistered image id")
	}
}

func TestExifPhaseDiscoverListsRegisteredImages(t *testing.T) {
	st, root := openPhaseTestStore(t)
	writeOriginal(t, root, "family/a.jpg", 50, 50)
	writeOriginal(t, root, "family/b.jpg", 50, 50)
	if _, _, failed := Register(context.Background(), st, root); failed != 0 {
		t.Fatalf("Register failed")
	}

	p := ExifPhase{Root: root}
	ids, err := p.Discover(context.Background(), st)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Discover = %d ids, want 2", len(ids))
	}
}
