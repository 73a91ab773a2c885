package phases

import (
	"context"
	"testing"
)

func TestNewFacesWritesSentinelRow(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")

	p := NewFaces(root)
	fields, err := p.ProcessOne(context.Background(), st, "img-1")
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if fields["face_index"] != -1 {
		t.Errorf("face_index = %v, want -1 sentinel", fields["face_index"])
	}
	if !p.Multi() {
		t.Error("Multi() should be true for detection phases")
	}
}

func TestNewObjectsWritesNoneSentinel(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")

	p := NewObjects(root)
	fields, err := p.ProcessOne(context.Background(), st, "img-1")
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if fields["label"] != "__none__" {
		t.Errorf("label = %v, want __none__", fields["label"])
	}
}

func TestDetectionPhaseClearsPriorRowsOnRerun(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")

	p := NewOCR(root)
	if _, err := p.ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("first ProcessOne: %v", err)
	}
	if _, err := p.ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("second ProcessOne: %v", err)
	}
	var count int
	if err := st.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM ocr_detections WHERE image_id = ?`, "img-1").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("ocr_detections rows for img-1 = %d, want 1 (rewritten, not appended)", count)
	}
}

func TestPosesPhaseDiscoverEmptyWithoutPersonDetections(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	if _, err := NewObjects(root).ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("NewObjects.ProcessOne: %v", err)
	}

	ids, err := NewPoses(root).Discover(context.Background(), st)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Discover = %v, want empty (only __none__ object detections exist)", ids)
	}
}

func TestPosesPhaseDiscoverFindsImagesWithPersonLabel(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	if err := st.InsertSignalRow(context.Background(), "object_detections", "img-1", map[string]any{
		"label": "person", "confidence": 0.9, "analyzed_at": "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("InsertSignalRow: %v", err)
	}

	ids, err := NewPoses(root).Discover(context.Background(), st)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ids) != 1 || ids[0] != "img-1" {
		t.Errorf("Discover = %v, want [img-1]", ids)
	}
}

func TestFaceIdentityPhaseWritesOneRowPerRealFace(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	for _, idx := range []int{0, 1} {
		if err := st.InsertSignalRow(context.Background(), "face_detections", "img-1", map[string]any{
			"face_index": idx, "analyzed_at": "2026-01-01T00:00:00Z",
		}); err != nil {
			t.Fatalf("InsertSignalRow: %v", err)
		}
	}

	p := FaceIdentityPhase{Root: root}
	ids, err := p.Discover(context.Background(), st)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ids) != 1 || ids[0] != "img-1" {
		t.Fatalf("Discover = %v, want [img-1]", ids)
	}

	if _, err := p.ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	var count int
	if err := st.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM face_identities WHERE image_id = ?`, "img-1").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("face_identities rows = %d, want 2 (one per real face)", count)
	}
}

func TestEmotionsPhaseWritesNeutralRowPerFace(t *testing.T) {
	st, root := openPhaseTestStore(t)
	seedOneImage(t, st, "img-1")
	if err := st.InsertSignalRow(context.Background(), "face_detections", "img-1", map[string]any{
		"face_index": 0, "analyzed_at": "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("InsertSignalRow: %v", err)
	}

	p := EmotionsPhase{Root: root}
	if _, err := p.ProcessOne(context.Background(), st, "img-1"); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	var emotion string
	if err := st.DB().QueryRowContext(context.Background(),
		`SELECT dominant_emotion FROM facial_emotions WHERE image_id = ?`, "img-1").Scan(&emotion); err != nil {
		t.Fatalf("query: %v", err)
	}
	if emotion != "neutral" {
		t.Errorf("dominant_emotion = %q, want neutral", emotion)
	}
}
