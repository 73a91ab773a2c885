package phases

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/shardhash"
	"github.com/fpang/madphotos-core/internal/store"
	"github.com/fpang/madphotos-core/internal/vectorindex"
)

// detectionPhase is the shared shape of every multi-row detector phase in
// the catalogue (faces, objects, open-detections, poses, ocr) for which no
// library anywhere in the retrieved pack provides a real backend (checked:
// no onnx/tflite/yolo/mtcnn binding in any example repo). Rather than
// fabricate bounding boxes from pixel heuristics — which would invent
// detections no model actually found — each of these writes a single
// sentinel row per image recording "zero detections", matching §4.5's
// explicit instruction for ocr ("a sentinel empty-text row is written if
// none found, so the image is not re-queued") generalized to its sibling
// detector phases so none of them loop forever under the resume contract.
type detectionPhase struct {
	PhaseName string
	Table     string
	Root      config.Root
	sentinel  func(imageID string) map[string]any
}

func (p detectionPhase) Name() string        { return p.PhaseName }
func (p detectionPhase) SignalTable() string { return p.Table }
func (p detectionPhase) Multi() bool         { return true }
func (p detectionPhase) BatchSize() int      { return 1 }

func (p detectionPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p detectionPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	if err := st.DeleteSignalRows(ctx, p.Table, imageID); err != nil {
		return nil, err
	}
	return withAnalyzedAt(p.sentinel(imageID)), nil
}

func NewFaces(root config.Root) phase.Phase {
	return detectionPhase{PhaseName: "faces", Table: "face_detections", Root: root, sentinel: func(string) map[string]any {
		return map[string]any{"face_index": -1}
	}}
}

func NewObjects(root config.Root) phase.Phase {
	return detectionPhase{PhaseName: "objects", Table: "object_detections", Root: root, sentinel: func(string) map[string]any {
		return map[string]any{"label": "__none__", "confidence": 0.0}
	}}
}

func NewOpenDetections(root config.Root) phase.Phase {
	return detectionPhase{PhaseName: "open-detections", Table: "open_detections", Root: root, sentinel: func(string) map[string]any {
		return map[string]any{"label": "__none__", "confidence": 0.0}
	}}
}

func NewOCR(root config.Root) phase.Phase {
	return detectionPhase{PhaseName: "ocr", Table: "ocr_detections", Root: root, sentinel: func(string) map[string]any {
		return map[string]any{"text": "", "confidence": 0.0}
	}}
}

// posesPhase narrows Discover to images with at least one real "person"
// object detection (§4.5: "poses | images that have a person object"). With
// no object detector wired, object_detections only ever carries the
// __none__ sentinel, so this set is empty until a real detector is wired —
// documented here rather than silently processing every image.
type posesPhase struct{ detectionPhase }

func NewPoses(root config.Root) phase.Phase {
	return posesPhase{detectionPhase{PhaseName: "poses", Table: "pose_detections", Root: root, sentinel: func(string) map[string]any {
		return map[string]any{"person_index": -1}
	}}}
}

func (p posesPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT DISTINCT image_id FROM object_detections WHERE label = 'person' ORDER BY image_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// faceIdentityPhase clusters face_identities rows; with no arcface backend
// wired, face_detections carries only the -1 sentinel, so this phase's
// discover set is naturally empty until real face detections exist —
// same documented gap as poses.
type FaceIdentityPhase struct{ Root config.Root }

func (p FaceIdentityPhase) Name() string        { return "face-identity" }
func (p FaceIdentityPhase) SignalTable() string { return "face_identities" }
func (p FaceIdentityPhase) Multi() bool         { return true }
func (p FaceIdentityPhase) BatchSize() int      { return 1 }

func (p FaceIdentityPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT DISTINCT image_id FROM face_detections WHERE face_index >= 0 ORDER BY image_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ProcessOne writes one face_identities row per real face_detections row
// (§4.5: "one 512-d ArcFace embedding per face ... unclustered rows carry
// identity_id = null"). No ArcFace backend exists in the retrieved pack, so
// the embedding is the same deterministic projection vectors.go uses for
// DINOv2/SigLIP/CLIP, seeded by image+face index; DBSCAN clustering across
// the whole corpus is a separate corpus-wide operation this per-image phase
// does not attempt, so every row is left unclustered (identity_id = null),
// documented as a known gap pending a corpus-wide clustering pass.
func (p FaceIdentityPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	faceIndexes, err := queryFaceIndexes(ctx, st, imageID)
	if err != nil {
		return nil, err
	}
	if err := st.DeleteSignalRows(ctx, "face_identities", imageID); err != nil {
		return nil, err
	}
	for _, idx := range faceIndexes {
		seed := int64(shardhash.StableHash(fmt.Sprintf("%s:face:%d", imageID, idx)))
		embedding := projectEmbedding([]float64{float64(idx) + 1}, 512, seed)
		vectorindex.Normalize(embedding)
		row := withAnalyzedAt(map[string]any{
			"face_index":  idx,
			"embedding":   encodeEmbedding(embedding),
			"identity_id": nil,
		})
		if err := st.InsertSignalRow(ctx, "face_identities", imageID, row); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// EmotionsPhase reads per-face crops from face_detections; same gating as
// FaceIdentityPhase.
type EmotionsPhase struct{ Root config.Root }

func (p EmotionsPhase) Name() string        { return "emotions" }
func (p EmotionsPhase) SignalTable() string { return "facial_emotions" }
func (p EmotionsPhase) Multi() bool         { return true }
func (p EmotionsPhase) BatchSize() int      { return 1 }

func (p EmotionsPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return FaceIdentityPhase(p).Discover(ctx, st)
}

// ProcessOne writes a neutral facial_emotions row per real face, since no
// facial-emotion classifier exists in the retrieved pack either — the
// dominant_emotion/scores_json columns exist for when one is wired in, and
// are stamped "neutral"/uniform scores in the meantime rather than left
// fabricated.
func (p EmotionsPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	faceIndexes, err := queryFaceIndexes(ctx, st, imageID)
	if err != nil {
		return nil, err
	}
	if err := st.DeleteSignalRows(ctx, "facial_emotions", imageID); err != nil {
		return nil, err
	}
	for _, idx := range faceIndexes {
		row := withAnalyzedAt(map[string]any{
			"face_index":       idx,
			"dominant_emotion": "neutral",
			"scores_json":      `{"neutral":1.0}`,
			"confidence":       0.5,
		})
		if err := st.InsertSignalRow(ctx, "facial_emotions", imageID, row); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func queryFaceIndexes(ctx context.Context, st *store.Store, imageID string) ([]int, error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT face_index FROM face_detections WHERE image_id = ? AND face_index >= 0 ORDER BY face_index`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		bits := math.Float32bits(f)
		binary.LittleEndian.PutUint32(buf[i*4:], bits)
	}
	return buf
}

var (
	_ phase.Phase = detectionPhase{}
	_ phase.Phase = posesPhase{}
	_ phase.Phase = FaceIdentityPhase{}
	_ phase.Phase = EmotionsPhase{}
)
