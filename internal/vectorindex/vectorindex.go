// Package vectorindex manages the separate per-engine vector index file
// (§6: "Vector index: <root>/vectors.<engine>") that backs the vectors
// phase's 768-d DINOv2/SigLIP and 512-d CLIP embeddings. It is grounded on
// codenerd's vector_store.go: the same sqlite-vec cgo binding, the same
// vec0 virtual table shape and the same little-endian float32 blob
// encoding, split into its own sqlite file per engine instead of one
// table alongside the relational store.
package vectorindex

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	vec.Auto()
}

// Index is one engine's vector file (dinov2, siglip or clip each get their
// own file so a missing/corrupt index for one engine never blocks another).
type Index struct {
	db  *sql.DB
	dim int
}

// Open creates or opens the sqlite-vec file at path, sized for dim-wide
// float32 vectors.
func Open(path string, dim int) (*Index, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("vectorindex: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	stmt := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vectors USING vec0(image_id TEXT, embedding float[%d])`, dim)
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: create vec0 table: %w", err)
	}
	return &Index{db: db, dim: dim}, nil
}

func (idx *Index) Close() error { return idx.db.Close() }

// Upsert replaces the embedding stored for imageID. vec0 has no natural
// UNIQUE(image_id) constraint to upsert against, so this deletes any prior
// row with the same image_id first, matching codenerd's own "INSERT OR REPLACE"
// re-insert-on-rerun pattern.
func (idx *Index) Upsert(imageID string, v []float32) error {
	if len(v) != idx.dim {
		return fmt.Errorf("vectorindex: embedding has %d dims, index wants %d", len(v), idx.dim)
	}
	if _, err := idx.db.Exec(`DELETE FROM vectors WHERE image_id = ?`, imageID); err != nil {
		return fmt.Errorf("vectorindex: delete existing: %w", err)
	}
	blob := encodeFloat32Slice(v)
	_, err := idx.db.Exec(`INSERT INTO vectors(image_id, embedding) VALUES (?, ?)`, imageID, blob)
	if err != nil {
		return fmt.Errorf("vectorindex: insert: %w", err)
	}
	return nil
}

// Nearest returns the k image ids whose stored embedding is closest to v
// by the vec0 extension's native distance metric (L2 over the normalized
// vectors the vectors phase writes, equivalent in ranking to cosine).
func (idx *Index) Nearest(v []float32, k int) ([]string, error) {
	if len(v) != idx.dim {
		return nil, fmt.Errorf("vectorindex: query embedding has %d dims, index wants %d", len(v), idx.dim)
	}
	rows, err := idx.db.Query(`
		SELECT image_id FROM vectors
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance`, encodeFloat32Slice(v), k)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: nearest: %w", err)
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

func encodeFloat32Slice(v []float32) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// Normalize scales v to unit L2 norm in place, the invariant every stored
// vector must satisfy (§4.9: "|v|2 = 1 ± 0.01").
func Normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
