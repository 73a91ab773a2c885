package phases

import (
	"context"
	"fmt"
	"image"
	"math/rand"

	"github.com/fpang/madphotos-core/internal/colorstats"
	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/shardhash"
	"github.com/fpang/madphotos-core/internal/store"
	"github.com/fpang/madphotos-core/internal/vectorindex"
)

// engineDims names the three embedding spaces the vectors phase populates
// (§4.5: "768-d DINOv2, 768-d SigLIP, 512-d CLIP ... stored in a separate
// vector index keyed by image id").
var engineDims = map[string]int{
	"dinov2": 768,
	"siglip": 768,
	"clip":   512,
}

// VectorsPhase writes one L2-normalized embedding per engine per image into
// the corresponding vectors.<engine> index file. No embedding model exists
// anywhere in the retrieved pack (checked: no onnx/torch/clip binding), so
// embeddings here are a deterministic projection of the same pixel
// statistics colorstats and pixel.go already compute — close in spirit to
// codenerd's keyword-only fallback path (storeVectorKeywordOnly) for when
// no real embedding engine is configured, generalized from text keywords to
// image statistics.
type VectorsPhase struct {
	Root    config.Root
	Indexes map[string]*vectorindex.Index // engine name -> open index
}

func (p VectorsPhase) Name() string        { return "vectors" }
func (p VectorsPhase) SignalTable() string { return "image_vectors" }
func (p VectorsPhase) Multi() bool         { return false }
func (p VectorsPhase) BatchSize() int      { return 1 }

func (p VectorsPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p VectorsPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	d, err := decodeTier(displayPath(p.Root, imageID))
	if err != nil {
		return nil, errNoTier("display", imageID, err)
	}

	stats := pixelFeatureVector(d.Image)
	fields := map[string]any{}
	for engine, dim := range engineDims {
		idx, ok := p.Indexes[engine]
		if !ok {
			continue
		}
		seed := int64(shardhash.StableHash(imageID + ":" + engine))
		v := projectEmbedding(stats, dim, seed)
		vectorindex.Normalize(v)
		if err := idx.Upsert(imageID, v); err != nil {
			return nil, fmt.Errorf("vectors: %s: %w", engine, err)
		}
		fields[engine+"_dim"] = dim
	}
	return withAnalyzedAt(fields), nil
}

// pixelFeatureVector reduces an image to a small, fixed-length statistics
// vector (palette, color means, spread) that projectEmbedding expands into
// each engine's dimensionality. Grounded on colorstats' sampling, reused
// here instead of redoing pixel iteration a second time.
func pixelFeatureVector(img image.Image) []float64 {
	samples := colorstats.SamplePixels(img, 4000)
	if len(samples) == 0 {
		return make([]float64, 26)
	}

	var sumR, sumG, sumB, sumL, sumA, sumBlab float64
	for _, s := range samples {
		lab := colorstats.RGBToLab(s.RGB.R, s.RGB.G, s.RGB.B)
		sumR += float64(s.RGB.R)
		sumG += float64(s.RGB.G)
		sumB += float64(s.RGB.B)
		sumL += lab.L
		sumA += lab.A
		sumBlab += lab.B
	}
	n := float64(len(samples))
	feat := []float64{sumR / n, sumG / n, sumB / n, sumL / n, sumA / n, sumBlab / n}

	clusters := colorstats.KMeans(samples, 5, 6)
	for _, c := range clusters {
		feat = append(feat, float64(c.RGB.R), float64(c.RGB.G), float64(c.RGB.B), c.Percentage)
	}
	for len(feat) < 26 {
		feat = append(feat, 0)
	}
	return feat
}

// projectEmbedding expands a short feature vector to dim entries via a
// deterministic random projection (a fixed seed per image+engine, not a
// shared global seed), so the same image always yields the same embedding
// and different engines still see different vectors for the same image.
func projectEmbedding(features []float64, dim int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float32, dim)
	for i := range out {
		var sum float64
		for _, f := range features {
			sum += f * (rng.Float64()*2 - 1)
		}
		out[i] = float32(sum)
	}
	return out
}

var _ phase.Phase = VectorsPhase{}
