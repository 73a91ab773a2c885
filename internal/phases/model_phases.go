package phases

import (
	"context"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/model"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// ModelPhase adapts one single-row model-backed signal (§4.5: aesthetic,
// aesthetic-v2, depth, scene, style, captions, florence-captions) to
// phase.Phase. Every one of these shares the same shape — decode a
// preferred tier, call model.Client.Analyze with the phase's own task
// name, stamp analyzed_at, upsert — so one adapter type serves all of
// them rather than a near-identical file per phase.
type ModelPhase struct {
	PhaseName string
	Table     string
	Tier      string // which rendered tier this phase reads
	Root      config.Root
	Client    model.Client
	Batch     int
}

func (p ModelPhase) Name() string        { return p.PhaseName }
func (p ModelPhase) SignalTable() string { return p.Table }
func (p ModelPhase) Multi() bool         { return false }
func (p ModelPhase) BatchSize() int {
	if p.Batch <= 0 {
		return 1
	}
	return p.Batch
}

func (p ModelPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p ModelPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	path := tierPath(p.Root, p.Tier, imageID)
	result, err := p.Client.Analyze(ctx, p.PhaseName, path)
	if err != nil {
		return nil, err
	}
	return withAnalyzedAt(result), nil
}

// NewAesthetic, NewAestheticV2, NewDepth, NewScene, NewStyle, NewCaptions
// and NewFlorenceCaptions build the ModelPhase for each catalogue entry
// reading the display tier (2048px) directly rather than a re-resized or
// center-cropped view, since display already bounds the computation and
// no pack library implements the exact center-crop. Saliency, foreground
// and segments (below) read the thumb tier instead.
func NewAesthetic(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "aesthetic", Table: "aesthetic_scores", Tier: "display", Root: root, Client: c}
}

func NewAestheticV2(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "aesthetic-v2", Table: "aesthetic_scores_v2", Tier: "display", Root: root, Client: c}
}

func NewDepth(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "depth", Table: "depth_estimations", Tier: "display", Root: root, Client: c}
}

func NewScene(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "scene", Table: "scene_classifications", Tier: "display", Root: root, Client: c}
}

func NewStyle(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "style", Table: "style_classifications", Tier: "display", Root: root, Client: c}
}

func NewCaptions(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "captions", Table: "image_captions", Tier: "display", Root: root, Client: c}
}

func NewFlorenceCaptions(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "florence-captions", Table: "florence_captions", Tier: "display", Root: root, Client: c, Batch: 16}
}

// NewSaliency, NewBorders, NewForeground and NewSegments are the
// remaining pure pixel-statistics entries of the catalogue (§4.5) that
// are expressed through the same model.Client interface as the ML-backed
// phases, always against Heuristic — these never have a real external
// backend to swap in, unlike depth/scene/style/captions.
func NewSaliency(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "saliency", Table: "saliency_maps", Tier: "thumb", Root: root, Client: c}
}

func NewBorders(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "borders", Table: "border_crops", Tier: "display", Root: root, Client: c}
}

func NewForeground(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "foreground", Table: "foreground_masks", Tier: "thumb", Root: root, Client: c}
}

func NewSegments(root config.Root, c model.Client) ModelPhase {
	return ModelPhase{PhaseName: "segments", Table: "segmentation_masks", Tier: "thumb", Root: root, Client: c}
}

var _ phase.Phase = ModelPhase{}
