package phases

import (
	"context"
	"fmt"

	"github.com/fpang/madphotos-core/internal/config"
	"github.com/fpang/madphotos-core/internal/model"
	"github.com/fpang/madphotos-core/internal/phase"
	"github.com/fpang/madphotos-core/internal/store"
)

// GeminiPhase wires model.GeminiClient against the gemini tier (§4.5:
// "gemini | gemini tier | a structured JSON blob..."). A failed call
// returns Err instead of committing a row: the Runner's resume filter
// treats "no row in gemini_analysis yet" as not-done regardless of why, so
// a failure is naturally retried whenever the phase runs again without a
// second, table-specific resume rule.
type GeminiPhase struct {
	Root   config.Root
	Client *model.GeminiClient
}

func (p GeminiPhase) Name() string        { return "gemini" }
func (p GeminiPhase) SignalTable() string { return "gemini_analysis" }
func (p GeminiPhase) Multi() bool         { return false }
func (p GeminiPhase) BatchSize() int      { return 1 }

func (p GeminiPhase) Discover(ctx context.Context, st *store.Store) ([]string, error) {
	return discoverFrom(ctx, st)
}

func (p GeminiPhase) ProcessOne(ctx context.Context, st *store.Store, imageID string) (map[string]any, error) {
	path := geminiPath(p.Root, imageID)
	result, err := p.Client.Analyze(ctx, "gemini", path)
	if err != nil {
		return nil, fmt.Errorf("gemini: %s: %w", imageID, err)
	}
	return result, nil
}

var _ phase.Phase = GeminiPhase{}
