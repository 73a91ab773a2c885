package model

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/madphotos-core/internal/jsonutil"
)

// GeminiModelName is the fixed model used for image analysis; unlike
// francis-pang-ai-social-media-helper's chat.GetModelName there is no
// GEMINI_MODEL override. This pack has no narrative/chat use case, so it
// favors a fast, cheap model over a reasoning-heavy one.
const GeminiModelName = "gemini-2.5-flash"

// GeminiAnalysis mirrors §6's Gemini response contract exactly.
type GeminiAnalysis struct {
	Technical struct {
		Exposure      string   `json:"exposure"`
		Sharpness     string   `json:"sharpness"`
		LensArtifacts []string `json:"lens_artifacts"`
	} `json:"technical"`
	Composition struct {
		Technique string   `json:"technique"`
		Depth     string   `json:"depth"`
		Geometry  []string `json:"geometry"`
	} `json:"composition"`
	Color struct {
		Palette      []string `json:"palette"`
		SemanticPops []string `json:"semantic_pops"`
		GradingStyle string   `json:"grading_style"`
	} `json:"color"`
	Environment struct {
		Time    string `json:"time"`
		Setting string `json:"setting"`
		Weather string `json:"weather"`
	} `json:"environment"`
	Narrative struct {
		Faces   int      `json:"faces"`
		Vibe    []string `json:"vibe"`
		AltText string   `json:"alt_text"`
	} `json:"narrative"`
}

const geminiSystemPrompt = `You are a photo analysis assistant. Given one image, respond with a
single strict JSON object matching this shape and nothing else:
{
  "technical": {"exposure": "", "sharpness": "", "lens_artifacts": []},
  "composition": {"technique": "", "depth": "", "geometry": []},
  "color": {"palette": [], "semantic_pops": [], "grading_style": ""},
  "environment": {"time": "", "setting": "", "weather": ""},
  "narrative": {"faces": 0, "vibe": [], "alt_text": ""}
}`

// GeminiClient wraps google.golang.org/genai the way francis-pang's
// chat.NewGeminiClient / chat.AskMediaQuestion do: a single long-lived
// *genai.Client, inline image bytes for stills (no Files API — these
// gemini-tier renders are already downsized to 2048px, well under the
// inline-request size where the Files API becomes necessary).
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("model: create gemini client: %w", err)
	}
	return &GeminiClient{client: c}, nil
}

// Analyze implements Client. task is ignored — GeminiClient only ever
// performs the one structured-analysis task the gemini phase needs.
func (g *GeminiClient) Analyze(ctx context.Context, task string, imagePath string) (map[string]any, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", imagePath, err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: geminiSystemPrompt}}},
	}
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: data}},
		{Text: "Analyze this photo."},
	}

	callStart := time.Now()
	resp, err := callWithRetry(ctx, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, GeminiModelName, []*genai.Content{{Parts: parts}}, config)
	})
	log.Debug().Str("path", imagePath).Dur("duration", time.Since(callStart)).Msg("gemini: analyze call complete")
	if err != nil {
		return nil, fmt.Errorf("model: gemini generate: %w", err)
	}

	analysis, err := jsonutil.ParseJSON[GeminiAnalysis](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("model: parse gemini response: %w", err)
	}

	return map[string]any{
		"model":                 GeminiModelName,
		"exposure":              analysis.Technical.Exposure,
		"sharpness":             analysis.Technical.Sharpness,
		"lens_artifacts":        joinOrNull(analysis.Technical.LensArtifacts),
		"composition_technique": analysis.Composition.Technique,
		"depth":                 analysis.Composition.Depth,
		"geometry":              joinOrNull(analysis.Composition.Geometry),
		"color_palette":         joinOrNull(analysis.Color.Palette),
		"semantic_pops":         joinOrNull(analysis.Color.SemanticPops),
		"grading_style":         analysis.Color.GradingStyle,
		"time_of_day":           analysis.Environment.Time,
		"setting":               analysis.Environment.Setting,
		"weather":               analysis.Environment.Weather,
		"faces_count":           analysis.Narrative.Faces,
		"vibe":                  joinOrNull(analysis.Narrative.Vibe),
		"alt_text":              analysis.Narrative.AltText,
		"raw_json":              resp.Text(),
		"analyzed_at":           time.Now().UTC(),
	}, nil
}

func joinOrNull(ss []string) any {
	if len(ss) == 0 {
		return nil
	}
	out := ss[0]
	for _, s := range ss[1:] {
		out += "|" + s
	}
	return out
}

// callWithRetry applies §5's explicit five-retry exponential back-off
// with base 2s, capped at 30s: one call plus up to five retries, on any
// error fn returns.
func callWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	const maxRetries = 5
	backoff := 2 * time.Second
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == maxRetries {
			return nil, lastErr
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}
