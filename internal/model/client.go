// Package model abstracts the external inference calls the signal phases
// make (§9: "equivalent in a systems language: a bounded worker pool
// consuming from a queue; each worker performs the external call
// synchronously"). Only the gemini phase has a real backing
// implementation wired to an external service in this pack (genai, the
// only ML SDK the teacher carries); every other phase that takes a
// Client (aesthetic, aesthetic-v2, depth, scene, style, captions,
// florence-captions, saliency, borders, foreground, segments) runs
// against Heuristic, a deterministic pixel-statistics stand-in with the
// same interface, so the phase framework and its callers never branch
// on which backend is present. The detection-family phases (faces,
// objects, open-detections, ocr, poses, emotions, face-identity) and
// tags take no Client.
package model

import "context"

// Client is the minimal contract a signal phase needs from a model
// backend: analyze one image's pixel buffer (referenced by path so large
// buffers are not copied through the interface) and get back an
// unstructured result map the phase interprets into typed columns.
type Client interface {
	// Analyze runs task against the image at imagePath and returns a
	// result map keyed by the phase's own field names.
	Analyze(ctx context.Context, task string, imagePath string) (map[string]any, error)
}

// Device mirrors config.Device without importing internal/config, so
// this package stays leaf-level (no dependency back onto the orchestration
// layer).
type Device string
