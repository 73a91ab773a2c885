// Package config resolves the root directory layout and per-phase run
// options. Values are layered: CLI flags (cobra) override environment
// variables, which override built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Device selects the accelerator backend a model.Client resolves against.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceMPS  Device = "mps"
	DeviceCUDA Device = "cuda"
)

// Root describes the on-disk layout under one corpus root directory (§6).
type Root struct {
	Dir string
}

func NewRoot(dir string) Root { return Root{Dir: dir} }

func (r Root) Originals() string        { return filepath.Join(r.Dir, "originals") }
func (r Root) Rendered() string         { return filepath.Join(r.Dir, "rendered") }
func (r Root) RenderedTier(tier string) string {
	return filepath.Join(r.Rendered(), tier)
}
func (r Root) AIVariants() string       { return filepath.Join(r.Dir, "ai_variants") }
func (r Root) StorePath() string        { return filepath.Join(r.Dir, "store.db") }
func (r Root) VectorIndexPath(engine string) string {
	return filepath.Join(r.Dir, "vectors."+engine)
}
func (r Root) ExportDir() string  { return filepath.Join(r.Dir, "export") }
func (r Root) LockPath() string   { return filepath.Join(r.Dir, ".core.lock") }

// RunOptions carries the per-invocation flags every phase command accepts.
type RunOptions struct {
	ShardN  int
	ShardM  int
	Limit   int
	Force   bool
	Workers int
	Batch   int
}

// DefaultWorkers returns cpu_count-2, minimum 1, per §5.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		return 1
	}
	return n
}

// DeviceFromEnv resolves CORE_DEVICE, defaulting to cpu.
func DeviceFromEnv() Device {
	switch os.Getenv("CORE_DEVICE") {
	case "mps":
		return DeviceMPS
	case "cuda":
		return DeviceCUDA
	default:
		return DeviceCPU
	}
}

// BaseUploadURL resolves the configurable base URL used to compose tier
// upload URLs (§6). Empty when uploads are not configured; the exporter
// then emits each tier's stored local path instead of a URL.
func BaseUploadURL() string {
	return os.Getenv("CORE_UPLOAD_BASE_URL")
}

// GeminiAPIKeyEnv is the single environment variable consulted for the
// Gemini API key. Every other external service credential is expected to
// come from that vendor's standard application-default-credentials
// mechanism (§6) — never a bespoke env var named for the key.
const GeminiAPIKeyEnv = "GEMINI_API_KEY"

func GeminiAPIKey() string { return os.Getenv(GeminiAPIKeyEnv) }
