package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootPaths(t *testing.T) {
	r := NewRoot("/corpus")

	cases := map[string]string{
		"Originals":  r.Originals(),
		"Rendered":   r.Rendered(),
		"AIVariants": r.AIVariants(),
		"StorePath":  r.StorePath(),
		"ExportDir":  r.ExportDir(),
		"LockPath":   r.LockPath(),
	}
	want := map[string]string{
		"Originals":  filepath.Join("/corpus", "originals"),
		"Rendered":   filepath.Join("/corpus", "rendered"),
		"AIVariants": filepath.Join("/corpus", "ai_variants"),
		"StorePath":  filepath.Join("/corpus", "store.db"),
		"ExportDir":  filepath.Join("/corpus", "export"),
		"LockPath":   filepath.Join("/corpus", ".core.lock"),
	}
	for name, got := range cases {
		if got != want[name] {
			t.Errorf("%s = %q, want %q", name, got, want[name])
		}
	}
}

func TestRenderedTier(t *testing.T) {
	r := NewRoot("/corpus")
	if got, want := r.RenderedTier("thumbnail"), filepath.Join("/corpus", "rendered", "thumbnail"); got != want {
		t.Errorf("RenderedTier(thumbnail) = %q, want %q", got, want)
	}
}

func TestVectorIndexPath(t *testing.T) {
	r := NewRoot("/corpus")
	if got, want := r.VectorIndexPath("clip"), filepath.Join("/corpus", "vectors.clip"); got != want {
		t.Errorf("VectorIndexPath(clip) = %q, want %q", got, want)
	}
}

func TestDefaultWorkersAtLeastOne(t *testing.T) {
	if DefaultWorkers() < 1 {
		t.Errorf("DefaultWorkers() = %d, want >= 1", DefaultWorkers())
	}
}

func TestDeviceFromEnv(t *testing.T) {
	orig := os.Getenv("CORE_DEVICE")
	defer os.Setenv("CORE_DEVICE", orig)

	os.Unsetenv("CORE_DEVICE")
	if got := DeviceFromEnv(); got != DeviceCPU {
		t.Errorf("DeviceFromEnv() with no env = %q, want cpu", got)
	}

	os.Setenv("CORE_DEVICE", "cuda")
	if got := DeviceFromEnv(); got != DeviceCUDA {
		t.Errorf("DeviceFromEnv() with CORE_DEVICE=cuda = %q, want cuda", got)
	}

	os.Setenv("CORE_DEVICE", "mps")
	if got := DeviceFromEnv(); got != DeviceMPS {
		t.Errorf("DeviceFromEnv() with CORE_DEVICE=mps = %q, want mps", got)
	}

	os.Setenv("CORE_DEVICE", "bogus")
	if got := DeviceFromEnv(); got != DeviceCPU {
		t.Errorf("DeviceFromEnv() with unrecognized value = %q, want cpu fallback", got)
	}
}

func TestGeminiAPIKey(t *testing.T) {
	orig := os.Getenv(GeminiAPIKeyEnv)
	defer os.Setenv(GeminiAPIKeyEnv, orig)

	os.Setenv(GeminiAPIKeyEnv, "test-key")
	if got := GeminiAPIKey(); got != "test-key" {
		t.Errorf("GeminiAPIKey() = %q, want test-key", got)
	}
}

func TestBaseUploadURL(t *testing.T) {
	orig := os.Getenv("CORE_UPLOAD_BASE_URL")
	defer os.Setenv("CORE_UPLOAD_BASE_URL", orig)

	os.Setenv("CORE_UPLOAD_BASE_URL", "https://cdn.example.com")
	if got := BaseUploadURL(); got != "https://cdn.example.com" {
		t.Errorf("BaseUploadURL() = %q, want https://cdn.example.com", got)
	}
}
