package logging

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitDefaultLevelIsInfo(t *testing.T) {
	orig, had := os.LookupEnv("CORE_LOG_LEVEL")
	os.Unsetenv("CORE_LOG_LEVEL")
	defer func() {
		if had {
			os.Setenv("CORE_LOG_LEVEL", orig)
		}
	}()

	Init()
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("default level = %v, want InfoLevel", zerolog.GlobalLevel())
	}
}

func TestInitRespectsLogLevelEnv(t *testing.T) {
	orig, had := os.LookupEnv("CORE_LOG_LEVEL")
	defer func() {
		if had {
			os.Setenv("CORE_LOG_LEVEL", orig)
		} else {
			os.Unsetenv("CORE_LOG_LEVEL")
		}
	}()

	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	}
	for env, want := range cases {
		os.Setenv("CORE_LOG_LEVEL", env)
		Init()
		if got := zerolog.GlobalLevel(); got != want {
			t.Errorf("CORE_LOG_LEVEL=%s -> level %v, want %v", env, got, want)
		}
	}
}

func TestWithPhaseAndWithImageAttachContext(t *testing.T) {
	base := WithPhase("exif", 42)
	enriched := WithImage(base, "img-1")
	if enriched.GetLevel() != base.GetLevel() {
		t.Error("WithImage should preserve the base logger's level")
	}
}
