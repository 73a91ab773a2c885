package enhance

import "testing"

func TestProfileForBodyKnown(t *testing.T) {
	p := ProfileForBody("Leica Monochrom")
	if !p.IsMono {
		t.Error("Leica Monochrom profile should be IsMono")
	}
	if p.WBStrength != 0.0 {
		t.Errorf("Leica Monochrom WBStrength = %v, want 0", p.WBStrength)
	}
}

func TestProfileForBodyUnknownFallsBackToDefault(t *testing.T) {
	p := ProfileForBody("Some Unlisted Camera")
	if p != DefaultProfile {
		t.Errorf("ProfileForBody(unknown) = %+v, want DefaultProfile %+v", p, DefaultProfile)
	}
}

func TestStyleMultKnownAndUnknown(t *testing.T) {
	if m := styleMult(styleContrastMult, "street"); m != 1.3 {
		t.Errorf("styleMult(contrast, street) = %v, want 1.3", m)
	}
	if m := styleMult(styleContrastMult, "unknown-style"); m != 1.0 {
		t.Errorf("styleMult(contrast, unknown) = %v, want 1.0 (identity)", m)
	}
}
