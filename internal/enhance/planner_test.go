package enhance

import "testing"

func TestPlanWhiteBalanceSkippedForMono(t *testing.T) {
	in := Inputs{Version: 1, Profile: ProfileForBody("Leica Monochrom"), WBShiftR: 0.1, WBShiftB: 0.1}
	p := Plan(in)
	if !p.SkipWB {
		t.Error("Plan should skip white balance for a monochrome body")
	}
}

func TestPlanWhiteBalanceSkippedWhenNeutral(t *testing.T) {
	in := Inputs{Version: 1, Profile: DefaultProfile, WBShiftR: 0.01, WBShiftB: -0.01}
	p := Plan(in)
	if !p.SkipWB {
		t.Error("Plan should skip white balance when shifts are within the neutral band")
	}
}

func TestPlanWhiteBalanceAppliedAndClamped(t *testing.T) {
	in := Inputs{Version: 1, Profile: DefaultProfile, WBShiftR: 10, WBShiftB: -10}
	p := Plan(in)
	if p.SkipWB {
		t.Fatal("Plan should not skip white balance for a large shift")
	}
	if p.WBCorrectionR < 0.80 || p.WBCorrectionR > 1.25 {
		t.Errorf("WBCorrectionR = %v, want within [0.80, 1.25]", p.WBCorrectionR)
	}
	if p.WBCorrectionB < 0.80 || p.WBCorrectionB > 1.25 {
		t.Errorf("WBCorrectionB = %v, want within [0.80, 1.25]", p.WBCorrectionB)
	}
}

func TestPlanExposureSkippedForKeyedImages(t *testing.T) {
	in := Inputs{Version: 1, Profile: DefaultProfile, LowKey: true}
	p := Plan(in)
	if !p.SkipExposure {
		t.Error("Plan should skip exposure correction for a low-key image")
	}
}

func TestPlanExposureBrightensDarkImage(t *testing.T) {
	in := Inputs{Version: 1, Profile: DefaultProfile, MeanBrightness: 60}
	p := Plan(in)
	if p.SkipExposure {
		t.Fatal("Plan should not skip exposure for a non-keyed dark image")
	}
	if p.Gamma >= 1.0 {
		t.Errorf("Gamma = %v, want < 1.0 to brighten a dark image", p.Gamma)
	}
}

func TestPlanExposureFaceCautionReducesMagnitude(t *testing.T) {
	base := Inputs{Version: 1, Profile: DefaultProfile, MeanBrightness: 60}
	withFace := base
	withFace.FaceCount = 2

	pBase := Plan(base)
	pFace := Plan(withFace)

	baseDelta := 1.0 - pBase.Gamma
	faceDelta := 1.0 - pFace.Gamma
	if faceDelta >= baseDelta {
		t.Errorf("face-present gamma delta %v should be smaller than no-face delta %v", faceDelta, baseDelta)
	}
}

func TestPlanShadowsHighlightsNoExcessIsZero(t *testing.T) {
	profile := DefaultProfile
	in := Inputs{Version: 1, Profile: profile, ClipLowPct: profile.ShadowThr - 1, ClipHighPct: profile.HighlightThr - 1}
	p := Plan(in)
	if p.ShadowLift != 0 || p.HighlightPull != 0 {
		t.Errorf("expected zero shadow/highlight correction below threshold, got lift=%v pull=%v", p.ShadowLift, p.HighlightPull)
	}
}

func TestPlanShadowsHighlightsClampedToMax(t *testing.T) {
	profile := DefaultProfile
	in := Inputs{Version: 1, Profile: profile, ClipLowPct: profile.ShadowThr + 1000, ClipHighPct: profile.HighlightThr + 1000}
	p := Plan(in)
	if p.ShadowLift != 0.45 {
		t.Errorf("ShadowLift = %v, want clamped to 0.45", p.ShadowLift)
	}
	if p.HighlightPull != 0.35 {
		t.Errorf("HighlightPull = %v, want clamped to 0.35", p.HighlightPull)
	}
}

func TestPlanContrastBandsAndSkip(t *testing.T) {
	in := Inputs{Version: 1, Profile: DefaultProfile, ContrastRatio: 0.95}
	p := Plan(in)
	if !p.SkipContrast || p.ContrastStrength != 0 {
		t.Errorf("high-contrast image should skip contrast correction, got strength=%v skip=%v", p.ContrastStrength, p.SkipContrast)
	}

	in2 := Inputs{Version: 1, Profile: DefaultProfile, ContrastRatio: 0.3}
	p2 := Plan(in2)
	if p2.SkipContrast || p2.ContrastStrength <= 0 {
		t.Errorf("low-contrast image should apply correction, got strength=%v skip=%v", p2.ContrastStrength, p2.SkipContrast)
	}
}

func TestPlanContrastV2StyleMultiplier(t *testing.T) {
	low := Inputs{Version: 1, Profile: DefaultProfile, ContrastRatio: 0.3}
	v2Street := Inputs{Version: 2, Profile: DefaultProfile, ContrastRatio: 0.3, StyleLabel: "street"}

	p1 := Plan(low)
	p2 := Plan(v2Street)
	if p2.ContrastStrength <= p1.ContrastStrength {
		t.Errorf("street style (1.3x) should boost contrast strength: v1=%v v2=%v", p1.ContrastStrength, p2.ContrastStrength)
	}
}

func TestPlanSaturationSkippedForMono(t *testing.T) {
	in := Inputs{Version: 1, Profile: ProfileForBody("Leica Monochrom")}
	p := Plan(in)
	if !p.SkipSaturation {
		t.Error("Plan should skip saturation for a monochrome body")
	}
}

func TestPlanSaturationBoostsLowSaturation(t *testing.T) {
	in := Inputs{Version: 1, Profile: DefaultProfile, MeanSaturation: 0.05}
	p := Plan(in)
	if p.SkipSaturation {
		t.Fatal("Plan should not skip saturation for a washed-out image")
	}
	if p.SaturationScale <= 1.0 {
		t.Errorf("SaturationScale = %v, want > 1.0 for low-saturation input", p.SaturationScale)
	}
}

func TestPlanSharpenPicksNoiseTier(t *testing.T) {
	lowNoise := Plan(Inputs{Version: 1, Profile: DefaultProfile, NoiseEstimate: 1})
	highNoise := Plan(Inputs{Version: 1, Profile: DefaultProfile, NoiseEstimate: 20})
	if lowNoise.SharpenThreshold >= highNoise.SharpenThreshold {
		t.Errorf("high-noise sharpen threshold (%d) should exceed low-noise (%d)", highNoise.SharpenThreshold, lowNoise.SharpenThreshold)
	}
}

func TestPlanSharpenReducedWithFacesPresent(t *testing.T) {
	noFace := Plan(Inputs{Version: 1, Profile: DefaultProfile, NoiseEstimate: 5})
	withFace := Plan(Inputs{Version: 1, Profile: DefaultProfile, NoiseEstimate: 5, FaceCount: 1})
	if withFace.SharpenPercent >= noFace.SharpenPercent {
		t.Errorf("sharpen percent with faces present (%v) should be lower than without (%v)", withFace.SharpenPercent, noFace.SharpenPercent)
	}
}

func TestPlanExposureGeminiConfidenceByLabel(t *testing.T) {
	base := Inputs{Version: 1, Profile: DefaultProfile, MeanBrightness: 60}
	absent := Plan(base)

	good := base
	good.GeminiExposureLabel = "good"
	pGood := Plan(good)

	over := base
	over.GeminiExposureLabel = "over"
	pOver := Plan(over)

	under := base
	under.GeminiExposureLabel = "under"
	pUnder := Plan(under)

	absentDelta := 1.0 - absent.Gamma
	goodDelta := 1.0 - pGood.Gamma
	overDelta := 1.0 - pOver.Gamma
	underDelta := 1.0 - pUnder.Gamma

	if goodDelta >= absentDelta {
		t.Errorf("gemini_confidence=good (0.5) should correct less than absent (1.0): good=%v absent=%v", goodDelta, absentDelta)
	}
	if overDelta <= absentDelta {
		t.Errorf("gemini_confidence=over (1.2) should correct more than absent (1.0): over=%v absent=%v", overDelta, absentDelta)
	}
	if underDelta <= absentDelta {
		t.Errorf("gemini_confidence=under (1.2) should correct more than absent (1.0): under=%v absent=%v", underDelta, absentDelta)
	}
}

func TestPlanSetsStatusPlanned(t *testing.T) {
	p := Plan(Inputs{Version: 1, Profile: DefaultProfile})
	if p.Status != "planned" {
		t.Errorf("Status = %q, want planned", p.Status)
	}
}

func TestPlanCarriesPreStats(t *testing.T) {
	in := Inputs{ImageID: "img-1", Version: 2, Profile: DefaultProfile, MeanBrightness: 90, ContrastRatio: 0.5, WBShiftR: 0.05, WBShiftB: -0.03}
	p := Plan(in)
	if p.ImageID != "img-1" || p.Version != 2 {
		t.Errorf("ImageID/Version = %q/%d, want img-1/2", p.ImageID, p.Version)
	}
	if p.PreBrightness != 90 || p.PreContrast != 0.5 || p.PreWBR != 0.05 || p.PreWBB != -0.03 {
		t.Errorf("pre-stats not carried through: %+v", p)
	}
}
