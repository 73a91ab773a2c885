package enhance

// CameraProfile is one row of the closed camera-body table the planner
// keys off (§4.6). Unknown bodies fall back to DefaultProfile.
type CameraProfile struct {
	Body           string
	WBStrength     float64
	ExpStrength    float64
	ShadowThr      float64
	HighlightThr   float64
	SatCap         float64
	PreserveGrain  bool
	IsMono         bool
}

var DefaultProfile = CameraProfile{
	Body: "default", WBStrength: 0.5, ExpStrength: 0.7,
	ShadowThr: 8.0, HighlightThr: 3.0, SatCap: 1.15,
}

var cameraProfiles = map[string]CameraProfile{
	"Leica M8": {
		Body: "Leica M8", WBStrength: 0.5, ExpStrength: 0.8,
		ShadowThr: 8.0, HighlightThr: 3.0, SatCap: 1.15,
	},
	"Leica MP": {
		Body: "Leica MP", WBStrength: 0.3, ExpStrength: 0.5,
		ShadowThr: 10.0, HighlightThr: 3.0, SatCap: 1.10, PreserveGrain: true,
	},
	"Leica Monochrom": {
		Body: "Leica Monochrom", WBStrength: 0.0, ExpStrength: 0.7,
		ShadowThr: 30.0, HighlightThr: 3.0, SatCap: 1.00, IsMono: true,
	},
	"Canon G12": {
		Body: "Canon G12", WBStrength: 0.7, ExpStrength: 0.9,
		ShadowThr: 8.0, HighlightThr: 3.0, SatCap: 1.20,
	},
	"DJI Osmo Pro": {
		Body: "DJI Osmo Pro", WBStrength: 0.6, ExpStrength: 0.8,
		ShadowThr: 8.0, HighlightThr: 3.0, SatCap: 1.15,
	},
	"DJI Osmo Memo": {
		Body: "DJI Osmo Memo", WBStrength: 0.6, ExpStrength: 0.7,
		ShadowThr: 8.0, HighlightThr: 2.0, SatCap: 1.15,
	},
}

// ProfileForBody looks up the camera's profile, falling back to the
// default profile for any body not in the closed table (§4.6: "unknown
// bodies use defaults").
func ProfileForBody(body string) CameraProfile {
	if p, ok := cameraProfiles[body]; ok {
		return p
	}
	return DefaultProfile
}

// styleContrastMult and styleSaturationMult are the closed per-style
// multiplier tables step 4 and step 5 reference (§4.6: "e.g. street →
// 1.3, portrait → 0.8"). Styles outside this table use 1.0.
var styleContrastMult = map[string]float64{
	"street":    1.3,
	"portrait":  0.8,
	"landscape": 1.1,
	"documentary": 1.2,
}

var styleSaturationMult = map[string]float64{
	"street":    1.1,
	"portrait":  0.9,
	"landscape": 1.2,
	"documentary": 1.0,
}

func styleMult(table map[string]float64, style string) float64 {
	if m, ok := table[style]; ok {
		return m
	}
	return 1.0
}
