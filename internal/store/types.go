package store

import "time"

// Image is the primary per-photograph record (§3).
type Image struct {
	ID                string
	SourcePath         string
	FileName           string
	Category           string
	Subcategory        string
	SourceFormat       string
	Width              int
	Height             int
	AspectRatio        float64
	Orientation        string // landscape | portrait | square
	SourceSizeBytes    int64
	EXIFData           string // opaque, raw blob kept verbatim
	CameraBody         string
	Medium             string // digital | analog | monochrome
	FilmStock          string
	Monochrome         bool
	CurationStatus     string // pending | kept | rejected
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Orientation labels.
const (
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
	OrientationSquare    = "square"
)

func OrientationFor(w, h int) string {
	switch {
	case w > h:
		return OrientationLandscape
	case h > w:
		return OrientationPortrait
	default:
		return OrientationSquare
	}
}

// Tier is one rendered (image|variant, tier, format) output (§3).
type Tier struct {
	ImageID    string
	VariantID  string // empty for originals
	TierName   string
	Format     string // jpeg | webp
	LocalPath  string
	RemoteURL  string
	PublicURL  string
	Width      int
	Height     int
	SizeBytes  int64
	UploadedAt *time.Time
}

// Variant is a generated derivative of an image (§3).
type Variant struct {
	ID          string
	ImageID     string
	VariantType string
	SourceTier  string
	Status      string // pending | success | failed | filtered
	ErrorText   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	VariantPending  = "pending"
	VariantSuccess  = "success"
	VariantFailed   = "failed"
	VariantFiltered = "filtered"
)

// PhaseRun is one `(phase name, start_time)` execution record (§3).
type PhaseRun struct {
	RunID           int64
	Phase           string
	Status          string // started | completed | failed | interrupted
	ImagesProcessed int
	ImagesFailed    int
	StartedAt       time.Time
	CompletedAt     *time.Time
	ErrorText       string
	Config          string // opaque JSON blob
}

const (
	RunStarted     = "started"
	RunCompleted   = "completed"
	RunFailed      = "failed"
	RunInterrupted = "interrupted"
)

// Upload tracks a file's remote destination (§3).
type Upload struct {
	LocalPath  string
	RemotePath string
	SizeBytes  int64
	UploadedAt time.Time
	Verified   bool
}

// EnhancementPlan is one row per image for the v1 or v2 enhancement recipe
// (§3, §4.6). Both tables share this shape; Version distinguishes storage.
type EnhancementPlan struct {
	ImageID string
	Version int // 1 or 2

	PreBrightness float64
	PreContrast   float64
	PreWBR        float64
	PreWBB        float64

	SkipWB        bool
	WBCorrectionR float64
	WBCorrectionB float64
	WBReason      string

	SkipExposure bool
	Gamma        float64
	ExposureReason string

	ShadowLift      float64
	HighlightPull   float64
	ShadowsReason   string

	SkipContrast     bool
	ContrastStrength float64
	ContrastReason   string

	SkipSaturation bool
	SaturationScale float64
	SaturationReason string

	SharpenRadius    float64
	SharpenPercent   float64
	SharpenThreshold int
	SharpenReason    string

	OutputPath      string
	PostBrightness  float64
	PostWBShiftR    float64
	PostContrast    float64
	OutputSizeBytes int64

	Status    string // planned | enhanced | accepted | failed
	ErrorText string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	PlanPlanned  = "planned"
	PlanEnhanced = "enhanced"
	PlanAccepted = "accepted"
	PlanFailed   = "failed"
)

// DominantColor is one of the exactly-5-per-image palette rows.
type DominantColor struct {
	ImageID    string
	Rank       int
	Percentage float64
	Hex        string
	R, G, B    int
	L, A, Blab float64
	Name       string
}

// WorkItem is one unit of phase work: the id of the image to process.
type WorkItem struct {
	ImageID string
}
