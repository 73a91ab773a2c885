package enhance

import (
	"image"
	"image/color"
	"math"

	"github.com/fpang/madphotos-core/internal/render"
)

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Execute runs the six-step recipe on a decoded display-tier buffer in
// order (§4.7), returning the corrected image. It never mutates src.
func Execute(src *image.RGBA, p PlanSteps) *image.RGBA {
	img := whiteBalance(src, p)
	img = exposure(img, p)
	img = shadowHighlight(img, p)
	img = contrast(img, p)
	img = saturation(img, p)
	img = sharpen(img, p)
	return img
}

// PlanSteps is the subset of store.EnhancementPlan the pixel pipeline
// actually consumes, kept separate from the storage row so Execute doesn't
// depend on the store package.
type PlanSteps struct {
	SkipWB        bool
	WBCorrectionR float64
	WBCorrectionB float64

	SkipExposure bool
	Gamma        float64

	ShadowLift    float64
	HighlightPull float64

	SkipContrast     bool
	ContrastStrength float64

	SkipSaturation  bool
	SaturationScale float64

	SharpenRadius    float64
	SharpenPercent   float64
	SharpenThreshold int
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// whiteBalance multiplies R by wb_correction_r and B by wb_correction_b,
// clamped to [0,255] (§4.7).
func whiteBalance(src *image.RGBA, p PlanSteps) *image.RGBA {
	if p.SkipWB {
		return cloneRGBA(src)
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			r := clampByte(float64(c.R) * p.WBCorrectionR)
			bl := clampByte(float64(c.B) * p.WBCorrectionB)
			out.SetRGBA(x, y, color.RGBA{R: r, G: c.G, B: bl, A: c.A})
		}
	}
	return out
}

// exposure applies out = ((in/255)^gamma)*255 per channel (§4.7).
func exposure(src *image.RGBA, p PlanSteps) *image.RGBA {
	if p.SkipExposure {
		return cloneRGBA(src)
	}
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := math.Pow(float64(i)/255.0, p.Gamma) * 255.0
		lut[i] = clampByte(v)
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A})
		}
	}
	return out
}

// shadowHighlight lifts shadows below Y<64 and pulls highlights above
// Y>220, each channel scaled by the pixel's own value (§4.7).
func shadowHighlight(src *image.RGBA, p PlanSteps) *image.RGBA {
	if p.ShadowLift == 0 && p.HighlightPull == 0 {
		return cloneRGBA(src)
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			r, g, bl := float64(c.R), float64(c.G), float64(c.B)
			luma := 0.299*r + 0.587*g + 0.114*bl

			if luma < 64 && p.ShadowLift > 0 {
				factor := p.ShadowLift * (64 - luma) / 64
				r += factor * r
				g += factor * g
				bl += factor * bl
			}
			if luma > 220 && p.HighlightPull > 0 {
				factor := p.HighlightPull * (luma - 220) / 35
				r -= factor * r
				g -= factor * g
				bl -= factor * bl
			}
			out.SetRGBA(x, y, color.RGBA{R: clampByte(r), G: clampByte(g), B: clampByte(bl), A: c.A})
		}
	}
	return out
}

// contrast applies the S-curve Y' = Y + strength*0.15*sin(pi*Y/255*2)/(2*pi)
// and rescales each channel by Y'/Y, clamped to [0.5, 2.0] (§4.7).
func contrast(src *image.RGBA, p PlanSteps) *image.RGBA {
	if p.SkipContrast || p.ContrastStrength == 0 {
		return cloneRGBA(src)
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			r, g, bl := float64(c.R), float64(c.G), float64(c.B)
			luma := 0.299*r + 0.587*g + 0.114*bl
			if luma == 0 {
				out.SetRGBA(x, y, c)
				continue
			}
			newLuma := luma + p.ContrastStrength*0.15*math.Sin(math.Pi*luma/255.0*2)/(2*math.Pi)
			ratio := newLuma / luma
			if ratio < 0.5 {
				ratio = 0.5
			}
			if ratio > 2.0 {
				ratio = 2.0
			}
			out.SetRGBA(x, y, color.RGBA{R: clampByte(r * ratio), G: clampByte(g * ratio), B: clampByte(bl * ratio), A: c.A})
		}
	}
	return out
}

// saturation converts to HSV, scales S by saturation_scale, and converts
// back (§4.7).
func saturation(src *image.RGBA, p PlanSteps) *image.RGBA {
	if p.SkipSaturation || p.SaturationScale == 0 {
		return cloneRGBA(src)
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			h, s, v := rgbToHSV(c.R, c.G, c.B)
			s = clamp(s*p.SaturationScale, 0, 1)
			r, g, bl := hsvToRGB(h, s, v)
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: bl, A: c.A})
		}
	}
	return out
}

func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min
	v = max
	if max == 0 {
		return 0, 0, 0
	}
	s = delta / max
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b uint8) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	return clampByte((rf + m) * 255), clampByte((gf + m) * 255), clampByte((bf + m) * 255)
}

// sharpen reuses render's unsharp mask (§4.7: "Sharpening: unsharp mask
// with the chosen parameters").
func sharpen(src *image.RGBA, p PlanSteps) *image.RGBA {
	u := render.Unsharp{Radius: p.SharpenRadius, Percent: p.SharpenPercent, Threshold: p.SharpenThreshold}
	if !u.Enabled() {
		return cloneRGBA(src)
	}
	return render.Sharpen(src, u)
}
