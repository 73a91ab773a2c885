package render

import (
	"image"
	"image/color"
	"math"
)

// Sharpen applies an unsharp mask: blur the image with a Gaussian kernel
// of the given radius, then push each pixel away from its blurred value
// by percent/100, clamping any push smaller than threshold levels to
// zero so flat regions (sky, skin) are not grained up (§4.4).
//
// No library in the retrieved pack implements unsharp masking — it is
// pixel-level math specific to this domain, not a concern any example
// repo's dependency covers, so it is written directly against
// image.RGBA per DESIGN.md's standard-library justification for
// render/sharpen.go.
func Sharpen(img *image.RGBA, u Unsharp) *image.RGBA {
	if !u.Enabled() {
		return img
	}
	blurred := gaussianBlur(img, u.Radius)

	b := img.Bounds()
	out := image.NewRGBA(b)
	amount := u.Percent / 100.0
	threshold := float64(u.Threshold)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sr, sg, sb, sa := img.At(x, y).RGBA()
			br, bg, bb, _ := blurred.At(x, y).RGBA()

			r := unsharpChannel(sr, br, amount, threshold)
			g := unsharpChannel(sg, bg, amount, threshold)
			bl := unsharpChannel(sb, bb, amount, threshold)

			out.Set(x, y, color.RGBA64{R: r, G: g, B: bl, A: uint16(sa)})
		}
	}
	return out
}

func unsharpChannel(src, blur uint32, amount, threshold float64) uint16 {
	diff := float64(int32(src)) - float64(int32(blur))
	if math.Abs(diff)/257.0 < threshold { // 16-bit RGBA() -> 8-bit levels
		return clampU16(float64(src))
	}
	v := float64(src) + diff*amount
	return clampU16(v)
}

func clampU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

// gaussianBlur runs a separable box-blur approximation of a Gaussian with
// the given radius (in source pixels, matching the "radius" column of
// §4.4's tier table, which is expressed in the same units as PIL's
// ImageFilter.GaussianBlur).
func gaussianBlur(img *image.RGBA, radius float64) *image.RGBA {
	r := int(radius*3 + 0.5)
	if r < 1 {
		r = 1
	}
	h := boxBlurPass(img, r, true)
	return boxBlurPass(h, r, false)
}

func boxBlurPass(img *image.RGBA, radius int, horizontal bool) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	w, ht := b.Dx(), b.Dy()

	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB, sumA, count int
			if horizontal {
				for dx := -radius; dx <= radius; dx++ {
					sx := x + dx
					if sx < 0 || sx >= w {
						continue
					}
					r, g, bl, a := img.At(b.Min.X+sx, b.Min.Y+y).RGBA()
					sumR += int(r)
					sumG += int(g)
					sumB += int(bl)
					sumA += int(a)
					count++
				}
			} else {
				for dy := -radius; dy <= radius; dy++ {
					sy := y + dy
					if sy < 0 || sy >= ht {
						continue
					}
					r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+sy).RGBA()
					sumR += int(r)
					sumG += int(g)
					sumB += int(bl)
					sumA += int(a)
					count++
				}
			}
			if count == 0 {
				count = 1
			}
			out.Set(b.Min.X+x, b.Min.Y+y, color.RGBA64{
				R: uint16(sumR / count), G: uint16(sumG / count), B: uint16(sumB / count), A: uint16(sumA / count),
			})
		}
	}
	return out
}
