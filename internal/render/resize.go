package render

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize implements §4.4's resize semantics: downscale to long_edge on
// the longer side, preserving aspect ratio, never upscaling.
//
// x/image/draw (the only resampling library in the retrieved pack,
// grounded on francis-pang's thumbnail generator and Skryldev's
// ResizeStep) does not implement a Lanczos-3 kernel — its highest-order
// scaler is CatmullRom, a cubic convolution kernel close to Lanczos-3 in
// practice for photographic downsampling. That substitution is recorded
// in DESIGN.md; this function is the single place it applies.
func Resize(img *image.RGBA, longEdge int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := w
	if h > long {
		long = h
	}
	if long <= longEdge {
		return img
	}

	ratio := float64(longEdge) / float64(long)
	dstW := int(float64(w)*ratio + 0.5)
	dstH := int(float64(h)*ratio + 0.5)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
