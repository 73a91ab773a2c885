// Package phash implements the perceptual-hash family the hashes phase
// needs (§4.5: "pHash, aHash, dHash, wHash as 64-bit hex; blur score;
// sharpness; entropy"). No repo in the retrieved pack imports a perceptual
// hashing library (checked: no goimagehash, no blurhash) — these are
// textbook DCT/gradient/wavelet algorithms with no ecosystem substitute in
// the pack, so they are implemented directly against image/color rather
// than pulled in from outside it (documented in DESIGN.md).
package phash

import (
	"fmt"
	"image"
	"math"
)

func toGray(img image.Image, w, h int) [][]float64 {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		sy := b.Min.Y + y*sh/h
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*sw/w
			r, g, bl, _ := img.At(sx, sy).RGBA()
			out[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
		}
	}
	return out
}

func bitsToHex(bits []bool) string {
	var v uint64
	for i, b := range bits {
		if b {
			v |= 1 << uint(i)
		}
	}
	return fmt.Sprintf("%016x", v)
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func flatten(g [][]float64) []float64 {
	out := make([]float64, 0, len(g)*len(g[0]))
	for _, row := range g {
		out = append(out, row...)
	}
	return out
}

// AHash computes the average hash: downsample to 8x8, threshold against
// the mean.
func AHash(img image.Image) string {
	g := toGray(img, 8, 8)
	flat := flatten(g)
	m := mean(flat)
	bits := make([]bool, len(flat))
	for i, v := range flat {
		bits[i] = v >= m
	}
	return bitsToHex(bits)
}

// DHash computes the gradient hash: downsample to 9x8, threshold each
// pixel against its right neighbor.
func DHash(img image.Image) string {
	g := toGray(img, 9, 8)
	bits := make([]bool, 0, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			bits = append(bits, g[y][x] < g[y][x+1])
		}
	}
	return bitsToHex(bits)
}

// PHash computes the DCT perceptual hash: downsample to 32x32, take a 2D
// DCT-II, keep the top-left 8x8 block excluding the DC term, threshold
// against the median.
func PHash(img image.Image) string {
	g := toGray(img, 32, 32)
	dct := dct2D(g, 32)

	vals := make([]float64, 0, 63)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x == 0 && y == 0 {
				continue
			}
			vals = append(vals, dct[y][x])
		}
	}
	med := median(vals)

	bits := make([]bool, 0, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x == 0 && y == 0 {
				bits = append(bits, false)
				continue
			}
			bits = append(bits, dct[y][x] >= med)
		}
	}
	return bitsToHex(bits)
}

// WHash computes a single-level Haar wavelet hash: one pass of 2x2 Haar
// averaging over a 16x16 downsample yields an 8x8 approximation (LL) band,
// thresholded against its median. A single level is sufficient to give a
// wavelet-domain hash distinct from aHash/dHash/pHash without a full
// multi-level filter bank.
func WHash(img image.Image) string {
	g := toGray(img, 16, 16)
	ll := make([][]float64, 8)
	for y := 0; y < 8; y++ {
		ll[y] = make([]float64, 8)
		for x := 0; x < 8; x++ {
			ll[y][x] = (g[2*y][2*x] + g[2*y][2*x+1] + g[2*y+1][2*x] + g[2*y+1][2*x+1]) / 4
		}
	}
	flat := flatten(ll)
	med := median(flat)
	bits := make([]bool, len(flat))
	for i, v := range flat {
		bits[i] = v >= med
	}
	return bitsToHex(bits)
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func dct2D(g [][]float64, n int) [][]float64 {
	tmp := make([][]float64, n)
	for i := range tmp {
		tmp[i] = make([]float64, n)
	}
	for y := 0; y < n; y++ {
		tmp[y] = dct1D(g[y])
	}
	out := make([][]float64, n)
	for x := 0; x < n; x++ {
		col := make([]float64, n)
		for y := 0; y < n; y++ {
			col[y] = tmp[y][x]
		}
		col = dct1D(col)
		for y := 0; y < n; y++ {
			if out[y] == nil {
				out[y] = make([]float64, n)
			}
			out[y][x] = col[y]
		}
	}
	return out
}

func dct1D(in []float64) []float64 {
	n := len(in)
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += in[i] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5)*float64(k))
		}
		c := 1.0
		if k == 0 {
			c = 1.0 / math.Sqrt2
		}
		out[k] = sum * c * math.Sqrt(2.0/float64(n))
	}
	return out
}

// BlurScore returns the variance of the Laplacian over a grayscale
// downsample; low variance indicates a blurry image.
func BlurScore(img image.Image) float64 {
	g := toGray(img, 256, 256)
	var sum, sumSq float64
	var n int
	for y := 1; y < len(g)-1; y++ {
		for x := 1; x < len(g[y])-1; x++ {
			lap := g[y-1][x] + g[y+1][x] + g[y][x-1] + g[y][x+1] - 4*g[y][x]
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	if n == 0 {
		return 0
	}
	m := sum / float64(n)
	return sumSq/float64(n) - m*m
}

// Sharpness returns a normalized [0,1] sharpness estimate derived from the
// same Laplacian variance as BlurScore.
func Sharpness(img image.Image) float64 {
	v := BlurScore(img)
	s := v / 2000.0
	if s > 1 {
		return 1
	}
	return s
}

// Entropy returns the Shannon entropy (bits) of the grayscale histogram.
func Entropy(img image.Image) float64 {
	g := toGray(img, 256, 256)
	var hist [256]int
	var total int
	for _, row := range g {
		for _, v := range row {
			bucket := int(v)
			if bucket > 255 {
				bucket = 255
			}
			if bucket < 0 {
				bucket = 0
			}
			hist[bucket]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	var entropy float64
	for _, count := range hist {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
