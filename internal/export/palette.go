package export

import (
	"math"

	"github.com/fpang/madphotos-core/internal/store"
)

// paletteDistance is mean over c1 in p1 of min over c2 in p2 of the sRGB
// L2 distance (§4.8).
func paletteDistance(p1, p2 []store.DominantColor) float64 {
	if len(p1) == 0 || len(p2) == 0 {
		return math.MaxFloat64
	}
	var total float64
	for _, c1 := range p1 {
		best := math.MaxFloat64
		for _, c2 := range p2 {
			d := rgbDist(c1, c2)
			if d < best {
				best = d
			}
		}
		total += best
	}
	return total / float64(len(p1))
}

func rgbDist(a, b store.DominantColor) float64 {
	dr := float64(a.R - b.R)
	dg := float64(a.G - b.G)
	db := float64(a.B - b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
