package color2contour

import (
	"math"

	vtypes "img2svg/type"
)

// Simplify Douglas-Peucker：弦两端点之间距离最大的点超过容差则保留并对两半继续处理，否则只留两端点
func Simplify(points []vtypes.Point, tolerance float64) vtypes.Contour {
	if len(points) < 3 {
		return append(vtypes.Contour(nil), points...)
	}

	last := len(points) - 1
	keep := make([]bool, len(points))
	keep[0], keep[last] = true, true

	stack := [][2]int{{0, last}}
	for len(stack) > 0 {
		span := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		first, end := span[0], span[1]
		if end <= first+1 {
			continue
		}

		maxDist, idx := 0.0, -1
		for i := first + 1; i < end; i++ {
			if d := perpendicularDistance(points[i], points[first], points[end]); d > maxDist {
				maxDist, idx = d, i
			}
		}
		if maxDist > tolerance {
			keep[idx] = true
			stack = append(stack, [2]int{idx, end}, [2]int{first, idx})
		}
	}

	out := make(vtypes.Contour, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func perpendicularDistance(p, a, b vtypes.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p.Dist(a)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}
