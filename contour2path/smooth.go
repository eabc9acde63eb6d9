// Package contour2path 把轮廓折线平滑并编码为 SVG path 数据。
package contour2path

import (
	"math"

	vtypes "img2svg/type"
)

const (
	// SmoothingCutoff 不高于该值时轮廓原样通过
	SmoothingCutoff = 0.3
	// MinSpacing 与上一个保留点距离小于该值的采样点被丢弃
	MinSpacing = 0.5
	maxBlend   = 0.6
)

func samplesPerSegment(smoothing float64) int {
	return max(3, int(math.Floor(10*smoothing)))
}

// SampleCount 平滑阶段在去重之前产生的采样点数，随 smoothing 单调不减
func SampleCount(points int, smoothing float64) int {
	if smoothing <= SmoothingCutoff || points < 4 {
		return points
	}
	return points * samplesPerSegment(smoothing)
}

// Smooth 闭合 Catmull-Rom 插值，并按 min(0.6, smoothing) 在直线与样条之间混合
func Smooth(c vtypes.Contour, smoothing float64) vtypes.Contour {
	if smoothing <= SmoothingCutoff || len(c) < 4 {
		return c
	}

	samples := samplesPerSegment(smoothing)
	alpha := math.Min(maxBlend, smoothing)
	n := len(c)
	out := make(vtypes.Contour, 0, n*samples)

	for i := 0; i < n; i++ {
		p0, p1 := c[(i-1+n)%n], c[i]
		p2, p3 := c[(i+1)%n], c[(i+2)%n]
		for s := 0; s < samples; s++ {
			t := float64(s) / float64(samples)
			pt := lerp(lerp(p1, p2, t), catmullRom(p0, p1, p2, p3, t), alpha)
			if len(out) > 0 && pt.Dist(out[len(out)-1]) < MinSpacing {
				continue
			}
			out = append(out, pt)
		}
	}

	if len(out) < 3 {
		return c
	}
	return out
}

// SmoothAll 对所有图层的轮廓做平滑，不修改输入
func SmoothAll(layers []vtypes.LayerContours, smoothing float64) []vtypes.LayerContours {
	out := make([]vtypes.LayerContours, len(layers))
	for i, layer := range layers {
		contours := make([]vtypes.Contour, len(layer.Contours))
		for j, c := range layer.Contours {
			contours[j] = Smooth(c, smoothing)
		}
		out[i] = vtypes.LayerContours{Color: layer.Color, Contours: contours}
	}
	return out
}

func catmullRom(p0, p1, p2, p3 vtypes.Point, t float64) vtypes.Point {
	t2 := t * t
	t3 := t2 * t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (-a+c)*t + (2*a-5*b+4*c-d)*t2 + (-a+3*b-3*c+d)*t3)
	}
	return vtypes.Point{X: f(p0.X, p1.X, p2.X, p3.X), Y: f(p0.Y, p1.Y, p2.Y, p3.Y)}
}

func lerp(a, b vtypes.Point, t float64) vtypes.Point {
	return vtypes.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
