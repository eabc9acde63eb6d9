package service

import (
	"context"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"img2svg/model"
	vtypes "img2svg/type"
)

// Suggester 根据图像内容给出转换参数
type Suggester interface {
	Suggest(ctx context.Context, buf *vtypes.PixelBuffer, current vtypes.Settings) (*model.Suggestion, error)
}

const (
	edgeThreshold     = 48 // 相邻像素灰度差之和
	maxSuggestSamples = 250_000
)

// HeuristicSuggester 用边缘密度和 Lab 颜色离散度估计场景复杂度，离线可用
type HeuristicSuggester struct{}

func NewHeuristicSuggester() *HeuristicSuggester {
	return &HeuristicSuggester{}
}

func (h *HeuristicSuggester) Suggest(ctx context.Context, buf *vtypes.PixelBuffer, current vtypes.Settings) (*model.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 || len(buf.Pix) != buf.Width*buf.Height*4 {
		return nil, fmt.Errorf("%w: bad pixel buffer", vtypes.ErrInvalidInput)
	}

	step := max(1, int(math.Sqrt(float64(buf.Len())/maxSuggestSamples)))
	edges, samples := edgeDensity(buf, step)
	variance, opaque := labVariance(buf, step)
	if opaque == 0 {
		return &model.Suggestion{Settings: current.Clamp(), Level: "empty", Reason: "image is fully transparent"}, nil
	}

	density := 0.0
	if samples > 0 {
		density = float64(edges) / float64(samples)
	}

	var level string
	switch {
	case density < 0.05 && variance < 30:
		level = "simple"
	case density > 0.15 || variance > 60:
		level = "complex"
	default:
		level = "medium"
	}

	s := vtypes.Settings{
		Complexity:          round2(0.2 + density*4),
		ColorSimplification: round2(1 - variance/80),
		PathSmoothing:       round2(0.8 - density*3),
	}.Clamp()

	return &model.Suggestion{
		Settings:      s,
		Level:         level,
		EdgeDensity:   density,
		ColorVariance: variance,
		Reason:        fmt.Sprintf("%s scene: edge density %.3f, Lab deviation %.1f", level, density, variance),
	}, nil
}

func gray(buf *vtypes.PixelBuffer, i int) int {
	p := buf.Pix[i*4 : i*4+3]
	return (299*int(p[0]) + 587*int(p[1]) + 114*int(p[2])) / 1000
}

// edgeDensity 统计与右、下邻居灰度差超过阈值的采样点
func edgeDensity(buf *vtypes.PixelBuffer, step int) (edges, samples int) {
	for y := 0; y+1 < buf.Height; y += step {
		for x := 0; x+1 < buf.Width; x += step {
			i := y*buf.Width + x
			right, down := i+1, i+buf.Width
			if buf.Transparent(i) || buf.Transparent(right) || buf.Transparent(down) {
				continue
			}
			g := gray(buf, i)
			d := abs(gray(buf, right)-g) + abs(gray(buf, down)-g)
			samples++
			if d > edgeThreshold {
				edges++
			}
		}
	}
	return edges, samples
}

// labVariance 不透明像素 L、a、b 三个通道标准差的均值，L 取 0..100
func labVariance(buf *vtypes.PixelBuffer, step int) (float64, int) {
	var n int
	var sum, sumSq [3]float64
	for y := 0; y < buf.Height; y += step {
		for x := 0; x < buf.Width; x += step {
			i := y*buf.Width + x
			if buf.Transparent(i) {
				continue
			}
			p := buf.Pix[i*4 : i*4+3]
			c := colorful.Color{R: float64(p[0]) / 255, G: float64(p[1]) / 255, B: float64(p[2]) / 255}
			l, a, b := c.Lab()
			for k, v := range [3]float64{l * 100, a * 100, b * 100} {
				sum[k] += v
				sumSq[k] += v * v
			}
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	var dev float64
	for k := range sum {
		mean := sum[k] / float64(n)
		dev += math.Sqrt(max(0, sumSq[k]/float64(n)-mean*mean))
	}
	return dev / 3, n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
