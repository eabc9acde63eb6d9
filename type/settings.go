package vtypes

import (
	"fmt"
	"math"
	"strconv"
)

// Settings 三个 [0,1] 调节轴
type Settings struct {
	Complexity          float64 `json:"complexity" mapstructure:"complexity"`
	ColorSimplification float64 `json:"colorSimplification" mapstructure:"color_simplification"`
	PathSmoothing       float64 `json:"pathSmoothing" mapstructure:"path_smoothing"`
}

// DefaultSettings 中等参数
func DefaultSettings() Settings {
	return Settings{Complexity: 0.5, ColorSimplification: 0.5, PathSmoothing: 0.5}
}

// TargetColors 量化目标颜色数
func (s Settings) TargetColors() int {
	return max(4, int(math.Floor(256-s.ColorSimplification*240)))
}

// DetailThreshold 轮廓简化后保留所需的最少点数
func (s Settings) DetailThreshold() int {
	return max(2, int(math.Floor(50-s.Complexity*45)))
}

// Clamp 将越界值截断到 [0,1]，NaN 视为 0
func (s Settings) Clamp() Settings {
	return Settings{
		Complexity:          clamp01(s.Complexity),
		ColorSimplification: clamp01(s.ColorSimplification),
		PathSmoothing:       clamp01(s.PathSmoothing),
	}
}

// Validate 调用方应先 Clamp
func (s Settings) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"complexity", s.Complexity},
		{"colorSimplification", s.ColorSimplification},
		{"pathSmoothing", s.PathSmoothing},
	} {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return fmt.Errorf("%w: %s=%v out of [0,1]", ErrInvalidInput, f.name, f.v)
		}
	}
	return nil
}

// Key 用于缓存键的稳定表示，保留完整精度：相邻取值可能得到不同的输出
func (s Settings) Key() string {
	return strconv.FormatFloat(s.Complexity, 'g', -1, 64) + ":" +
		strconv.FormatFloat(s.ColorSimplification, 'g', -1, 64) + ":" +
		strconv.FormatFloat(s.PathSmoothing, 'g', -1, 64)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
