// Package pipeline 把各阶段串成固定顺序的 Context → Context 变换链。
package pipeline

import (
	"image/color"
	"maps"

	vtypes "img2svg/type"
)

// Context 单次转换的不可变上下文：每个阶段接收副本并返回新值
type Context struct {
	JobID    string
	Image    *vtypes.PixelBuffer
	Settings vtypes.Settings
	Width    int
	Height   int

	// MaxLayers <= 0 不限制
	MaxLayers int

	Palette  []color.RGBA
	Layers   []vtypes.ColorLayer
	Contours []vtypes.LayerContours
	Smoothed bool
	Paths    []vtypes.PathElement

	SVG        string
	ByteLength int

	Metadata map[string]any
}

// With 返回附加了一条元数据的副本，原 map 不变
func (c Context) With(key string, value any) Context {
	md := maps.Clone(c.Metadata)
	if md == nil {
		md = make(map[string]any)
	}
	md[key] = value
	c.Metadata = md
	return c
}

// Result 成功转换的最终产物
type Result struct {
	JobID      string         `json:"id"`
	SVG        string         `json:"svg"`
	ByteLength int            `json:"bytes"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Metadata   map[string]any `json:"metadata"`
}
