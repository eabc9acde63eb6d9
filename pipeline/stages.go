package pipeline

import (
	"img2svg/color2contour"
	"img2svg/color2svg"
	"img2svg/contour2path"
	"img2svg/image2color"
	vtypes "img2svg/type"
)

// Stage 一个具名的 Context → Context 变换
type Stage struct {
	Name string
	Run  func(Context) (Context, error)
}

const (
	StageQuantize = "quantize"
	StageLayers   = "layers"
	StageTrace    = "trace"
	StageSmooth   = "smooth"
	StageSVG      = "svg"
	StagePotrace  = "potrace"
)

// Quantize 中位切分量化
func Quantize() Stage {
	return Stage{Name: StageQuantize, Run: func(c Context) (Context, error) {
		if c.Image == nil {
			return c, vtypes.Missing(StageQuantize, "image")
		}
		img, palette := image2color.Quantize(c.Image, c.Settings.TargetColors())
		c.Image = img
		c.Palette = palette
		return c.With("targetColors", c.Settings.TargetColors()).With("colors", len(palette)), nil
	}}
}

// ExtractLayers 按颜色拆分图层
func ExtractLayers() Stage {
	return Stage{Name: StageLayers, Run: func(c Context) (Context, error) {
		if c.Image == nil {
			return c, vtypes.Missing(StageLayers, "image")
		}
		layers, err := image2color.ExtractLayers(c.Image, c.MaxLayers)
		if err != nil {
			return c, &vtypes.StageError{Stage: StageLayers, Err: err}
		}
		c.Layers = layers
		return c.With("layers", len(c.Layers)), nil
	}}
}

// TraceContours 提取并简化轮廓
func TraceContours(order color2contour.BoundaryOrder) Stage {
	return Stage{Name: StageTrace, Run: func(c Context) (Context, error) {
		if c.Layers == nil {
			return c, vtypes.Missing(StageTrace, "color layers")
		}
		c.Contours = color2contour.Trace(c.Layers, c.Width, c.Height, c.Settings.DetailThreshold(), order)
		n := 0
		for _, lc := range c.Contours {
			n += len(lc.Contours)
		}
		return c.With("detailThreshold", c.Settings.DetailThreshold()).With("contours", n), nil
	}}
}

// SmoothContours Catmull-Rom 平滑
func SmoothContours() Stage {
	return Stage{Name: StageSmooth, Run: func(c Context) (Context, error) {
		if c.Contours == nil {
			return c, vtypes.Missing(StageSmooth, "contours")
		}
		c.Contours = contour2path.SmoothAll(c.Contours, c.Settings.PathSmoothing)
		c.Smoothed = true
		return c, nil
	}}
}

// GenerateSVG 生成 path 数据并组装文档
func GenerateSVG() Stage {
	return Stage{Name: StageSVG, Run: func(c Context) (Context, error) {
		if c.Paths == nil {
			if c.Contours == nil {
				return c, vtypes.Missing(StageSVG, "contours")
			}
			c.Paths = contour2path.Elements(c.Contours, c.Settings.PathSmoothing)
		}
		doc, n, err := color2svg.RenderString(c.Width, c.Height, c.Paths)
		if err != nil {
			return c, &vtypes.StageError{Stage: StageSVG, Err: err}
		}
		c.SVG = doc
		c.ByteLength = n
		return c.With("paths", len(c.Paths)).With("bytes", n), nil
	}}
}

// TracePotrace 备用后端：gotrace 直接从图层掩码生成 path
func TracePotrace() Stage {
	return Stage{Name: StagePotrace, Run: func(c Context) (Context, error) {
		if c.Layers == nil {
			return c, vtypes.Missing(StagePotrace, "color layers")
		}
		paths, err := color2svg.TracePotrace(c.Layers)
		if err != nil {
			return c, &vtypes.StageError{Stage: StagePotrace, Err: err}
		}
		c.Paths = paths
		return c.With("backend", "potrace"), nil
	}}
}
