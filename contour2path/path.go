package contour2path

import (
	"math"
	"strconv"
	"strings"

	vtypes "img2svg/type"
)

const (
	// 三次贝塞尔控制点张力：朝前一点 0.6，背离后一点 0.3
	tensionPrev = 0.6
	tensionNext = 0.3

	cubicCutoff     = 0.5
	quadraticCutoff = 0.2
)

// PathData 把闭合轮廓编码为 d 字符串：M 开头，Z 结尾，坐标保留两位小数
func PathData(c vtypes.Contour, smoothing float64) string {
	n := len(c)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(n * 24)

	switch {
	case smoothing > cubicCutoff && n >= 3:
		b.WriteString("M")
		writePoint(&b, c[0])
		for i := 1; i <= n; i++ {
			prev, cur, next := c[i-1], c[i%n], c[(i+1)%n]
			cp1 := vtypes.Point{X: cur.X + (prev.X-cur.X)*tensionPrev, Y: cur.Y + (prev.Y-cur.Y)*tensionPrev}
			cp2 := vtypes.Point{X: cur.X + (cur.X-next.X)*tensionNext, Y: cur.Y + (cur.Y-next.Y)*tensionNext}
			b.WriteString(" C")
			writePoint(&b, cp1)
			b.WriteByte(' ')
			writePoint(&b, cp2)
			b.WriteByte(' ')
			writePoint(&b, cur)
		}
	case smoothing > quadraticCutoff && n >= 3:
		// 从 c[0]、c[1] 的中点出发，每段以顶点为控制点、以相邻中点为终点
		b.WriteString("M")
		writePoint(&b, midpoint(c[0], c[1%n]))
		for i := 1; i <= n; i++ {
			ctrl := c[i%n]
			b.WriteString(" Q")
			writePoint(&b, ctrl)
			b.WriteByte(' ')
			writePoint(&b, midpoint(ctrl, c[(i+1)%n]))
		}
	default:
		b.WriteString("M")
		writePoint(&b, c[0])
		for _, p := range c[1:] {
			b.WriteString(" L")
			writePoint(&b, p)
		}
	}

	b.WriteString(" Z")
	return b.String()
}

// Elements 按绘制顺序为每个轮廓生成 PathElement
func Elements(layers []vtypes.LayerContours, smoothing float64) []vtypes.PathElement {
	var out []vtypes.PathElement
	for _, layer := range layers {
		opacity := Opacity(layer.Color.A)
		for _, c := range layer.Contours {
			out = append(out, vtypes.PathElement{
				D:       PathData(c, smoothing),
				Fill:    layer.Color,
				Opacity: opacity,
			})
		}
	}
	if out == nil {
		out = []vtypes.PathElement{}
	}
	return out
}

// Opacity alpha 通道转为两位小数的不透明度
func Opacity(a uint8) float64 {
	return math.Round(float64(a)/255*100) / 100
}

// FormatCoord 两位小数，去掉 -0.00 的符号
func FormatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

func writePoint(b *strings.Builder, p vtypes.Point) {
	b.WriteString(FormatCoord(p.X))
	b.WriteByte(' ')
	b.WriteString(FormatCoord(p.Y))
}

func midpoint(a, b vtypes.Point) vtypes.Point {
	return vtypes.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
