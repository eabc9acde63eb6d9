package color2svg

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	colorful "github.com/lucasb-eyer/go-colorful"

	"img2svg/contour2path"
	vtypes "img2svg/type"
)

// countingWriter 记录写入的字节数，避免二次序列化
type countingWriter struct {
	w   io.Writer
	n   int
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += n
	c.err = err
	return n, err
}

// Render 用 svgo 组装完整文档：XML 声明、viewBox/width/height 等于源尺寸、每个元素一个 <path>。
// 返回写入 w 的 UTF-8 字节数。
func Render(w io.Writer, width, height int, paths []vtypes.PathElement) (int, error) {
	cw := &countingWriter{w: w}
	canvas := svg.New(cw)
	canvas.Startview(width, height, 0, 0, width, height)
	for _, p := range paths {
		canvas.Path(p.D, attrs(p)...)
	}
	canvas.End()

	// svgo 吞掉写入错误，由 countingWriter 记住第一个
	if cw.err != nil {
		return cw.n, fmt.Errorf("write svg: %w", cw.err)
	}
	return cw.n, nil
}

// RenderString 渲染到字符串并返回精确字节数
func RenderString(width, height int, paths []vtypes.PathElement) (string, int, error) {
	var b strings.Builder
	n, err := Render(&b, width, height, paths)
	if err != nil {
		return "", 0, err
	}
	return b.String(), n, nil
}

func attrs(p vtypes.PathElement) []string {
	out := []string{fmt.Sprintf(`fill="%s"`, Hex(p.Fill))}
	if p.Opacity < 1 {
		out = append(out, fmt.Sprintf(`opacity="%s"`, contour2path.FormatCoord(p.Opacity)))
	}
	if p.Transform != "" {
		out = append(out, fmt.Sprintf(`transform="%s"`, p.Transform))
	}
	return out
}

// Hex 颜色转 #rrggbb
func Hex(c color.RGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}
