package color2svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"strings"

	"github.com/gotranspile/gotrace"

	"img2svg/contour2path"
	vtypes "img2svg/type"
)

// TracePotrace 使用 gotrace 将每个颜色图层转成 PathElement，保持图层顺序
func TracePotrace(layers []vtypes.ColorLayer) ([]vtypes.PathElement, error) {
	out := []vtypes.PathElement{}
	for li, layer := range layers {
		svgStr, err := traceGrayToSVG(layer.Mask)
		if err != nil {
			return nil, fmt.Errorf("potrace layer %d: %w", li, err)
		}
		paths, err := extractPaths(svgStr)
		if err != nil {
			return nil, fmt.Errorf("potrace layer %d: %w", li, err)
		}
		opacity := contour2path.Opacity(layer.Color.A)
		for _, p := range paths {
			out = append(out, vtypes.PathElement{
				D:         p.d,
				Fill:      layer.Color,
				Opacity:   opacity,
				Transform: p.transform,
			})
		}
	}
	return out, nil
}

// traceGrayToSVG 核心：使用 gotrace 将 image.Gray 转 SVG 字符串
func traceGrayToSVG(mask *image.Gray) (string, error) {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return "", err
	}

	return buf.String(), nil
}

type tracedPath struct {
	d         string
	transform string
}

type xmlPath struct {
	D string `xml:"d,attr"`
}

type xmlGroup struct {
	Transform string     `xml:"transform,attr"`
	Paths     []xmlPath  `xml:"path"`
	Groups    []xmlGroup `xml:"g"`
}

// extractPaths 从 SVG 字符串中提取所有 <path> 的 d 属性及其所在 <g> 的累积 transform
func extractPaths(doc string) ([]tracedPath, error) {
	var root xmlGroup
	if err := xml.Unmarshal([]byte(doc), &root); err != nil {
		return nil, fmt.Errorf("parse traced svg: %w", err)
	}
	var out []tracedPath
	var walk func(g xmlGroup, transform string)
	walk = func(g xmlGroup, transform string) {
		transform = strings.TrimSpace(transform + " " + g.Transform)
		for _, p := range g.Paths {
			if strings.TrimSpace(p.D) == "" {
				continue
			}
			out = append(out, tracedPath{d: strings.Join(strings.Fields(p.D), " "), transform: transform})
		}
		for _, child := range g.Groups {
			walk(child, transform)
		}
	}
	// 根 <svg> 自身的 transform 属性不参与
	root.Transform = ""
	walk(root, "")
	return out, nil
}
