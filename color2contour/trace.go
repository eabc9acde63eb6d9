// Package color2contour 从颜色图层掩码中提取并简化区域边界。
package color2contour

import (
	vtypes "img2svg/type"
)

// Tolerance Douglas-Peucker 的固定容差（像素）
const Tolerance = 1.5

// BoundaryOrder 边界点送入简化器前的排列方式
type BoundaryOrder int

const (
	// BoundaryDiscovery 泛洪填充的发现顺序
	BoundaryDiscovery BoundaryOrder = iota
	// BoundaryMoore 沿周长的 Moore 邻域遍历顺序
	BoundaryMoore
)

// ParseBoundaryOrder 配置字符串转换，未知值回退为 discovery
func ParseBoundaryOrder(s string) BoundaryOrder {
	if s == "moore" {
		return BoundaryMoore
	}
	return BoundaryDiscovery
}

func (o BoundaryOrder) String() string {
	if o == BoundaryMoore {
		return "moore"
	}
	return "discovery"
}

// 四邻域：右、下、左、上
var neighbors4 = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

type region struct {
	id       int32
	start    int
	pixels   int
	boundary []vtypes.Point
	minX     int
	minY     int
	maxX     int
	maxY     int
}

// Trace 对每个图层的每个连通区域提取轮廓；简化后点数少于 max(3, detailThreshold) 的轮廓被丢弃。
// 面积最大的图层若没有任何轮廓保留，则以其最大区域的外接矩形代替。
func Trace(layers []vtypes.ColorLayer, width, height, detailThreshold int, order BoundaryOrder) []vtypes.LayerContours {
	minPoints := max(3, detailThreshold)
	result := make([]vtypes.LayerContours, 0, len(layers))
	labels := make([]int32, width*height)

	for li, layer := range layers {
		clear(labels)
		regions := findRegions(layer, width, height, labels)

		var contours []vtypes.Contour
		for _, r := range regions {
			points := r.boundary
			if order == BoundaryMoore {
				points = mooreBoundary(labels, width, height, r)
			}
			simplified := Simplify(points, Tolerance)
			if len(simplified) >= minPoints {
				contours = append(contours, simplified)
			}
		}

		if len(contours) == 0 && li == 0 && len(regions) > 0 {
			contours = append(contours, boundingRect(largest(regions)))
		}
		if len(contours) == 0 {
			continue
		}
		result = append(result, vtypes.LayerContours{Color: layer.Color, Contours: contours})
	}
	return result
}

// findRegions 按行优先顺序找到未访问的成员像素，从它开始广度优先泛洪
func findRegions(layer vtypes.ColorLayer, width, height int, labels []int32) []*region {
	var regions []*region
	queue := make([]int, 0, 64)

	for i := range labels {
		if labels[i] != 0 || !layer.Contains(i) {
			continue
		}
		r := &region{
			id:    int32(len(regions) + 1),
			start: i,
			minX:  width,
			minY:  height,
			maxX:  -1,
			maxY:  -1,
		}
		regions = append(regions, r)

		queue = append(queue[:0], i)
		labels[i] = r.id
		for head := 0; head < len(queue); head++ {
			p := queue[head]
			x, y := p%width, p/width
			r.pixels++
			r.minX, r.maxX = min(r.minX, x), max(r.maxX, x)
			r.minY, r.maxY = min(r.minY, y), max(r.maxY, y)

			onBoundary := x == 0 || y == 0 || x == width-1 || y == height-1
			for _, d := range neighbors4 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				n := ny*width + nx
				if !layer.Contains(n) {
					onBoundary = true
					continue
				}
				if labels[n] == 0 {
					labels[n] = r.id
					queue = append(queue, n)
				}
			}
			if onBoundary {
				r.boundary = append(r.boundary, vtypes.Point{X: float64(x), Y: float64(y)})
			}
		}
	}
	return regions
}

func largest(regions []*region) *region {
	best := regions[0]
	for _, r := range regions[1:] {
		if r.pixels > best.pixels {
			best = r
		}
	}
	return best
}

// boundingRect 与其它轮廓一样使用像素中心坐标；只有一行或一列时向两侧各扩半个像素，避免面积为零
func boundingRect(r *region) vtypes.Contour {
	x0, y0 := float64(r.minX), float64(r.minY)
	x1, y1 := float64(r.maxX), float64(r.maxY)
	if r.minX == r.maxX {
		x0, x1 = x0-0.5, x1+0.5
	}
	if r.minY == r.maxY {
		y0, y1 = y0-0.5, y1+0.5
	}
	return vtypes.Contour{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}
