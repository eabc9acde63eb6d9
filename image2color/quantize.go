package image2color

import (
	"image/color"
	"slices"
	"sort"

	vtypes "img2svg/type"
)

var (
	// Placeholder 全透明图像的退化调色板
	Placeholder = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	// transparentWhite 透明像素统一替换为白色且 alpha=0，不参与任何图层
	transparentWhite = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// Quantize 中位切分量化：生成调色板并把每个像素映射到最近的调色板颜色
func Quantize(buf *vtypes.PixelBuffer, colorCount int) (*vtypes.PixelBuffer, []color.RGBA) {
	palette := medianCutQuantize(buf, colorCount)
	return remap(buf, palette), palette
}

// 计算盒子范围
func calculateBoxRange(box *vtypes.Box) {
	if len(box.Pixels) == 0 {
		return
	}

	box.RMin, box.RMax = 255, 0
	box.GMin, box.GMax = 255, 0
	box.BMin, box.BMax = 255, 0

	for _, p := range box.Pixels {
		box.RMin, box.RMax = min(box.RMin, p.R), max(box.RMax, p.R)
		box.GMin, box.GMax = min(box.GMin, p.G), max(box.GMax, p.G)
		box.BMin, box.BMax = min(box.BMin, p.B), max(box.BMax, p.B)
	}
}

// widestChannel 返回范围最大的通道（0=R 1=G 2=B）及其范围，平局时 R>G>B
func widestChannel(box *vtypes.Box) (int, int) {
	rRange := box.RMax - box.RMin
	gRange := box.GMax - box.GMin
	bRange := box.BMax - box.BMin
	switch {
	case rRange >= gRange && rRange >= bRange:
		return 0, rRange
	case gRange >= bRange:
		return 1, gRange
	default:
		return 2, bRange
	}
}

func channelOf(p vtypes.Pixel, ch int) int {
	switch ch {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}

// medianCutQuantize 执行中位切分颜色量化
func medianCutQuantize(buf *vtypes.PixelBuffer, colorCount int) []color.RGBA {
	// 收集所有非透明像素
	pixels := make([]vtypes.Pixel, 0, buf.Len())
	for i := 0; i < buf.Len(); i++ {
		if buf.Transparent(i) {
			continue
		}
		c := buf.AtIndex(i)
		pixels = append(pixels, vtypes.Pixel{R: int(c.R), G: int(c.G), B: int(c.B), A: int(c.A)})
	}
	if len(pixels) == 0 {
		return []color.RGBA{Placeholder}
	}

	initialBox := &vtypes.Box{Pixels: pixels}
	calculateBoxRange(initialBox)
	boxes := []*vtypes.Box{initialBox}

	// 不断分割范围最大的盒子，直到数量足够或无法再分
	for len(boxes) < colorCount {
		splitIdx, maxRange := -1, 0
		for i, box := range boxes {
			if _, r := widestChannel(box); r > maxRange {
				maxRange = r
				splitIdx = i
			}
		}
		if splitIdx < 0 {
			break
		}

		box := boxes[splitIdx]
		ch, _ := widestChannel(box)
		sort.SliceStable(box.Pixels, func(i, j int) bool {
			return channelOf(box.Pixels[i], ch) < channelOf(box.Pixels[j], ch)
		})

		// 分成两半；范围 > 0 时两半都非空
		medianIndex := len(box.Pixels) / 2
		box1 := &vtypes.Box{Pixels: box.Pixels[:medianIndex]}
		box2 := &vtypes.Box{Pixels: box.Pixels[medianIndex:]}
		calculateBoxRange(box1)
		calculateBoxRange(box2)

		boxes = slices.Replace(boxes, splitIdx, splitIdx+1, box1, box2)
	}

	// 计算每个盒子的平均颜色
	result := make([]color.RGBA, 0, len(boxes))
	for _, box := range boxes {
		var rSum, gSum, bSum, aSum int
		for _, p := range box.Pixels {
			rSum += p.R
			gSum += p.G
			bSum += p.B
			aSum += p.A
		}
		count := len(box.Pixels)
		result = append(result, color.RGBA{
			R: uint8((rSum + count/2) / count),
			G: uint8((gSum + count/2) / count),
			B: uint8((bSum + count/2) / count),
			A: uint8((aSum + count/2) / count),
		})
	}
	return result
}

// nearest 按平方欧氏 RGB 距离找最近颜色，平局取先插入者
func nearest(palette []color.RGBA, c color.RGBA) int {
	bestIdx := 0
	bestDist := -1
	for i, p := range palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	return bestIdx
}

func remap(buf *vtypes.PixelBuffer, palette []color.RGBA) *vtypes.PixelBuffer {
	out := vtypes.NewPixelBuffer(buf.Width, buf.Height)
	cache := make(map[uint32]int)
	for i := 0; i < buf.Len(); i++ {
		if buf.Transparent(i) {
			out.SetIndex(i, transparentWhite)
			continue
		}
		c := buf.AtIndex(i)
		key := rgbKey(c)
		idx, ok := cache[key]
		if !ok {
			idx = nearest(palette, c)
			cache[key] = idx
		}
		out.SetIndex(i, palette[idx])
	}
	return out
}

func rgbKey(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
