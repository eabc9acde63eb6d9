package image2color

import (
	"fmt"
	"image"
	"sort"

	vtypes "img2svg/type"
)

// MaxLayers 默认图层数上限，与量化的最大目标颜色数一致
const MaxLayers = 256

// ExtractLayers 将量化后的缓冲拆分为颜色图层，按面积降序（即绘制顺序）。
// 不同颜色数超过 maxLayers 时在分配任何掩码之前返回 ErrInvalidInput；maxLayers <= 0 不限制。
func ExtractLayers(buf *vtypes.PixelBuffer, maxLayers int) ([]vtypes.ColorLayer, error) {
	// 先只建索引，每个像素记下所属图层
	index := make(map[uint32]int)
	var colors []uint32
	owner := make([]int32, buf.Len())
	for i := 0; i < buf.Len(); i++ {
		if buf.Transparent(i) {
			owner[i] = -1
			continue
		}
		key := rgbKey(buf.AtIndex(i))
		li, ok := index[key]
		if !ok {
			li = len(colors)
			if maxLayers > 0 && li >= maxLayers {
				return nil, fmt.Errorf("%w: more than %d distinct colors", vtypes.ErrInvalidInput, maxLayers)
			}
			index[key] = li
			colors = append(colors, key)
		}
		owner[i] = int32(li)
	}

	bounds := image.Rect(0, 0, buf.Width, buf.Height)
	layers := make([]vtypes.ColorLayer, len(colors))
	for i := range layers {
		layers[i].Mask = whiteMask(bounds)
	}
	for i, li := range owner {
		if li < 0 {
			continue
		}
		l := &layers[li]
		if l.Area == 0 {
			l.Color = buf.AtIndex(i)
		}
		// 在目标图层上标记黑色
		l.Mask.Pix[i] = 0
		l.Area++
	}

	// 面积相同时保留首次出现的顺序
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].Area > layers[j].Area
	})
	return layers, nil
}

// 默认白色背景
func whiteMask(bounds image.Rectangle) *image.Gray {
	mask := image.NewGray(bounds)
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	return mask
}
