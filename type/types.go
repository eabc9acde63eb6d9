package vtypes

import (
	"image"
	"image/color"
	"math"
)

// TransparentAlpha alpha 低于该值的像素视为全透明
const TransparentAlpha = 10

// PixelBuffer 行优先的 RGBA 像素缓冲（每通道 8 位）
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer 创建全透明的像素缓冲
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage 将任意 image.Image 转为 PixelBuffer（非预乘 RGBA）
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			buf.Set(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return buf
}

// Len 像素个数
func (b *PixelBuffer) Len() int {
	return b.Width * b.Height
}

func (b *PixelBuffer) At(x, y int) color.RGBA {
	return b.AtIndex(y*b.Width + x)
}

// AtIndex 按像素序号读取（非字节偏移）
func (b *PixelBuffer) AtIndex(i int) color.RGBA {
	o := i * 4
	return color.RGBA{R: b.Pix[o], G: b.Pix[o+1], B: b.Pix[o+2], A: b.Pix[o+3]}
}

func (b *PixelBuffer) Set(x, y int, c color.RGBA) {
	b.SetIndex(y*b.Width+x, c)
}

func (b *PixelBuffer) SetIndex(i int, c color.RGBA) {
	o := i * 4
	b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3] = c.R, c.G, c.B, c.A
}

// Transparent 判断第 i 个像素是否透明
func (b *PixelBuffer) Transparent(i int) bool {
	return b.Pix[i*4+3] < TransparentAlpha
}

// Clone 深拷贝
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// ColorLayer 表示某个量化颜色的分割图层
type ColorLayer struct {
	Color color.RGBA  // 图层颜色，A 为成员像素的平均 alpha
	Mask  *image.Gray // 黑白掩码图：黑=该颜色，白=其他
	Area  int         // 成员像素数
}

// Contains 第 i 个像素是否属于该图层
func (l ColorLayer) Contains(i int) bool {
	return l.Mask.Pix[i] == 0
}

// Point 像素坐标系中的浮点坐标
type Point struct {
	X, Y float64
}

// Dist 两点欧氏距离
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Contour 隐式闭合的折线
type Contour []Point

// LayerContours 单个颜色图层的全部轮廓
type LayerContours struct {
	Color    color.RGBA
	Contours []Contour
}

// PathElement 单个 <path>
type PathElement struct {
	D         string
	Fill      color.RGBA
	Opacity   float64
	Transform string
}

type Pixel struct {
	R, G, B, A int
}

// Box 表示颜色盒子
type Box struct {
	Pixels     []Pixel
	RMin, RMax int
	GMin, GMax int
	BMin, BMax int
}

// Frame 表示视频中的一帧
type Frame struct {
	Index int
	Image image.Image
}
