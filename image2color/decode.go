package image2color

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	vtypes "img2svg/type"
)

// Decode 解码 PNG/JPEG/GIF/WebP/BMP 字节为 PixelBuffer，返回格式名。
// maxDimension > 0 时先读取头部尺寸，超限直接返回 ErrInvalidInput，不做完整解码。
func Decode(r io.Reader, maxDimension int) (*vtypes.PixelBuffer, string, error) {
	img, format, err := decodeBounded(r, maxDimension)
	if err != nil {
		return nil, "", err
	}
	return vtypes.FromImage(img), format, nil
}

// DecodeFit 解码后先缩放到 maxSize 以内再转为 PixelBuffer
func DecodeFit(r io.Reader, maxSize, maxDimension int) (*vtypes.PixelBuffer, string, float64, error) {
	img, format, err := decodeBounded(r, maxDimension)
	if err != nil {
		return nil, "", 0, err
	}
	scaled, scale := Fit(img, maxSize)
	return vtypes.FromImage(scaled), format, scale, nil
}

func decodeBounded(r io.Reader, maxDimension int) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: dimensions %dx%d", vtypes.ErrInvalidInput, cfg.Width, cfg.Height)
	}
	if maxDimension > 0 && (cfg.Width > maxDimension || cfg.Height > maxDimension) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d", vtypes.ErrInvalidInput, cfg.Width, cfg.Height, maxDimension)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Fit 等比缩放使最长边不超过 maxSize，返回缩放后的图像和比例
func Fit(img image.Image, maxSize int) (image.Image, float64) {
	bounds := img.Bounds()
	maxDim := max(bounds.Dx(), bounds.Dy())
	if maxSize <= 0 || maxDim <= maxSize {
		return img, 1.0
	}

	scale := float64(maxSize) / float64(maxDim)
	newWidth := max(1, int(float64(bounds.Dx())*scale))
	newHeight := max(1, int(float64(bounds.Dy())*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst, scale
}

// ExtractFrames 用 ffmpeg 按 fps 抽帧并缩放到 maxWidth，逐帧解码 PNG 流
func ExtractFrames(ctx context.Context, videoPath string, fps, maxWidth int) ([]vtypes.Frame, error) {
	if fps <= 0 {
		fps = 1
	}

	r, w := io.Pipe()
	var stderr bytes.Buffer

	cmd := ffmpeg.Input(videoPath).
		Output("pipe:1", ffmpeg.KwArgs{
			"format": "image2pipe",
			"vcodec": "png",
			"r":      strconv.Itoa(fps),
			"vf":     fmt.Sprintf("scale=%d:-1", maxWidth),
		}).
		WithOutput(w).
		WithErrorOutput(&stderr)
	cmd.Context = ctx

	go func() {
		err := cmd.Run()
		if err != nil {
			err = fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
		}
		_ = w.CloseWithError(err)
	}()

	var frames []vtypes.Frame
	reader := bufio.NewReader(r)
	index := 0

	for {
		if _, err := reader.Peek(1); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(reader)
		if err != nil {
			_ = r.CloseWithError(err)
			return nil, fmt.Errorf("decode frame %d failed: %w", index, err)
		}
		frames = append(frames, vtypes.Frame{Index: index, Image: img})
		index++
	}

	if len(frames) == 0 {
		return nil, errors.New("no frames extracted")
	}

	return frames, nil
}
