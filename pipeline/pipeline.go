package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"img2svg/color2contour"
	"img2svg/image2color"
	vtypes "img2svg/type"
)

// DefaultMaxDimension 单边像素上限
const DefaultMaxDimension = 10000

// ProgressFunc 在每个阶段边界调用：开始前 (首阶段, 0, total)，每个阶段完成后 (阶段名, 已完成数, total)
type ProgressFunc func(stage string, completed, total int)

// Options 单次运行的可选参数
type Options struct {
	JobID         string
	Progress      ProgressFunc
	Logger        *zap.Logger
	MaxDimension  int
	RejectEmpty   bool
	BoundaryOrder color2contour.BoundaryOrder
	// MaxLayers 图层数上限，0 使用 image2color.MaxLayers，负数不限制
	MaxLayers     int
}

// Preset 具名的阶段序列
type Preset struct {
	Name   string
	Stages []Stage
}

const (
	PresetDefault = "default"
	PresetMinimal = "minimal"
	PresetPotrace = "potrace"
)

// Default 量化 → 图层 → 轮廓 → 平滑 → SVG
func Default(order color2contour.BoundaryOrder) Preset {
	return Preset{Name: PresetDefault, Stages: []Stage{
		Quantize(), ExtractLayers(), TraceContours(order), SmoothContours(), GenerateSVG(),
	}}
}

// Minimal 跳过量化与平滑，直接按原始颜色分层
func Minimal(order color2contour.BoundaryOrder) Preset {
	return Preset{Name: PresetMinimal, Stages: []Stage{
		ExtractLayers(), TraceContours(order), GenerateSVG(),
	}}
}

// Potrace 以 gotrace 替代轮廓、平滑和路径生成
func Potrace() Preset {
	return Preset{Name: PresetPotrace, Stages: []Stage{
		Quantize(), ExtractLayers(), TracePotrace(), GenerateSVG(),
	}}
}

// PresetByName 配置/命令行中的名字到预设
func PresetByName(name string, order color2contour.BoundaryOrder) (Preset, error) {
	switch name {
	case "", PresetDefault:
		return Default(order), nil
	case PresetMinimal:
		return Minimal(order), nil
	case PresetPotrace:
		return Potrace(), nil
	default:
		return Preset{}, fmt.Errorf("%w: unknown preset %q", vtypes.ErrInvalidInput, name)
	}
}

// ValidateBuffer 检查尺寸与缓冲长度
func ValidateBuffer(buf *vtypes.PixelBuffer, maxDimension int) error {
	if buf == nil {
		return fmt.Errorf("%w: nil pixel buffer", vtypes.ErrInvalidInput)
	}
	if buf.Width <= 0 || buf.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", vtypes.ErrInvalidInput, buf.Width, buf.Height)
	}
	if maxDimension > 0 && (buf.Width > maxDimension || buf.Height > maxDimension) {
		return fmt.Errorf("%w: %dx%d exceeds %d", vtypes.ErrInvalidInput, buf.Width, buf.Height, maxDimension)
	}
	if len(buf.Pix) != buf.Width*buf.Height*4 {
		return fmt.Errorf("%w: pixel data has %d bytes, want %d", vtypes.ErrInvalidInput, len(buf.Pix), buf.Width*buf.Height*4)
	}
	return nil
}

// Run 按顺序执行预设的阶段。阶段之间检查 ctx；任何失败都不返回部分结果。
func Run(ctx context.Context, preset Preset, buf *vtypes.PixelBuffer, settings vtypes.Settings, opts Options) (*Result, error) {
	maxDim := opts.MaxDimension
	if maxDim == 0 {
		maxDim = DefaultMaxDimension
	}
	if err := ValidateBuffer(buf, maxDim); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(preset.Stages) == 0 {
		return nil, fmt.Errorf("%w: preset %q has no stages", vtypes.ErrInvalidInput, preset.Name)
	}

	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string, int, int) {}
	}

	maxLayers := opts.MaxLayers
	if maxLayers == 0 {
		maxLayers = image2color.MaxLayers
	}

	c := Context{
		JobID:     jobID,
		Image:     buf,
		Settings:  settings,
		Width:     buf.Width,
		Height:    buf.Height,
		MaxLayers: maxLayers,
		Metadata:  map[string]any{"preset": preset.Name},
	}

	total := len(preset.Stages)
	progress(preset.Stages[0].Name, 0, total)
	for i, stage := range preset.Stages {
		if err := ctx.Err(); err != nil {
			logger.Info("conversion cancelled",
				zap.String("job", jobID),
				zap.String("before_stage", stage.Name))
			return nil, err
		}

		start := time.Now()
		next, err := stage.Run(c)
		if err != nil {
			logger.Warn("stage failed",
				zap.String("job", jobID),
				zap.String("stage", stage.Name),
				zap.Error(err))
			return nil, err
		}
		c = next

		logger.Debug("stage done",
			zap.String("job", jobID),
			zap.String("stage", stage.Name),
			zap.Duration("cost", time.Since(start)))
		progress(stage.Name, i+1, total)
	}

	if c.SVG == "" {
		return nil, vtypes.Missing(preset.Name, "svg document")
	}
	if opts.RejectEmpty && len(c.Paths) == 0 {
		return nil, fmt.Errorf("%w: no paths for %dx%d image", vtypes.ErrEmptyResult, c.Width, c.Height)
	}

	return &Result{
		JobID:      jobID,
		SVG:        c.SVG,
		ByteLength: c.ByteLength,
		Width:      c.Width,
		Height:     c.Height,
		Metadata:   c.Metadata,
	}, nil
}
