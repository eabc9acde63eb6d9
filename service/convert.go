package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"img2svg/color2contour"
	"img2svg/config"
	"img2svg/pipeline"
	vtypes "img2svg/type"
	"img2svg/utils"
)

// ErrQueueFull 等待超过 queue_timeout 仍未拿到处理槽位
var ErrQueueFull = errors.New("conversion queue is full")

// ConvertService 限制并发的转换入口
type ConvertService struct {
	semaphore    chan struct{}
	queueTimeout time.Duration
	maxDimension int
	rejectEmpty  bool
	order        color2contour.BoundaryOrder
	preset       string
}

func NewConvertService(cfg *config.ConvertConfig) (*ConvertService, error) {
	order := color2contour.ParseBoundaryOrder(cfg.BoundaryOrder)
	if _, err := pipeline.PresetByName(cfg.Preset, order); err != nil {
		return nil, err
	}
	return &ConvertService{
		semaphore:    make(chan struct{}, max(1, cfg.MaxConcurrent)),
		queueTimeout: time.Duration(cfg.QueueTimeout) * time.Second,
		maxDimension: cfg.MaxDimension,
		rejectEmpty:  cfg.RejectEmpty,
		order:        order,
		preset:       cfg.Preset,
	}, nil
}

// DefaultPreset 未指定预设时使用的名字
func (s *ConvertService) DefaultPreset() string {
	if s.preset == "" {
		return pipeline.PresetDefault
	}
	return s.preset
}

// acquire timeout 为 0 时只受 ctx 约束
func (s *ConvertService) acquire(ctx context.Context, timeout time.Duration) (func(), error) {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case s.semaphore <- struct{}{}:
		return func() { <-s.semaphore }, nil
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrQueueFull
	}
}

// Convert 排队后运行一次流水线
func (s *ConvertService) Convert(ctx context.Context, buf *vtypes.PixelBuffer, settings vtypes.Settings, presetName, jobID string) (*pipeline.Result, error) {
	if presetName == "" {
		presetName = s.DefaultPreset()
	}
	preset, err := pipeline.PresetByName(presetName, s.order)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, s.queueTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.run(ctx, preset, buf, settings, jobID)
}

func (s *ConvertService) run(ctx context.Context, preset pipeline.Preset, buf *vtypes.PixelBuffer, settings vtypes.Settings, jobID string) (*pipeline.Result, error) {
	if jobID == "" {
		jobID = utils.NewJobID()
	}
	start := time.Now()
	res, err := pipeline.Run(ctx, preset, buf, settings, pipeline.Options{
		JobID:        jobID,
		Logger:       utils.Logger,
		MaxDimension: s.maxDimension,
		RejectEmpty:  s.rejectEmpty,
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("conversion finished",
		zap.String("job", jobID),
		zap.String("preset", preset.Name),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("bytes", res.ByteLength),
		zap.Duration("cost", time.Since(start)))
	return res, nil
}

// ConvertFrames 视频模式：逐帧转换，共享并发槽位，不受排队超时限制；结果与帧顺序一致
func (s *ConvertService) ConvertFrames(ctx context.Context, frames []vtypes.Frame, settings vtypes.Settings, presetName string) ([]string, error) {
	if presetName == "" {
		presetName = s.DefaultPreset()
	}
	preset, err := pipeline.PresetByName(presetName, s.order)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	docs := make([]string, len(frames))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i, f := range frames {
		wg.Add(1)
		go func(idx int, frame vtypes.Frame) {
			defer wg.Done()
			release, err := s.acquire(ctx, 0)
			if err == nil {
				defer release()
				var res *pipeline.Result
				res, err = s.run(ctx, preset, vtypes.FromImage(frame.Image), settings, fmt.Sprintf("frame-%d", frame.Index))
				if err == nil {
					docs[idx] = res.SVG
					return
				}
			}
			once.Do(func() {
				firstErr = fmt.Errorf("frame %d: %w", frame.Index, err)
				cancel()
			})
		}(i, f)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}
