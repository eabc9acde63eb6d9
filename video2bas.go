package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"img2svg/config"
	"img2svg/image2color"
	"img2svg/json2bas"
	"img2svg/service"
	"img2svg/svg2json"
	vtypes "img2svg/type"
	"img2svg/utils"
)

type videoOptions struct {
	path        string
	fps         int
	maxWidth    int
	parallel    int
	maxFileSize int
	output      string
	jsonOutput  string
	preset      string
	settings    vtypes.Settings
}

func generateBasToFile(ctx context.Context, cfg *config.Config, opts videoOptions) error {
	basLines, err := generateBas(ctx, cfg, opts)
	if err != nil {
		return err
	}
	files, err := writeSplitFiles(basLines, opts.output, opts.maxFileSize)
	if err != nil {
		return err
	}
	utils.Logger.Info("bas written", zap.Strings("files", files))
	return nil
}

// writeSplitFiles 按行写入 prefix_N.bas，单个文件不超过 maxFileSize（单行超限时独占一个文件）
func writeSplitFiles(lines []string, prefix string, maxFileSize int) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(prefix), 0o755); err != nil {
		return nil, err
	}

	var (
		files           []string
		currentFile     *os.File
		currentFileSize int
	)
	closeCurrent := func() error {
		if currentFile == nil {
			return nil
		}
		err := currentFile.Close()
		currentFile = nil
		return err
	}

	for _, line := range lines {
		lineSize := len(line) + 1 // +1 for newline
		if currentFile == nil || currentFileSize+lineSize > maxFileSize {
			if err := closeCurrent(); err != nil {
				return files, err
			}
			name := prefix + "_" + strconv.Itoa(len(files)) + ".bas"
			f, err := os.Create(name)
			if err != nil {
				return files, err
			}
			currentFile = f
			files = append(files, name)
			currentFileSize = 0
		}
		if _, err := currentFile.WriteString(line + "\n"); err != nil {
			_ = closeCurrent()
			return files, err
		}
		currentFileSize += lineSize
	}
	return files, closeCurrent()
}

func generateBas(ctx context.Context, cfg *config.Config, opts videoOptions) ([]string, error) {
	utils.Logger.Info("extracting frames from video", zap.String("path", opts.path))
	frames, err := image2color.ExtractFrames(ctx, opts.path, opts.fps, opts.maxWidth)
	if err != nil {
		return nil, fmt.Errorf("extract frames: %w", err)
	}
	utils.Logger.Info("frames extracted", zap.Int("count", len(frames)))

	convertCfg := cfg.Convert
	convertCfg.MaxConcurrent = opts.parallel
	convertService, err := service.NewConvertService(&convertCfg)
	if err != nil {
		return nil, err
	}
	svgs, err := convertService.ConvertFrames(ctx, frames, opts.settings, opts.preset)
	if err != nil {
		return nil, fmt.Errorf("convert frames: %w", err)
	}

	docs, err := svg2json.ParseAllFrames(svgs, opts.parallel)
	if err != nil {
		return nil, err
	}
	if opts.jsonOutput != "" {
		data, err := svg2json.MarshalFrames(docs)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.jsonOutput, data, 0o644); err != nil {
			return nil, err
		}
	}

	utils.Logger.Info("generating BAS code")
	basOpts := json2bas.DefaultOptions()
	basOpts.Framerate = float64(opts.fps)
	basOpts.Parallel = opts.parallel
	return json2bas.GenerateAllBasText(docs, basOpts)
}
