package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"img2svg/color2contour"
	"img2svg/config"
	"img2svg/image2color"
	"img2svg/pipeline"
	vtypes "img2svg/type"
	"img2svg/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	input := flag.String("input", "", "输入图片路径")
	output := flag.String("output", "", "输出 SVG 路径，为空时写到标准输出")
	complexity := flag.Float64("complexity", -1, "细节程度 0~1，负数表示使用配置")
	colors := flag.Float64("colors", -1, "颜色简化程度 0~1，负数表示使用配置")
	smoothing := flag.Float64("smoothing", -1, "路径平滑程度 0~1，负数表示使用配置")
	preset := flag.String("preset", "", "default / minimal / potrace，为空时使用配置")
	serve := flag.Bool("serve", false, "启动 HTTP 服务")

	videoPath := flag.String("video", "", "视频文件路径，转换为 BAS 弹幕")
	fps := flag.Int("fps", 10, "每秒帧数")
	maxWidth := flag.Int("width", 96, "视频帧最大宽度")
	basPath := flag.String("bas", "output/video", "BAS 输出文件前缀")
	jsonPath := flag.String("json", "", "可选，同时输出逐帧 path 数据 JSON")
	maxFileSize := flag.Int("maxsize", 2*1024*1024, "单个输出文件最大尺寸，单位字节")
	parallel := flag.Int("parallel", 4, "并行处理的最大协程数")

	help := flag.Bool("help", false, "显示帮助信息")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}

	cfg := config.New(*configPath)
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	settings := overrideSettings(cfg.Defaults, *complexity, *colors, *smoothing)
	if *preset == "" {
		*preset = cfg.Convert.Preset
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *serve:
		err = runServer(ctx, cfg)
	case *videoPath != "":
		err = generateBasToFile(ctx, cfg, videoOptions{
			path:        *videoPath,
			fps:         *fps,
			maxWidth:    *maxWidth,
			parallel:    *parallel,
			maxFileSize: *maxFileSize,
			output:      *basPath,
			jsonOutput:  *jsonPath,
			preset:      *preset,
			settings:    settings,
		})
	case *input != "":
		err = convertFile(ctx, cfg, *input, *output, *preset, settings)
	default:
		flag.Usage()
		return
	}

	if err != nil {
		utils.Logger.Error("failed", zap.Error(err))
		utils.Sync()
		os.Exit(1)
	}
}

// overrideSettings 命令行中非负的参数覆盖配置
func overrideSettings(s vtypes.Settings, complexity, colors, smoothing float64) vtypes.Settings {
	if complexity >= 0 {
		s.Complexity = complexity
	}
	if colors >= 0 {
		s.ColorSimplification = colors
	}
	if smoothing >= 0 {
		s.PathSmoothing = smoothing
	}
	return s
}

// convertFile 单张图片转换，逐阶段输出进度
func convertFile(ctx context.Context, cfg *config.Config, input, output, presetName string, settings vtypes.Settings) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, format, err := image2color.Decode(f, cfg.Convert.MaxDimension)
	if err != nil {
		return err
	}

	preset, err := pipeline.PresetByName(presetName, color2contour.ParseBoundaryOrder(cfg.Convert.BoundaryOrder))
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := pipeline.Run(ctx, preset, buf, settings, pipeline.Options{
		JobID:        utils.NewJobID(),
		Logger:       utils.Logger,
		MaxDimension: cfg.Convert.MaxDimension,
		RejectEmpty:  cfg.Convert.RejectEmpty,
		Progress: func(stage string, completed, total int) {
			utils.Logger.Info("progress",
				zap.String("stage", stage),
				zap.Int("completed", completed),
				zap.Int("total", total))
		},
	})
	if err != nil {
		return err
	}

	utils.Logger.Info("converted",
		zap.String("input", input),
		zap.String("format", format),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("bytes", res.ByteLength),
		zap.Any("metadata", res.Metadata),
		zap.Duration("cost", time.Since(start)))

	if output == "" {
		_, err = os.Stdout.WriteString(res.SVG)
		return err
	}
	return os.WriteFile(output, []byte(res.SVG), 0o644)
}
