package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"img2svg/config"
	"img2svg/handler"
	"img2svg/middleware"
	"img2svg/service"
	"img2svg/utils"
)

// runServer 启动 HTTP 服务，ctx 结束时优雅退出
func runServer(ctx context.Context, cfg *config.Config) error {
	utils.Logger.Info("starting img2svg server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	convertService, err := service.NewConvertService(&cfg.Convert)
	if err != nil {
		return err
	}
	deps := handler.Deps{
		Convert:   convertService,
		Suggester: service.NewHeuristicSuggester(),
	}

	// 初始化Redis
	if cfg.Redis.Enabled {
		redisService := service.NewRedisService(&cfg.Redis)
		if err := redisService.Ping(ctx); err != nil {
			utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
			_ = redisService.Close()
		} else {
			utils.Logger.Info("redis connected successfully")
			deps.Cache = redisService
			defer redisService.Close()
		}
	}

	if cfg.Storage.SQLitePath != "" {
		history, err := service.OpenHistory(cfg.Storage.SQLitePath)
		if err != nil {
			utils.Logger.Warn("history store unavailable", zap.Error(err))
		} else {
			deps.History = history
			defer history.Close()
		}
	}

	blobs, err := service.NewS3Store(&cfg.Storage)
	if err != nil {
		utils.Logger.Warn("s3 store unavailable", zap.Error(err))
	} else if blobs != nil {
		deps.Blobs = blobs
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.MaxMultipartMemory = cfg.Upload.MaxSize

	handler.New(cfg, deps, handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
	}).Routes(r)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	utils.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
