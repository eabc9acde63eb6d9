package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"img2svg/config"
	"img2svg/image2color"
	"img2svg/model"
	"img2svg/service"
	vtypes "img2svg/type"
	"img2svg/utils"
)

// ResultCache 按图片 md5 + 参数缓存结果
type ResultCache interface {
	GetResult(ctx context.Context, key string) (*model.ConvertResult, error)
	SetResult(ctx context.Context, key string, result *model.ConvertResult) error
}

// HistoryStore 转换历史
type HistoryStore interface {
	Insert(ctx context.Context, e model.HistoryEntry, svg string) error
	Get(ctx context.Context, id string) (*model.HistoryEntry, string, error)
	List(ctx context.Context, limit, offset int) ([]model.HistoryEntry, error)
}

// BlobStore SVG 对象存储
type BlobStore interface {
	PutSVG(ctx context.Context, id, svg string) (string, error)
}

// Deps 可选依赖为 nil 时对应功能关闭
type Deps struct {
	Convert   *service.ConvertService
	Suggester service.Suggester
	Cache     ResultCache
	History   HistoryStore
	Blobs     BlobStore
}

type Handler struct {
	cfg  *config.Config
	deps Deps
	info BuildInfo
}

func New(cfg *config.Config, deps Deps, info BuildInfo) *Handler {
	return &Handler{cfg: cfg, deps: deps, info: info}
}

// Convert 上传图片并转换为 SVG；?format=svg 时直接返回 SVG 文本
func (h *Handler) Convert(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	settings, err := h.parseSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "参数无效",
			Error:   err.Error(),
		})
		return
	}
	preset := c.DefaultPostForm("preset", h.deps.Convert.DefaultPreset())

	ctx := c.Request.Context()
	md5 := utils.BytesMD5(data)
	cacheKey := utils.CacheKey(md5, preset, settings.Key())

	if h.deps.Cache != nil {
		cached, err := h.deps.Cache.GetResult(ctx, cacheKey)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.Error(err))
		}
		if cached != nil {
			utils.Logger.Info("cache hit", zap.String("cache_key", cacheKey))
			h.respondResult(c, "处理成功（来自缓存）", cached)
			return
		}
	}

	buf, format, scale, err := image2color.DecodeFit(bytes.NewReader(data), h.cfg.Convert.ResizeTo, h.cfg.Convert.MaxDimension)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "无法解码图片",
			Error:   err.Error(),
		})
		return
	}

	utils.Logger.Info("image uploaded",
		zap.String("md5", md5),
		zap.String("format", format),
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.Float64("scale", scale),
		zap.String("preset", preset))

	res, err := h.deps.Convert.Convert(ctx, buf, settings, preset, utils.NewJobID())
	if err != nil {
		status, msg := convertStatus(err)
		utils.Logger.Error("failed to convert image", zap.String("md5", md5), zap.Error(err))
		c.JSON(status, model.ErrorResponse{Success: false, Message: msg, Error: err.Error()})
		return
	}

	result := &model.ConvertResult{
		ID:         res.JobID,
		MD5:        md5,
		Width:      res.Width,
		Height:     res.Height,
		Scale:      scale,
		Preset:     preset,
		Settings:   settings,
		ByteLength: res.ByteLength,
		SVG:        res.SVG,
		Metadata:   res.Metadata,
		Timestamp:  time.Now().Unix(),
	}

	if h.deps.Blobs != nil {
		if url, err := h.deps.Blobs.PutSVG(ctx, result.ID, result.SVG); err != nil {
			utils.Logger.Warn("failed to upload svg", zap.String("id", result.ID), zap.Error(err))
		} else {
			result.URL = url
		}
	}

	if h.deps.History != nil {
		paths, _ := res.Metadata["paths"].(int)
		entry := model.HistoryEntry{
			ID:         result.ID,
			MD5:        md5,
			Width:      result.Width,
			Height:     result.Height,
			Preset:     preset,
			Settings:   settings,
			ByteLength: result.ByteLength,
			PathCount:  paths,
			URL:        result.URL,
			CreatedAt:  time.Unix(result.Timestamp, 0),
		}
		if err := h.deps.History.Insert(ctx, entry, result.SVG); err != nil {
			utils.Logger.Warn("failed to save history", zap.String("id", result.ID), zap.Error(err))
		}
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.SetResult(ctx, cacheKey, result); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	h.respondResult(c, "处理成功", result)
}

// Suggest 根据上传图片给出参数建议
func (h *Handler) Suggest(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	current, err := h.parseSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "参数无效", Error: err.Error()})
		return
	}
	buf, _, _, err := image2color.DecodeFit(bytes.NewReader(data), h.cfg.Convert.ResizeTo, h.cfg.Convert.MaxDimension)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "无法解码图片", Error: err.Error()})
		return
	}

	suggestion, err := h.deps.Suggester.Suggest(c.Request.Context(), buf, current)
	if err != nil {
		utils.Logger.Error("failed to suggest settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: "分析失败", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.SuggestResponse{Success: true, Message: "分析成功", Data: suggestion})
}

func (h *Handler) respondResult(c *gin.Context, msg string, result *model.ConvertResult) {
	if c.Query("format") == "svg" {
		c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(result.SVG))
		return
	}
	c.JSON(http.StatusOK, model.ConvertResponse{Success: true, Message: msg, Data: result})
}

// readUpload 读取 image 字段并校验大小与类型，失败时已写出响应
func (h *Handler) readUpload(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请上传图片文件",
			Error:   err.Error(),
		})
		return nil, false
	}

	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return nil, false
	}

	if !h.isAllowedType(file.Header.Get("Content-Type")) {
		c.JSON(http.StatusUnsupportedMediaType, model.ErrorResponse{
			Success: false,
			Message: "不支持的文件类型",
		})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: "读取文件失败", Error: err.Error()})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: "读取文件失败", Error: err.Error()})
		return nil, false
	}
	return data, true
}

// parseSettings 表单中缺省的字段取配置的默认值；不做截断，越界即报错
func (h *Handler) parseSettings(c *gin.Context) (vtypes.Settings, error) {
	s := h.cfg.Defaults
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"complexity", &s.Complexity},
		{"colorSimplification", &s.ColorSimplification},
		{"pathSmoothing", &s.PathSmoothing},
	} {
		raw, ok := c.GetPostForm(f.name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return s, fmt.Errorf("%w: %s=%q", vtypes.ErrInvalidInput, f.name, raw)
		}
		*f.dst = v
	}
	return s, s.Validate()
}

func (h *Handler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func convertStatus(err error) (int, string) {
	switch {
	case errors.Is(err, vtypes.ErrInvalidInput):
		return http.StatusBadRequest, "输入无效"
	case errors.Is(err, vtypes.ErrEmptyResult):
		return http.StatusUnprocessableEntity, "未生成任何路径"
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusServiceUnavailable, "处理队列已满，请稍后重试"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "请求已取消"
	default:
		return http.StatusInternalServerError, "图片处理失败"
	}
}
