package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"img2svg/model"
	"img2svg/service"
	"img2svg/utils"
)

// Result 按 ID 查询历史结果
func (h *Handler) Result(c *gin.Context) {
	if h.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Success: false, Message: "历史记录未启用"})
		return
	}
	id := c.Param("id")

	entry, svg, err := h.deps.History.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Success: false, Message: "未找到该结果"})
		return
	}
	if err != nil {
		utils.Logger.Error("failed to get result", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: "查询失败", Error: err.Error()})
		return
	}

	h.respondResult(c, "查询成功", &model.ConvertResult{
		ID:         entry.ID,
		MD5:        entry.MD5,
		Width:      entry.Width,
		Height:     entry.Height,
		Scale:      1,
		Preset:     entry.Preset,
		Settings:   entry.Settings,
		ByteLength: entry.ByteLength,
		SVG:        svg,
		URL:        entry.URL,
		Timestamp:  entry.CreatedAt.Unix(),
	})
}

// History 分页列出历史，?limit=&offset=
func (h *Handler) History(c *gin.Context) {
	if h.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Success: false, Message: "历史记录未启用"})
		return
	}
	limit, err1 := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, err2 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err := errors.Join(err1, err2); err != nil || limit <= 0 || limit > 100 || offset < 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "分页参数无效"})
		return
	}

	entries, err := h.deps.History.List(c.Request.Context(), limit, offset)
	if err != nil {
		utils.Logger.Error("failed to list history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: "查询失败", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.HistoryResponse{Success: true, Message: "查询成功", Data: entries})
}
