package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes 注册全部路由
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/version", h.Version)

	api := r.Group("/api/v1")
	{
		api.POST("/convert", h.Convert)
		api.GET("/result/:id", h.Result)
		api.GET("/history", h.History)
		api.POST("/suggest", h.Suggest)
	}
}
