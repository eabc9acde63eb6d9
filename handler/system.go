package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BuildInfo 由 main 通过 -ldflags 注入
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
	GitBranch string
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.info.Version,
		"cache":   h.deps.Cache != nil,
		"history": h.deps.History != nil,
		"blobs":   h.deps.Blobs != nil,
	})
}

func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    h.info.Version,
		"build_time": h.info.BuildTime,
		"git_commit": h.info.GitCommit,
		"git_branch": h.info.GitBranch,
	})
}
