package model

import (
	"time"

	vtypes "img2svg/type"
)

// ConvertResult 一次转换的结果
type ConvertResult struct {
	ID         string          `json:"id"`
	MD5        string          `json:"md5"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Scale      float64         `json:"scale"`
	Preset     string          `json:"preset"`
	Settings   vtypes.Settings `json:"settings"`
	ByteLength int             `json:"byteLength"`
	SVG        string          `json:"svg,omitempty"`
	URL        string          `json:"url,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// HistoryEntry 历史记录，不含 SVG 正文
type HistoryEntry struct {
	ID         string          `json:"id"`
	MD5        string          `json:"md5"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Preset     string          `json:"preset"`
	Settings   vtypes.Settings `json:"settings"`
	ByteLength int             `json:"byteLength"`
	PathCount  int             `json:"pathCount"`
	URL        string          `json:"url,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Suggestion 参数建议
type Suggestion struct {
	Settings      vtypes.Settings `json:"settings"`
	Level         string          `json:"level"` // simple, medium, complex
	EdgeDensity   float64         `json:"edgeDensity"`
	ColorVariance float64         `json:"colorVariance"`
	Reason        string          `json:"reason"`
}

// ConvertResponse 转换响应
type ConvertResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *ConvertResult `json:"data,omitempty"`
}

// HistoryResponse 历史列表响应
type HistoryResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    []HistoryEntry `json:"data"`
}

// SuggestResponse 参数建议响应
type SuggestResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *Suggestion `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
