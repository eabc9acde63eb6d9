package utils

import "github.com/google/uuid"

// NewJobID 生成任务 ID
func NewJobID() string {
	return uuid.NewString()
}
