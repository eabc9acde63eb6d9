package vtypes

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput 尺寸为零、缓冲长度不符、超出尺寸上限或参数越界
	ErrInvalidInput = errors.New("invalid input")
	// ErrStageOrdering 阶段缺少前置阶段的输出
	ErrStageOrdering = errors.New("stage ordering")
	// ErrEmptyResult 没有任何非透明图层或轮廓
	ErrEmptyResult = errors.New("empty result")
)

// StageError 携带失败阶段名
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Missing 构造缺少前置结果的错误
func Missing(stage, what string) error {
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %s not computed", ErrStageOrdering, what)}
}
