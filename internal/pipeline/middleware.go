package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Middleware 是一次拉取中的一个步骤：抓取一个端点、计算指标或写出结果。
type Middleware interface {
	Meta() MiddlewareMeta
	Handle(ctx context.Context, pc *PullContext) error
}

// MiddlewareMeta 描述步骤的调度属性。同一 Stage 的步骤并发执行，
// Dataset 为该步骤产出或负责的数据集，可为空。
type MiddlewareMeta struct {
	Name     string
	Stage    int
	Critical bool
	Timeout  time.Duration
	Dataset  string
}

// MiddlewareError 记录失败的步骤；Critical 为 true 时整次拉取中止且不写出任何文件。
type MiddlewareError struct {
	Middleware string
	Dataset    string
	Stage      int
	Critical   bool
	Elapsed    time.Duration
	Err        error
}

func newMiddlewareError(meta MiddlewareMeta, elapsed time.Duration, err error) *MiddlewareError {
	return &MiddlewareError{
		Middleware: meta.Name,
		Dataset:    meta.Dataset,
		Stage:      meta.Stage,
		Critical:   meta.Critical,
		Elapsed:    elapsed,
		Err:        err,
	}
}

func (e *MiddlewareError) Error() string {
	if e == nil {
		return ""
	}
	name := e.Middleware
	if e.Dataset != "" {
		name = fmt.Sprintf("%s(%s)", e.Middleware, e.Dataset)
	}
	if e.Err == nil {
		return name
	}
	return name + ": " + e.Err.Error()
}

func (e *MiddlewareError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
