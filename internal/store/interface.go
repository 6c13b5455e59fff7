package store

import (
	"context"
	"time"

	"marketpull/internal/market"
)

// TableSink 是表输出目标，CSV 写入器实现它。
type TableSink interface {
	Write(ctx context.Context, name string, t *market.Table) error
}

// Run 描述一次完整拉取，交给归档存储。
type Run struct {
	RunID      string
	Symbol     string
	Interval   string
	Period     string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
	Warnings   []string
	Tables     map[string]*market.Table
}

// RunArchive persists finished runs.
type RunArchive interface {
	SaveRun(ctx context.Context, run Run) error
	Close() error
}
