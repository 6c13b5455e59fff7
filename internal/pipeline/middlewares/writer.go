package middlewares

import (
	"context"
	"fmt"
	"time"

	"marketpull/internal/logger"
	"marketpull/internal/pipeline"
	"marketpull/internal/store"
)

type TableWriterConfig struct {
	Name     string
	Stage    int
	Critical bool
	Timeout  time.Duration
	// Datasets 为空时写出全部四个数据集。
	Datasets []string
}

// TableWriter 把 PullContext 中的数据集按固定顺序写到 sink。
// 任一数据集缺失都视为失败，不做部分写出。
type TableWriter struct {
	meta     pipeline.MiddlewareMeta
	sink     store.TableSink
	datasets []string
}

func NewTableWriter(cfg TableWriterConfig, sink store.TableSink) *TableWriter {
	datasets := cfg.Datasets
	if len(datasets) == 0 {
		datasets = pipeline.Datasets
	}
	return &TableWriter{
		meta: pipeline.MiddlewareMeta{
			Name:     nameOrDefault(cfg.Name, "write_csv"),
			Stage:    cfg.Stage,
			Critical: cfg.Critical,
			Timeout:  cfg.Timeout,
		},
		sink:     sink,
		datasets: append([]string(nil), datasets...),
	}
}

func (w *TableWriter) Meta() pipeline.MiddlewareMeta { return w.meta }

func (w *TableWriter) Handle(ctx context.Context, pc *pipeline.PullContext) error {
	if w.sink == nil {
		return fmt.Errorf("table sink unavailable")
	}
	if pc == nil {
		return fmt.Errorf("nil pull context")
	}
	tables := pc.Tables()
	for _, ds := range w.datasets {
		if _, ok := tables[ds]; !ok {
			return fmt.Errorf("dataset %s missing", ds)
		}
	}
	for _, ds := range w.datasets {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := tables[ds]
		name := pipeline.FileName(ds)
		if err := w.sink.Write(ctx, name, t); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logger.Infof("[pipeline] %s 写出 %s (%d rows)", pc.Symbol, name, t.Len())
	}
	return nil
}
