package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"marketpull/internal/config"
	"marketpull/internal/pipeline"
)

// RunSummary 汇总一次拉取的结果，便于日志和终端输出。
type RunSummary struct {
	RunID    string
	Symbol   string
	Interval string
	Period   string
	Duration time.Duration
	Files    []FileSummary
	Warnings []string
	Err      error
}

type FileSummary struct {
	Dataset string
	Path    string
	Rows    int
}

func newRunSummary(cfg *config.Config, pc *pipeline.PullContext, finished time.Time, err error) *RunSummary {
	s := &RunSummary{
		RunID:    pc.RunID,
		Symbol:   pc.Symbol,
		Interval: pc.Interval,
		Period:   pc.Period,
		Duration: finished.Sub(pc.StartedAt),
		Warnings: pc.Warnings(),
		Err:      err,
	}
	if err != nil {
		return s
	}
	tables := pc.Tables()
	for _, ds := range pipeline.Datasets {
		t, ok := tables[ds]
		if !ok {
			continue
		}
		s.Files = append(s.Files, FileSummary{
			Dataset: ds,
			Path:    filepath.Join(cfg.Output.Dir, pipeline.FileName(ds)),
			Rows:    t.Len(),
		})
	}
	return s
}

// Log 输出结构化摘要。
func (s *RunSummary) Log(log *slog.Logger) {
	if s == nil || log == nil {
		return
	}
	if s.Err != nil {
		log.Error("pull failed", "duration", s.Duration.Round(time.Millisecond), "error", s.Err)
		return
	}
	for _, f := range s.Files {
		log.Info("dataset written", "dataset", f.Dataset, "path", f.Path, "rows", f.Rows)
	}
	for _, w := range s.Warnings {
		log.Warn("pull warning", "detail", w)
	}
	log.Info("pull finished", "files", len(s.Files), "duration", s.Duration.Round(time.Millisecond))
}

func (s *RunSummary) Print(w io.Writer) {
	if s == nil || w == nil {
		return
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "拉取摘要 (PULL SUMMARY) %s %s / %s\n", s.Symbol, s.Interval, s.Period)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "  run id: %s\n", s.RunID)
	if s.Err != nil {
		fmt.Fprintf(w, "  失败: %v\n", s.Err)
		return
	}
	for _, f := range s.Files {
		fmt.Fprintf(w, "  %-18s %6d rows  %s\n", f.Dataset, f.Rows, f.Path)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "  ⚠ %s\n", warn)
	}
}
