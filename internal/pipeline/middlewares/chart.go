package middlewares

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketpull/internal/analysis/visual"
	"marketpull/internal/pipeline"
)

type ChartRendererConfig struct {
	Name     string
	Stage    int
	Critical bool
	Timeout  time.Duration
	Path     string
}

// ChartRenderer 输出 K 线 + 布林带 HTML 图，属于可选产物。
type ChartRenderer struct {
	meta pipeline.MiddlewareMeta
	path string
}

func NewChartRenderer(cfg ChartRendererConfig) *ChartRenderer {
	return &ChartRenderer{
		meta: pipeline.MiddlewareMeta{
			Name:     nameOrDefault(cfg.Name, "render_chart"),
			Stage:    cfg.Stage,
			Critical: cfg.Critical,
			Timeout:  cfg.Timeout,
		},
		path: strings.TrimSpace(cfg.Path),
	}
}

func (c *ChartRenderer) Meta() pipeline.MiddlewareMeta { return c.meta }

func (c *ChartRenderer) Handle(_ context.Context, pc *pipeline.PullContext) error {
	if c.path == "" {
		return fmt.Errorf("chart path not configured")
	}
	if pc == nil {
		return fmt.Errorf("nil pull context")
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".chart-*.html")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	err = visual.RenderPriceChart(tmp, visual.PriceChartInput{
		Symbol:   pc.Symbol,
		Interval: pc.Interval,
		Candles:  pc.Candles(),
		Bands:    pc.Bands(),
	})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, c.path)
}
