package factory

import (
	"fmt"
	"strings"
	"time"

	"marketpull/internal/market"
	"marketpull/internal/pipeline"
	"marketpull/internal/pipeline/middlewares"
	"marketpull/internal/store"
)

const (
	StageFetch   = 0
	StageCompute = 1
	StageOutput  = 2
)

// Factory 根据依赖组装一次拉取所需的 Pipeline。
type Factory struct {
	Fetcher market.Fetcher
	Sink    store.TableSink
	// ChartPath 非空时追加非关键的图表输出步骤。
	ChartPath string
	// StepTimeout 为单步骤超时，<=0 表示不限，由 HTTP 超时兜底。
	StepTimeout time.Duration
}

// Build 返回 fetch(并发) → bollinger → write 的三段式 Pipeline。
func (f *Factory) Build(name string) (*pipeline.Pipeline, error) {
	if f == nil {
		return nil, fmt.Errorf("nil factory")
	}
	if f.Fetcher == nil {
		return nil, fmt.Errorf("pipeline 缺少 market fetcher")
	}
	if f.Sink == nil {
		return nil, fmt.Errorf("pipeline 缺少 table sink")
	}
	fetchCfg := middlewares.FetcherConfig{Stage: StageFetch, Critical: true, Timeout: f.StepTimeout}
	mws := []pipeline.Middleware{
		middlewares.NewCandleFetcher(fetchCfg, f.Fetcher),
		middlewares.NewFundingRateFetcher(fetchCfg, f.Fetcher),
		middlewares.NewOpenInterestFetcher(fetchCfg, f.Fetcher),
		middlewares.NewLongShortRatioFetcher(fetchCfg, f.Fetcher),
		middlewares.NewBollingerCalculator(middlewares.BollingerConfig{Stage: StageCompute, Critical: true}),
		middlewares.NewTableWriter(middlewares.TableWriterConfig{Stage: StageOutput, Critical: true}, f.Sink),
	}
	if path := strings.TrimSpace(f.ChartPath); path != "" {
		mws = append(mws, middlewares.NewChartRenderer(middlewares.ChartRendererConfig{
			Stage: StageOutput,
			Path:  path,
		}))
	}
	if strings.TrimSpace(name) == "" {
		name = "pull"
	}
	return pipeline.New(name, mws...), nil
}
