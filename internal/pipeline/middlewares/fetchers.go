package middlewares

import (
	"context"
	"fmt"
	"time"

	"marketpull/internal/market"
	"marketpull/internal/pipeline"
)

// FetcherConfig 控制单个抓取步骤的调度属性。
type FetcherConfig struct {
	Name     string
	Stage    int
	Critical bool
	Timeout  time.Duration
}

// CandleFetcher 拉取现货 K 线写入 PullContext。
type CandleFetcher struct {
	meta    pipeline.MiddlewareMeta
	fetcher market.Fetcher
}

// NewCandleFetcher 构造中间件。
func NewCandleFetcher(cfg FetcherConfig, fetcher market.Fetcher) *CandleFetcher {
	return &CandleFetcher{
		meta: pipeline.MiddlewareMeta{
			Name:     nameOrDefault(cfg.Name, "fetch_candles"),
			Stage:    cfg.Stage,
			Critical: cfg.Critical,
			Timeout:  cfg.Timeout,
			Dataset:  pipeline.DatasetPrice,
		},
		fetcher: fetcher,
	}
}

// Meta 实现 pipeline.Middleware。
func (c *CandleFetcher) Meta() pipeline.MiddlewareMeta { return c.meta }

// Handle 拉取并解析 K 线。
func (c *CandleFetcher) Handle(ctx context.Context, pc *pipeline.PullContext) error {
	if c.fetcher == nil {
		return fmt.Errorf("market fetcher unavailable")
	}
	if pc == nil {
		return fmt.Errorf("nil pull context")
	}
	candles, err := c.fetcher.Klines(ctx, pc.Symbol, pc.Interval, pc.Limit)
	if err != nil {
		return fmt.Errorf("fetch klines %s %s: %w", pc.Symbol, pc.Interval, err)
	}
	pc.SetCandles(candles)
	return nil
}

// FetchFunc 从 Fetcher 取回某个记录型端点的原始 body。
type FetchFunc func(ctx context.Context, f market.Fetcher, pc *pipeline.PullContext) ([]byte, error)

// RecordFetcher 拉取记录数组型端点（资金费率、持仓量、多空比），
// 按 schema 映射为表后写入 dataset。
type RecordFetcher struct {
	meta    pipeline.MiddlewareMeta
	fetcher market.Fetcher
	dataset string
	schema  market.Schema
	fetch   FetchFunc
}

// NewRecordFetcher 构造通用记录抓取中间件。
func NewRecordFetcher(cfg FetcherConfig, fetcher market.Fetcher, dataset string, schema market.Schema, fetch FetchFunc) *RecordFetcher {
	return &RecordFetcher{
		meta: pipeline.MiddlewareMeta{
			Name:     nameOrDefault(cfg.Name, "fetch_"+dataset),
			Stage:    cfg.Stage,
			Critical: cfg.Critical,
			Timeout:  cfg.Timeout,
			Dataset:  dataset,
		},
		fetcher: fetcher,
		dataset: dataset,
		schema:  schema,
		fetch:   fetch,
	}
}

// NewFundingRateFetcher 拉取合约资金费率历史。
func NewFundingRateFetcher(cfg FetcherConfig, fetcher market.Fetcher) *RecordFetcher {
	cfg.Name = nameOrDefault(cfg.Name, "fetch_funding")
	return NewRecordFetcher(cfg, fetcher, pipeline.DatasetFundingRate, market.FundingRateSchema,
		func(ctx context.Context, f market.Fetcher, pc *pipeline.PullContext) ([]byte, error) {
			return f.FundingRate(ctx, pc.Symbol, pc.Limit)
		})
}

// NewOpenInterestFetcher 拉取合约持仓量历史。
func NewOpenInterestFetcher(cfg FetcherConfig, fetcher market.Fetcher) *RecordFetcher {
	cfg.Name = nameOrDefault(cfg.Name, "fetch_open_interest")
	return NewRecordFetcher(cfg, fetcher, pipeline.DatasetOpenInterest, market.OpenInterestSchema,
		func(ctx context.Context, f market.Fetcher, pc *pipeline.PullContext) ([]byte, error) {
			return f.OpenInterestHist(ctx, pc.Symbol, pc.Period, pc.Limit)
		})
}

// NewLongShortRatioFetcher 拉取全市场账户多空比。
func NewLongShortRatioFetcher(cfg FetcherConfig, fetcher market.Fetcher) *RecordFetcher {
	cfg.Name = nameOrDefault(cfg.Name, "fetch_long_short")
	return NewRecordFetcher(cfg, fetcher, pipeline.DatasetLongShortRatio, market.LongShortRatioSchema,
		func(ctx context.Context, f market.Fetcher, pc *pipeline.PullContext) ([]byte, error) {
			return f.GlobalLongShortAccountRatio(ctx, pc.Symbol, pc.Period, pc.Limit)
		})
}

func (r *RecordFetcher) Meta() pipeline.MiddlewareMeta { return r.meta }

// Dataset 返回该步骤产出的数据集名称。
func (r *RecordFetcher) Dataset() string { return r.dataset }

func (r *RecordFetcher) Handle(ctx context.Context, pc *pipeline.PullContext) error {
	if r.fetcher == nil || r.fetch == nil {
		return fmt.Errorf("market fetcher unavailable")
	}
	if pc == nil {
		return fmt.Errorf("nil pull context")
	}
	raw, err := r.fetch(ctx, r.fetcher, pc)
	if err != nil {
		return fmt.Errorf("fetch %s %s: %w", r.dataset, pc.Symbol, err)
	}
	table, err := market.MapRecords(raw, r.schema)
	if err != nil {
		return fmt.Errorf("map %s: %w", r.dataset, err)
	}
	table.Name = r.dataset
	pc.SetTable(r.dataset, table)
	return nil
}
