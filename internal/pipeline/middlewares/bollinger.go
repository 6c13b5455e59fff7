package middlewares

import (
	"context"
	"fmt"
	"time"

	"marketpull/internal/analysis/indicator"
	"marketpull/internal/market"
	"marketpull/internal/pipeline"
)

type BollingerConfig struct {
	Name     string
	Stage    int
	Critical bool
	Timeout  time.Duration
}

// BollingerCalculator 在 K 线收盘价上计算 SMA20 与布林带，并生成 price 表。
type BollingerCalculator struct {
	meta pipeline.MiddlewareMeta
}

func NewBollingerCalculator(cfg BollingerConfig) *BollingerCalculator {
	return &BollingerCalculator{
		meta: pipeline.MiddlewareMeta{
			Name:     nameOrDefault(cfg.Name, "bollinger"),
			Stage:    cfg.Stage,
			Critical: cfg.Critical,
			Timeout:  cfg.Timeout,
			Dataset:  pipeline.DatasetPrice,
		},
	}
}

func (b *BollingerCalculator) Meta() pipeline.MiddlewareMeta { return b.meta }

func (b *BollingerCalculator) Handle(_ context.Context, pc *pipeline.PullContext) error {
	if pc == nil {
		return fmt.Errorf("nil pull context")
	}
	candles := pc.Candles()
	bands := indicator.BollingerBands(indicator.Closes(candles))
	pc.SetBands(bands)
	pc.SetTable(pipeline.DatasetPrice, market.CandleTable(candles, bands.Columns()...))
	return nil
}
