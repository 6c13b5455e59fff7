package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketpull/internal/analysis/indicator"
	"marketpull/internal/market"
	symbolpkg "marketpull/internal/pkg/symbol"
)

// 数据集名称，同时决定输出文件名（{name}_data.csv）。
const (
	DatasetPrice          = "price"
	DatasetFundingRate    = "funding_rate"
	DatasetOpenInterest   = "open_interest"
	DatasetLongShortRatio = "long_short_ratio"
)

// Datasets 是写出顺序。
var Datasets = []string{DatasetPrice, DatasetFundingRate, DatasetOpenInterest, DatasetLongShortRatio}

// FileName returns the CSV file name for a dataset.
func FileName(dataset string) string {
	return dataset + "_data.csv"
}

// PullContext 表示一次拉取在 Pipeline 执行过程中的共享状态。
type PullContext struct {
	RunID     string
	Symbol    string
	Interval  string
	Period    string
	Limit     int
	StartedAt time.Time

	mu       sync.RWMutex
	candles  []market.Candle
	bands    indicator.Bands
	tables   map[string]*market.Table
	warnings []string
}

// NewContext 初始化上下文，symbol 统一为交易所写法（btc/usdt → BTCUSDT）。
func NewContext(symbol, interval, period string, limit int) *PullContext {
	return &PullContext{
		RunID:     uuid.NewString(),
		Symbol:    symbolpkg.ToBinance(symbol),
		Interval:  strings.TrimSpace(interval),
		Period:    strings.TrimSpace(period),
		Limit:     limit,
		StartedAt: time.Now(),
		tables:    make(map[string]*market.Table),
	}
}

func (pc *PullContext) SetCandles(candles []market.Candle) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.candles = candles
}

func (pc *PullContext) Candles() []market.Candle {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.candles
}

func (pc *PullContext) SetBands(b indicator.Bands) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.bands = b
}

func (pc *PullContext) Bands() indicator.Bands {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.bands
}

// SetTable 保存一个数据集的结果表。
func (pc *PullContext) SetTable(dataset string, t *market.Table) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.tables[dataset] = t
}

func (pc *PullContext) Table(dataset string) (*market.Table, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	t, ok := pc.tables[dataset]
	return t, ok
}

// Tables 返回 dataset -> table 的副本。
func (pc *PullContext) Tables() map[string]*market.Table {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	out := make(map[string]*market.Table, len(pc.tables))
	for k, v := range pc.tables {
		out[k] = v
	}
	return out
}

func (pc *PullContext) AddWarning(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.warnings = append(pc.warnings, msg)
}

func (pc *PullContext) Warnings() []string {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return append([]string(nil), pc.warnings...)
}
