package market

import (
	"context"
	"errors"
)

// ErrMalformed 表示交易所返回体无法按预期结构解码。
var ErrMalformed = errors.New("malformed response")

// Fetcher 抽象四个公开 REST 端点。K 线列固定，直接返回 Candle；
// 其余三个返回原始 JSON，由 MapRecords 按响应中的 key 建表。
// 网关实现负责状态码检查。
type Fetcher interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)

	FundingRate(ctx context.Context, symbol string, limit int) ([]byte, error)

	OpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]byte, error)

	GlobalLongShortAccountRatio(ctx context.Context, symbol, period string, limit int) ([]byte, error)
}
