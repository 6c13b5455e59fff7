package binance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketpull/internal/market"
	symbolpkg "marketpull/internal/pkg/symbol"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// Klines 通过 go-binance 现货 SDK 拉取 K 线并映射为 market.Candle。
//
// SDK 只暴露 *common.APIError，拿不到状态码，这里由 statusTransport 记录
// 本次请求的状态码与错误 body，再归一成 StatusError / RequestError。
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	clean := symbolpkg.ToBinance(symbol)
	if clean == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	svc := c.spot.NewKlinesService().Symbol(clean).Interval(interval)
	if limit > 0 {
		svc = svc.Limit(limit)
	}

	rec := &responseRecord{}
	kls, err := svc.Do(withResponseRecord(ctx, rec))
	if rec.status != 0 && (rec.status < 200 || rec.status > 299) {
		return nil, newStatusError(EndpointKlines, rec.status, rec.body)
	}
	if err != nil {
		if rec.status == 0 {
			return nil, &RequestError{Endpoint: EndpointKlines, URL: c.cfg.SpotBaseURL + string(EndpointKlines), Err: err}
		}
		return nil, fmt.Errorf("binance %s: %w: %v", EndpointKlines, market.ErrMalformed, err)
	}

	out := make([]market.Candle, 0, len(kls))
	for i, kl := range kls {
		if kl == nil {
			continue
		}
		candle, err := toCandle(kl)
		if err != nil {
			return nil, fmt.Errorf("binance %s row %d: %w", EndpointKlines, i, err)
		}
		out = append(out, candle)
	}
	return out, nil
}

func toCandle(kl *gobinance.Kline) (market.Candle, error) {
	c := market.Candle{
		OpenTime:       time.UnixMilli(kl.OpenTime).UTC(),
		CloseTime:      time.UnixMilli(kl.CloseTime).UTC(),
		NumberOfTrades: kl.TradeNum,
	}
	fields := []struct {
		name   string
		target *decimal.Decimal
		value  string
	}{
		{market.ColOpen, &c.Open, kl.Open},
		{market.ColHigh, &c.High, kl.High},
		{market.ColLow, &c.Low, kl.Low},
		{market.ColClose, &c.Close, kl.Close},
		{market.ColVolume, &c.Volume, kl.Volume},
		{market.ColQuoteAssetVolume, &c.QuoteAssetVolume, kl.QuoteAssetVolume},
		{market.ColTakerBuyBaseAssetVolume, &c.TakerBuyBaseAssetVolume, kl.TakerBuyBaseAssetVolume},
		{market.ColTakerBuyQuoteAssetVolume, &c.TakerBuyQuoteAssetVolume, kl.TakerBuyQuoteAssetVolume},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.value)
		if err != nil {
			return market.Candle{}, fmt.Errorf("%s %q: %w", f.name, f.value, market.ErrMalformed)
		}
		*f.target = v
	}
	return c, nil
}

type responseRecordKey struct{}

// responseRecord 保存单次请求的状态码；非 2xx 时同时保存 body。
type responseRecord struct {
	status int
	body   []byte
}

func withResponseRecord(ctx context.Context, rec *responseRecord) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, responseRecordKey{}, rec)
}

// statusTransport 在 context 携带 responseRecord 时回填响应信息，否则透传。
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	rec, ok := req.Context().Value(responseRecordKey{}).(*responseRecord)
	if !ok || rec == nil {
		return resp, nil
	}
	rec.status = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	body, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	if rerr != nil {
		return nil, rerr
	}
	rec.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
