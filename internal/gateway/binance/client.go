package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"marketpull/internal/logger"
	"marketpull/internal/market"
	symbolpkg "marketpull/internal/pkg/symbol"
	"marketpull/internal/pkg/text"

	gobinance "github.com/adshao/go-binance/v2"
)

// Endpoint 是交易所 REST 路径。
type Endpoint string

const (
	EndpointKlines              Endpoint = "/api/v3/klines"
	EndpointFundingRate         Endpoint = "/fapi/v1/fundingRate"
	EndpointOpenInterestHist    Endpoint = "/futures/data/openInterestHist"
	EndpointGlobalLongShortRate Endpoint = "/futures/data/globalLongShortAccountRatio"
)

const maxBodyBytes = 32 << 20

// Client 实现 market.Fetcher：K 线走 go-binance 现货 SDK，
// 记录型端点需要保留全部 key 的原始 JSON，直接调用 REST。
type Client struct {
	cfg  Config
	http *http.Client
	spot *gobinance.Client
}

var _ market.Fetcher = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	var base http.RoundTripper = http.DefaultTransport
	if final.ProxyEnabled && final.ProxyURL != "" {
		proxyURL, err := url.Parse(final.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		base = transport
	}
	httpClient := &http.Client{
		Timeout:   final.HTTPTimeout,
		Transport: &statusTransport{base: base},
	}
	spot := gobinance.NewClient("", "")
	spot.BaseURL = final.SpotBaseURL
	spot.HTTPClient = httpClient
	return &Client{cfg: final, http: httpClient, spot: spot}, nil
}

// FundingRate 拉取永续合约历史资金费率。
func (c *Client) FundingRate(ctx context.Context, symbol string, limit int) ([]byte, error) {
	params, err := baseParams(symbol, "", "", limit)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, c.cfg.FuturesBaseURL, EndpointFundingRate, params)
}

// OpenInterestHist 拉取合约持仓量历史。
func (c *Client) OpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]byte, error) {
	params, err := baseParams(symbol, "period", period, limit)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, c.cfg.FuturesBaseURL, EndpointOpenInterestHist, params)
}

// GlobalLongShortAccountRatio 拉取全市场多空账户比。
func (c *Client) GlobalLongShortAccountRatio(ctx context.Context, symbol, period string, limit int) ([]byte, error) {
	params, err := baseParams(symbol, "period", period, limit)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, c.cfg.FuturesBaseURL, EndpointGlobalLongShortRate, params)
}

// Probe 请求一次 K 线端点并记录状态码与响应前 200 字节，用于连通性自检。
// 只有拿不到响应时才返回错误，非 2xx 仅记录。
func (c *Client) Probe(ctx context.Context, symbol, interval string) (int, error) {
	params, err := baseParams(symbol, "interval", interval, 0)
	if err != nil {
		return 0, err
	}
	status, body, err := c.do(ctx, c.cfg.SpotBaseURL, EndpointKlines, params)
	if err != nil {
		return 0, err
	}
	logger.Infof("[binance] probe %s status=%d body=%s", EndpointKlines, status, text.Truncate(string(body), 200))
	return status, nil
}

func (c *Client) get(ctx context.Context, base string, ep Endpoint, params url.Values) ([]byte, error) {
	status, body, err := c.do(ctx, base, ep, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, newStatusError(ep, status, body)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("binance %s: %w: body is not json", ep, market.ErrMalformed)
	}
	logger.Debugf("[binance] GET %s %s -> %d (%d bytes)", ep, params.Encode(), status, len(body))
	return body, nil
}

func (c *Client) do(ctx context.Context, base string, ep Endpoint, params url.Values) (int, []byte, error) {
	endpoint := base + string(ep)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, &RequestError{Endpoint: ep, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Endpoint: ep, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, &RequestError{Endpoint: ep, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, body, nil
}

// baseParams 组装 symbol / interval|period / limit；limit<=0 时不发送。
func baseParams(symbol, key, value string, limit int) (url.Values, error) {
	clean := symbolpkg.ToBinance(symbol)
	if clean == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	params := url.Values{}
	params.Set("symbol", clean)
	if key != "" {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
		params.Set(key, value)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params, nil
}
