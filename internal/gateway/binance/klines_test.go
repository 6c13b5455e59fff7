package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpull/internal/market"
)

const sampleKlines = `[
  [1704067200000,"42283.58000000","44184.10000000","42180.77000000","44179.55000000","27174.29903000",1704153599999,"1174365421.00035010",1217892,"14142.82094000","611127993.71520510","0"],
  [1704153600000,"44179.55000000","45879.63000000","44148.34000000","44946.91000000","65146.40661000",1704239999999,"2943772463.98117170",2208524,"32933.60003000","1488317484.84566170","0"]
]`

func TestKlines_MapsCandles(t *testing.T) {
	c, calls := newTestClient(t, okJSON(sampleKlines))

	candles, err := c.Klines(context.Background(), "btc/usdt", "1d", 0)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/api/v3/klines", (*calls)[0].path)
	assert.Equal(t, "BTCUSDT", (*calls)[0].query.Get("symbol"))
	assert.Equal(t, "1d", (*calls)[0].query.Get("interval"))
	assert.Empty(t, (*calls)[0].query.Get("limit"))

	first := candles[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.OpenTime)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 999_000_000, time.UTC), first.CloseTime)
	assert.True(t, decimal.RequireFromString("42283.58").Equal(first.Open))
	assert.True(t, decimal.RequireFromString("44179.55").Equal(first.Close))
	assert.Equal(t, int64(1217892), first.NumberOfTrades)
	assert.True(t, decimal.RequireFromString("611127993.7152051").Equal(first.TakerBuyQuoteAssetVolume))
	assert.True(t, candles[1].OpenTime.After(first.OpenTime))
}

func TestKlines_LimitSentWhenPositive(t *testing.T) {
	c, calls := newTestClient(t, okJSON(`[]`))

	candles, err := c.Klines(context.Background(), "ETHUSDT", "4h", 30)
	require.NoError(t, err)
	assert.Empty(t, candles)
	require.Len(t, *calls, 1)
	assert.Equal(t, url.Values{"symbol": {"ETHUSDT"}, "interval": {"4h"}, "limit": {"30"}}, (*calls)[0].query)
}

func TestKlines_StatusErrorCarriesAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := c.Klines(context.Background(), "NOPEUSDT", "1d", 0)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, EndpointKlines, se.Endpoint)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)

	var apiErr *common.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, int64(-1121), apiErr.Code)
}

func TestKlines_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>maintenance</html>`},
		{"bad price", `[[1704067200000,"x","1","1","1","1",1704153599999,"1",1,"1","1","0"]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, okJSON(tt.body))
			_, err := c.Klines(context.Background(), "BTCUSDT", "1d", 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, market.ErrMalformed)
		})
	}
}

func TestKlines_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{SpotBaseURL: base, FuturesBaseURL: base, HTTPTimeout: time.Second})
	require.NoError(t, err)
	_, err = c.Klines(context.Background(), "BTCUSDT", "1d", 0)

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, EndpointKlines, re.Endpoint)
}
