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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpull/internal/market"
)

type recorded struct {
	path  string
	query url.Values
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, recorded{path: r.URL.Path, query: r.URL.Query()})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{SpotBaseURL: srv.URL + "/", FuturesBaseURL: srv.URL, HTTPTimeout: 2 * time.Second})
	require.NoError(t, err)
	return c, &calls
}

func okJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_EndpointsAndParams(t *testing.T) {
	c, calls := newTestClient(t, okJSON(`[]`))
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() ([]byte, error)
		wantPath  string
		wantQuery url.Values
	}{
		{
			name:      "funding with normalised symbol",
			call:      func() ([]byte, error) { return c.FundingRate(ctx, "btc/usdt", 0) },
			wantPath:  "/fapi/v1/fundingRate",
			wantQuery: url.Values{"symbol": {"BTCUSDT"}},
		},
		{
			name:      "open interest with limit",
			call:      func() ([]byte, error) { return c.OpenInterestHist(ctx, "ETHUSDT", "1d", 30) },
			wantPath:  "/futures/data/openInterestHist",
			wantQuery: url.Values{"symbol": {"ETHUSDT"}, "period": {"1d"}, "limit": {"30"}},
		},
		{
			name:      "long short ratio",
			call:      func() ([]byte, error) { return c.GlobalLongShortAccountRatio(ctx, "BTCUSDT", "4h", 0) },
			wantPath:  "/futures/data/globalLongShortAccountRatio",
			wantQuery: url.Values{"symbol": {"BTCUSDT"}, "period": {"4h"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*calls = nil
			body, err := tt.call()
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(body))
			require.Len(t, *calls, 1)
			assert.Equal(t, tt.wantPath, (*calls)[0].path)
			assert.Equal(t, tt.wantQuery, (*calls)[0].query)
		})
	}
}

func TestClient_StatusErrorWithAPIBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := c.OpenInterestHist(context.Background(), "NOPEUSDT", "1d", 0)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, EndpointOpenInterestHist, se.Endpoint)
	require.NotNil(t, se.API)
	assert.Equal(t, int64(-1121), se.API.Code)
	assert.Equal(t, "Invalid symbol.", se.API.Message)

	var apiErr *common.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "code=-1121")
}

func TestClient_StatusErrorPlainBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	// candles and funding go through the same status check as the other two
	for _, call := range []func() error{
		func() error { _, err := c.Klines(context.Background(), "BTCUSDT", "1d", 0); return err },
		func() error { _, err := c.FundingRate(context.Background(), "BTCUSDT", 0); return err },
	} {
		err := call()
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.Nil(t, se.API)
		assert.Contains(t, se.Body, "upstream down")
	}
}

func TestClient_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, okJSON(`<html>maintenance</html>`))
	_, err := c.FundingRate(context.Background(), "BTCUSDT", 0)
	assert.ErrorIs(t, err, market.ErrMalformed)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{SpotBaseURL: base, FuturesBaseURL: base, HTTPTimeout: time.Second})
	require.NoError(t, err)
	_, err = c.FundingRate(context.Background(), "BTCUSDT", 0)

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, EndpointFundingRate, re.Endpoint)
	assert.Contains(t, re.URL, "symbol=BTCUSDT")
}

func TestClient_RejectsMissingArguments(t *testing.T) {
	c, calls := newTestClient(t, okJSON(`[]`))
	ctx := context.Background()

	_, err := c.Klines(ctx, "  ", "1d", 0)
	assert.Error(t, err)
	_, err = c.OpenInterestHist(ctx, "BTCUSDT", "", 0)
	assert.Error(t, err)
	assert.Empty(t, *calls, "no request should be sent")
}

func TestClient_Probe(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"code":-1,"msg":"banned"}`))
	})
	status, err := c.Probe(context.Background(), "BTCUSDT", "1d")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, status)
	require.Len(t, *calls, 1)
	assert.Equal(t, "/api/v3/klines", (*calls)[0].path)
}

func TestConfig_WithDefaults(t *testing.T) {
	got := (&Config{}).withDefaults()
	assert.Equal(t, "https://api.binance.com", got.SpotBaseURL)
	assert.Equal(t, "https://fapi.binance.com", got.FuturesBaseURL)
	assert.Equal(t, 15*time.Second, got.HTTPTimeout)

	_, err := New(Config{ProxyEnabled: true, ProxyURL: "http://[::1"})
	assert.Error(t, err)
}
