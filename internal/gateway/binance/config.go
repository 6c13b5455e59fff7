package binance

import (
	"strings"
	"time"
)

type Config struct {
	SpotBaseURL    string
	FuturesBaseURL string
	HTTPTimeout    time.Duration

	ProxyEnabled bool
	ProxyURL     string
}

func (c *Config) withDefaults() Config {
	out := *c
	out.SpotBaseURL = strings.TrimRight(strings.TrimSpace(out.SpotBaseURL), "/")
	if out.SpotBaseURL == "" {
		out.SpotBaseURL = "https://api.binance.com"
	}
	out.FuturesBaseURL = strings.TrimRight(strings.TrimSpace(out.FuturesBaseURL), "/")
	if out.FuturesBaseURL == "" {
		out.FuturesBaseURL = "https://fapi.binance.com"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	out.ProxyURL = strings.TrimSpace(out.ProxyURL)
	return out
}
