package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Pull.validate(); err != nil {
		return err
	}
	if err := c.Binance.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}

func (p *PullConfig) validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("pull.symbol is required")
	}
	// interval/period 的取值由交易所定义，本地只检查非空
	if p.Interval == "" {
		return fmt.Errorf("pull.interval is required")
	}
	if p.Period == "" {
		return fmt.Errorf("pull.period is required")
	}
	if p.Limit < 0 {
		return fmt.Errorf("pull.limit must be >= 0")
	}
	return nil
}

func (b *BinanceConfig) validate() error {
	if b.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("binance.http_timeout_seconds must be > 0")
	}
	if err := validateHTTPURL("binance.spot_base_url", b.SpotBaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("binance.futures_base_url", b.FuturesBaseURL); err != nil {
		return err
	}
	if b.ProxyEnabled {
		if strings.TrimSpace(b.ProxyURL) == "" {
			return fmt.Errorf("binance.proxy_url is required when proxy_enabled=true")
		}
		if _, err := url.Parse(b.ProxyURL); err != nil {
			return fmt.Errorf("binance.proxy_url invalid: %w", err)
		}
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s invalid: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", key)
	}
	if u.Host == "" {
		return fmt.Errorf("%s missing host", key)
	}
	return nil
}
