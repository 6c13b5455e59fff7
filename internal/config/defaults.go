package config

import (
	"strings"

	"marketpull/internal/pkg/symbol"
)

// 默认值常量
const (
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultPullSymbol      = "BTCUSDT"
	defaultPullInterval    = "1d"
	defaultPullPeriod      = "1d"
	defaultSpotREST        = "https://api.binance.com"
	defaultFuturesREST     = "https://fapi.binance.com"
	defaultHTTPTimeoutSecs = 15
	defaultOutputDir       = "data"
)

// Default 返回未加载任何文件时的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(nil)
	return cfg
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Pull.applyDefaults(keys)
	c.Binance.applyDefaults(keys)
	c.Output.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
}

func (p *PullConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("pull.symbol", &p.Symbol, defaultPullSymbol),
		stringFieldDefault("pull.interval", &p.Interval, defaultPullInterval),
		stringFieldDefault("pull.period", &p.Period, defaultPullPeriod),
	)
	p.Symbol = symbol.ToBinance(p.Symbol)
	p.Interval = strings.TrimSpace(p.Interval)
	p.Period = strings.TrimSpace(p.Period)
}

func (b *BinanceConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("binance.spot_base_url", &b.SpotBaseURL, defaultSpotREST),
		stringFieldDefault("binance.futures_base_url", &b.FuturesBaseURL, defaultFuturesREST),
		fieldDefault{
			need:  func() bool { return b.HTTPTimeoutSeconds == 0 },
			apply: func() { b.HTTPTimeoutSeconds = defaultHTTPTimeoutSecs },
		},
	)
}

func (o *OutputConfig) applyDefaults(keys keySet) {
	if o == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("output.dir", &o.Dir, defaultOutputDir),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
