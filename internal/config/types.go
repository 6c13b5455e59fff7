package config

import (
	"strings"
	"time"
)

// Config 是 marketpull 的主配置载体。
type Config struct {
	App     AppConfig     `toml:"app"`
	Pull    PullConfig    `toml:"pull"`
	Binance BinanceConfig `toml:"binance"`
	Output  OutputConfig  `toml:"output"`
	Archive ArchiveConfig `toml:"archive"`
}

type AppConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
}

// PullConfig 描述一次拉取的交易对与周期参数。
type PullConfig struct {
	Symbol   string `toml:"symbol"`
	Interval string `toml:"interval"` // K 线周期，例如 1d
	Period   string `toml:"period"`   // OI / 多空比统计周期
	Limit    int    `toml:"limit"`    // 0 表示沿用交易所默认条数
	Probe    bool   `toml:"probe"`
}

type BinanceConfig struct {
	SpotBaseURL        string `toml:"spot_base_url"`
	FuturesBaseURL     string `toml:"futures_base_url"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	ProxyEnabled       bool   `toml:"proxy_enabled"`
	ProxyURL           string `toml:"proxy_url"`
}

func (b BinanceConfig) HTTPTimeout() time.Duration {
	return time.Duration(b.HTTPTimeoutSeconds) * time.Second
}

// OutputConfig 控制 CSV 目录与可选图表。
type OutputConfig struct {
	Dir       string `toml:"dir"`
	ChartFile string `toml:"chart_file"`
}

func (o OutputConfig) ChartEnabled() bool {
	return strings.TrimSpace(o.ChartFile) != ""
}

type ArchiveConfig struct {
	Path string `toml:"path"`
}

func (a ArchiveConfig) Enabled() bool {
	return strings.TrimSpace(a.Path) != ""
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
