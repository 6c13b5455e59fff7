package app

import (
	"context"
	"fmt"

	"marketpull/internal/config"
	"marketpull/internal/gateway/binance"
	"marketpull/internal/logger"
	"marketpull/internal/market"
	"marketpull/internal/pipeline/factory"
	"marketpull/internal/store"
	"marketpull/internal/store/csvfile"
	"marketpull/internal/store/sqlite"
)

type AppBuilder struct {
	cfg *config.Config

	fetcherFn func(config.BinanceConfig) (market.Fetcher, error)
	archiveFn func(path string) (store.RunArchive, error)
	sinkFn    func(dir string) store.TableSink
}

type AppBuilderOption func(*AppBuilder)

// WithFetcher 注入自定义数据源，测试时用于替换真实交易所。
func WithFetcher(f market.Fetcher) AppBuilderOption {
	return func(b *AppBuilder) {
		b.fetcherFn = func(config.BinanceConfig) (market.Fetcher, error) {
			if f == nil {
				return nil, fmt.Errorf("nil fetcher")
			}
			return f, nil
		}
	}
}

func WithSink(fn func(dir string) store.TableSink) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.sinkFn = fn
		}
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		fetcherFn: buildBinanceFetcher,
		archiveFn: buildArchive,
		sinkFn:    buildCSVSink,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildBinanceFetcher(cfg config.BinanceConfig) (market.Fetcher, error) {
	return binance.New(binance.Config{
		SpotBaseURL:    cfg.SpotBaseURL,
		FuturesBaseURL: cfg.FuturesBaseURL,
		HTTPTimeout:    cfg.HTTPTimeout(),
		ProxyEnabled:   cfg.ProxyEnabled,
		ProxyURL:       cfg.ProxyURL,
	})
}

func buildArchive(path string) (store.RunArchive, error) {
	return sqlite.NewArchiveStore(path)
}

func buildCSVSink(dir string) store.TableSink {
	return csvfile.New(dir)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b == nil || b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	fetcher, err := b.fetcherFn(cfg.Binance)
	if err != nil {
		return nil, fmt.Errorf("init market fetcher: %w", err)
	}
	f := &factory.Factory{
		Fetcher: fetcher,
		Sink:    b.sinkFn(cfg.Output.Dir),
	}
	if cfg.Output.ChartEnabled() {
		f.ChartPath = cfg.Output.ChartFile
	}
	p, err := f.Build("pull")
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, pipeline: p}
	if prober, ok := fetcher.(Prober); ok {
		app.prober = prober
	}
	if cfg.Archive.Enabled() {
		archive, err := b.archiveFn(cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("init run archive: %w", err)
		}
		app.archive = archive
		logger.Infof("[app] run archive enabled: %s", cfg.Archive.Path)
	}
	logger.Debugf("[app] pipeline stages: %v", p.Names())
	return app, nil
}

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}

// NewAppWithFetcher 使用注入的数据源构建应用，绕过 wire 默认的 Binance 客户端。
func NewAppWithFetcher(cfg *config.Config, fetcher market.Fetcher) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return NewAppBuilder(cfg, WithFetcher(fetcher)).Build(context.Background())
}
