package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketpull/internal/config"
	"marketpull/internal/logger"
	"marketpull/internal/pipeline"
	"marketpull/internal/pipeline/factory"
	"marketpull/internal/store"
)

// Prober 做一次连通性自检，返回上游状态码。
type Prober interface {
	Probe(ctx context.Context, symbol, interval string) (int, error)
}

// App 负责一次拉取的编排：自检 → pipeline → 归档 → 摘要。
type App struct {
	cfg      *config.Config
	prober   Prober
	pipeline *pipeline.Pipeline
	archive  store.RunArchive

	// Summary 为最近一次 Run 的结果摘要。
	Summary *RunSummary
}

// NewApp 根据配置构建应用对象（不执行）。
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 执行一次完整拉取。任何关键步骤失败都会返回错误，且不会写出任何 CSV。
func (a *App) Run(ctx context.Context) (err error) {
	if a == nil || a.cfg == nil || a.pipeline == nil {
		return fmt.Errorf("app not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pull := a.cfg.Pull
	pc := pipeline.NewContext(pull.Symbol, pull.Interval, pull.Period, pull.Limit)
	log := logger.With("run_id", pc.RunID, "symbol", pc.Symbol)
	log.Info("pull started", "interval", pc.Interval, "period", pc.Period, "limit", pc.Limit)

	if pull.Probe && a.prober != nil {
		status, perr := a.prober.Probe(ctx, pc.Symbol, pc.Interval)
		if perr != nil {
			pc.AddWarning(fmt.Sprintf("probe: %v", perr))
			log.Warn("probe failed", "error", perr)
		} else if status < 200 || status > 299 {
			log.Warn("probe returned non-2xx", "status", status)
		}
	}

	runErr := a.pipeline.Run(ctx, pc)
	finished := time.Now()

	a.Summary = newRunSummary(a.cfg, pc, finished, runErr)
	if a.archive != nil {
		if aerr := a.archive.SaveRun(ctx, store.Run{
			RunID:      pc.RunID,
			Symbol:     pc.Symbol,
			Interval:   pc.Interval,
			Period:     pc.Period,
			StartedAt:  pc.StartedAt,
			FinishedAt: finished,
			Err:        runErr,
			Warnings:   pc.Warnings(),
			Tables:     pc.Tables(),
		}); aerr != nil {
			log.Warn("archive run failed", "error", aerr)
		}
	}
	a.Summary.Log(log)
	return runErr
}

// Close 释放归档数据库等资源。
func (a *App) Close() error {
	if a == nil || a.archive == nil {
		return nil
	}
	err := a.archive.Close()
	a.archive = nil
	return err
}

// Stages exposes the pipeline layout, mainly for tests and startup logs.
func (a *App) Stages() [][]string {
	if a == nil || a.pipeline == nil {
		return nil
	}
	return a.pipeline.Names()
}

// IsFetchFailure reports whether err came from one of the fetch steps.
func IsFetchFailure(err error) bool {
	var mwErr *pipeline.MiddlewareError
	if !errors.As(err, &mwErr) {
		return false
	}
	return mwErr.Stage == factory.StageFetch
}
