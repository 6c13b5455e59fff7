package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketpull/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Pipeline 负责按 stage 调度一组中间件。
type Pipeline struct {
	name   string
	stages [][]Middleware
}

// New 创建 Pipeline，并按 stage 归类中间件。
func New(name string, middlewares ...Middleware) *Pipeline {
	if len(middlewares) == 0 {
		return &Pipeline{name: name, stages: nil}
	}
	stageMap := make(map[int][]Middleware)
	for _, mw := range middlewares {
		if mw == nil {
			continue
		}
		meta := mw.Meta()
		stageMap[meta.Stage] = append(stageMap[meta.Stage], mw)
	}
	keys := make([]int, 0, len(stageMap))
	for st := range stageMap {
		keys = append(keys, st)
	}
	sort.Ints(keys)
	stages := make([][]Middleware, 0, len(keys))
	for _, st := range keys {
		stages = append(stages, stageMap[st])
	}
	return &Pipeline{name: name, stages: stages}
}

// Names lists middleware names stage by stage.
func (p *Pipeline) Names() [][]string {
	out := make([][]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names := make([]string, 0, len(stage))
		for _, mw := range stage {
			names = append(names, mw.Meta().Name)
		}
		out = append(out, names)
	}
	return out
}

// Run 依次执行各 stage；关键中间件失败时立即中止，后续 stage 不再执行。
func (p *Pipeline) Run(ctx context.Context, pc *PullContext) error {
	if pc == nil {
		return fmt.Errorf("nil pull context")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, stage := range p.stages {
		if err := p.runStage(ctx, pc, stage); err != nil {
			return err
		}
	}
	return nil
}

// runStage 并发执行同一 stage 的步骤。关键步骤失败会取消同 stage 的其它步骤；
// 非关键失败按步骤名排序后记为 warning，保证多次运行输出一致。
func (p *Pipeline) runStage(ctx context.Context, pc *PullContext, stage []Middleware) error {
	if len(stage) == 0 {
		return nil
	}
	group, stageCtx := errgroup.WithContext(ctx)
	var (
		mu    sync.Mutex
		warns []*MiddlewareError
	)
	for _, mw := range stage {
		mw := mw
		group.Go(func() error {
			meta := mw.Meta()
			runCtx := stageCtx
			if meta.Timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(stageCtx, meta.Timeout)
				defer cancel()
			}
			start := time.Now()
			err := mw.Handle(runCtx, pc)
			elapsed := time.Since(start)
			if err == nil {
				logger.Debugf("[pipeline] %s %s stage=%d dataset=%s done in %s",
					p.name, meta.Name, meta.Stage, meta.Dataset, elapsed.Round(time.Millisecond))
				return nil
			}
			mwErr := newMiddlewareError(meta, elapsed, err)
			if meta.Critical {
				return mwErr
			}
			mu.Lock()
			warns = append(warns, mwErr)
			mu.Unlock()
			return nil
		})
	}
	err := group.Wait()
	sort.Slice(warns, func(i, j int) bool { return warns[i].Middleware < warns[j].Middleware })
	for _, w := range warns {
		pc.AddWarning(w.Error())
		logger.Warnf("[pipeline] %s %s", p.name, w.Error())
	}
	return err
}
