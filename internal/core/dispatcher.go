package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/RecoveryAshes/linkaudit/internal/links"
	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// Dispatcher 每个源站启动一个worker,全部并发执行
// 所有worker完成后才合并结果(屏障),并按(行号, 发现顺序)恢复全局顺序
type Dispatcher struct {
	factory ProberFactory

	// 结果回调,可能被多个源站并发调用
	onResult func(models.Result)
}

// DispatcherOption 调度器选项
type DispatcherOption func(*Dispatcher)

// WithResultHook 设置结果回调(须并发安全)
func WithResultHook(hook func(models.Result)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onResult = hook
	}
}

// NewDispatcher 创建调度器
func NewDispatcher(factory ProberFactory, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{factory: factory}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch 检测索引中的全部Job,返回按行号排序的结果
// 返回的结果数量恒等于index.Len()
func (d *Dispatcher) Dispatch(index *links.JobIndex) []models.Result {
	origins := index.Origins()

	// 每个源站一个只写一次的槽位,屏障之后才读取
	perOrigin := make([][]models.Result, len(origins))

	var wg conc.WaitGroup
	for i, origin := range origins {
		jobs := index.Jobs(origin)
		wg.Go(func() {
			perOrigin[i] = d.runOrigin(origin, jobs)
		})
	}
	wg.Wait()

	merged := make([]models.Result, 0, index.Len())
	for _, results := range perOrigin {
		merged = append(merged, results...)
	}
	SortResults(merged)
	return merged
}

// runOrigin 执行单个源站
// 该源站的故障(探测器创建失败、worker内部panic)只影响本源站尚未完成的Job
func (d *Dispatcher) runOrigin(origin string, jobs []models.Job) []models.Result {
	var (
		mu   sync.Mutex
		done []models.Result
		pc   panics.Catcher
	)
	collect := func(result models.Result) {
		mu.Lock()
		done = append(done, result)
		mu.Unlock()
		if d.onResult != nil {
			d.onResult(result)
		}
	}

	var startErr error
	pc.Try(func() {
		prober, err := d.factory(origin)
		if err != nil {
			startErr = fmt.Errorf("创建探测器失败: %w", err)
			return
		}
		defer prober.Close()

		NewOriginWorker(origin, prober, collect).Run(jobs)
	})

	if rec := pc.Recovered(); rec != nil {
		log.Error().Str("origin", origin).Interface("panic", rec.Value).Msg("源站worker异常终止")
	}
	if startErr != nil {
		log.Error().Err(startErr).Str("origin", origin).Msg("源站无法检测")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, job := range jobs[len(done):] {
		result := models.Result{Job: job, Status: models.StatusClientError}
		done = append(done, result)
		if d.onResult != nil {
			d.onResult(result)
		}
	}
	return done
}

// SortResults 按(行号, 发现顺序)稳定排序
func SortResults(results []models.Result) {
	slices.SortStableFunc(results, func(a, b models.Result) int {
		if c := cmp.Compare(a.Job.Row, b.Job.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Job.Ordinal, b.Job.Ordinal)
	})
}
