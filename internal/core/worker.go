package core

import (
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// OriginWorker 顺序检测同一源站的全部Job
// 同一时刻最多一个请求在途: 上一个请求得到结果(成功或已分类的失败)后才发出下一个
type OriginWorker struct {
	origin string
	prober Prober

	// 每得到一个结果回调一次(进度、收集)
	onResult func(models.Result)
}

// NewOriginWorker 创建源站worker
func NewOriginWorker(origin string, prober Prober, onResult func(models.Result)) *OriginWorker {
	return &OriginWorker{
		origin:   origin,
		prober:   prober,
		onResult: onResult,
	}
}

// Run 依次检测jobs,results[i]对应jobs[i]
// 不重试,每个Job恰好产生一个结果
func (w *OriginWorker) Run(jobs []models.Job) []models.Result {
	results := make([]models.Result, 0, len(jobs))
	for _, job := range jobs {
		result := w.check(job)
		results = append(results, result)
		if w.onResult != nil {
			w.onResult(result)
		}
	}
	return results
}

// check 检测单个Job
// 探测过程中的panic只影响当前Job,记为客户端错误
func (w *OriginWorker) check(job models.Job) models.Result {
	var (
		status int
		err    error
		pc     panics.Catcher
	)
	pc.Try(func() {
		status, err = w.prober.Probe(job.URL)
	})

	result := models.Result{Job: job}
	switch {
	case pc.Recovered() != nil:
		log.Error().
			Str("origin", w.origin).
			Str("url", job.RawURL()).
			Interface("panic", pc.Recovered().Value).
			Msg("检测链接时发生panic")
		result.Status = models.StatusClientError
	case err != nil:
		result.Status = ClassifyError(err)
		log.Debug().Err(err).Str("url", job.RawURL()).Int("status", result.Status).Msg("请求失败,已分类")
	default:
		result.Status = status
	}

	log.Info().
		Str("origin", w.origin).
		Int("row", job.Row).
		Int("status", result.Status).
		Str("url", job.RawURL()).
		Msgf("Response status %d from link %s", result.Status, job.RawURL())

	return result
}
