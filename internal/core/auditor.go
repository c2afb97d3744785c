package core

import (
	"slices"
	"strings"
	"time"

	"github.com/RecoveryAshes/linkaudit/internal/links"
	"github.com/RecoveryAshes/linkaudit/internal/models"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

// Auditor 一次完整的检测运行
// 读取表格 → 提取链接 → 按源站分组 → 并发检测 → 写出结果表格 → 生成摘要
type Auditor struct {
	config         *Config
	headerProvider models.HeaderProvider
	factory        ProberFactory
	monitor        *ResourceMonitor
}

// NewAuditor 创建检测器
func NewAuditor(config *Config, headerProvider models.HeaderProvider) *Auditor {
	return &Auditor{
		config:         config,
		headerProvider: headerProvider,
		monitor:        NewResourceMonitor(),
	}
}

// WithProberFactory 替换默认的Colly探测器工厂
func (a *Auditor) WithProberFactory(factory ProberFactory) *Auditor {
	a.factory = factory
	return a
}

// Run 执行检测
// 只有输入无法读取、输出无法写入或头部配置无效时返回错误,单个链接的失败记录在结果中
func (a *Auditor) Run(inputPath, outputPath string) (*models.AuditSummary, error) {
	summary := models.NewAuditSummary(inputPath, outputPath, a.config.Check)

	rows, skipped, err := utils.ReadRows(inputPath, a.config.Input)
	if err != nil {
		return nil, err
	}
	summary.Rows = len(rows)
	summary.SkippedRows = skipped

	index := links.BuildIndex(links.ExtractRows(rows))
	summary.Jobs = index.Len()
	summary.Origins = index.OriginCount()
	utils.Infof("读取%d行,提取%d个链接,分布在%d个源站", len(rows), index.Len(), index.OriginCount())

	summary.Resources = a.monitor.Snapshot()
	a.monitor.Report(summary.Resources, index.OriginCount())

	factory := a.factory
	if factory == nil {
		factory, err = NewCollyProberFactory(a.config.Check, a.headerProvider, nil)
		if err != nil {
			return nil, err
		}
	}

	bar := utils.NewProgressBar(index.Len(), "检测链接", a.config.Output.ShowProgress)
	dispatcher := NewDispatcher(factory, WithResultHook(func(models.Result) {
		_ = bar.Add(1)
	}))
	results := dispatcher.Dispatch(index)
	_ = bar.Finish()

	if err := utils.WriteResults(outputPath, results); err != nil {
		return nil, err
	}

	for _, result := range results {
		summary.Record(result)
	}
	summary.PerOrigin = summarizeOrigins(index, results)
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime).Seconds()

	if err := utils.NewReporter(a.config.Output.ReportFile).GenerateReport(summary); err != nil {
		// 摘要报告是附加产物,结果表格已经写出
		utils.Logger.Warn().Err(err).Msg("生成摘要报告失败")
	}

	return summary, nil
}

// summarizeOrigins 按源站统计,结果按源站名排序
func summarizeOrigins(index *links.JobIndex, results []models.Result) []models.OriginSummary {
	byOrigin := make(map[string]*models.OriginSummary, index.OriginCount())
	for _, origin := range index.Origins() {
		byOrigin[origin] = &models.OriginSummary{Origin: origin}
	}

	for _, result := range results {
		origin := links.OriginKey(result.Job.URL)
		stat, ok := byOrigin[origin]
		if !ok {
			continue
		}
		stat.Jobs++
		if models.IsBroken(result.Status) {
			stat.Broken++
		}
	}

	summaries := make([]models.OriginSummary, 0, len(byOrigin))
	for _, stat := range byOrigin {
		summaries = append(summaries, *stat)
	}
	slices.SortFunc(summaries, func(a, b models.OriginSummary) int {
		return strings.Compare(a.Origin, b.Origin)
	})
	return summaries
}
