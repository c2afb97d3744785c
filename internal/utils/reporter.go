package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// Reporter 运行摘要报告生成器
type Reporter struct {
	reportFile string
}

// NewReporter 创建报告生成器,reportFile为空时只输出日志摘要
func NewReporter(reportFile string) *Reporter {
	return &Reporter{reportFile: reportFile}
}

// GenerateReport 输出日志摘要,并在配置了路径时保存JSON报告
func (r *Reporter) GenerateReport(summary *models.AuditSummary) error {
	r.logSummary(summary)

	if r.reportFile == "" {
		return nil
	}
	if err := r.saveJSONReport(summary); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", r.reportFile)
	return nil
}

func (r *Reporter) logSummary(summary *models.AuditSummary) {
	Logger.Info().
		Str("run_id", summary.RunID).
		Int("rows", summary.Rows).
		Int("skipped_rows", summary.SkippedRows).
		Int("jobs", summary.Jobs).
		Int("origins", summary.Origins).
		Int("broken", summary.Broken).
		Float64("duration", summary.Duration).
		Msg("检测完成")

	categories := make([]string, 0, len(summary.Categories))
	for category := range summary.Categories {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)
	for _, category := range categories {
		Infof("  %-20s %d", category, summary.Categories[models.StatusCategory(category)])
	}
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(summary *models.AuditSummary) error {
	if dir := filepath.Dir(r.reportFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建报告目录失败: %w", err)
		}
	}

	jsonData, err := summary.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(r.reportFile, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", r.reportFile)
	return nil
}

// NewProgressBar 创建进度条(输出到stderr,不干扰日志)
// visible为false时返回不输出任何内容的进度条
func NewProgressBar(max int, description string, visible bool) *progressbar.ProgressBar {
	var out io.Writer = os.Stderr
	if !visible {
		out = io.Discard
	}

	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
