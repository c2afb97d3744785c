package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditSummary 一次检测运行的摘要
type AuditSummary struct {
	// 运行信息
	RunID      string    `json:"run_id"`
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Duration   float64   `json:"duration"` // 秒

	// 输入统计
	Rows        int `json:"rows"`         // 读取的数据行数
	SkippedRows int `json:"skipped_rows"` // 字段不足被跳过的行数
	Jobs        int `json:"jobs"`         // 提取出的链接数
	Origins     int `json:"origins"`      // 不同源站数

	// 结果统计
	Categories map[StatusCategory]int `json:"categories"`  // 按分类计数
	StatusCode map[int]int            `json:"status_code"` // 按状态码计数
	Broken     int                    `json:"broken"`      // 失效链接数
	PerOrigin  []OriginSummary        `json:"per_origin"`  // 按源站统计(按源站名排序)

	// 运行环境
	Resources *ResourceSnapshot `json:"resources,omitempty"`

	// 配置快照
	Config CheckConfig `json:"config"`
}

// OriginSummary 单个源站的统计
type OriginSummary struct {
	Origin string `json:"origin"`
	Jobs   int    `json:"jobs"`
	Broken int    `json:"broken"`
}

// ResourceSnapshot 运行开始时的系统资源快照
type ResourceSnapshot struct {
	TotalMemory     uint64 `json:"total_memory"`     // 字节
	AvailableMemory uint64 `json:"available_memory"` // 字节
	LogicalCPUs     int    `json:"logical_cpus"`
}

// NewAuditSummary 创建摘要
func NewAuditSummary(inputFile, outputFile string, config CheckConfig) *AuditSummary {
	return &AuditSummary{
		RunID:      generateID(),
		InputFile:  inputFile,
		OutputFile: outputFile,
		StartTime:  time.Now(),
		Categories: make(map[StatusCategory]int),
		StatusCode: make(map[int]int),
		PerOrigin:  []OriginSummary{},
		Config:     config,
	}
}

// Record 统计一条结果
func (s *AuditSummary) Record(result Result) {
	s.Categories[result.Category()]++
	s.StatusCode[result.Status]++
	if IsBroken(result.Status) {
		s.Broken++
	}
}

// ToJSON 序列化为JSON
func (s *AuditSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// generateID 生成唯一ID
func generateID() string {
	return uuid.New().String()
}
