package models

import (
	"fmt"
	"net/url"
)

// Job 一条待检测的链接
// 由链接提取器创建,创建后不再修改
type Job struct {
	// Row 输入表格中的原始行号(从0开始)
	Row int `json:"row"`

	// Ordinal 该链接在本行可用链接中的发现顺序(从0开始)
	//   - 合并各源站结果后,同一行的多个链接按此排序
	Ordinal int `json:"ordinal"`

	// Location 该行的位置标签(调用方提供,如数据来源标识)
	Location string `json:"location"`

	// URL 解析后的链接
	URL *url.URL `json:"-"`
}

// RawURL 返回请求使用的URL字符串
func (j Job) RawURL() string {
	if j.URL == nil {
		return ""
	}
	return j.URL.String()
}

// String 用于日志输出
func (j Job) String() string {
	return fmt.Sprintf("Job(row=%d, location=%s, url=%s)", j.Row, j.Location, j.RawURL())
}

// Result 一条链接的检测结果
// 每个Job恰好产生一个Result
type Result struct {
	Job    Job `json:"job"`
	Status int `json:"status"` // HTTP状态码或保留的失败代码
}

// Category 返回结果所属的分类
func (r Result) Category() StatusCategory {
	return CategorizeStatus(r.Status)
}

// Row 输入表格中的一行
type Row struct {
	Index    int    // 物理行号(从0开始,包含被跳过的表头)
	Location string // 位置标签
	Markup   string // 可能包含链接的HTML片段
}
