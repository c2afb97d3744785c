package models

import (
	"fmt"
	"time"
)

// CheckConfig 链接检测配置
type CheckConfig struct {
	ConnectTimeout int    `mapstructure:"connect_timeout" json:"connect_timeout"` // 建立连接超时(秒) (默认:5)
	RequestTimeout int    `mapstructure:"request_timeout" json:"request_timeout"` // 整体请求超时(秒),0表示不限制 (默认:0)
	MaxBodySize    int    `mapstructure:"max_body_size" json:"max_body_size"`     // 每个响应最多读取的字节数 (默认:1MB)
	UserAgent      string `mapstructure:"user_agent" json:"user_agent"`           // 覆盖默认User-Agent
}

// Validate 验证配置
func (c *CheckConfig) Validate() error {
	if c.ConnectTimeout < 1 || c.ConnectTimeout > 120 {
		return fmt.Errorf("连接超时必须在1-120秒之间,当前值: %d", c.ConnectTimeout)
	}
	if c.RequestTimeout < 0 || c.RequestTimeout > 3600 {
		return fmt.Errorf("请求超时必须在0-3600秒之间,当前值: %d", c.RequestTimeout)
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("响应体大小限制不能为负数,当前值: %d", c.MaxBodySize)
	}
	return nil
}

// ConnectTimeoutDuration 连接超时
func (c *CheckConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// RequestTimeoutDuration 整体请求超时,0表示不限制
func (c *CheckConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// InputConfig 输入表格配置
type InputConfig struct {
	LocationColumn int  `mapstructure:"location_column" json:"location_column"` // 位置标签所在列 (默认:0)
	MarkupColumn   int  `mapstructure:"markup_column" json:"markup_column"`     // HTML片段所在列 (默认:1)
	SkipHeader     bool `mapstructure:"skip_header" json:"skip_header"`         // 跳过首行表头(行号仍按物理行计数)
}

// Validate 验证配置
func (c *InputConfig) Validate() error {
	if c.LocationColumn < 0 || c.MarkupColumn < 0 {
		return fmt.Errorf("列索引不能为负数: location=%d, markup=%d", c.LocationColumn, c.MarkupColumn)
	}
	if c.LocationColumn == c.MarkupColumn {
		return fmt.Errorf("位置列与HTML列不能相同: %d", c.LocationColumn)
	}
	return nil
}

// MinFields 每行至少需要的字段数
func (c *InputConfig) MinFields() int {
	if c.LocationColumn > c.MarkupColumn {
		return c.LocationColumn + 1
	}
	return c.MarkupColumn + 1
}
