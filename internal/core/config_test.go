package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if config.Check.ConnectTimeout != 5 {
		t.Errorf("默认连接超时: 期望 5, 得到 %d", config.Check.ConnectTimeout)
	}
	if config.Check.RequestTimeout != 0 {
		t.Errorf("默认请求超时: 期望 0, 得到 %d", config.Check.RequestTimeout)
	}
	if config.Input.LocationColumn != 0 || config.Input.MarkupColumn != 1 {
		t.Errorf("默认列: %+v", config.Input)
	}
	if !config.Output.ShowProgress {
		t.Error("默认应显示进度条")
	}
	if config.Logging.Level != "info" || config.Logging.LogDir != "logs" {
		t.Errorf("默认日志配置: %+v", config.Logging)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("默认配置应合法: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
check:
  connect_timeout: 10
  request_timeout: 30
  user_agent: "Custom/1.0"
input:
  location_column: 2
  markup_column: 0
  skip_header: true
output:
  report_file: "out/summary.json"
logging:
  level: debug
  rotation:
    compress: false
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if config.Check.ConnectTimeout != 10 || config.Check.RequestTimeout != 30 {
		t.Errorf("超时配置: %+v", config.Check)
	}
	if config.Check.UserAgent != "Custom/1.0" {
		t.Errorf("User-Agent: 得到 %s", config.Check.UserAgent)
	}
	if config.Input.LocationColumn != 2 || config.Input.MarkupColumn != 0 || !config.Input.SkipHeader {
		t.Errorf("输入配置: %+v", config.Input)
	}
	if config.Output.ReportFile != "out/summary.json" {
		t.Errorf("报告路径: 得到 %s", config.Output.ReportFile)
	}
	if config.Logging.Level != "debug" || config.Logging.Rotation.Compress {
		t.Errorf("日志配置: %+v", config.Logging)
	}
	// 未出现在文件中的键仍取默认值
	if config.Check.MaxBodySize != 1024*1024 {
		t.Errorf("响应体大小: 期望默认值, 得到 %d", config.Check.MaxBodySize)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("LINKAUDIT_CHECK_CONNECT_TIMEOUT", "9")

	config, err := LoadConfig(writeConfig(t, "check:\n  connect_timeout: 3\n"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if config.Check.ConnectTimeout != 9 {
		t.Errorf("环境变量应覆盖配置文件: 期望 9, 得到 %d", config.Check.ConnectTimeout)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"文件不存在", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") }},
		{"YAML格式错误", func(t *testing.T) string { return writeConfig(t, "check: [unclosed\n") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			var configErr *models.ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("期望 *models.ConfigError, 得到 %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Check: models.CheckConfig{ConnectTimeout: 5},
			Input: models.InputConfig{LocationColumn: 0, MarkupColumn: 1},
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"连接超时为0", func(c *Config) { c.Check.ConnectTimeout = 0 }, true},
		{"连接超时过大", func(c *Config) { c.Check.ConnectTimeout = 121 }, true},
		{"请求超时为负", func(c *Config) { c.Check.RequestTimeout = -1 }, true},
		{"响应体大小为负", func(c *Config) { c.Check.MaxBodySize = -1 }, true},
		{"列索引为负", func(c *Config) { c.Input.MarkupColumn = -1 }, true},
		{"两列相同", func(c *Config) { c.Input.MarkupColumn = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.expectError {
				t.Errorf("期望错误=%v, 实际错误=%v", tt.expectError, err)
			}
		})
	}
}

func TestConfig_MergeCLIFlags(t *testing.T) {
	base := func() *Config {
		return &Config{
			Check:   models.CheckConfig{ConnectTimeout: 5, RequestTimeout: 20},
			Output:  OutputConfig{ShowProgress: true},
			Logging: LoggingConfig{Level: "info"},
		}
	}

	t.Run("未指定的参数不覆盖", func(t *testing.T) {
		c := base()
		c.MergeCLIFlags(CLIOverrides{ConnectTimeout: -1, RequestTimeout: -1})
		if c.Check.ConnectTimeout != 5 || c.Check.RequestTimeout != 20 {
			t.Errorf("配置被意外修改: %+v", c.Check)
		}
		if !c.Output.ShowProgress || c.Logging.Level != "info" {
			t.Errorf("配置被意外修改: %+v %+v", c.Output, c.Logging)
		}
	})

	t.Run("命令行优先", func(t *testing.T) {
		c := base()
		c.MergeCLIFlags(CLIOverrides{
			ConnectTimeout: 8,
			RequestTimeout: 0,
			ReportFile:     "r.json",
			SkipHeader:     true,
			NoProgress:     true,
			LogLevel:       "debug",
		})
		if c.Check.ConnectTimeout != 8 || c.Check.RequestTimeout != 0 {
			t.Errorf("超时未覆盖: %+v", c.Check)
		}
		if c.Output.ReportFile != "r.json" || c.Output.ShowProgress {
			t.Errorf("输出配置未覆盖: %+v", c.Output)
		}
		if !c.Input.SkipHeader || c.Logging.Level != "debug" {
			t.Error("输入或日志配置未覆盖")
		}
	})
}

func TestConfig_LogConfig(t *testing.T) {
	c := &Config{Logging: LoggingConfig{
		Level:    "warn",
		LogDir:   "var/log",
		Rotation: RotationConfig{MaxSize: 5, MaxBackups: 2, MaxAge: 7, Compress: true},
	}}

	lc := c.LogConfig()
	if lc.Level != "warn" || lc.LogDir != "var/log" || lc.MaxSize != 5 || lc.MaxBackups != 2 || lc.MaxAge != 7 || !lc.Compress {
		t.Errorf("日志配置转换错误: %+v", lc)
	}
}
