package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/linkaudit/internal/models"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

// Config 应用程序配置
type Config struct {
	Check   models.CheckConfig `mapstructure:"check"`
	Input   models.InputConfig `mapstructure:"input"`
	Output  OutputConfig       `mapstructure:"output"`
	Logging LoggingConfig      `mapstructure:"logging"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	ReportFile   string `mapstructure:"report_file"`   // JSON摘要路径,为空则不生成
	ShowProgress bool   `mapstructure:"show_progress"` // 显示进度条
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// EnvPrefix 环境变量前缀,如 LINKAUDIT_CHECK_CONNECT_TIMEOUT=10
const EnvPrefix = "LINKAUDIT"

// LoadConfig 加载配置文件
// configPath为空时依次搜索 ./configs/config.yaml, ./config.yaml, ~/.linkaudit/config.yaml,
// 都不存在则使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".linkaudit"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: v.ConfigFileUsed(),
			Cause:    fmt.Errorf("解析配置失败: %w", err),
		}
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("check.connect_timeout", 5)
	v.SetDefault("check.request_timeout", 0)
	v.SetDefault("check.max_body_size", 1024*1024)
	v.SetDefault("check.user_agent", "")

	v.SetDefault("input.location_column", 0)
	v.SetDefault("input.markup_column", 1)
	v.SetDefault("input.skip_header", false)

	v.SetDefault("output.report_file", "")
	v.SetDefault("output.show_progress", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := c.Check.Validate(); err != nil {
		return err
	}
	return c.Input.Validate()
}

// CLIOverrides 命令行参数,零值表示未指定
type CLIOverrides struct {
	ConnectTimeout int
	RequestTimeout int // -1 表示未指定
	ReportFile     string
	SkipHeader     bool
	NoProgress     bool
	LogLevel       string
}

// MergeCLIFlags 合并命令行参数到配置(命令行优先)
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.ConnectTimeout > 0 {
		c.Check.ConnectTimeout = o.ConnectTimeout
	}
	if o.RequestTimeout >= 0 {
		c.Check.RequestTimeout = o.RequestTimeout
	}
	if o.ReportFile != "" {
		c.Output.ReportFile = o.ReportFile
	}
	if o.SkipHeader {
		c.Input.SkipHeader = true
	}
	if o.NoProgress {
		c.Output.ShowProgress = false
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}
