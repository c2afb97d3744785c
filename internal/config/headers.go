package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/linkaudit/internal/models"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

const (
	// DefaultHeadersFile 默认头部配置文件路径
	DefaultHeadersFile = "configs/headers.yaml"

	// MaxHeadersFileSize 头部配置文件最大大小 (1MB)
	MaxHeadersFileSize = 1 * 1024 * 1024
)

//go:embed headers_template.yaml
var headersTemplate string

// HeaderConfigLoader 头部配置文件加载器
type HeaderConfigLoader struct {
	path string
}

// NewHeaderConfigLoader 创建加载器,path为空时使用默认路径
func NewHeaderConfigLoader(path string) *HeaderConfigLoader {
	if path == "" {
		path = DefaultHeadersFile
	}
	return &HeaderConfigLoader{path: path}
}

// Path 返回配置文件路径
func (l *HeaderConfigLoader) Path() string {
	return l.path
}

// WriteTemplate 写入头部配置模板
// 文件已存在且overwrite为false时返回错误
func (l *HeaderConfigLoader) WriteTemplate(overwrite bool) error {
	if _, err := os.Stat(l.path); err == nil && !overwrite {
		return fmt.Errorf("配置文件已存在: %s", l.path)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", filepath.Dir(l.path), err)
	}
	if err := os.WriteFile(l.path, []byte(headersTemplate), 0644); err != nil {
		return fmt.Errorf("无法写入配置文件 [%s]: %w", l.path, err)
	}
	return nil
}

// LoadConfig 读取并解析头部配置
// 文件不存在时返回空配置(只使用默认头部和命令行头部)
func (l *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	empty := &models.HeaderConfig{Headers: make(map[string]string)}

	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.Debugf("头部配置文件不存在,使用默认头部: %s", l.path)
		return empty, nil
	}
	if err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}
	if info.Size() > MaxHeadersFileSize {
		return nil, &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxHeadersFileSize),
		}
	}
	if info.Size() == 0 {
		return empty, nil
	}

	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}

	var cfg models.HeaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	return &cfg, nil
}
