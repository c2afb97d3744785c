package core

import (
	"fmt"
	"net/http"

	"github.com/RecoveryAshes/linkaudit/internal/config"
	"github.com/RecoveryAshes/linkaudit/internal/models"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

// DefaultUserAgent 默认User-Agent,便于被检测站点识别
const DefaultUserAgent = "LinkAudit/1.0 (+https://github.com/RecoveryAshes/linkaudit)"

// headerLayer 一层头部来源
type headerLayer struct {
	source  string // default / config / cli
	headers http.Header
}

// HeaderManager 管理检测请求的HTTP头部
// 三层来源按优先级合并: 默认 < headers.yaml < 命令行 -H
// 实现 models.HeaderProvider 接口
type HeaderManager struct {
	loader    *config.HeaderConfigLoader
	validator *utils.HeaderValidator
	redactor  *utils.HeaderRedactor

	defaults headerLayer
	file     headerLayer
	cli      headerLayer

	loaded bool
}

// NewHeaderManager 创建头部管理器
// headersFile为空时使用默认路径;命令行头部格式错误时返回错误
func NewHeaderManager(headersFile string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}

	return &HeaderManager{
		loader:    config.NewHeaderConfigLoader(headersFile),
		validator: utils.NewHeaderValidator(),
		redactor:  utils.NewHeaderRedactor(),
		defaults: headerLayer{source: "default", headers: http.Header{
			"User-Agent": []string{DefaultUserAgent},
			"Accept":     []string{"*/*"},
		}},
		file: headerLayer{source: "config", headers: make(http.Header)},
		cli:  headerLayer{source: "cli", headers: cli},
	}, nil
}

// LoadConfig 加载headers.yaml(只加载一次)
func (hm *HeaderManager) LoadConfig() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.loader.LoadConfig()
	if err != nil {
		return err
	}

	for name, value := range headerConfig.Headers {
		hm.file.headers.Set(name, value)
	}
	hm.loaded = true

	if len(headerConfig.Headers) > 0 {
		utils.Debugf("加载了%d个HTTP头部配置: %s", len(headerConfig.Headers), hm.redactor.RedactToString(hm.file.headers))
	}
	return nil
}

// Validate 按 默认 → 配置 → 命令行 的顺序验证
func (hm *HeaderManager) Validate() error {
	for _, layer := range hm.layers() {
		if err := hm.validator.Validate(layer.headers); err != nil {
			return fmt.Errorf("%s头部验证失败: %w", layer.source, err)
		}
	}
	return nil
}

// GetMergedHeaders 合并三层头部,高优先级整体覆盖同名头部
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	merged := make(http.Header)
	for _, layer := range hm.layers() {
		for name, values := range layer.headers {
			merged[name] = append([]string(nil), values...)
		}
	}
	return merged
}

// GetSafeHeaders 返回脱敏后的合并头部(用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 models.HeaderProvider 接口
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.LoadConfig(); err != nil {
		return nil, err
	}
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.GetMergedHeaders(), nil
}

func (hm *HeaderManager) layers() []headerLayer {
	return []headerLayer{hm.defaults, hm.file, hm.cli}
}
