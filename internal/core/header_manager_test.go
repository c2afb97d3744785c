package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

func writeHeadersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headers.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入头部配置失败: %v", err)
	}
	return path
}

func TestHeaderManager_GetMergedHeaders(t *testing.T) {
	t.Run("默认头部存在", func(t *testing.T) {
		hm, err := NewHeaderManager(filepath.Join(t.TempDir(), "none.yaml"), nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		headers, err := hm.GetHeaders()
		if err != nil {
			t.Fatalf("GetHeaders失败: %v", err)
		}
		if headers.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("期望默认User-Agent, 实际='%s'", headers.Get("User-Agent"))
		}
		if headers.Get("Accept") != "*/*" {
			t.Errorf("期望默认Accept, 实际='%s'", headers.Get("Accept"))
		}
	})

	t.Run("优先级: 默认 < 配置文件 < 命令行", func(t *testing.T) {
		path := writeHeadersFile(t, "headers:\n  User-Agent: FileBot/1.0\n  X-From-File: file\n  X-Shared: file\n")
		hm, err := NewHeaderManager(path, []string{"X-Shared: cli", "X-From-Cli: cli"})
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		headers, err := hm.GetHeaders()
		if err != nil {
			t.Fatalf("GetHeaders失败: %v", err)
		}

		expected := map[string]string{
			"User-Agent":  "FileBot/1.0",
			"Accept":      "*/*",
			"X-From-File": "file",
			"X-Shared":    "cli",
			"X-From-Cli":  "cli",
		}
		for name, value := range expected {
			if got := headers.Get(name); got != value {
				t.Errorf("%s: 期望 '%s', 实际 '%s'", name, value, got)
			}
		}
	})

	t.Run("返回值互不影响", func(t *testing.T) {
		hm, err := NewHeaderManager(filepath.Join(t.TempDir(), "none.yaml"), []string{"X-Custom: v"})
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		first := hm.GetMergedHeaders()
		first.Set("X-Custom", "changed")
		if hm.GetMergedHeaders().Get("X-Custom") != "v" {
			t.Error("修改返回值不应影响管理器")
		}
	})
}

func TestHeaderManager_GetSafeHeaders(t *testing.T) {
	hm, err := NewHeaderManager(filepath.Join(t.TempDir(), "none.yaml"), []string{
		"User-Agent: CustomBot/1.0",
		"Authorization: Bearer secret-token-12345",
		"X-API-Key: api-key-67890",
	})
	if err != nil {
		t.Fatalf("创建HeaderManager失败: %v", err)
	}

	safeHeaders := hm.GetSafeHeaders()

	if safeHeaders["User-Agent"] != "CustomBot/1.0" {
		t.Error("普通头部不应该被脱敏")
	}
	if safeHeaders["Authorization"] != "Bearer ***" {
		t.Errorf("期望Authorization='Bearer ***', 实际='%s'", safeHeaders["Authorization"])
	}
	if safeHeaders["X-Api-Key"] == "api-key-67890" {
		t.Error("X-API-Key应该被脱敏")
	}
}

func TestHeaderManager_Errors(t *testing.T) {
	t.Run("非法命令行参数返回错误", func(t *testing.T) {
		if _, err := NewHeaderManager("", []string{"InvalidFormat"}); err == nil {
			t.Error("期望返回错误, 但成功了")
		}
	})

	t.Run("命令行禁止头部返回验证错误", func(t *testing.T) {
		hm, err := NewHeaderManager(filepath.Join(t.TempDir(), "none.yaml"), []string{"Host: example.com"})
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		_, err = hm.GetHeaders()
		var validationErr *models.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("期望 *models.ValidationError, 得到 %v", err)
		}
		if !strings.Contains(err.Error(), "cli") {
			t.Errorf("错误信息应指明来源: %v", err)
		}
	})

	t.Run("配置文件中的非法头部", func(t *testing.T) {
		path := writeHeadersFile(t, "headers:\n  Connection: close\n")
		hm, err := NewHeaderManager(path, nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		if _, err := hm.GetHeaders(); err == nil {
			t.Error("期望返回验证错误, 但成功了")
		}
	})

	t.Run("配置文件格式错误", func(t *testing.T) {
		path := writeHeadersFile(t, "headers: [broken\n")
		hm, err := NewHeaderManager(path, nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		_, err = hm.GetHeaders()
		var configErr *models.ConfigError
		if !errors.As(err, &configErr) {
			t.Errorf("期望 *models.ConfigError, 得到 %v", err)
		}
	})
}
