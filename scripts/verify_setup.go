package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/RecoveryAshes/linkaudit/internal/config"
	"github.com/RecoveryAshes/linkaudit/internal/core"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  LinkAudit 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	// 检查Go版本
	goVersion := runtime.Version()
	fmt.Printf("✅ Go版本: %s\n", goVersion)
	if !supportedGoVersion(goVersion) {
		fmt.Println("⚠️  警告: 需要Go 1.23+ (使用了range-over-func迭代器)")
	}

	// 检查操作系统
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 检查配置
	fmt.Println()
	fmt.Println("检查配置...")
	appConfig, err := core.LoadConfig("")
	if err != nil {
		fmt.Printf("❌ 加载配置失败: %v\n", err)
		allOK = false
	} else if err := appConfig.Validate(); err != nil {
		fmt.Printf("❌ 配置无效: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("✅ 配置有效 (连接超时 %ds, 请求超时 %ds)\n",
			appConfig.Check.ConnectTimeout, appConfig.Check.RequestTimeout)
	}

	// 检查HTTP头部配置
	headerManager, err := core.NewHeaderManager(config.DefaultHeadersFile, nil)
	if err == nil {
		_, err = headerManager.GetHeaders()
	}
	if err != nil {
		fmt.Printf("❌ HTTP头部配置无效: %v\n", err)
		allOK = false
	} else if _, statErr := os.Stat(config.DefaultHeadersFile); statErr != nil {
		fmt.Printf("⚠️  %s 不存在,使用默认头部 (可运行 'linkaudit init-headers' 生成)\n", config.DefaultHeadersFile)
	} else {
		fmt.Printf("✅ HTTP头部配置有效: %s\n", config.DefaultHeadersFile)
	}

	// 检查日志目录可写
	if appConfig != nil {
		if err := checkWritable(appConfig.Logging.LogDir); err != nil {
			fmt.Printf("❌ 日志目录不可写 [%s]: %v\n", appConfig.Logging.LogDir, err)
			allOK = false
		} else {
			fmt.Printf("✅ 日志目录可写: %s\n", appConfig.Logging.LogDir)
		}
	}

	// 检查DNS解析
	fmt.Println()
	fmt.Println("检查网络...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if addrs, err := net.DefaultResolver.LookupHost(ctx, "example.com"); err != nil {
		fmt.Printf("⚠️  DNS解析失败: %v (所有链接将被记为连接失败)\n", err)
	} else {
		fmt.Printf("✅ DNS解析正常: example.com → %s\n", strings.Join(addrs, ", "))
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build -o linkaudit ./cmd/linkaudit' 构建项目")
		fmt.Println("  2. 运行 './linkaudit --help' 查看帮助")
		os.Exit(0)
	} else {
		fmt.Println("❌ 环境验证失败,请解决上述问题。")
		os.Exit(1)
	}
}

// supportedGoVersion go1.23及以上
func supportedGoVersion(version string) bool {
	var major, minor int
	if _, err := fmt.Sscanf(version, "go%d.%d", &major, &minor); err != nil {
		// devel 等非正式版本
		return true
	}
	return major > 1 || (major == 1 && minor >= 23)
}

// checkWritable 创建目录并写入临时文件
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".linkaudit_write_test")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		return err
	}
	return os.Remove(probe)
}
