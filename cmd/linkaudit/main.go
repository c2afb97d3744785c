package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/linkaudit/internal/config"
	"github.com/RecoveryAshes/linkaudit/internal/core"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	headersFile    string   // 头部配置文件
	validateConfig bool     // 只验证头部配置

	// 检测参数
	connectTimeout int
	requestTimeout int
	reportFile     string
	skipHeader     bool
	noProgress     bool

	// init-headers参数
	overwrite bool
)

// appConfig 由PersistentPreRunE加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "linkaudit <input.csv> <output.csv>",
	Short: "检测表格中HTML片段里的链接是否可用",
	Long: `LinkAudit - 表格链接健康检测工具

从CSV表格每一行的HTML片段中提取链接,按源站(scheme + host)分组,
同一源站的请求依次发出,不同源站并发检测,最后按输入行号输出每个链接的状态。

输出表格列: Location, In data row number, Requested URL, Response status
保留状态码:
  600  连接超时
  601  连接失败(DNS解析失败、连接被拒绝或重置、TLS握手失败)
  602  其他客户端错误

示例:
  linkaudit pages.csv report.csv
  linkaudit pages.csv report.csv --skip-header --connect-timeout 10
  linkaudit pages.csv report.csv -H "User-Agent: MyBot/1.0" -r summary.json

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args: func(cmd *cobra.Command, args []string) error {
		if validateConfig {
			return nil
		}
		return ValidateArgs(args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateFlags(connectTimeout, requestTimeout, logLevel); err != nil {
			return err
		}

		// 加载配置
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		level := logLevel
		if level == "" && verbose {
			level = "debug"
		}

		// 命令行参数覆盖配置文件
		cfg.MergeCLIFlags(core.CLIOverrides{
			ConnectTimeout: connectTimeout,
			RequestTimeout: requestTimeout,
			ReportFile:     reportFile,
			SkipHeader:     skipHeader,
			NoProgress:     noProgress,
			LogLevel:       level,
		})
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("配置无效: %w", err)
		}

		if err := utils.InitLogger(cfg.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 中断时结果表格尚未写出,直接退出
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		go func() {
			sig, ok := <-sigChan
			if !ok {
				return
			}
			utils.Warnf("\n收到中断信号: %v, 未写出结果", sig)
			os.Exit(1)
		}()

		// 创建HTTP头部管理器
		headerManager, err := core.NewHeaderManager(headersFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		// 如果用户请求验证配置
		if validateConfig {
			return runValidateConfig(headerManager)
		}

		input, output := args[0], args[1]
		if err := ValidateInputFile(input); err != nil {
			return err
		}

		utils.Infof("🔗 开始检测: %s → %s", input, output)
		summary, err := core.NewAuditor(appConfig, headerManager).Run(input, output)
		if err != nil {
			return err
		}

		fmt.Println("\n==================================================")
		fmt.Println("📊 检测统计")
		fmt.Println("==================================================")
		fmt.Printf("✅ 数据行数: %d (跳过 %d)\n", summary.Rows, summary.SkippedRows)
		fmt.Printf("✅ 链接数: %d\n", summary.Jobs)
		fmt.Printf("✅ 源站数: %d\n", summary.Origins)
		fmt.Printf("❌ 失效链接: %d\n", summary.Broken)
		fmt.Printf("⏱️  总耗时: %.2f秒\n", summary.Duration)
		fmt.Println("==================================================")

		utils.Infof("✨ 结果已写入: %s", output)
		return nil
	},
}

// runValidateConfig 验证头部配置并打印脱敏后的有效头部
func runValidateConfig(headerManager *core.HeaderManager) error {
	utils.Info("🔍 验证HTTP头部配置...")
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	// 显示合并后的头部(脱敏)
	safeHeaders := headerManager.GetSafeHeaders()
	names := make([]string, 0, len(safeHeaders))
	for name := range safeHeaders {
		names = append(names, name)
	}
	sort.Strings(names)

	utils.Info("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for _, name := range names {
		utils.Infof("  %s: %s", name, safeHeaders[name])
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LinkAudit %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

var initHeadersCmd = &cobra.Command{
	Use:   "init-headers",
	Short: "生成HTTP头部配置模板",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewHeaderConfigLoader(headersFile)
		if err := loader.WriteTemplate(overwrite); err != nil {
			return err
		}
		utils.Infof("✅ 已生成头部配置模板: %s", loader.Path())
		return nil
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().StringVar(&headersFile, "headers-file", config.DefaultHeadersFile, "HTTP头部配置文件")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "验证HTTP头部配置后退出")

	// 检测参数
	rootCmd.Flags().IntVar(&connectTimeout, "connect-timeout", -1, "建立连接超时(秒),默认取配置文件")
	rootCmd.Flags().IntVar(&requestTimeout, "request-timeout", -1, "整体请求超时(秒),0表示不限制,默认取配置文件")
	rootCmd.Flags().StringVarP(&reportFile, "report", "r", "", "JSON摘要报告路径")
	rootCmd.Flags().BoolVar(&skipHeader, "skip-header", false, "跳过输入表格首行")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "不显示进度条")

	initHeadersCmd.Flags().BoolVar(&overwrite, "force", false, "覆盖已存在的配置文件")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initHeadersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errMissingInput) || errors.Is(err, errMissingOutput) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}
