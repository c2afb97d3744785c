package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var (
	errMissingInput  = errors.New("Input file required as first argument.")
	errMissingOutput = errors.New("Output file required as second argument.")
)

// ValidateArgs 验证位置参数: <input> <output>
func ValidateArgs(args []string) error {
	if len(args) < 1 || args[0] == "" {
		return errMissingInput
	}
	if len(args) < 2 || args[1] == "" {
		return errMissingOutput
	}
	if len(args) > 2 {
		return fmt.Errorf("参数过多: 只需要输入文件和输出文件,实际%d个", len(args))
	}
	return nil
}

// ValidateFlags 验证命令行标志
// 未指定的超时用-1表示,不做检查
func ValidateFlags(connectTimeout, requestTimeout int, logLevel string) error {
	if connectTimeout != -1 && (connectTimeout < 1 || connectTimeout > 120) {
		return fmt.Errorf("连接超时必须在1-120秒之间,当前值: %d", connectTimeout)
	}
	if requestTimeout != -1 && (requestTimeout < 0 || requestTimeout > 3600) {
		return fmt.Errorf("请求超时必须在0-3600秒之间,当前值: %d", requestTimeout)
	}
	if logLevel != "" {
		if _, err := zerolog.ParseLevel(logLevel); err != nil {
			return fmt.Errorf("无效的日志级别: %s (有效值: trace, debug, info, warn, error)", logLevel)
		}
	}
	return nil
}

// ValidateInputFile 输入文件必须存在且是普通文件
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("无法读取输入文件: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("输入路径是目录: %s", path)
	}
	return nil
}
