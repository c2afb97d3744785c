package utils

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// ResultHeader 输出表格的表头
var ResultHeader = []string{"Location", "In data row number", "Requested URL", "Response status"}

// ReadRows 读取输入表格
// 行号按物理记录计数(从0开始,包含被跳过的表头);字段不足的行跳过并记录警告
func ReadRows(path string, config models.InputConfig) ([]models.Row, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("无法打开输入文件 [%s]: %w", path, err)
	}
	defer file.Close()

	rows, skipped, err := DecodeRows(file, config)
	if err != nil {
		return nil, 0, fmt.Errorf("解析输入文件失败 [%s]: %w", path, err)
	}
	return rows, skipped, nil
}

// DecodeRows 从reader解析输入表格
func DecodeRows(r io.Reader, config models.InputConfig) ([]models.Row, int, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows    []models.Row
		skipped int
	)
	minFields := config.MinFields()

	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		if index == 0 && config.SkipHeader {
			continue
		}
		if len(record) < minFields {
			Warnf("第%d行字段不足(需要%d个,实际%d个),已跳过", index, minFields, len(record))
			skipped++
			continue
		}

		rows = append(rows, models.Row{
			Index:    index,
			Location: record[config.LocationColumn],
			Markup:   record[config.MarkupColumn],
		})
	}

	return rows, skipped, nil
}

// EncodeResults 按顺序写出结果表格(含表头)
func EncodeResults(w io.Writer, results []models.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ResultHeader); err != nil {
		return err
	}

	for _, result := range results {
		record := []string{
			result.Job.Location,
			strconv.Itoa(result.Job.Row),
			result.Job.RawURL(),
			strconv.Itoa(result.Status),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteResults 写出结果表格到文件
func WriteResults(path string, results []models.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("无法创建输出目录 [%s]: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("无法创建输出文件 [%s]: %w", path, err)
	}

	if err := EncodeResults(file, results); err != nil {
		file.Close()
		return fmt.Errorf("写入输出文件失败 [%s]: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("关闭输出文件失败 [%s]: %w", path, err)
	}

	Debugf("写出%d条结果: %s", len(results), path)
	return nil
}
