package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// CsvReadingIngestor 处理 CSV 格式的读数流
// 表头需包含 timestamp,x,y,z (不区分大小写，顺序任意)
type CsvReadingIngestor struct {
	downstream Downstream
	batchSize  int
}

// NewCsvReadingIngestor 创建 CSV 摄入器实例
func NewCsvReadingIngestor(downstream Downstream) *CsvReadingIngestor {
	return &CsvReadingIngestor{
		downstream: downstream,
		batchSize:  DefaultBatchSize,
	}
}

// IngestStream 逐行读取 CSV 流
func (c *CsvReadingIngestor) IngestStream(ctx context.Context, stream io.Reader) (*domain.IngestionResult, error) {
	reader := csv.NewReader(stream)
	// 允许变长字段，缺失的轴按 NaN 处理
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &domain.IngestionResult{}

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	headerMap := make(map[string]int)
	for i, h := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if err := validateCsvHeaders(headerMap); err != nil {
		return nil, err
	}

	var buffer []domain.Reading
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Total++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("csv read error at line %d: %v", result.Total+1, err)) // +1 for header
			continue
		}

		buffer = append(buffer, parseRecord(record, headerMap))
		result.Success++

		if len(buffer) >= c.batchSize {
			if err := c.downstream(ctx, buffer); err != nil {
				return result, err
			}
			buffer = nil
		}
	}

	if len(buffer) > 0 {
		if err := c.downstream(ctx, buffer); err != nil {
			return result, err
		}
	}
	return result, nil
}

// IngestBatch 实现按格式分发的入口
func (c *CsvReadingIngestor) IngestBatch(ctx context.Context, file io.Reader, format string) (*domain.IngestionResult, error) {
	if strings.ToLower(format) != "csv" {
		return nil, fmt.Errorf("unsupported format for CsvIngestor: %s", format)
	}
	return c.IngestStream(ctx, file)
}

func validateCsvHeaders(headerMap map[string]int) error {
	for _, req := range []string{"timestamp", "x", "y", "z"} {
		if _, ok := headerMap[req]; !ok {
			return fmt.Errorf("missing required csv header: %s", req)
		}
	}
	return nil
}

func parseRecord(record []string, headerMap map[string]int) domain.Reading {
	get := func(col string) (string, bool) {
		if idx, ok := headerMap[col]; ok && idx < len(record) {
			return record[idx], true
		}
		return "", false
	}
	axis := func(col string) float64 {
		v, ok := get(col)
		if !ok {
			return math.NaN()
		}
		return ParseAxisText(v)
	}

	ts, _ := get("timestamp")
	return domain.Reading{
		Timestamp: strings.TrimSpace(ts),
		X:         axis("x"),
		Y:         axis("y"),
		Z:         axis("z"),
	}
}
