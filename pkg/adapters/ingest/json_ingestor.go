package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// DefaultBatchSize 向下游推送的批大小
const DefaultBatchSize = 500

// Downstream 接收解析后读数的下一站
type Downstream func(context.Context, []domain.Reading) error

// JsonReadingIngestor 处理 JSON 格式的读数流
// 支持两种形态:
//   - 裸数组: [["2024-01-01T00:00:00", 0.1, 0.2, 0.3], ...]
//   - 传感器 API 信封: {"data": [[...], ...]}
type JsonReadingIngestor struct {
	downstream Downstream
	batchSize  int
}

func NewJsonReadingIngestor(downstream Downstream) *JsonReadingIngestor {
	return &JsonReadingIngestor{
		downstream: downstream,
		batchSize:  DefaultBatchSize,
	}
}

// IngestStream 解析整个流
func (j *JsonReadingIngestor) IngestStream(ctx context.Context, stream io.Reader) (*domain.IngestionResult, error) {
	bufStream := bufio.NewReader(stream)
	head, err := peekNonSpace(bufStream)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.IngestionResult{}, nil
		}
		return nil, fmt.Errorf("failed to peek start token: %w", err)
	}

	decoder := json.NewDecoder(bufStream)
	result := &domain.IngestionResult{}

	switch head {
	case '[':
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return j.decodeArray(ctx, decoder, result)
	case '{':
		return j.decodeEnvelope(ctx, decoder, result)
	default:
		return nil, fmt.Errorf("unexpected JSON format (expected '[' or '{', got '%c')", head)
	}
}

// IngestBatch 实现按格式分发的入口
func (j *JsonReadingIngestor) IngestBatch(ctx context.Context, file io.Reader, format string) (*domain.IngestionResult, error) {
	if format != "json" {
		return nil, fmt.Errorf("unsupported format for JsonIngestor: %s", format)
	}
	return j.IngestStream(ctx, file)
}

// decodeEnvelope 在对象中查找 "data" 数组，其他字段跳过
func (j *JsonReadingIngestor) decodeEnvelope(ctx context.Context, decoder *json.Decoder, result *domain.IngestionResult) (*domain.IngestionResult, error) {
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	for decoder.More() {
		t, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("read envelope key: %w", err)
		}
		key, _ := t.(string)
		if key != "data" {
			var skip json.RawMessage
			if err := decoder.Decode(&skip); err != nil {
				return nil, fmt.Errorf("skip envelope field %q: %w", key, err)
			}
			continue
		}

		t, err = decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("read data token: %w", err)
		}
		if t == nil {
			// "data": null
			continue
		}
		if delim, ok := t.(json.Delim); !ok || delim != '[' {
			return nil, fmt.Errorf("expected \"data\" to be an array, got %v", t)
		}
		if _, err := j.decodeArray(ctx, decoder, result); err != nil {
			return result, err
		}
	}
	if _, err := decoder.Token(); err != nil {
		return result, err
	}
	return result, nil
}

func (j *JsonReadingIngestor) decodeArray(ctx context.Context, decoder *json.Decoder, result *domain.IngestionResult) (*domain.IngestionResult, error) {
	var buffer []domain.Reading

	for decoder.More() {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode error inside array: %w", err)
		}

		result.Total++
		r, err := parseTuple(raw)
		if err != nil {
			// 策略：记录错误并继续
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d skipped: %v", result.Total, err))
			continue
		}

		buffer = append(buffer, r)
		result.Success++

		if len(buffer) >= j.batchSize {
			if err := j.downstream(ctx, buffer); err != nil {
				return result, err
			}
			buffer = nil
		}
	}

	if len(buffer) > 0 {
		if err := j.downstream(ctx, buffer); err != nil {
			return result, err
		}
	}

	// Consume closing ']'
	if _, err := decoder.Token(); err != nil {
		return result, err
	}
	return result, nil
}

func peekNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := r.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
