package ingest

import (
	"context"
	"io"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// Ingestor 统一的读数摄入接口
type Ingestor interface {
	IngestStream(ctx context.Context, stream io.Reader) (*domain.IngestionResult, error)
	IngestBatch(ctx context.Context, file io.Reader, format string) (*domain.IngestionResult, error)
}

var (
	_ Ingestor = (*JsonReadingIngestor)(nil)
	_ Ingestor = (*CsvReadingIngestor)(nil)
)

// Collector 把下游推送的批次累积到内存
type Collector struct {
	Readings []domain.Reading
}

// Downstream 返回写入本 Collector 的下游函数
func (c *Collector) Downstream() Downstream {
	return func(_ context.Context, batch []domain.Reading) error {
		c.Readings = append(c.Readings, batch...)
		return nil
	}
}

// DecodeJSON 一次性解析 JSON 读数流
func DecodeJSON(ctx context.Context, r io.Reader) ([]domain.Reading, *domain.IngestionResult, error) {
	var c Collector
	res, err := NewJsonReadingIngestor(c.Downstream()).IngestStream(ctx, r)
	if err != nil {
		return nil, res, err
	}
	return c.Readings, res, nil
}
