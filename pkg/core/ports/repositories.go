package ports

import (
	"context"
	"io"
	"time"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// ReadingSource 原始读数来源 (第三方传感器 API 或数据库表)
type ReadingSource interface {
	// Fetch 获取 [from, to] 范围内的读数，按到达顺序返回
	Fetch(ctx context.Context, instrumentID string, from, to time.Time) ([]domain.Reading, error)
}

// InstrumentCatalog 仪器目录
type InstrumentCatalog interface {
	Instruments() []domain.InstrumentInfo
}

// FrameCache 采样结果缓存
type FrameCache interface {
	// Get 未命中时返回 domain.ErrCacheMiss
	Get(ctx context.Context, key string) (*domain.SampleResult, error)
	Set(ctx context.Context, key string, result *domain.SampleResult, ttl time.Duration) error
}

// ExportStore 导出文件的归档存储
type ExportStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
