package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

// FrameService 图表取数服务
// 串联 数据源 -> 覆盖降采样 -> 缓存，并提供导出能力
type FrameService struct {
	source           ports.ReadingSource
	sampler          ports.Sampler
	catalog          ports.InstrumentCatalog
	cache            ports.FrameCache
	exports          ports.ExportStore
	defaults         domain.SampleOptions
	cacheTTL         time.Duration
	exportURLExpiry  time.Duration
	concurrencyLimit int
	logger           *zap.Logger
}

// FrameServiceOption 定义配置选项函数 (Functional Option Pattern)
type FrameServiceOption func(*FrameService)

// WithSampler 替换默认采样器
func WithSampler(sampler ports.Sampler) FrameServiceOption {
	return func(s *FrameService) {
		s.sampler = sampler
	}
}

// WithCatalog 设置仪器目录
func WithCatalog(catalog ports.InstrumentCatalog) FrameServiceOption {
	return func(s *FrameService) {
		s.catalog = catalog
	}
}

// WithCache 设置结果缓存及过期时间
func WithCache(cache ports.FrameCache, ttl time.Duration) FrameServiceOption {
	return func(s *FrameService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithExportStore 设置导出归档存储
func WithExportStore(store ports.ExportStore, urlExpiry time.Duration) FrameServiceOption {
	return func(s *FrameService) {
		s.exports = store
		if urlExpiry > 0 {
			s.exportURLExpiry = urlExpiry
		}
	}
}

// WithDefaultOptions 设置请求未指定参数时使用的默认采样参数
func WithDefaultOptions(opts domain.SampleOptions) FrameServiceOption {
	return func(s *FrameService) {
		s.defaults = opts
	}
}

// WithConcurrencyLimit 设置 FrameMany 的最大并发数 (默认 8)
func WithConcurrencyLimit(limit int) FrameServiceOption {
	return func(s *FrameService) {
		if limit > 0 {
			s.concurrencyLimit = limit
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) FrameServiceOption {
	return func(s *FrameService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFrameService 初始化取数服务
func NewFrameService(source ports.ReadingSource, opts ...FrameServiceOption) *FrameService {
	s := &FrameService{
		source:           source,
		sampler:          NewCoverageSampler(),
		defaults:         domain.DefaultSampleOptions(),
		cacheTTL:         10 * time.Minute,
		exportURLExpiry:  24 * time.Hour,
		concurrencyLimit: 8,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.FrameProvider = (*FrameService)(nil)

// Instruments 返回已配置的仪器列表
func (s *FrameService) Instruments() []domain.InstrumentInfo {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Instruments()
}

// Frame 获取某仪器在时间段内的降采样结果
// 缓存故障只记录日志，不影响主流程
func (s *FrameService) Frame(ctx context.Context, req ports.FrameRequest) (*domain.SampleResult, error) {
	opts, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	log := s.requestLogger(ctx, req)

	key := CacheKey(req, opts)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			log.Debug("frame cache hit", zap.String("key", key))
			return cached, nil
		case !errors.Is(err, domain.ErrCacheMiss):
			log.Warn("frame cache lookup failed", zap.String("key", key), zap.Error(err))
		}
	}

	readings, err := s.source.Fetch(ctx, req.InstrumentID, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("fetch readings for %s: %w", req.InstrumentID, err)
	}

	started := time.Now()
	result, err := s.sampler.Sample(readings, opts)
	if err != nil {
		return nil, err
	}
	log.Info("frame sampled",
		zap.Int("readings", len(readings)),
		zap.Int("combined", result.Combined.Len()),
		zap.Int("x", result.X.Len()),
		zap.Int("y", result.Y.Len()),
		zap.Int("z", result.Z.Len()),
		zap.Duration("elapsed", time.Since(started)),
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			log.Warn("frame cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

// FrameMany 并发获取多个仪器的结果，返回顺序与请求一致
// 任一请求失败会取消其余请求
func (s *FrameService) FrameMany(ctx context.Context, reqs []ports.FrameRequest) ([]*domain.SampleResult, error) {
	results := make([]*domain.SampleResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrencyLimit)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Frame(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Export 将合成帧展平为 CSV 并上传到归档存储，返回预签名下载地址
func (s *FrameService) Export(ctx context.Context, req ports.FrameRequest) (*ports.ExportResult, error) {
	if s.exports == nil {
		return nil, fmt.Errorf("export store not configured")
	}
	opts, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	result, err := s.Frame(ctx, req)
	if err != nil {
		return nil, err
	}

	rows := result.Combined.Rows()
	var buf bytes.Buffer
	if err := WriteRowsCSV(&buf, rows, opts.DecimalPrecision); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.csv", req.InstrumentID, uuid.New().String())
	size := int64(buf.Len())
	if err := s.exports.Upload(ctx, key, &buf, size, "text/csv"); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.exports.PresignedURL(ctx, key, s.exportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.requestLogger(ctx, req).Info("frame exported", zap.String("key", key), zap.Int("rows", len(rows)))
	return &ports.ExportResult{Key: key, URL: url, Rows: len(rows)}, nil
}

// resolve 校验请求并填入默认采样参数
func (s *FrameService) resolve(req ports.FrameRequest) (domain.SampleOptions, error) {
	if req.InstrumentID == "" {
		return domain.SampleOptions{}, fmt.Errorf("%w: instrument id is required", domain.ErrInvalidArgument)
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return domain.SampleOptions{}, fmt.Errorf("%w: range end %s before start %s", domain.ErrInvalidArgument,
			req.To.Format(time.RFC3339), req.From.Format(time.RFC3339))
	}
	opts := req.Options.Resolve(s.defaults)
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *FrameService) requestLogger(ctx context.Context, req ports.FrameRequest) *zap.Logger {
	log := s.logger.With(zap.String("instrument_id", req.InstrumentID))
	if info, ok := domain.FromContext(ctx); ok {
		log = log.With(zap.String("trace_id", info.TraceID), zap.String("source", string(info.Source)))
	}
	return log
}

// CacheKey 由仪器、时间范围与生效的采样参数组成的缓存键
func CacheKey(req ports.FrameRequest, opts domain.SampleOptions) string {
	return fmt.Sprintf("frame:%s:%d:%d:%d:%g:%d",
		req.InstrumentID,
		unixOrZero(req.From),
		unixOrZero(req.To),
		opts.MinPoints,
		opts.MagnitudeEpsilon,
		opts.DecimalPrecision,
	)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
