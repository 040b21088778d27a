package sensorapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/ingest"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// Config 第三方传感器 API 配置
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Paths 仪器 ID -> 接口路径 (相对 BaseURL)
	Paths map[string]string
}

// Client 第三方传感器 API 读数源
// 响应体形如 {"data": [[timestamp, x, y, z], ...]}
type Client struct {
	baseURL *url.URL
	token   string
	paths   map[string]string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient 创建客户端
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse sensor api base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		paths:   cfg.Paths,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// Fetch 实现 ports.ReadingSource
func (c *Client) Fetch(ctx context.Context, instrumentID string, from, to time.Time) ([]domain.Reading, error) {
	path, ok := c.paths[instrumentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, instrumentID)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})
	q := endpoint.Query()
	if !from.IsZero() {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: sensor api returned %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	readings, res, err := ingest.DecodeJSON(ctx, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode sensor api response: %w", err)
	}
	if res.Failed > 0 {
		c.logger.Warn("sensor api returned malformed rows",
			zap.String("instrument_id", instrumentID),
			zap.Int("failed", res.Failed),
			zap.Int("total", res.Total),
		)
	}
	return readings, nil
}
