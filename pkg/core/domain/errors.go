package domain

import "errors"

var (
	// ErrInvalidArgument 调用方传入的参数非法
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInstrumentNotFound 未配置的仪器
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrCacheMiss 缓存未命中
	ErrCacheMiss = errors.New("cache miss")

	// ErrSourceUnavailable 上游数据源不可用
	ErrSourceUnavailable = errors.New("reading source unavailable")
)
