package domain

import "context"

// RequestSource 标识请求的来源
type RequestSource string

const (
	RequestSourceHTTP  RequestSource = "HTTP"
	RequestSourceQueue RequestSource = "QUEUE"
	RequestSourceCLI   RequestSource = "CLI"
)

// RequestInfo 携带请求级上下文信息，用于日志关联
type RequestInfo struct {
	TraceID string
	Source  RequestSource
}

type requestInfoKey struct{}

// NewContext returns a new Context that carries the RequestInfo value.
func NewContext(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// FromContext returns the RequestInfo value stored in ctx, if any.
func FromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
