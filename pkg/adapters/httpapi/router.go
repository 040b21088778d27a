package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// TraceHeader 请求 ID 头
const TraceHeader = "X-Request-ID"

// NewRouter 组装路由
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestContext(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sample", h.Sample)
		v1.GET("/instruments", h.ListInstruments)
		v1.GET("/frames", h.FrameMany)
		v1.GET("/instruments/:id/frame", h.GetFrame)
		v1.POST("/instruments/:id/export", h.Export)
	}
	return r
}

// RequestContext 为每个请求附加 trace id
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(TraceHeader, traceID)
		ctx := domain.NewContext(c.Request.Context(), domain.RequestInfo{TraceID: traceID, Source: domain.RequestSourceHTTP})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger 结构化访问日志
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if info, ok := domain.FromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("trace_id", info.TraceID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
