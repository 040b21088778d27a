package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/ingest"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

// Handler 采样相关的 HTTP 接口
type Handler struct {
	sampler  ports.Sampler
	frames   ports.FrameProvider
	defaults domain.SampleOptions
}

func NewHandler(sampler ports.Sampler, frames ports.FrameProvider, defaults domain.SampleOptions) *Handler {
	return &Handler{sampler: sampler, frames: frames, defaults: defaults}
}

// sampleRequest POST /api/v1/sample 请求体
// 参数字段省略时使用默认值，显式的 0 原样校验
type sampleRequest struct {
	Readings json.RawMessage `json:"readings"`
	domain.OptionOverrides
}

// Sample 对请求体中的读数直接降采样
func (h *Handler) Sample(c *gin.Context) {
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	readings := []domain.Reading{}
	if raw := bytes.TrimSpace(req.Readings); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		decoded, res, err := ingest.DecodeJSON(c.Request.Context(), bytes.NewReader(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("readings: %v", err)})
			return
		}
		if res.Failed > 0 {
			c.Header("X-Rejected-Rows", strconv.Itoa(res.Failed))
		}
		readings = decoded
	}

	result, err := h.sampler.Sample(readings, req.OptionOverrides.Resolve(h.defaults))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListInstruments 列出已配置的仪器
func (h *Handler) ListInstruments(c *gin.Context) {
	instruments := h.frames.Instruments()
	if instruments == nil {
		instruments = []domain.InstrumentInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

// GetFrame GET /api/v1/instruments/:id/frame
func (h *Handler) GetFrame(c *gin.Context) {
	req, err := frameRequestFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.frames.Frame(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export POST /api/v1/instruments/:id/export
func (h *Handler) Export(c *gin.Context) {
	req, err := frameRequestFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.frames.Export(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// FrameMany GET /api/v1/frames?instrument=a&instrument=b
// 多个仪器共用同一时间范围与采样参数，结果顺序与 instrument 参数一致
func (h *Handler) FrameMany(c *gin.Context) {
	ids := c.QueryArray("instrument")
	if len(ids) == 0 {
		writeError(c, fmt.Errorf("%w: at least one instrument is required", domain.ErrInvalidArgument))
		return
	}
	base, err := frameRequestFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	reqs := make([]ports.FrameRequest, len(ids))
	for i, id := range ids {
		reqs[i] = base
		reqs[i].InstrumentID = id
	}
	results, err := h.frames.FrameMany(c.Request.Context(), reqs)
	if err != nil {
		writeError(c, err)
		return
	}

	frames := make([]instrumentFrame, len(ids))
	for i, id := range ids {
		frames[i] = instrumentFrame{InstrumentID: id, Result: results[i]}
	}
	c.JSON(http.StatusOK, gin.H{"frames": frames})
}

type instrumentFrame struct {
	InstrumentID string               `json:"instrument_id"`
	Result       *domain.SampleResult `json:"result"`
}

func frameRequestFromQuery(c *gin.Context) (ports.FrameRequest, error) {
	req := ports.FrameRequest{InstrumentID: c.Param("id")}

	var err error
	if req.From, err = parseTimeParam(c, "from"); err != nil {
		return req, err
	}
	if req.To, err = parseTimeParam(c, "to"); err != nil {
		return req, err
	}
	if req.Options.MinPoints, err = parseIntParam(c, "min_points"); err != nil {
		return req, err
	}
	if req.Options.DecimalPrecision, err = parseIntParam(c, "precision"); err != nil {
		return req, err
	}
	if v := c.Query("epsilon"); v != "" {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: epsilon: %v", domain.ErrInvalidArgument, err)
		}
		req.Options.MagnitudeEpsilon = &eps
	}
	return req, nil
}

func parseTimeParam(c *gin.Context, name string) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, ok := domain.ParseInstant(v)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s: unparseable time %q", domain.ErrInvalidArgument, name, v)
	}
	return t, nil
}

// parseIntParam 参数缺失时返回 nil
func parseIntParam(c *gin.Context, name string) (*int, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArgument, name, err)
	}
	return &n, nil
}

// writeError 把领域错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInstrumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSourceUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
