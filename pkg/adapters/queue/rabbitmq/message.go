package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

// FrameRequested 请求预热某仪器某时间段的采样结果
type FrameRequested struct {
	InstrumentID     string    `json:"instrument_id"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	MinPoints        *int      `json:"min_points,omitempty"`
	MagnitudeEpsilon *float64  `json:"magnitude_epsilon,omitempty"`
	DecimalPrecision *int      `json:"decimal_precision,omitempty"`
	TraceID          string    `json:"trace_id,omitempty"`
}

// ToRequest 转换为服务层请求
func (m FrameRequested) ToRequest() ports.FrameRequest {
	return ports.FrameRequest{
		InstrumentID: m.InstrumentID,
		From:         m.From,
		To:           m.To,
		Options: domain.OptionOverrides{
			MinPoints:        m.MinPoints,
			MagnitudeEpsilon: m.MagnitudeEpsilon,
			DecimalPrecision: m.DecimalPrecision,
		},
	}
}

// DecodeFrameRequested 解析消息体
func DecodeFrameRequested(body []byte) (FrameRequested, error) {
	var m FrameRequested
	if err := json.Unmarshal(body, &m); err != nil {
		return m, fmt.Errorf("unmarshal frame request: %w", err)
	}
	if m.InstrumentID == "" {
		return m, fmt.Errorf("%w: instrument_id is required", domain.ErrInvalidArgument)
	}
	return m, nil
}
