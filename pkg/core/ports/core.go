package ports

import (
	"context"
	"time"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// Sampler 覆盖保持降采样器
// 职责: 保证输入中出现过的每个小时桶至少有一个代表点，并把输出规模限制在目标点数附近
type Sampler interface {
	Sample(readings []domain.Reading, opts domain.SampleOptions) (*domain.SampleResult, error)
}

// FrameRequest 描述一次“某仪器在某时间段”的取数请求
// Options 中未指定的字段使用服务端默认值
type FrameRequest struct {
	InstrumentID string                 `json:"instrument_id"`
	From         time.Time              `json:"from"`
	To           time.Time              `json:"to"`
	Options      domain.OptionOverrides `json:"options"`
}

// ExportResult 导出结果
type ExportResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// FrameProvider 面向图表/导出方的查询服务
type FrameProvider interface {
	Frame(ctx context.Context, req FrameRequest) (*domain.SampleResult, error)
	FrameMany(ctx context.Context, reqs []FrameRequest) ([]*domain.SampleResult, error)
	Export(ctx context.Context, req FrameRequest) (*ExportResult, error)
	Instruments() []domain.InstrumentInfo
}
