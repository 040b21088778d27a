package domain

import (
	"fmt"
	"math"
)

const (
	DefaultMinPoints        = 500
	DefaultMagnitudeEpsilon = 0.0001
	DefaultDecimalPrecision = 3

	// TablePrecision 表格视图使用的精度 (不降采样)
	TablePrecision = 6

	maxDecimalPrecision = 12
)

// SampleOptions 采样参数
// MinPoints 名义上是“最少点数”，实际只作为步长抽稀的阈值：
// 候选集不超过 MinPoints 时原样保留，超过时按 floor(len/MinPoints) 步长抽稀，从不补点
type SampleOptions struct {
	MinPoints        int     `json:"min_points" yaml:"min_points"`
	MagnitudeEpsilon float64 `json:"magnitude_epsilon" yaml:"magnitude_epsilon"`
	DecimalPrecision int     `json:"decimal_precision" yaml:"decimal_precision"`
}

// DefaultSampleOptions 返回默认参数 (500 / 0.0001 / 3)
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{
		MinPoints:        DefaultMinPoints,
		MagnitudeEpsilon: DefaultMagnitudeEpsilon,
		DecimalPrecision: DefaultDecimalPrecision,
	}
}

// Validate 校验参数
func (o SampleOptions) Validate() error {
	if o.MinPoints <= 0 {
		return fmt.Errorf("%w: min points must be positive, got %d", ErrInvalidArgument, o.MinPoints)
	}
	if math.IsNaN(o.MagnitudeEpsilon) || math.IsInf(o.MagnitudeEpsilon, 0) || o.MagnitudeEpsilon < 0 {
		return fmt.Errorf("%w: magnitude epsilon must be finite and non-negative, got %v", ErrInvalidArgument, o.MagnitudeEpsilon)
	}
	if o.DecimalPrecision < 0 || o.DecimalPrecision > maxDecimalPrecision {
		return fmt.Errorf("%w: decimal precision must be within [0, %d], got %d", ErrInvalidArgument, maxDecimalPrecision, o.DecimalPrecision)
	}
	return nil
}

// OptionOverrides 请求级采样参数
// nil 字段表示“未指定”，由 Resolve 填入默认值；显式的零值原样保留，交给 Validate 校验
type OptionOverrides struct {
	MinPoints        *int     `json:"min_points,omitempty" yaml:"min_points,omitempty"`
	MagnitudeEpsilon *float64 `json:"magnitude_epsilon,omitempty" yaml:"magnitude_epsilon,omitempty"`
	DecimalPrecision *int     `json:"decimal_precision,omitempty" yaml:"decimal_precision,omitempty"`
}

// Resolve 用 defaults 填充未指定的字段
func (o OptionOverrides) Resolve(defaults SampleOptions) SampleOptions {
	opts := defaults
	if o.MinPoints != nil {
		opts.MinPoints = *o.MinPoints
	}
	if o.MagnitudeEpsilon != nil {
		opts.MagnitudeEpsilon = *o.MagnitudeEpsilon
	}
	if o.DecimalPrecision != nil {
		opts.DecimalPrecision = *o.DecimalPrecision
	}
	return opts
}

// Overrides 把完整参数转换为全部字段均已指定的 OptionOverrides
func (o SampleOptions) Overrides() OptionOverrides {
	return OptionOverrides{
		MinPoints:        &o.MinPoints,
		MagnitudeEpsilon: &o.MagnitudeEpsilon,
		DecimalPrecision: &o.DecimalPrecision,
	}
}
