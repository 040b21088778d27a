package domain

import (
	"math"
	"strings"
	"time"
)

// InstrumentKind 定义仪器类型
type InstrumentKind string

const (
	InstrumentKindSeismograph InstrumentKind = "SEISMOGRAPH" // 测振仪
	InstrumentKindTiltmeter   InstrumentKind = "TILTMETER"   // 倾斜仪
	InstrumentKindPrism       InstrumentKind = "PRISM"       // 测量棱镜
)

// InstrumentInfo 包含仪器的静态属性
type InstrumentInfo struct {
	ID   string         `json:"id" yaml:"id"`
	Name string         `json:"name" yaml:"name"`
	Kind InstrumentKind `json:"kind" yaml:"kind"`
}

// Reading 代表一次三轴原始读数
// Timestamp 保留原始 ISO-8601 字符串，小时分桶基于字面量而非解析后的时间
// 轴值可能为 NaN (上游数据损坏)，此时按 0 幅值处理，但读数本身不会被丢弃
type Reading struct {
	Timestamp string  `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// Axis 标识三个测量轴之一
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Value 返回指定轴的原始值
func (r Reading) Value(a Axis) float64 {
	switch a {
	case AxisX:
		return r.X
	case AxisY:
		return r.Y
	default:
		return r.Z
	}
}

// AxisMagnitude 返回指定轴的绝对值；NaN 与 ±Inf 视为 0
func (r Reading) AxisMagnitude(a Axis) float64 {
	return magnitude(r.Value(a))
}

// Magnitude 合成幅值: max(|x|,|y|,|z|)
func (r Reading) Magnitude() float64 {
	return math.Max(magnitude(r.X), math.Max(magnitude(r.Y), magnitude(r.Z)))
}

// HourBucket 返回读数所属的小时桶
func (r Reading) HourBucket() HourBucket {
	return BucketOf(r.Timestamp)
}

// Instant 尝试把时间戳解析为绝对时间
// 不带时区的时间戳按 UTC 解释
func (r Reading) Instant() (time.Time, bool) {
	return ParseInstant(r.Timestamp)
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant 按常见 ISO-8601 变体解析时间戳
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func magnitude(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Abs(v)
}

// Finite 把 NaN/±Inf 替换为 0，用于输出
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
