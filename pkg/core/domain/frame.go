package domain

// CoverageFrame 合成输出: 四个等长序列，按时间升序
type CoverageFrame struct {
	Time []string  `json:"time"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	Z    []float64 `json:"z"`
}

// Len 返回帧长度
func (f CoverageFrame) Len() int {
	return len(f.Time)
}

// Rows 展平为 [timestamp, x, y, z] 行，供表格导出使用
func (f CoverageFrame) Rows() []Row {
	rows := make([]Row, 0, len(f.Time))
	for i := range f.Time {
		rows = append(rows, Row{Timestamp: f.Time[i], X: f.X[i], Y: f.Y[i], Z: f.Z[i]})
	}
	return rows
}

// Row 一行导出数据
type Row struct {
	Timestamp string
	X         float64
	Y         float64
	Z         float64
}

// AxisSeries 单轴输出
type AxisSeries struct {
	Time   []string  `json:"time"`
	Values []float64 `json:"values"`
}

// Len 返回序列长度
func (s AxisSeries) Len() int {
	return len(s.Time)
}

// SampleResult 采样结果
type SampleResult struct {
	Combined CoverageFrame `json:"combined"`
	X        AxisSeries    `json:"x"`
	Y        AxisSeries    `json:"y"`
	Z        AxisSeries    `json:"z"`
}

// Series 按轴返回对应的单轴输出
func (r *SampleResult) Series(a Axis) *AxisSeries {
	switch a {
	case AxisX:
		return &r.X
	case AxisY:
		return &r.Y
	default:
		return &r.Z
	}
}

// NewEmptyResult 返回四个序列均为空 (非 nil) 的结果，JSON 序列化为 []
func NewEmptyResult() *SampleResult {
	return &SampleResult{
		Combined: CoverageFrame{Time: []string{}, X: []float64{}, Y: []float64{}, Z: []float64{}},
		X:        AxisSeries{Time: []string{}, Values: []float64{}},
		Y:        AxisSeries{Time: []string{}, Values: []float64{}},
		Z:        AxisSeries{Time: []string{}, Values: []float64{}},
	}
}
