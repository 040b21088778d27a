package domain

import "math"

// Rounder 定义数值精度对齐能力
type Rounder interface {
	Round(val float64) float64
	Decimals() int
}

// DecimalRounder 默认实现：基于 10^n 因子的四舍五入
type DecimalRounder struct {
	decimals int
	factor   float64
}

// NewRounder 创建保留 decimals 位小数的 Rounder
func NewRounder(decimals int) *DecimalRounder {
	if decimals < 0 {
		decimals = 0
	}
	return &DecimalRounder{decimals: decimals, factor: math.Pow10(decimals)}
}

// Round 四舍五入到指定小数位；NaN/±Inf 输出为 0
func (u *DecimalRounder) Round(val float64) float64 {
	val = Finite(val)
	r := math.Round(val*u.factor) / u.factor
	if r == 0 {
		// 避免 -0
		return 0
	}
	return r
}

func (u *DecimalRounder) Decimals() int {
	return u.decimals
}
