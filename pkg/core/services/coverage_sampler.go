package services

import (
	"slices"
	"strings"
	"time"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

// CoverageSampler 覆盖保持降采样器
// 无状态，可并发调用；不修改输入切片
type CoverageSampler struct{}

// NewCoverageSampler 创建采样器实例
func NewCoverageSampler() *CoverageSampler {
	return &CoverageSampler{}
}

var _ ports.Sampler = (*CoverageSampler)(nil)

// Sample 实现 ports.Sampler
//  1. 按小时桶分组，每桶取合成幅值最大的读数 (并列时保留先出现的)
//  2. 覆盖集按时间排序
//  3. 合成过滤与三轴独立过滤 (均基于覆盖集)
//  4. 各候选集独立按步长抽稀
//  5. 按精度四舍五入输出
func (s *CoverageSampler) Sample(readings []domain.Reading, opts domain.SampleOptions) (*domain.SampleResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := domain.NewEmptyResult()
	if len(readings) == 0 {
		return result, nil
	}

	coverage := coverageSet(readings)
	sortChronologically(coverage)

	rounder := domain.NewRounder(opts.DecimalPrecision)
	eps := opts.MagnitudeEpsilon

	combined := filter(coverage, func(r domain.Reading) bool { return r.Magnitude() > eps })
	for _, r := range stride(combined, opts.MinPoints) {
		result.Combined.Time = append(result.Combined.Time, r.Timestamp)
		result.Combined.X = append(result.Combined.X, rounder.Round(r.X))
		result.Combined.Y = append(result.Combined.Y, rounder.Round(r.Y))
		result.Combined.Z = append(result.Combined.Z, rounder.Round(r.Z))
	}

	for _, axis := range []domain.Axis{domain.AxisX, domain.AxisY, domain.AxisZ} {
		candidates := filter(coverage, func(r domain.Reading) bool { return r.AxisMagnitude(axis) > eps })
		series := result.Series(axis)
		for _, r := range stride(candidates, opts.MinPoints) {
			series.Time = append(series.Time, r.Timestamp)
			series.Values = append(series.Values, rounder.Round(r.Value(axis)))
		}
	}

	return result, nil
}

// coverageSet 每个小时桶选出一个代表读数，按桶首次出现的顺序返回
func coverageSet(readings []domain.Reading) []domain.Reading {
	index := make(map[string]int)
	var picks []domain.Reading
	for _, r := range readings {
		key := r.HourBucket().Key()
		i, ok := index[key]
		if !ok {
			index[key] = len(picks)
			picks = append(picks, r)
			continue
		}
		// 严格大于: 并列时保留先出现的读数
		if r.Magnitude() > picks[i].Magnitude() {
			picks[i] = r
		}
	}
	return picks
}

type sortKey struct {
	at     time.Time
	parsed bool
}

// sortChronologically 按时间升序稳定排序
// 可解析的时间戳按绝对时间排序；不可解析的排在其后，按字面量排序
func sortChronologically(readings []domain.Reading) {
	keys := make(map[string]sortKey, len(readings))
	for _, r := range readings {
		if _, ok := keys[r.Timestamp]; ok {
			continue
		}
		at, ok := r.Instant()
		keys[r.Timestamp] = sortKey{at: at, parsed: ok}
	}
	slices.SortStableFunc(readings, func(a, b domain.Reading) int {
		ka, kb := keys[a.Timestamp], keys[b.Timestamp]
		switch {
		case ka.parsed && kb.parsed:
			return ka.at.Compare(kb.at)
		case ka.parsed:
			return -1
		case kb.parsed:
			return 1
		default:
			return strings.Compare(a.Timestamp, b.Timestamp)
		}
	})
}

func filter(readings []domain.Reading, keep func(domain.Reading) bool) []domain.Reading {
	var out []domain.Reading
	for _, r := range readings {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// stride 超过 limit 时按 floor(len/limit) 步长从下标 0 开始抽稀
// 只会减少点数，不会补点
func stride(readings []domain.Reading, limit int) []domain.Reading {
	if len(readings) <= limit {
		return readings
	}
	step := max(1, len(readings)/limit)
	out := make([]domain.Reading, 0, len(readings)/step+1)
	for i := 0; i < len(readings); i += step {
		out = append(out, readings[i])
	}
	return out
}
