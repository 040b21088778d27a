package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// parseTuple 解析 [timestamp, x, y, z] 元组
// 宽松策略: 时间戳格式不做校验，轴值不可解析时记为 NaN，缺失的轴同样记为 NaN
// 只有元素本身不是数组时才视为失败
func parseTuple(raw json.RawMessage) (domain.Reading, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Reading{}, fmt.Errorf("expected [timestamp, x, y, z] tuple, got %s", truncate(raw))
	}
	if len(fields) == 0 {
		return domain.Reading{}, fmt.Errorf("empty tuple")
	}
	r := domain.Reading{
		Timestamp: parseTimestamp(fields[0]),
		X:         math.NaN(),
		Y:         math.NaN(),
		Z:         math.NaN(),
	}
	axes := []*float64{&r.X, &r.Y, &r.Z}
	for i, dst := range axes {
		if i+1 < len(fields) {
			*dst = parseAxisValue(fields[i+1])
		}
	}
	return r, nil
}

func parseTimestamp(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// parseAxisValue 接受数字、数字字符串；其他情况返回 NaN
func parseAxisValue(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return math.NaN()
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		text = s
	}
	return ParseAxisText(text)
}

// ParseAxisText 解析单个轴值文本，失败时返回 NaN
func ParseAxisText(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func truncate(raw json.RawMessage) string {
	const limit = 64
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
