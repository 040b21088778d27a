package domain

import "strings"

// HourBucket 小时分桶键: (日期, 小时)
// 取自时间戳字符串的字面量，不做时区换算
type HourBucket struct {
	Date string
	Hour string
}

// Key 返回 "{date}-{hour}" 形式的分桶键
func (b HourBucket) Key() string {
	return b.Date + "-" + b.Hour
}

func (b HourBucket) String() string {
	return b.Key()
}

// BucketOf 从时间戳字面量中提取小时桶
// 格式不合法时不会报错，而是用现有的子串组成一个退化的桶
// 不裁剪空白: 首尾空白也是字面量的一部分，由摄取层负责清洗
func BucketOf(ts string) HourBucket {
	idx := strings.IndexAny(ts, "T ")
	if idx < 0 {
		return HourBucket{Date: ts}
	}
	rest := ts[idx+1:]
	if colon := strings.IndexByte(rest, ':'); colon >= 0 {
		rest = rest[:colon]
	}
	return HourBucket{Date: ts[:idx], Hour: rest}
}
