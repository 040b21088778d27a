package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want HourBucket
	}{
		{"iso", "2024-01-01T13:45:00", HourBucket{Date: "2024-01-01", Hour: "13"}},
		{"iso with zone", "2024-01-01T23:59:59.123+05:00", HourBucket{Date: "2024-01-01", Hour: "23"}},
		{"space separated", "2024-03-09 07:00:00", HourBucket{Date: "2024-03-09", Hour: "07"}},
		{"date only", "2024-01-01", HourBucket{Date: "2024-01-01"}},
		{"no minutes", "2024-01-01T05", HourBucket{Date: "2024-01-01", Hour: "05"}},
		{"garbage", "not-a-time", HourBucket{Date: "not-a-time"}},
		{"empty", "", HourBucket{}},
		{"leading space", " 2024-01-01T13:45:00", HourBucket{Date: "", Hour: "2024-01-01T13"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(tt.ts))
		})
	}
}

func TestHourBucketKey_IsLexicalNotZoned(t *testing.T) {
	// 同一时刻的两种写法落在不同的桶
	a := BucketOf("2024-01-01T00:30:00Z")
	b := BucketOf("2024-01-01T01:30:00+01:00")
	assert.Equal(t, "2024-01-01-00", a.Key())
	assert.Equal(t, "2024-01-01-01", b.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestBucketOf_DoesNotTrim(t *testing.T) {
	padded := BucketOf("  2024-01-01T13:45:00")
	plain := BucketOf("2024-01-01T13:45:00")
	assert.NotEqual(t, plain.Key(), padded.Key())
	assert.Equal(t, "2024-01-01-13", plain.Key())
}
