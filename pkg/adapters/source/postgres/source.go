package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// ReadingRow 读数表的一行
// 轴值列可为空，空值按 NaN 处理
type ReadingRow struct {
	InstrumentID string    `gorm:"column:instrument_id;index"`
	Timestamp    time.Time `gorm:"column:timestamp;index"`
	X            *float64  `gorm:"column:x"`
	Y            *float64  `gorm:"column:y"`
	Z            *float64  `gorm:"column:z"`
}

// Source 基于 gorm 的读数源，对应仪表盘使用的 Postgres 表
type Source struct {
	db     *gorm.DB
	tables map[string]string
}

// NewSource tables: 仪器 ID -> 表名
func NewSource(db *gorm.DB, tables map[string]string) *Source {
	return &Source{db: db, tables: tables}
}

// Fetch 实现 ports.ReadingSource
func (s *Source) Fetch(ctx context.Context, instrumentID string, from, to time.Time) ([]domain.Reading, error) {
	table, ok := s.tables[instrumentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, instrumentID)
	}

	q := s.db.WithContext(ctx).Table(table).Where("instrument_id = ?", instrumentID)
	if !from.IsZero() {
		q = q.Where("timestamp >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("timestamp <= ?", to)
	}

	var rows []ReadingRow
	if err := q.Order("timestamp asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrSourceUnavailable, table, err)
	}
	return ToReadings(rows), nil
}

// ToReadings 把表行转换为领域读数
func ToReadings(rows []ReadingRow) []domain.Reading {
	readings := make([]domain.Reading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, domain.Reading{
			Timestamp: row.Timestamp.UTC().Format(time.RFC3339Nano),
			X:         deref(row.X),
			Y:         deref(row.Y),
			Z:         deref(row.Z),
		})
	}
	return readings
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
