package services

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// ExportHeader 导出表头
var ExportHeader = []string{"timestamp", "x", "y", "z"}

// WriteRowsCSV 以固定小数位写出 [timestamp, x, y, z] 行
func WriteRowsCSV(w io.Writer, rows []domain.Row, precision int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Timestamp, format(r.X), format(r.Y), format(r.Z)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
