// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by WriteXLSX.
const (
	XlsxDataSheet    = "Dataset"
	XlsxSummarySheet = "Summary"
)

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}

// WriteXLSX writes d to w as an Excel workbook. The "Dataset" sheet
// holds the table with nulls left blank; the "Summary" sheet holds
// the per-target summaries.
func (d *Dataset) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XlsxDataSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if _, err := f.NewSheet(XlsxSummarySheet); err != nil {
		return errors.Wrap(err, "adding sheet")
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err != nil {
		return err
	}

	cols := d.Columns()
	for i, col := range cols {
		_ = f.SetCellValue(XlsxDataSheet, cellName(i+1, 1), col)
	}
	_ = f.SetCellStyle(XlsxDataSheet, cellName(1, 1), cellName(len(cols), 1), header)
	for row := 0; row < d.Len(); row++ {
		for i, col := range cols {
			var v any
			switch c := d.tab.Column(col).(type) {
			case []float64:
				if math.IsNaN(c[row]) {
					continue
				}
				v = c[row]
			case []int:
				v = c[row]
			case []string:
				v = c[row]
			}
			if err := f.SetCellValue(XlsxDataSheet, cellName(i+1, row+2), v); err != nil {
				return err
			}
		}
	}

	sumCols := []string{ColTarget, "records", "min KB", "max KB", "mean nsec/KB", "geomean nsec/KB"}
	for i, col := range sumCols {
		_ = f.SetCellValue(XlsxSummarySheet, cellName(i+1, 1), col)
	}
	_ = f.SetCellStyle(XlsxSummarySheet, cellName(1, 1), cellName(len(sumCols), 1), header)
	for i, s := range d.Summaries() {
		vals := []any{s.Target, s.Records, s.MinKB, s.MaxKB, s.MeanNsecPerKB, s.GeoMeanNsecPerKB}
		for j, v := range vals {
			if err := f.SetCellValue(XlsxSummarySheet, cellName(j+1, i+2), v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing xlsx")
	}
	return nil
}
