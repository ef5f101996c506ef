// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"cacheplot/internal/texttab"
)

// formatValue formats a numeric cell. Nulls are printed as null.
func formatValue(v float64, null string) string {
	if math.IsNaN(v) {
		return null
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cell returns the text of column col in row, with null for missing
// values.
func (d *Dataset) cell(row int, col, null string) string {
	switch c := d.tab.Column(col).(type) {
	case []float64:
		return formatValue(c[row], null)
	case []int:
		return strconv.Itoa(c[row])
	case []string:
		return c[row]
	}
	return null
}

// WriteText writes d to w as an aligned table with a leading row
// index. Numeric columns are right aligned and nulls print as NaN.
func (d *Dataset) WriteText(w io.Writer) error {
	var tab texttab.Table
	cols := d.Columns()
	tab.Row().Cell("")
	for _, col := range cols {
		if col == ColTarget {
			tab.Cell(col)
		} else {
			tab.Cell(col, texttab.Right)
		}
	}
	for row := 0; row < d.Len(); row++ {
		tab.Row().Cell(strconv.Itoa(row), texttab.Right)
		for _, col := range cols {
			if col == ColTarget {
				tab.Cell(d.cell(row, col, "NaN"))
			} else {
				tab.Cell(d.cell(row, col, "NaN"), texttab.Right)
			}
		}
	}
	return tab.Format(w)
}

// WriteSummary writes the per-target summaries of d to w.
func (d *Dataset) WriteSummary(w io.Writer) error {
	var tab texttab.Table
	tab.Row().Cell(ColTarget).
		Cell("records", texttab.Right).
		Cell("KB range", texttab.Right).
		Cell("mean nsec/KB", texttab.Right).
		Cell("geomean nsec/KB", texttab.Right)
	for _, s := range d.Summaries() {
		tab.Row().Cell(s.Target).
			Cell(strconv.Itoa(s.Records), texttab.Right).
			Cell(fmt.Sprintf("%g-%g", s.MinKB, s.MaxKB), texttab.Right).
			Cell(fmt.Sprintf("%.2f", s.MeanNsecPerKB), texttab.Right).
			Cell(fmt.Sprintf("%.2f", s.GeoMeanNsecPerKB), texttab.Right)
	}
	return tab.Format(w)
}
