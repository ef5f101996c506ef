// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables of datasets.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// A Table accumulates cells row by row and lays them out in aligned
// columns. The methods that add to it return it so calls chain:
//
//	tab.Row().Cell("KB").Cell("nsec/KB", texttab.Right)
type Table struct {
	rows [][]cell
	col  int // column of the next cell
}

type cell struct {
	col    int
	text   string
	margin string
	align  align
}

// A CellOption changes how one cell is laid out.
type CellOption func(*cell)

// LeftMargin replaces the text printed before the cell. A column is
// indented by the widest margin of its cells. The default margin is
// two spaces, except in the first column, which has none.
func LeftMargin(x string) CellOption {
	return func(c *cell) { c.margin = x }
}

// Alignments of a cell within its column. Cells are left aligned by
// default.
var (
	Left   CellOption = func(c *cell) { c.align = alignLeft }
	Center CellOption = func(c *cell) { c.align = alignCenter }
	Right  CellOption = func(c *cell) { c.align = alignRight }
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// pad places s in a field w runes wide. The right side is never padded.
func (a align) pad(s string, w int) string {
	gap := w - utf8.RuneCountInString(s)
	switch {
	case gap <= 0 || a == alignLeft:
		return s
	case a == alignCenter:
		gap /= 2
	}
	return strings.Repeat(" ", gap) + s
}

// Row starts a new row.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	t.col = 0
	return t
}

// Col moves to column col of the current row, leaving the columns in
// between empty. Columns are numbered from 0 and cannot be revisited.
func (t *Table) Col(col int) *Table {
	if col < t.col {
		panic(fmt.Sprintf("texttab: column %d is before the current column %d", col, t.col))
	}
	t.col = col
	return t
}

// Cell appends a cell to the current row and moves to the next column.
// It starts the first row if there is none.
func (t *Table) Cell(text string, opts ...CellOption) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	c := cell{col: t.col, text: text}
	if t.col > 0 {
		c.margin = "  "
	}
	for _, opt := range opts {
		opt(&c)
	}
	last := len(t.rows) - 1
	t.rows[last] = append(t.rows[last], c)
	t.col++
	return t
}

// Format writes the laid out table to w, one line per row. Lines carry
// no trailing spaces and trailing empty rows are omitted.
func (t *Table) Format(w io.Writer) error {
	rows := t.rows
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}

	// Column geometry: each column starts after the previous column's
	// widest margin and widest text.
	var margin, width []int
	grow := func(s []int, i, n int) []int {
		for len(s) <= i {
			s = append(s, 0)
		}
		s[i] = max(s[i], n)
		return s
	}
	for _, row := range rows {
		for _, c := range row {
			margin = grow(margin, c.col, utf8.RuneCountInString(c.margin))
			width = grow(width, c.col, utf8.RuneCountInString(c.text))
		}
	}
	start := make([]int, len(width))
	for i := 1; i < len(start); i++ {
		start[i] = start[i-1] + margin[i-1] + width[i-1]
	}

	var line strings.Builder
	for _, row := range rows {
		line.Reset()
		pos := 0
		for _, c := range row {
			text := c.align.pad(c.text, width[c.col])
			indent := start[c.col] + margin[c.col] - utf8.RuneCountInString(c.margin) - pos
			line.WriteString(strings.Repeat(" ", max(indent, 0)))
			line.WriteString(c.margin)
			line.WriteString(text)
			pos = start[c.col] + margin[c.col] + utf8.RuneCountInString(text)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
