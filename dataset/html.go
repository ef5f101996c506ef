// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("").Parse(`
<table class='cacheplot'>
<thead>
<tr><th>{{range .Columns}}<th>{{.}}{{end}}
</thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Index}}{{range .Cells}}{{if .Null}}<td class='null'>{{else}}<td>{{end}}{{.Text}}{{end}}
{{- end}}
</tbody>
</table>
`))

type htmlCell struct {
	Text string
	Null bool
}

type htmlRow struct {
	Index int
	Cells []htmlCell
}

// WriteHTML writes d to w as an HTML table. Null cells are empty and
// carry the class "null".
func (d *Dataset) WriteHTML(w io.Writer) error {
	data := struct {
		Columns []string
		Rows    []htmlRow
	}{Columns: d.Columns()}
	for row := 0; row < d.Len(); row++ {
		r := htmlRow{Index: row}
		for _, col := range data.Columns {
			text := d.cell(row, col, "")
			r.Cells = append(r.Cells, htmlCell{text, text == "" && col != ColTarget})
		}
		data.Rows = append(data.Rows, r)
	}
	return htmlTemplate.Execute(w, data)
}
