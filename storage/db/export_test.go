// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import "context"

// A MetricRow is one row of the RecordMetrics table.
type MetricRow struct {
	UploadID, RecordID int64
	Pos                int
	Name               string
	Value              int64
}

// MetricRows returns every row of RecordMetrics in key order.
func MetricRows(ctx context.Context, d *DB) ([]MetricRow, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT UploadID, RecordID, Pos, Name, Value FROM RecordMetrics ORDER BY UploadID, RecordID, Pos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MetricRow
	for rows.Next() {
		var r MetricRow
		if err := rows.Scan(&r.UploadID, &r.RecordID, &r.Pos, &r.Name, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Exec runs a raw statement against d.
func Exec(ctx context.Context, d *DB, query string, args ...interface{}) error {
	_, err := d.sql.ExecContext(ctx, query, args...)
	return err
}
