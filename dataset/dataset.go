// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset merges the records of many cache benchmark logs into
// one table.
//
// Every row of a Dataset is one record. Its columns are every metric
// name seen in any source, followed by the structural columns "KB",
// "nsec/KB" and "target". A metric a record did not report is null,
// represented as NaN in its float64 column.
package dataset

import (
	"math"
	"sort"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"cacheplot/cachelog"
)

// Names of the structural columns.
const (
	ColKB        = "KB"
	ColNsecPerKB = "nsec/KB"
	ColTarget    = "target"
)

// A Dataset is an immutable table of records.
type Dataset struct {
	tab     *table.Table
	records []*cachelog.Record
	metrics []string // metric columns in column order
	vars    []string // sorted variable set
}

// newDataset materializes the table of records. names gives the
// metric columns in order of first appearance; vars is the complete
// variable set, which may include metrics no record carries.
func newDataset(records []*cachelog.Record, names []string, vars mapset.Set[string]) (*Dataset, error) {
	for _, name := range names {
		switch name {
		case ColKB, ColNsecPerKB, ColTarget:
			return nil, errors.Errorf("metric %q collides with a structural column", name)
		}
	}

	var b table.Builder
	for _, name := range names {
		col := make([]float64, len(records))
		for i, rec := range records {
			if v, ok := rec.Lookup(name); ok {
				col[i] = float64(v)
			} else {
				col[i] = math.NaN()
			}
		}
		b.Add(name, col)
	}
	kb := make([]int, len(records))
	nsec := make([]float64, len(records))
	targets := make([]string, len(records))
	for i, rec := range records {
		kb[i] = int(rec.KB)
		nsec[i] = rec.NsecPerKB
		targets[i] = rec.Target
	}
	b.Add(ColKB, kb).Add(ColNsecPerKB, nsec).Add(ColTarget, targets)

	sorted := vars.ToSlice()
	sort.Strings(sorted)
	return &Dataset{
		tab:     b.Done(),
		records: records,
		metrics: names,
		vars:    sorted,
	}, nil
}

// Table returns the underlying table.
func (d *Dataset) Table() *table.Table {
	return d.tab
}

// Len returns the number of rows in d.
func (d *Dataset) Len() int {
	return d.tab.Len()
}

// Columns returns the column names of d in order.
func (d *Dataset) Columns() []string {
	return d.tab.Columns()
}

// Records returns the record behind each row of d.
// The caller must not modify them.
func (d *Dataset) Records() []*cachelog.Record {
	return d.records
}

// Metrics returns the names of d's metric columns in column order.
func (d *Dataset) Metrics() []string {
	return d.metrics
}

// Vars returns the sorted set of metric names seen while building d.
func (d *Dataset) Vars() []string {
	return d.vars
}

// Targets returns the sorted, distinct targets of d.
func (d *Dataset) Targets() []string {
	if d.Len() == 0 {
		return nil
	}
	targets := slice.Nub(d.tab.MustColumn(ColTarget)).([]string)
	sort.Strings(targets)
	return targets
}

// Value returns the numeric value of column col in row and whether it
// is present. It reports false for nulls, unknown columns and the
// target column.
func (d *Dataset) Value(row int, col string) (float64, bool) {
	switch c := d.tab.Column(col).(type) {
	case []float64:
		return c[row], !math.IsNaN(c[row])
	case []int:
		return float64(c[row]), true
	}
	return 0, false
}

// ForTarget returns the rows of d whose target is target.
func (d *Dataset) ForTarget(target string) *table.Table {
	return table.Flatten(table.FilterEq(d.tab, ColTarget, target))
}

// subset returns a Dataset of the rows of d at the given indexes. The
// variable set is recomputed from the remaining records.
func (d *Dataset) subset(rows []int) (*Dataset, error) {
	records := make([]*cachelog.Record, len(rows))
	vars := mapset.NewSet[string]()
	for i, row := range rows {
		records[i] = d.records[row]
		for _, m := range records[i].Metrics {
			vars.Add(m.Name)
		}
	}
	var names []string
	for _, name := range d.metrics {
		if vars.Contains(name) {
			names = append(names, name)
		}
	}
	return newDataset(records, names, vars)
}

// FromRecords returns a Dataset of records that already carry their
// targets, such as records read back from an archive. Metric columns
// are ordered by first appearance.
func FromRecords(records []*cachelog.Record) (*Dataset, error) {
	vars := mapset.NewSet[string]()
	var names []string
	for i, rec := range records {
		if rec.Target == "" {
			return nil, errors.Errorf("record %d has no target", i)
		}
		for _, m := range rec.Metrics {
			if vars.Add(m.Name) {
				names = append(names, m.Name)
			}
		}
	}
	return newDataset(records, names, vars)
}
