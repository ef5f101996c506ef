// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cachelog reads the free-form logs written by the cache
// benchmark harness and assembles them into records.
//
// A log interleaves commentary with two kinds of structured lines.
// Metric lines have the form
//
//	Hits: 1234
//
// and accumulate into the record currently being built. Summary lines
// have the form
//
//	64KB working set (Cycles): 120 | 180 | 240
//
// and close a group of exactly three records, one per result value.
// There are no explicit record delimiters: a metric name that repeats
// within the record being built starts the next record of the group.
package cachelog

// A Metric is a single named value read from a metric line.
type Metric struct {
	Name  string
	Value int64
}

// A Record is one benchmark data point: the metrics accumulated for it
// and, once its group has been closed by a summary line, the capacity
// and the per-KB time of that summary line.
type Record struct {
	// Metrics holds the record's metrics in the order they were read.
	// A name appears at most once.
	Metrics []Metric

	// KB is the capacity reported by the summary line.
	KB int64

	// NsecPerKB is the result value of the summary line belonging to
	// this record, converted from cycles if the line reported cycles.
	NsecPerKB float64

	// Target identifies the record within a dataset. It is assigned by
	// the dataset builder, not by the Reader.
	Target string

	// fileName and line record the summary line that closed this
	// record's group.
	fileName string
	line     int
}

// Lookup returns the value of the named metric and whether r has it.
func (r *Record) Lookup(name string) (int64, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// Has reports whether r has a metric called name.
func (r *Record) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Pos returns the file name and 1-based line number of the summary line
// that completed r. For records that were not read by a Reader, it
// returns "", 0.
func (r *Record) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// SetPos sets the position reported by Pos. It is intended for code
// that reconstructs records from another store.
func (r *Record) SetPos(fileName string, line int) {
	r.fileName, r.line = fileName, line
}

// Clone makes a copy of r that shares no state with r.
func (r *Record) Clone() *Record {
	r2 := *r
	r2.Metrics = append([]Metric(nil), r.Metrics...)
	return &r2
}

// GroupSize is the number of records closed by one summary line.
const GroupSize = 3

// A Group is the set of records closed by a single summary line. All of
// them share KB; each carries the result value at its own position.
type Group [GroupSize]*Record
