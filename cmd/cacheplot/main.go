// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cacheplot converts the logs of cache benchmark runs into a dataset
// and charts.
//
// Usage:
//
//	cacheplot [flags] file...
//
// Each input file is a free-form log in which metric lines such as
//
//	Hits: 1020
//
// accumulate into records, and a summary line such as
//
//	16KB (Cycles/KB): 1332 | 1998 | 2664
//
// closes a group of three records, giving each the capacity in KB and
// its time per KB. Results of summary lines that mention Cycles are
// converted to nanoseconds with --frequency-ghz.
//
// A file is named by the part of its base name after the last
// underscore, so bench_run_LRU.log is named LRU and its records are
// the targets LRU-1, LRU-2 and so on. A file argument of the form
// name=path names the file explicitly. With no files, cacheplot reads
// standard input.
//
// The dataset is printed to standard output, or to --output, as an
// aligned text table, CSV, HTML or an Excel workbook. The default is a
// text table on a terminal and CSV otherwise. --filter keeps only rows
// matching an expression such as
//
//	cacheplot --filter 'KB >= 32 && [nsec/KB] < 4000' logs/*.log
//
// --charts writes a grid of plots, one column per target and one row
// per measurement, to a local directory or a gs://bucket/prefix URL.
// --db archives the dataset in a sqlite3 or mysql database, and
// --from-upload reads an archived dataset back instead of parsing logs.
// --prom writes the dataset for the node exporter's textfile collector.
//
// Options can also be given in a YAML file with --config; flags
// override the file.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	log := newLogger(os.Stderr)
	cmd := newRootCmd(os.Stdout, log)
	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newLogger(w *os.File) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
	}
	return log
}
