// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry returns a Prometheus registry holding the values of d as
// gauges:
//
//	cacheplot_nsec_per_kb{target, kb, repeat}
//	cacheplot_metric{target, kb, repeat, metric}
//
// repeat numbers the records that share a target and kb, from 1, so
// every record has its own series. It is always 1 unless targets are
// indexed per group and a source measures a capacity more than once.
// Null metrics are not exported.
func (d *Dataset) Registry() *prometheus.Registry {
	nsec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cacheplot_nsec_per_kb",
			Help: "Time per KB of cache capacity in nanoseconds",
		},
		[]string{"target", "kb", "repeat"},
	)
	metric := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cacheplot_metric",
			Help: "Metric reported by the cache benchmark",
		},
		[]string{"target", "kb", "repeat", "metric"},
	)
	reg := prometheus.NewRegistry()
	reg.MustRegister(nsec, metric)

	type point struct {
		target string
		kb     int64
	}
	seen := make(map[point]int)
	for _, rec := range d.records {
		pt := point{rec.Target, rec.KB}
		seen[pt]++
		kb := strconv.FormatInt(rec.KB, 10)
		repeat := strconv.Itoa(seen[pt])
		nsec.WithLabelValues(rec.Target, kb, repeat).Set(rec.NsecPerKB)
		for _, m := range rec.Metrics {
			metric.WithLabelValues(rec.Target, kb, repeat, m.Name).Set(float64(m.Value))
		}
	}
	return reg
}

// WritePromFile writes d to path in the Prometheus text exposition
// format, for collection by the node exporter's textfile collector.
func (d *Dataset) WritePromFile(path string) error {
	if err := prometheus.WriteToTextfile(path, d.Registry()); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
