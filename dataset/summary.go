// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"github.com/aclements/go-moremath/stats"
)

// A Summary condenses the rows of one target.
type Summary struct {
	Target  string
	Records int

	// MinKB and MaxKB bound the capacities measured.
	MinKB, MaxKB float64

	// MeanNsecPerKB and GeoMeanNsecPerKB average nsec/KB over all
	// capacities.
	MeanNsecPerKB    float64
	GeoMeanNsecPerKB float64
}

// Summaries returns a Summary for each target of d, in target order.
func (d *Dataset) Summaries() []Summary {
	var out []Summary
	for _, target := range d.Targets() {
		t := d.ForTarget(target)
		kbs := t.MustColumn(ColKB).([]int)
		xs := make([]float64, len(kbs))
		for i, kb := range kbs {
			xs[i] = float64(kb)
		}
		lo, hi := stats.Sample{Xs: xs}.Bounds()
		nsec := stats.Sample{Xs: t.MustColumn(ColNsecPerKB).([]float64)}
		out = append(out, Summary{
			Target:           target,
			Records:          t.Len(),
			MinKB:            lo,
			MaxKB:            hi,
			MeanNsecPerKB:    nsec.Mean(),
			GeoMeanNsecPerKB: nsec.GeoMean(),
		})
	}
	return out
}
