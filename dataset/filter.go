// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
)

// Filter returns the rows of d for which the boolean expression expr
// holds.
//
// The expression may refer to any column by name. Names that are not
// plain identifiers must be bracketed, as in "[nsec/KB] < 500" or
// "[L1 Hits] > 0". The target column is a string; all other columns
// are numbers. A row where any referenced column is null is dropped.
func (d *Dataset) Filter(expr string) (*Dataset, error) {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing filter %q", expr)
	}
	vars := e.Vars()
	for _, v := range vars {
		if d.tab.Column(v) == nil {
			return nil, errors.Errorf("filter %q: unknown column %q", expr, v)
		}
	}

	var rows []int
	params := make(map[string]interface{}, len(vars))
next:
	for row := 0; row < d.Len(); row++ {
		for _, v := range vars {
			if v == ColTarget {
				params[v] = d.records[row].Target
				continue
			}
			x, ok := d.Value(row, v)
			if !ok {
				continue next
			}
			params[v] = x
		}
		res, err := e.Evaluate(params)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %q on %s", expr, d.records[row].Target)
		}
		keep, ok := res.(bool)
		if !ok {
			return nil, errors.Errorf("filter %q yields %T, want bool", expr, res)
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return d.subset(rows)
}
