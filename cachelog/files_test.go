// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cachelog

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceName(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{"results_sweep_victim.txt", "victim"},
		{"bench_run_LRU.log", "LRU"},
		{"logs/bench_run_LRU.log", "LRU"},
		{"some_dir/plain.log", "plain"},
		{"a_b_c", "c"},
		{"archive.tar.gz", "archive"},
		{"run_v1.2.log", "v1"},
	} {
		got, err := SourceName(test.in)
		if assert.NoError(t, err, test.in) {
			assert.Equal(t, test.want, got, test.in)
		}
	}

	for _, bad := range []string{"run_.log", ".hidden", ""} {
		_, err := SourceName(bad)
		assert.True(t, errors.Is(err, ErrSourceName), "%q: got %v", bad, err)
	}
}

func names(srcs []Source) []string {
	var out []string
	for _, s := range srcs {
		out = append(out, s.Name)
	}
	return out
}

func TestFilesSources(t *testing.T) {
	f := &Files{
		Paths:       []string{"x/bench_LRU.log", "fifo=x/whatever.log", "y/other_victim.txt"},
		Named:       map[string]string{"zeta": "z_ignored.log", "alpha": "a_ignored.log"},
		AllowLabels: true,
	}
	srcs, err := f.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta", "LRU", "fifo", "victim"}, names(srcs))
	assert.Equal(t, "a_ignored.log", srcs[0].Path)
	assert.Equal(t, "x/whatever.log", srcs[3].Path)
}

func TestFilesLabelsDisallowed(t *testing.T) {
	f := &Files{Paths: []string{"name=bench_LRU.log"}}
	srcs, err := f.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"LRU"}, names(srcs))
	assert.Equal(t, "name=bench_LRU.log", srcs[0].Path)
}

func TestFilesDisambiguate(t *testing.T) {
	f := &Files{
		Paths:       []string{"a/run_LRU.log", "b/run_LRU.log", "LRU=c/x.log", "run_fifo.log"},
		AllowLabels: true,
	}
	srcs, err := f.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"LRU#0", "LRU#1", "LRU", "fifo"}, names(srcs))
}

func TestFilesStdin(t *testing.T) {
	f := &Files{AllowStdin: true}
	srcs, err := f.Sources()
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, StdinName, srcs[0].Name)

	rc, err := srcs[0].Open()
	require.NoError(t, err)
	assert.NoError(t, rc.Close())
}

func TestFilesBadName(t *testing.T) {
	f := &Files{Paths: []string{"run_.log"}}
	_, err := f.Sources()
	assert.True(t, errors.Is(err, ErrSourceName))
}

func TestSourceOpen(t *testing.T) {
	src := Source{Name: "LRU", Path: "testdata/bench_run_LRU.log"}
	rc, err := src.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cycles/KB")

	_, err = Source{Name: "x", Path: "testdata/missing.log"}.Open()
	assert.Error(t, err)
}
