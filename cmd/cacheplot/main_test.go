// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cacheplot/storage/db"
)

const (
	lruLog = `=== cache_debug: replacement policy LRU ===
Hits: 1020
Misses: 4
Hits: 998
Misses: 26
Hits: 870
Misses: 154
16KB (Cycles/KB): 1332 | 1998 | 2664
Hits: 2011
Misses: 37
Hits: 1800
Misses: 248
Hits: 1500
Misses: 548
32KB (Cycles/KB): 1998 | 2664 | 3330
`
	victimLog = `Hits: 1021
Evictions: 3
Hits: 1000
Evictions: 24
Hits: 900
Evictions: 124
16KB time (nsec/KB): 1900 | 2800 | 3900
`
	badStructureLog = `Hits: 1
Hits: 2
16KB (Cycles/KB): 1 | 2 | 3
`
)

// writeLog writes content to a file called bench_run_<name>.log in a
// temporary directory and returns its path.
func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench_run_"+name+".log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

// runLogs returns the paths of the LRU and victim runs.
func runLogs(t *testing.T) []string {
	return []string{writeLog(t, "LRU", lruLog), writeLog(t, "victim", victimLog)}
}

// cacheplot runs the command with args and returns its standard output.
func cacheplot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	log, _ := test.NewNullLogger()
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout, log)
	cmd.SetArgs(args)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	err := cmd.Execute()
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := cacheplot(t, args...)
	require.NoError(t, err)
	return out
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestDefaultCSV(t *testing.T) {
	out := lines(mustRun(t, runLogs(t)...))
	require.Len(t, out, 10)
	assert.Equal(t, "Hits,Misses,Evictions,KB,nsec/KB,target", out[0])
	assert.True(t, strings.HasPrefix(out[1], "1020,4,,16,"), out[1])
	assert.Equal(t, "1021,,3,16,1900,victim-1", out[7])
}

func TestTextSummary(t *testing.T) {
	logs := runLogs(t)
	out := mustRun(t, append([]string{"--format", "text", "--summary"}, logs...)...)
	assert.Contains(t, out, "nsec/KB  target")
	assert.Contains(t, out, "geomean nsec/KB")
	assert.Contains(t, out, "victim-3")
}

func TestFilter(t *testing.T) {
	logs := runLogs(t)
	out := lines(mustRun(t, append([]string{"--filter", "Evictions > 10"}, logs...)...))
	assert.Equal(t, []string{
		"Hits,Evictions,KB,nsec/KB,target",
		"1000,24,16,2800,victim-2",
		"900,124,16,3900,victim-3",
	}, out)
}

func TestLabels(t *testing.T) {
	out := lines(mustRun(t, "--frequency-ghz", "1", "base="+writeLog(t, "LRU", lruLog)))
	require.Len(t, out, 7)
	assert.Equal(t, "1020,4,16,1332,base-1", out[1])
	assert.Equal(t, "1500,548,32,3330,base-6", out[6])
}

func TestPerGroup(t *testing.T) {
	out := lines(mustRun(t, "--index-per-group", "--frequency-ghz", "1", writeLog(t, "LRU", lruLog)))
	require.Len(t, out, 7)
	assert.True(t, strings.HasSuffix(out[1], ",LRU-1"))
	assert.True(t, strings.HasSuffix(out[4], ",LRU-1"))
}

func TestStructureError(t *testing.T) {
	_, err := cacheplot(t, writeLog(t, "LRU", lruLog), writeLog(t, "structure", badStructureLog))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source structure")
	assert.Contains(t, err.Error(), "bench_run_structure.log:3")
}

func TestBadFlags(t *testing.T) {
	logs := runLogs(t)
	for _, args := range [][]string{
		{"--format", "yaml", logs[0]},
		{"--frequency-ghz", "0", logs[0]},
		{"--db", "sqlite3", logs[0]},
		{"--from-upload", "1"},
		{"--filter", "Hits >", logs[0]},
	} {
		_, err := cacheplot(t, args...)
		assert.Error(t, err, "%q", args)
	}
}

func TestOutputFile(t *testing.T) {
	logs := runLogs(t)
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "cache.xlsx")
	out := mustRun(t, append([]string{"--output", xlsx}, logs...)...)
	assert.Empty(t, out)
	data, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip file")

	html := filepath.Join(dir, "cache.html")
	mustRun(t, append([]string{"-o", html}, logs...)...)
	data, err = os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table class='cacheplot'>")
}

func TestCharts(t *testing.T) {
	logs := runLogs(t)
	dir := t.TempDir()
	mustRun(t, append([]string{
		"--format", "none",
		"--index-per-group",
		"--charts", dir,
		"--chart-format", "png,svg",
		"--chart-name", "cache",
	}, logs...)...)
	for _, name := range []string{"cache.png", "cache.svg"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotZero(t, fi.Size())
	}
}

func TestArchive(t *testing.T) {
	logs := runLogs(t)
	path := filepath.Join(t.TempDir(), "cache.db")
	want := mustRun(t, append([]string{"--db", "sqlite3:" + path}, logs...)...)

	d, err := db.OpenSQL("sqlite3", path)
	require.NoError(t, err)
	n, err := d.CountUploads()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, d.Close())

	got := mustRun(t, "--db", "sqlite3:"+path, "--from-upload", "1")
	assert.Equal(t, want, got)
}

func TestPrometheus(t *testing.T) {
	logs := runLogs(t)
	path := filepath.Join(t.TempDir(), "cacheplot.prom")
	mustRun(t, append([]string{"--format", "none", "--prom", path}, logs...)...)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cacheplot_metric{kb="16",metric="Evictions",repeat="1",target="victim-1"} 3`)
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cacheplot.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`
frequency_ghz: 1
format: csv
sources:
  fifo: %q
filter: "Hits >= 1000"
`, writeLog(t, "victim", victimLog))), 0666))

	out := lines(mustRun(t, "--config", cfg))
	assert.Equal(t, []string{
		"Hits,Evictions,KB,nsec/KB,target",
		"1021,3,16,1900,fifo-1",
		"1000,24,16,2800,fifo-2",
	}, out)

	// Flags override the file.
	out = lines(mustRun(t, "--config", cfg, "--filter", "Hits < 1000"))
	assert.Equal(t, "900,124,16,3900,fifo-3", out[1])
}

func TestVerboseLogging(t *testing.T) {
	logs := runLogs(t)
	log, hook := test.NewNullLogger()
	cmd := newRootCmd(new(bytes.Buffer), log)
	cmd.SetArgs(append([]string{"-v"}, logs...))
	require.NoError(t, cmd.Execute())
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	var sources []any
	for _, e := range hook.AllEntries() {
		if e.Message == "parsed source" {
			sources = append(sources, e.Data["source"])
		}
	}
	assert.Equal(t, []any{"LRU", "victim"}, sources)
}
