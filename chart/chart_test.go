// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"cacheplot/cachelog"
	"cacheplot/dataset"
	"cacheplot/storage/fs"
)

const lruLog = `Hits: 1020
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

const victimLog = `Hits: 1021
Evictions: 3
Hits: 1000
Evictions: 24
Hits: 900
Evictions: 124
16KB time (nsec/KB): 1900 | 2800 | 3900
`

func buildDataset(t *testing.T, indexing dataset.Indexing) *dataset.Dataset {
	t.Helper()
	b := dataset.NewBuilder(cachelog.DefaultFrequencyGHz)
	b.Indexing = indexing
	require.NoError(t, b.AddSource("LRU", strings.NewReader(lruLog), "bench_run_LRU.log"))
	require.NoError(t, b.AddSource("victim", strings.NewReader(victimLog), "bench_run_victim.log"))
	ds, err := b.Done()
	require.NoError(t, err)
	return ds
}

func testDataset(t *testing.T) *dataset.Dataset {
	return buildDataset(t, dataset.PerGroup)
}

func TestGridShape(t *testing.T) {
	ds := testDataset(t)
	plots, err := Grid(ds)
	require.NoError(t, err)

	// nsec/KB plus Evictions, Hits and Misses, by six targets.
	require.Len(t, plots, 4)
	for _, row := range plots {
		require.Len(t, row, 6)
	}

	targets := ds.Targets()
	for j, p := range plots[0] {
		assert.Equal(t, targets[j], p.Title.Text)
	}
	for i, row := range plots {
		for j, p := range row {
			if i > 0 {
				assert.Empty(t, p.Title.Text)
			}
			if j > 0 {
				assert.Empty(t, p.Y.Label.Text)
			}
		}
	}
	wantY := []string{"nsec/KB", "Evictions", "Hits", "Misses"}
	for i, row := range plots {
		assert.Equal(t, wantY[i], row[0].Y.Label.Text)
	}
	assert.Equal(t, "KB", plots[3][0].X.Label.Text)
	assert.Empty(t, plots[0][0].X.Label.Text)
}

func TestGridSharedAxes(t *testing.T) {
	plots, err := Grid(testDataset(t))
	require.NoError(t, err)

	for _, row := range plots {
		for _, p := range row {
			assert.IsType(t, plot.LogScale{}, p.X.Scale)
			assert.Equal(t, 16.0, p.X.Min)
			assert.Equal(t, 32.0, p.X.Max)
		}
		for _, p := range row[1:] {
			assert.Equal(t, row[0].Y.Min, p.Y.Min)
			assert.Equal(t, row[0].Y.Max, p.Y.Max)
		}
	}
	assert.InDelta(t, 1900, plots[0][0].Y.Min, 1e-6)
	assert.InDelta(t, 5000, plots[0][0].Y.Max, 1e-6)
	// Evictions only come from victim.
	assert.Equal(t, 3.0, plots[1][0].Y.Min)
	assert.Equal(t, 124.0, plots[1][0].Y.Max)
}

func TestGridSingleCapacity(t *testing.T) {
	b := dataset.NewBuilder(1)
	require.NoError(t, b.AddSource("a", strings.NewReader("H: 1\nH: 2\nH: 3\n8KB t: 1 | 2 | 3\n"), "a.log"))
	ds, err := b.Done()
	require.NoError(t, err)

	plots, err := Grid(ds)
	require.NoError(t, err)
	assert.Equal(t, 4.0, plots[0][0].X.Min)
	assert.Equal(t, 16.0, plots[0][0].X.Max)
}

func TestGridEmpty(t *testing.T) {
	ds, err := dataset.NewBuilder(1).Done()
	require.NoError(t, err)
	_, err = Grid(ds)
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("png, SVG,,pdf")
	require.NoError(t, err)
	assert.Equal(t, []Format{PNG, SVG, PDF}, got)

	_, err = ParseFormats("png,gif")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	ds := testDataset(t)
	for format, magic := range map[Format]string{
		PNG: "\x89PNG",
		SVG: "<?xml",
		PDF: "%PDF",
	} {
		var buf bytes.Buffer
		require.NoError(t, Render(ds, &buf, format, Options{}), format)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(magic)), "%s output starts with %q", format, buf.Bytes()[:8])
	}

	assert.Error(t, Render(ds, new(bytes.Buffer), "gif", Options{}))
}

func TestSave(t *testing.T) {
	ds := testDataset(t)
	mem := fs.NewMemFS()
	require.NoError(t, Save(context.Background(), mem, "charts/cache", []Format{PNG, SVG}, ds, Options{Width: 4, Height: 3}))
	assert.Equal(t, []string{"charts/cache.png", "charts/cache.svg"}, mem.Files())

	_, meta, ok := mem.Content("charts/cache.svg")
	require.True(t, ok)
	assert.Equal(t, "Evictions,Hits,Misses", meta["vars"])

	// A failed render leaves no file behind.
	mem = fs.NewMemFS()
	assert.Error(t, Save(context.Background(), mem, "bad", []Format{"gif"}, ds, Options{}))
	assert.Empty(t, mem.Files())
}

// countColor counts the pixels of img that are exactly c.
func countColor(img image.Image, c color.Color) int {
	r0, g0, b0, a0 := c.RGBA()
	n := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if r == r0 && g == g0 && b == b0 && a == a0 {
				n++
			}
		}
	}
	return n
}

func TestGridSingleRecordTargets(t *testing.T) {
	// Every target holds one record, so a panel's series is one point.
	ds := buildDataset(t, dataset.PerSource)
	plots, err := Grid(ds)
	require.NoError(t, err)
	require.Len(t, plots[0], 9)

	for i, row := range plots {
		for j, p := range row {
			n := 0
			if _, ok := ds.Value(j, ds.Vars()[max(i-1, 0)]); i == 0 || ok {
				n = 1
			}
			// A line and a marker per point.
			assert.Len(t, p.GlyphBoxes(p), 2*n, "panel %d,%d", i, j)
		}
	}

	// Rows nsec/KB and Hits of LRU-1.
	for i, c := range map[int]color.Color{0: nsecColor, 2: metricColor} {
		p := plots[i][0]
		canvas := vgimg.NewWith(vgimg.UseWH(8*vg.Centimeter, 6*vg.Centimeter),
			vgimg.UseDPI(96), vgimg.UseBackgroundColor(color.White))
		p.Draw(draw.New(canvas))
		assert.NotZero(t, countColor(canvas.Image(), c), "row %d of %s is blank", i, p.Title.Text)
	}
}
