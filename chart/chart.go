// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws a Dataset as a grid of plots.
//
// The grid has one column per target and one row for nsec/KB followed
// by one row per metric. Every panel plots against KB on a log-scaled
// x axis whose range is shared by the whole grid. The y range is
// shared within each row. Every point is marked, so targets holding a
// single record are visible.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"cacheplot/dataset"
	"cacheplot/storage/fs"
)

// A Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// ParseFormats parses a comma-separated list of formats.
func ParseFormats(list string) ([]Format, error) {
	var out []Format
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		switch Format(f) {
		case PNG, SVG, PDF:
			out = append(out, Format(f))
		case "":
		default:
			return nil, errors.Errorf("unknown chart format %q", f)
		}
	}
	return out, nil
}

// Options controls the size of a rendered grid.
type Options struct {
	// Width and Height are the size of each panel in centimeters.
	Width, Height float64

	// DPI is the resolution of PNG output.
	DPI int
}

// DefaultOptions are used for zero fields of Options.
var DefaultOptions = Options{Width: 8, Height: 6, DPI: 96}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions.Height
	}
	if o.DPI <= 0 {
		o.DPI = DefaultOptions.DPI
	}
	return o
}

// span tracks the range of finite values.
type span struct {
	min, max float64
}

func newSpan() span {
	return span{math.Inf(1), math.Inf(-1)}
}

func (s *span) add(x float64) {
	s.min = math.Min(s.min, x)
	s.max = math.Max(s.max, x)
}

func (s span) empty() bool {
	return s.min > s.max
}

// Grid builds the plots for ds, indexed by row then column.
func Grid(ds *dataset.Dataset) ([][]*plot.Plot, error) {
	targets := ds.Targets()
	if len(targets) == 0 {
		return nil, errors.New("no records to chart")
	}
	ys := append([]string{dataset.ColNsecPerKB}, ds.Vars()...)

	// Collect points per panel.
	points := make([][]plotter.XYs, len(ys))
	xSpan := newSpan()
	ySpans := make([]span, len(ys))
	for i := range ys {
		points[i] = make([]plotter.XYs, len(targets))
		ySpans[i] = newSpan()
	}
	col := make(map[string]int)
	for j, target := range targets {
		col[target] = j
	}
	for row, rec := range ds.Records() {
		j := col[rec.Target]
		x, _ := ds.Value(row, dataset.ColKB)
		if x <= 0 {
			// Not representable on a log scale.
			continue
		}
		for i, name := range ys {
			y, ok := ds.Value(row, name)
			if !ok || math.IsInf(y, 0) {
				continue
			}
			points[i][j] = append(points[i][j], plotter.XY{X: x, Y: y})
			xSpan.add(x)
			ySpans[i].add(y)
		}
	}
	if xSpan.empty() {
		return nil, errors.New("no positive capacities to chart")
	}
	if xSpan.min == xSpan.max {
		xSpan.min, xSpan.max = xSpan.min/2, xSpan.max*2
	}

	plots := make([][]*plot.Plot, len(ys))
	for i, name := range ys {
		plots[i] = make([]*plot.Plot, len(targets))
		for j, target := range targets {
			p := plot.New()
			if i == 0 {
				p.Title.Text = target
			}
			if j == 0 {
				p.Y.Label.Text = name
			}
			if i == len(ys)-1 {
				p.X.Label.Text = dataset.ColKB
			}
			p.X.Scale = plot.LogScale{}
			p.X.Tick.Marker = plot.LogTicks{Prec: -1}
			p.Add(plotter.NewGrid())

			c := metricColor
			if i == 0 {
				c = nsecColor
			}
			if err := addPoints(p, points[i][j], c); err != nil {
				return nil, errors.Wrapf(err, "%s of %s", name, target)
			}

			p.X.Min, p.X.Max = xSpan.min, xSpan.max
			if ySpans[i].empty() {
				p.Y.Min, p.Y.Max = 0, 1
			} else {
				p.Y.Min, p.Y.Max = ySpans[i].min, ySpans[i].max
			}
			plots[i][j] = p
		}
	}
	return plots, nil
}

// Series colours. The nsec/KB row is drawn in its own colour.
var (
	nsecColor   = color.RGBA{B: 0xcc, A: 0xff}
	metricColor = color.RGBA{R: 0xcc, A: 0xff}
)

// addPoints draws xys as a line with a circle at every point, so a
// target with a single record still shows up.
func addPoints(p *plot.Plot, xys plotter.XYs, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	l.Color = c
	s.Color = c
	s.Shape = draw.CircleGlyph{}
	p.Add(l, s)
	return nil
}

func newCanvas(format Format, w, h vg.Length, dpi int) (vg.CanvasWriterTo, error) {
	switch format {
	case PNG:
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}, nil
	case SVG:
		return vgsvg.New(w, h), nil
	case PDF:
		return vgpdf.New(w, h), nil
	}
	return nil, errors.Errorf("unknown chart format %q", format)
}

// Render draws the grid for ds and writes it to w in the given format.
func Render(ds *dataset.Dataset, w io.Writer, format Format, opts Options) error {
	opts = opts.withDefaults()
	plots, err := Grid(ds)
	if err != nil {
		return err
	}
	rows, cols := len(plots), len(plots[0])
	width := vg.Length(opts.Width*float64(cols)) * vg.Centimeter
	height := vg.Length(opts.Height*float64(rows)) * vg.Centimeter
	c, err := newCanvas(format, width, height, opts.DPI)
	if err != nil {
		return err
	}

	t := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align(plots, t, draw.New(c))
	for i := range plots {
		for j, p := range plots[i] {
			p.Draw(canvases[i][j])
		}
	}
	if _, err := c.WriteTo(w); err != nil {
		return errors.Wrapf(err, "writing %s", format)
	}
	return nil
}

// Save renders ds once per format to fsys, naming each file base
// followed by the format's extension.
func Save(ctx context.Context, fsys fs.FS, base string, formats []Format, ds *dataset.Dataset, opts Options) error {
	meta := map[string]string{
		"targets": strings.Join(ds.Targets(), ","),
		"vars":    strings.Join(ds.Vars(), ","),
	}
	for _, format := range formats {
		name := fmt.Sprintf("%s.%s", base, format)
		w, err := fsys.NewWriter(ctx, name, meta)
		if err != nil {
			return errors.Wrapf(err, "creating %s", name)
		}
		if err := Render(ds, w, format, opts); err != nil {
			w.CloseWithError(err)
			return errors.Wrapf(err, "rendering %s", name)
		}
		if err := w.Close(); err != nil {
			return errors.Wrapf(err, "closing %s", name)
		}
	}
	return nil
}
