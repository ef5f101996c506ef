// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"google.golang.org/api/option"

	_ "github.com/go-sql-driver/mysql"

	"cacheplot/cachelog"
	"cacheplot/chart"
	"cacheplot/dataset"
	"cacheplot/internal/config"
	"cacheplot/storage/db"
	_ "cacheplot/storage/db/sqlite3"
	"cacheplot/storage/fs"
	"cacheplot/storage/fs/gcs"
	"cacheplot/storage/fs/local"
)

// flag names
const (
	flagConfigName         = "config"
	flagFrequencyName      = "frequency-ghz"
	flagFormatName         = "format"
	flagOutputName         = "output"
	flagFilterName         = "filter"
	flagSummaryName        = "summary"
	flagPerGroupName       = "index-per-group"
	flagChartsName         = "charts"
	flagChartFormatName    = "chart-format"
	flagChartNameName      = "chart-name"
	flagChartWidthName     = "chart-width"
	flagChartHeightName    = "chart-height"
	flagDBName             = "db"
	flagFromUploadName     = "from-upload"
	flagPromName           = "prom"
	flagGCSCredentialsName = "gcs-credentials"
	flagVerboseName        = "verbose"
)

// Output formats for the dataset.
const (
	formatText = "text"
	formatCSV  = "csv"
	formatHTML = "html"
	formatXLSX = "xlsx"
	formatNone = "none"
)

var examples = []string{
	"  Print the dataset of two runs:          $ cacheplot logs/bench_run_LRU.log logs/bench_run_victim.log",
	"  Name a source explicitly:               $ cacheplot baseline=logs/run.log",
	"  Chart each result position by capacity: $ cacheplot --index-per-group --charts out/ --chart-format png,svg logs/*.log",
	"  Archive the dataset:                    $ cacheplot --format none --db sqlite3:cache.db logs/*.log",
}

// flags holds the raw command-line flags.
type flags struct {
	configFile     string
	frequency      float64
	format         string
	output         string
	filter         string
	summary        bool
	perGroup       bool
	charts         string
	chartFormats   []string
	chartName      string
	chartWidth     float64
	chartHeight    float64
	db             string
	fromUpload     string
	prom           string
	gcsCredentials string
	verbose        bool
}

// settings is the configuration file with flags applied, plus the
// options that only exist as flags.
type settings struct {
	*config.Config

	Summary    bool
	Indexing   dataset.Indexing
	ChartName  string
	FromUpload string
}

func newRootCmd(stdout io.Writer, log *logrus.Logger) *cobra.Command {
	var fl flags
	cmd := &cobra.Command{
		Use:           "cacheplot [flags] file...",
		Short:         "Convert cache benchmark logs into a dataset and charts",
		Example:       strings.Join(examples, "\n"),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fl.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			s, err := fl.settings(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), s, args, stdout, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.configFile, flagConfigName, "", "read options from the YAML `file`")
	f.Float64Var(&fl.frequency, flagFrequencyName, cachelog.DefaultFrequencyGHz, "convert Cycles to nanoseconds at this clock `frequency` in GHz")
	f.StringVar(&fl.format, flagFormatName, "", "print the dataset as text, csv, html, xlsx or none (default text on a terminal, else csv)")
	f.StringVarP(&fl.output, flagOutputName, "o", "", "write the dataset to `file` instead of standard output")
	f.StringVar(&fl.filter, flagFilterName, "", "keep only rows matching `expr`, such as 'KB >= 32 && Hits > 0'")
	f.BoolVar(&fl.summary, flagSummaryName, false, "print a summary of each target")
	f.BoolVar(&fl.perGroup, flagPerGroupName, false, "restart target numbering in every group so each target collects one result position")
	f.StringVar(&fl.charts, flagChartsName, "", "write charts to `dest`, a directory or gs://bucket/prefix")
	f.StringSliceVar(&fl.chartFormats, flagChartFormatName, []string{"png"}, "chart `formats`: png, svg, pdf")
	f.StringVar(&fl.chartName, flagChartNameName, "cacheplot", "base `name` of chart files")
	f.Float64Var(&fl.chartWidth, flagChartWidthName, 0, "width of each chart panel in `cm`")
	f.Float64Var(&fl.chartHeight, flagChartHeightName, 0, "height of each chart panel in `cm`")
	f.StringVar(&fl.db, flagDBName, "", "archive the dataset in `driver:dsn`, for example sqlite3:cache.db")
	f.StringVar(&fl.fromUpload, flagFromUploadName, "", "read the dataset of upload `id` from --db instead of log files")
	f.StringVar(&fl.prom, flagPromName, "", "write the dataset in Prometheus text format to `file`")
	f.StringVar(&fl.gcsCredentials, flagGCSCredentialsName, "", "Google Cloud credentials `file` for gs:// chart destinations")
	f.BoolVarP(&fl.verbose, flagVerboseName, "v", false, "log progress of each source")
	return cmd
}

// settings loads the configuration file, if any, and applies the flags
// that were set on top of it.
func (fl *flags) settings(set *pflag.FlagSet) (*settings, error) {
	cfg := config.Default()
	if fl.configFile != "" {
		var err error
		if cfg, err = config.Load(fl.configFile); err != nil {
			return nil, err
		}
	}

	if set.Changed(flagFrequencyName) {
		cfg.FrequencyGHz = fl.frequency
	}
	if set.Changed(flagFormatName) {
		cfg.Format = fl.format
	}
	if set.Changed(flagOutputName) {
		cfg.Output = fl.output
	}
	if set.Changed(flagFilterName) {
		cfg.Filter = fl.filter
	}
	if set.Changed(flagChartsName) {
		cfg.Charts.Dir = fl.charts
	}
	if set.Changed(flagChartFormatName) {
		cfg.Charts.Formats = fl.chartFormats
	}
	if set.Changed(flagChartWidthName) {
		cfg.Charts.WidthCm = fl.chartWidth
	}
	if set.Changed(flagChartHeightName) {
		cfg.Charts.HeightCm = fl.chartHeight
	}
	if set.Changed(flagDBName) {
		driver, dsn, ok := strings.Cut(fl.db, ":")
		if !ok || driver == "" || dsn == "" {
			return nil, errors.Errorf("--%s %q: want driver:dsn", flagDBName, fl.db)
		}
		cfg.Database = config.Database{Driver: driver, DSN: dsn}
	}
	if set.Changed(flagPromName) {
		cfg.PrometheusFile = fl.prom
	}
	if set.Changed(flagGCSCredentialsName) {
		cfg.GCSCredentials = fl.gcsCredentials
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{
		Config:     cfg,
		Summary:    fl.summary,
		ChartName:  fl.chartName,
		FromUpload: fl.fromUpload,
	}
	if fl.perGroup {
		s.Indexing = dataset.PerGroup
	}
	if s.FromUpload != "" && cfg.Database.Driver == "" {
		return nil, errors.Errorf("--%s needs --%s", flagFromUploadName, flagDBName)
	}
	return s, nil
}

func run(ctx context.Context, s *settings, args []string, stdout io.Writer, log *logrus.Logger) error {
	var archive *db.DB
	if s.Database.Driver != "" {
		var err error
		archive, err = db.OpenSQL(s.Database.Driver, s.Database.DSN)
		if err != nil {
			return errors.Wrapf(err, "opening %s database", s.Database.Driver)
		}
		defer archive.Close()
	}

	var ds *dataset.Dataset
	var err error
	if s.FromUpload != "" {
		ds, err = loadUpload(ctx, archive, s.FromUpload)
	} else {
		ds, err = build(s, args, log)
	}
	if err != nil {
		return err
	}
	if s.Filter != "" {
		if ds, err = ds.Filter(s.Filter); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"records": ds.Len(),
		"targets": len(ds.Targets()),
		"vars":    len(ds.Vars()),
	}).Debug("dataset ready")

	if err := writeDataset(ds, s, stdout); err != nil {
		return err
	}
	if s.Summary {
		if err := ds.WriteSummary(stdout); err != nil {
			return err
		}
	}

	if s.Charts.Dir != "" {
		if err := saveCharts(ctx, ds, s, log); err != nil {
			return err
		}
	}
	if archive != nil && s.FromUpload == "" {
		u, err := archive.InsertDataset(ctx, ds)
		if err != nil {
			return err
		}
		log.WithField("upload", u.ID).Info("archived dataset")
	}
	if s.PrometheusFile != "" {
		if err := ds.WritePromFile(s.PrometheusFile); err != nil {
			return err
		}
		log.WithField("file", s.PrometheusFile).Debug("wrote prometheus metrics")
	}
	return nil
}

// build parses the log files named by args and the configuration.
func build(s *settings, args []string, log logrus.FieldLogger) (*dataset.Dataset, error) {
	b := dataset.NewBuilder(s.FrequencyGHz)
	b.Log = log
	b.Indexing = s.Indexing
	files := &cachelog.Files{
		Paths:       args,
		Named:       s.Sources,
		AllowStdin:  true,
		AllowLabels: true,
	}
	if err := b.AddFiles(files); err != nil {
		return nil, err
	}
	return b.Done()
}

func loadUpload(ctx context.Context, archive *db.DB, id string) (*dataset.Dataset, error) {
	recs, err := archive.Records(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.FromRecords(recs)
}

// datasetFormat returns the format to print the dataset in. Without an
// explicit format it is inferred from the output file's extension,
// and defaults to text on a terminal and CSV otherwise.
func datasetFormat(s *settings, stdout io.Writer) string {
	if s.Format != "" {
		return s.Format
	}
	if s.Output != "" {
		switch ext := strings.TrimPrefix(filepath.Ext(s.Output), "."); ext {
		case formatText, formatCSV, formatHTML, formatXLSX:
			return ext
		case "txt":
			return formatText
		case "htm":
			return formatHTML
		}
		return formatCSV
	}
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return formatText
	}
	return formatCSV
}

func writeDataset(ds *dataset.Dataset, s *settings, stdout io.Writer) error {
	var write func(io.Writer) error
	switch format := datasetFormat(s, stdout); format {
	case formatText:
		write = ds.WriteText
	case formatCSV:
		write = ds.WriteCSV
	case formatHTML:
		write = ds.WriteHTML
	case formatXLSX:
		write = ds.WriteXLSX
	case formatNone:
		return nil
	default:
		return errors.Errorf("unknown format %q", format)
	}

	if s.Output == "" {
		return write(stdout)
	}
	f, err := os.Create(s.Output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", s.Output)
	}
	return f.Close()
}

// chartFS returns the destination for charts.
func chartFS(ctx context.Context, s *settings) (fs.FS, error) {
	if bucket, prefix, ok := gcs.ParseURL(s.Charts.Dir); ok {
		var opts []option.ClientOption
		if s.GCSCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(s.GCSCredentials))
		}
		return gcs.NewFS(ctx, bucket, prefix, opts...)
	}
	return local.NewFS(s.Charts.Dir), nil
}

func saveCharts(ctx context.Context, ds *dataset.Dataset, s *settings, log logrus.FieldLogger) error {
	formats, err := chart.ParseFormats(strings.Join(s.Charts.Formats, ","))
	if err != nil {
		return err
	}
	fsys, err := chartFS(ctx, s)
	if err != nil {
		return err
	}
	opts := chart.Options{Width: s.Charts.WidthCm, Height: s.Charts.HeightCm}
	if err := chart.Save(ctx, fsys, s.ChartName, formats, ds, opts); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"dest":    s.Charts.Dir,
		"formats": fmt.Sprint(formats),
	}).Info("saved charts")
	return nil
}
