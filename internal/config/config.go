// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads cacheplot configuration files.
//
// A configuration file is YAML:
//
//	frequency_ghz: 0.666
//	sources:
//	  LRU: logs/bench_run_LRU.log
//	filter: "KB >= 16"
//	format: csv
//	output: cache.csv
//	charts:
//	  dir: gs://perf-charts/cache
//	  formats: [png, svg]
//	  width_cm: 8
//	  height_cm: 6
//	database:
//	  driver: sqlite3
//	  dsn: cache.db
//	prometheus_file: /var/lib/node_exporter/cacheplot.prom
//	gcs_credentials: key.json
//
// Command-line flags override values from the file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"cacheplot/cachelog"
)

// Config is the contents of a configuration file.
type Config struct {
	FrequencyGHz float64 `yaml:"frequency_ghz"`

	// Sources maps explicit source names to log files.
	Sources map[string]string `yaml:"sources"`

	Filter string `yaml:"filter"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`

	Charts   Charts   `yaml:"charts"`
	Database Database `yaml:"database"`

	PrometheusFile string `yaml:"prometheus_file"`
	GCSCredentials string `yaml:"gcs_credentials"`
}

// Charts configures chart rendering.
type Charts struct {
	// Dir is a local directory or a gs://bucket/prefix URL.
	Dir      string   `yaml:"dir"`
	Formats  []string `yaml:"formats"`
	WidthCm  float64  `yaml:"width_cm"`
	HeightCm float64  `yaml:"height_cm"`
}

// Database configures the SQL archive.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		FrequencyGHz: cachelog.DefaultFrequencyGHz,
		Charts: Charts{
			Formats: []string{"png"},
		},
	}
}

// Parse parses a configuration file's contents on top of the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Validate reports configurations that cannot be used.
func (c *Config) Validate() error {
	if c.FrequencyGHz <= 0 {
		return errors.Errorf("frequency_ghz must be positive, got %v", c.FrequencyGHz)
	}
	if (c.Database.Driver == "") != (c.Database.DSN == "") {
		return errors.New("database needs both driver and dsn")
	}
	for name := range c.Sources {
		if name == "" {
			return errors.New("sources: empty source name")
		}
	}
	return nil
}
