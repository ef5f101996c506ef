// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cacheplot/cachelog"
)

// Indexing selects how target indexes are assigned within a source.
type Indexing int

const (
	// PerSource numbers the records of a source 1, 2, 3, ... across all
	// of its groups, so every target is unique.
	PerSource Indexing = iota

	// PerGroup restarts the numbering at 1 for every group, so a target
	// names a result position (the first, second or third result of a
	// summary line) and collects one record per group.
	PerGroup
)

// A Builder collects records from any number of sources into a
// Dataset.
//
// Sources are processed one at a time and completely. An error from
// any source is sticky: once AddSource or AddFiles fails, Done returns
// that error and no Dataset.
type Builder struct {
	// Indexing controls how target indexes are assigned. The default
	// is PerSource.
	Indexing Indexing

	// Log, if non-nil, receives debug messages about each source and a
	// warning for metrics that trail the last summary line of a source.
	Log logrus.FieldLogger

	frequency float64
	records   []*cachelog.Record
	vars      mapset.Set[string]
	names     []string // vars in order of first appearance
	sources   []string
	err       error
}

// NewBuilder returns a Builder whose sources convert cycle counts to
// nanoseconds using frequencyGHz.
func NewBuilder(frequencyGHz float64) *Builder {
	return &Builder{
		frequency: frequencyGHz,
		vars:      mapset.NewSet[string](),
	}
}

// AddSource parses one source named name from r. fileName is used in
// error messages and record positions.
func (b *Builder) AddSource(name string, r io.Reader, fileName string) error {
	if b.err != nil {
		return b.err
	}
	rd := cachelog.NewReader(r, fileName, b.frequency)
	var recs []*cachelog.Record
	groups := 0
	for rd.Scan() {
		groups++
		for i, rec := range rd.Group() {
			index := len(recs) + 1
			if b.Indexing == PerGroup {
				index = i + 1
			}
			rec.Target = fmt.Sprintf("%s-%d", name, index)
			recs = append(recs, rec)
		}
	}
	if err := rd.Err(); err != nil {
		b.err = errors.Wrapf(err, "source %s", name)
		return b.err
	}

	b.records = append(b.records, recs...)
	for _, v := range rd.Names() {
		if b.vars.Add(v) {
			b.names = append(b.names, v)
		}
	}
	b.sources = append(b.sources, name)

	if b.Log != nil {
		log := b.Log.WithFields(logrus.Fields{"source": name, "file": fileName})
		log.WithFields(logrus.Fields{"groups": groups, "records": len(recs)}).Debug("parsed source")
		if left := rd.Leftover(); len(left) > 0 {
			log.WithField("records", len(left)).Warn("metrics after the last summary line were dropped")
		}
	}
	return nil
}

// AddFiles parses every source described by files. Each file is closed
// as soon as it has been parsed, whether or not parsing succeeded.
func (b *Builder) AddFiles(files *cachelog.Files) error {
	if b.err != nil {
		return b.err
	}
	srcs, err := files.Sources()
	if err != nil {
		b.err = err
		return err
	}
	for _, src := range srcs {
		rc, err := src.Open()
		if err != nil {
			b.err = errors.Wrapf(err, "source %s", src.Name)
			return b.err
		}
		if err := b.addReadCloser(src.Name, src.Path, rc); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addReadCloser(name, fileName string, rc io.ReadCloser) error {
	defer rc.Close()
	return b.AddSource(name, rc, fileName)
}

// Sources returns the names of the sources added so far.
func (b *Builder) Sources() []string {
	return b.sources
}

// Done returns the Dataset of all records added to b.
func (b *Builder) Done() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newDataset(b.records, b.names, b.vars)
}
