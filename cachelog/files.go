// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cachelog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrSourceName reports an identifier from which no source name can be
// derived.
var ErrSourceName = errors.New("cannot derive source name")

// StdinName is the source name given to standard input.
const StdinName = "stdin"

// SourceName derives the short name of a source from its identifier,
// typically a file path. The name is the part of the base name after
// the last underscore and before the first dot that follows it, so
// "logs/bench_run_LRU.log" is named "LRU".
//
// Identifiers that produce an empty name, such as "run_.log", are
// rejected; such sources must be given an explicit name.
func SourceName(identifier string) (string, error) {
	name := filepath.Base(identifier)
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "/" {
		return "", errors.Wrapf(ErrSourceName, "%q", identifier)
	}
	return name, nil
}

// A Source is one named input of a dataset.
type Source struct {
	Name string
	Path string

	isStdin bool
}

// Open opens the source for reading. The caller must close the result.
// Closing standard input is a no-op.
func (s Source) Open() (io.ReadCloser, error) {
	if s.isStdin {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(s.Path)
}

// A Files describes a set of log files and how they are named.
//
// Sources are named by SourceName unless a name is given explicitly,
// either through Named or, if AllowLabels is set, by writing a path as
// name=path. Derived names that collide are disambiguated by appending
// "#N" so that their records stay distinguishable; explicit names are
// used exactly as given.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// Named maps explicit source names to file names. Named sources
	// come first, in sorted name order, followed by Paths.
	Named map[string]string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if there are no other inputs, stdin is read.
	AllowStdin bool

	// AllowLabels indicates that entries in Paths may be of the form
	// name=path.
	AllowLabels bool
}

// Sources returns the named sources described by f in reading order.
func (f *Files) Sources() ([]Source, error) {
	var srcs []Source
	explicit := make(map[int]bool)

	names := make([]string, 0, len(f.Named))
	for name := range f.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		explicit[len(srcs)] = true
		srcs = append(srcs, f.source(name, f.Named[name]))
	}

	if f.AllowStdin && len(f.Paths) == 0 && len(srcs) == 0 {
		srcs = append(srcs, Source{StdinName, "-", true})
	}
	for _, path := range f.Paths {
		if i := strings.Index(path, "="); f.AllowLabels && i >= 0 {
			explicit[len(srcs)] = true
			srcs = append(srcs, f.source(path[:i], path[i+1:]))
			continue
		}
		var name string
		if f.AllowStdin && path == "-" {
			name = StdinName
		} else {
			var err error
			if name, err = SourceName(path); err != nil {
				return nil, err
			}
		}
		srcs = append(srcs, f.source(name, path))
	}

	// If two files derive the same name, their targets would be
	// indistinguishable. Disambiguate them.
	count := make(map[string]int)
	for i, src := range srcs {
		if !explicit[i] {
			count[src.Name]++
		}
	}
	seen := make(map[string]int)
	for i := range srcs {
		src := &srcs[i]
		if explicit[i] || count[src.Name] == 1 {
			continue
		}
		name := src.Name
		src.Name = fmt.Sprintf("%s#%d", name, seen[name])
		seen[name]++
	}
	return srcs, nil
}

func (f *Files) source(name, path string) Source {
	return Source{name, path, f.AllowStdin && path == "-"}
}
