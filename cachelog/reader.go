// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cachelog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// A Reader reads record groups from a cache benchmark log.
//
// Its API is modeled on bufio.Scanner. Unlike the Go benchmark format,
// every error in a log is fatal: once Scan returns false, Err reports
// what stopped it.
type Reader struct {
	s        *bufio.Scanner
	asm      *Assembler
	fileName string
	line     int

	group Group
	err   error

	skipping bool // discarding the rest of an over-long line
}

// A SyntaxError reports a line of a log that could not be assembled.
type SyntaxError struct {
	FileName string
	Line     int
	Text     string // the offending line
	Msg      string
	Err      error // underlying error, if any
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.FileName, e.Line, e.Msg, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// maxLine is the longest line a Reader parses. Longer lines can only
// be commentary and are skipped.
const maxLine = 1 << 20

// NewReader returns a Reader that reads from r. fileName is used in
// error messages and record positions; it is purely diagnostic.
// frequencyGHz converts cycle counts into nanoseconds.
func NewReader(r io.Reader, fileName string, frequencyGHz float64) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	rd := &Reader{
		asm:      NewAssembler(frequencyGHz),
		fileName: fileName,
	}
	rd.s = bufio.NewScanner(r)
	rd.s.Buffer(nil, maxLine)
	rd.s.Split(rd.splitLines)
	return rd
}

// splitLines is bufio.ScanLines, except that a line filling the whole
// buffer is discarded up to its newline and yields an empty token.
func (r *Reader) splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if r.skipping {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			r.skipping = false
			return i + 1, []byte{}, nil
		}
		if atEOF {
			r.skipping = false
			return len(data), []byte{}, nil
		}
		return len(data), nil, nil
	}
	advance, token, err = bufio.ScanLines(data, atEOF)
	if advance == 0 && token == nil && err == nil && len(data) >= maxLine {
		r.skipping = true
		return len(data), nil, nil
	}
	return advance, token, err
}

func (r *Reader) newSyntaxError(text string, err error) *SyntaxError {
	return &SyntaxError{r.fileName, r.line, text, err.Error(), err}
}

// Scan advances the reader to the next record group and reports
// whether one was read. The caller should use Group to get it. If Scan
// reaches EOF or an error occurs, it returns false, in which case the
// caller should use Err to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.s.Scan() {
		r.line++
		text := strings.TrimSpace(r.s.Text())
		complete, err := r.asm.Line(text)
		if err != nil {
			r.err = r.newSyntaxError(text, err)
			return false
		}
		if !complete {
			continue
		}
		g, err := r.asm.Take()
		if err != nil {
			r.err = r.newSyntaxError(text, err)
			return false
		}
		for _, rec := range g {
			rec.fileName, rec.line = r.fileName, r.line
		}
		r.group = g
		return true
	}
	if err := r.s.Err(); err != nil {
		r.err = errors.Wrapf(err, "%s:%d", r.fileName, r.line)
	}
	return false
}

// Group returns the group read by the last call to Scan. The records
// belong to the caller.
func (r *Reader) Group() Group {
	return r.group
}

// Err returns the first error that stopped Scan, or nil if Scan
// reached the end of the input.
func (r *Reader) Err() error {
	return r.err
}

// Vars returns the sorted names of all metrics read so far.
func (r *Reader) Vars() []string {
	vars := r.asm.Vars().ToSlice()
	sort.Strings(vars)
	return vars
}

// Names returns the names of all metrics read so far in order of first
// appearance.
func (r *Reader) Names() []string {
	return r.asm.Names()
}

// Leftover returns records holding metrics that no summary line has
// closed yet. After Scan returns false with a nil Err, these are
// metrics that trail the last summary line of the input.
func (r *Reader) Leftover() []*Record {
	return r.asm.Leftover()
}
