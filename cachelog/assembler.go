// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cachelog

import (
	"regexp"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// DefaultFrequencyGHz is the clock frequency used to convert cycle
// counts to nanoseconds when no other frequency is configured.
const DefaultFrequencyGHz = 0.666

var (
	// ErrStructure reports a summary line that does not close exactly
	// GroupSize records.
	ErrStructure = errors.New("summary line does not close a group of three records")

	// ErrNumber reports a numeric field of a matched line that cannot be
	// represented.
	ErrNumber = errors.New("malformed numeric token")

	// ErrFrequency reports a cycle count that cannot be converted
	// because the configured frequency is not positive.
	ErrFrequency = errors.New("frequency must be positive")
)

var (
	summaryLine = regexp.MustCompile(`(\d+)KB.*: (\d+) \| (\d+) \| (\d+)`)
	metricLine  = regexp.MustCompile(`([\w\s]+): (\d+)`)
)

// cyclesMarker marks summary lines whose results are cycle counts.
const cyclesMarker = "Cycles"

// State is the state of an Assembler.
type State int

const (
	// Accumulating means metric lines are being collected into the
	// records of the current group.
	Accumulating State = iota

	// GroupComplete means a summary line closed the current group and
	// the group is waiting to be taken.
	GroupComplete
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case GroupComplete:
		return "group complete"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// An Assembler turns log lines into record groups. It has no notion of
// files or line numbers; Reader layers those on top.
//
// The zero value is not usable; construct one with NewAssembler.
type Assembler struct {
	frequency float64
	state     State

	// pending is the sequence of records of the current group. It
	// always holds at least one record while accumulating.
	pending []*Record

	vars  mapset.Set[string]
	names []string // vars in order of first appearance
}

// NewAssembler returns an Assembler that divides cycle counts by
// frequencyGHz to obtain nanoseconds.
func NewAssembler(frequencyGHz float64) *Assembler {
	return &Assembler{
		frequency: frequencyGHz,
		pending:   []*Record{new(Record)},
		vars:      mapset.NewSet[string](),
	}
}

// State returns the current state of a.
func (a *Assembler) State() State {
	return a.state
}

// Pending returns the records of the group being assembled. The caller
// must not modify them.
func (a *Assembler) Pending() []*Record {
	return a.pending
}

// Vars returns the set of metric names a has seen. It includes names
// from records that were never completed.
func (a *Assembler) Vars() mapset.Set[string] {
	return a.vars
}

// Names returns the metric names a has seen in order of first
// appearance.
func (a *Assembler) Names() []string {
	return a.names
}

// Line processes one line of input, which should already be trimmed of
// surrounding white space. It reports whether the line completed a
// group, in which case the caller must collect the group with Take
// before passing in more lines.
func (a *Assembler) Line(line string) (complete bool, err error) {
	if a.state != Accumulating {
		return false, errors.New("cachelog: Line called on a completed group")
	}
	if m := summaryLine.FindStringSubmatch(line); m != nil {
		return true, a.summary(line, m[1:])
	}
	if m := metricLine.FindStringSubmatch(line); m != nil {
		return false, a.metric(strings.TrimSpace(m[1]), m[2])
	}
	return false, nil
}

// summary closes the current group. fields holds the KB capture
// followed by the three result captures.
func (a *Assembler) summary(line string, fields []string) error {
	if len(a.pending) != GroupSize {
		return errors.Wrapf(ErrStructure, "have %d record(s)", len(a.pending))
	}
	kb, err := parseInt(fields[0])
	if err != nil {
		return err
	}
	cycles := strings.Contains(line, cyclesMarker)
	if cycles && !(a.frequency > 0) {
		return errors.Wrapf(ErrFrequency, "have %v GHz", a.frequency)
	}
	var results [GroupSize]float64
	for i, f := range fields[1:] {
		v, err := parseInt(f)
		if err != nil {
			return err
		}
		results[i] = float64(v)
		if cycles {
			results[i] /= a.frequency
		}
	}
	for i, rec := range a.pending {
		rec.KB = kb
		rec.NsecPerKB = results[i]
	}
	a.state = GroupComplete
	return nil
}

// metric adds what to the last pending record, starting a new record
// if the last one already has a metric with that name.
func (a *Assembler) metric(what, value string) error {
	v, err := parseInt(value)
	if err != nil {
		return err
	}
	last := a.pending[len(a.pending)-1]
	if last.Has(what) {
		last = new(Record)
		a.pending = append(a.pending, last)
	}
	last.Metrics = append(last.Metrics, Metric{what, v})
	if a.vars.Add(what) {
		a.names = append(a.names, what)
	}
	return nil
}

// Take returns the group closed by the last summary line and resets a
// to accumulate the next group.
func (a *Assembler) Take() (Group, error) {
	var g Group
	if a.state != GroupComplete {
		return g, errors.New("cachelog: Take called before a summary line")
	}
	copy(g[:], a.pending)
	a.pending = []*Record{new(Record)}
	a.state = Accumulating
	return g, nil
}

// Leftover returns the pending records that hold at least one metric.
// At the end of the input these were never closed by a summary line.
func (a *Assembler) Leftover() []*Record {
	var out []*Record
	for _, rec := range a.pending {
		if len(rec.Metrics) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrNumber, "%q", s)
	}
	return v, nil
}
