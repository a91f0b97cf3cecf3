// seehuhn.de/go/meshraster - rasterise 2D hydraulic meshes
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package results

import (
	"fmt"
	"math"
	"time"

	"seehuhn.de/go/meshraster/mesh"
)

type aggKind int

const (
	aggInstant aggKind = iota
	aggMaximum
	aggMinimum
)

// Aggregation selects how one value per element is chosen from a series.
type Aggregation struct {
	kind aggKind
	at   time.Time
}

// Instant selects the values at time t.  The time must match one of the
// output times exactly.
func Instant(t time.Time) Aggregation {
	return Aggregation{kind: aggInstant, at: t}
}

// These aggregations select the largest and smallest value of every
// element over the whole simulation.
var (
	Maximum = Aggregation{kind: aggMaximum}
	Minimum = Aggregation{kind: aggMinimum}
)

func (a Aggregation) String() string {
	switch a.kind {
	case aggMaximum:
		return "maximum"
	case aggMinimum:
		return "minimum"
	default:
		return "instant " + a.at.Format(time.RFC3339)
	}
}

// Binding associates one value of a result variable with every cell or
// every face of a mesh.  A Binding is immutable.
type Binding struct {
	Variable    Variable
	Location    Location
	Aggregation Aggregation

	values []float32
	steps  []int // originating time step per element, -1 if unknown
	times  []time.Time
}

// Bind selects the values of variable v according to agg, and checks that
// there is one value for every element of topo.
//
// Bind fails with a *MissingVariableError if src has no series for v, and
// with a *LengthError if the number of values does not match the mesh.
func Bind(topo *mesh.Topology, src Source, v Variable, agg Aggregation) (*Binding, error) {
	s, ok := src.Series(v)
	if !ok || s == nil {
		return nil, &MissingVariableError{Variable: v}
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	want := topo.NumCells()
	if s.Location == OnFaces {
		want = topo.NumFaces()
	}
	if got := s.NumElements(); got != want {
		return nil, &LengthError{Variable: v, Location: s.Location, Want: want, Got: got}
	}

	b := &Binding{
		Variable:    v,
		Location:    s.Location,
		Aggregation: agg,
		times:       s.Times,
	}
	switch agg.kind {
	case aggInstant:
		k := findTime(s.Times, agg.at)
		if k < 0 {
			return nil, fmt.Errorf("%w: %q at %s", ErrTimestepNotFound, v, agg.at.Format(time.RFC3339))
		}
		b.values = s.Values[k]
		b.steps = make([]int, want)
		for i := range b.steps {
			b.steps[i] = k
		}
	case aggMaximum:
		b.values, b.steps = envelope(s, s.Maximum, want, func(a, b float32) bool { return a > b })
	case aggMinimum:
		b.values, b.steps = envelope(s, s.Minimum, want, func(a, b float32) bool { return a < b })
	}
	return b, nil
}

// envelope returns the extreme value of every element, either from the
// precomputed envelope pre or by scanning the series.  better(a, b)
// reports whether a is more extreme than b.
func envelope(s *Series, pre *Extremum, n int, better func(a, b float32) bool) ([]float32, []int) {
	steps := make([]int, n)
	if pre != nil {
		for i := range steps {
			steps[i] = -1
			if pre.Times != nil {
				steps[i] = findTime(s.Times, pre.Times[i])
			}
		}
		return pre.Values, steps
	}

	values := make([]float32, n)
	for i := range values {
		values[i] = float32(math.NaN())
		steps[i] = -1
	}
	for k, row := range s.Values {
		for i, v := range row {
			if v != v {
				continue
			}
			if steps[i] < 0 || better(v, values[i]) {
				values[i] = v
				steps[i] = k
			}
		}
	}
	return values, steps
}

func findTime(times []time.Time, t time.Time) int {
	for k, tk := range times {
		if tk.Equal(t) {
			return k
		}
	}
	return -1
}

// Len returns the number of elements.
func (b *Binding) Len() int { return len(b.values) }

// Value returns the value of element i.  Missing values are NaN.
func (b *Binding) Value(i int) float64 { return float64(b.values[i]) }

// Values returns all values.  The slice must not be modified.
func (b *Binding) Values() []float32 { return b.values }

// Step returns the index of the output time at which the value of element
// i was taken, or -1 if this is not known.
func (b *Binding) Step(i int) int { return b.steps[i] }

// Time returns the output time at which the value of element i was taken.
// ok is false if this is not known.
func (b *Binding) Time(i int) (t time.Time, ok bool) {
	k := b.steps[i]
	if k < 0 {
		return time.Time{}, false
	}
	return b.times[k], true
}

// Coincident binds variable v at the same time steps as b, element by
// element.  This gives, for example, the velocity at the time of maximum
// water surface.  Elements whose time step is unknown get NaN.
//
// The series for v must refer to the same elements as b.
func (b *Binding) Coincident(src Source, v Variable) (*Binding, error) {
	s, ok := src.Series(v)
	if !ok || s == nil {
		return nil, &MissingVariableError{Variable: v}
	}
	if s.Location != b.Location {
		return nil, fmt.Errorf("%w: %q is on %s, %q is on %s",
			ErrLocationMismatch, v, s.Location, b.Variable, b.Location)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	if got := s.NumElements(); got != b.Len() {
		return nil, &LengthError{Variable: v, Location: s.Location, Want: b.Len(), Got: got}
	}
	if len(s.Times) != len(b.times) {
		return nil, fmt.Errorf("results: %q and %q have different output times", v, b.Variable)
	}

	c := &Binding{
		Variable:    v,
		Location:    b.Location,
		Aggregation: b.Aggregation,
		values:      make([]float32, b.Len()),
		steps:       b.steps,
		times:       s.Times,
	}
	for i, k := range b.steps {
		if k < 0 {
			c.values[i] = float32(math.NaN())
			continue
		}
		c.values[i] = s.Values[k][i]
	}
	return c, nil
}
