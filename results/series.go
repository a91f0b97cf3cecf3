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

// Package results associates simulation result series with mesh elements.
//
// A [Series] holds the time series of one variable for every cell or every
// face of a mesh.  [Bind] selects one value per element, either at a given
// time or as the maximum or minimum over the simulation, and checks that
// the series matches the mesh.
package results

import (
	"fmt"
	"time"
)

// Variable names a result variable, as stored in the result container.
type Variable string

// These are the variables used by the rasteriser.
const (
	WaterSurface Variable = "Water Surface"
	CellVelocity Variable = "Cell Velocity" // flow speed at the cell centers
	FaceVelocity Variable = "Face Velocity" // normal velocity on the faces
)

// Location tells which kind of mesh element a series refers to.
type Location int

// These are the supported locations.
const (
	OnCells Location = iota
	OnFaces
)

func (l Location) String() string {
	switch l {
	case OnCells:
		return "cells"
	case OnFaces:
		return "faces"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// Series is the time series of one variable over all cells or all faces.
type Series struct {
	Variable Variable
	Location Location

	// Times lists the output times.  Values[k][i] is the value of element i
	// at Times[k].  Missing values are NaN.
	Times  []time.Time
	Values [][]float32

	// Maximum and Minimum optionally hold envelopes computed by the
	// simulation, which may cover more time steps than were written.
	Maximum, Minimum *Extremum
}

// Extremum holds the extreme value of every element and the time at which
// it was attained.
type Extremum struct {
	Values []float32
	Times  []time.Time
}

// NumElements returns the number of cells or faces covered by s.
func (s *Series) NumElements() int {
	switch {
	case len(s.Values) > 0:
		return len(s.Values[0])
	case s.Maximum != nil:
		return len(s.Maximum.Values)
	case s.Minimum != nil:
		return len(s.Minimum.Values)
	}
	return 0
}

// check verifies that all arrays in s have consistent shapes.
func (s *Series) check() error {
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("results: %q has %d times but %d time steps",
			s.Variable, len(s.Times), len(s.Values))
	}
	n := s.NumElements()
	for k, row := range s.Values {
		if len(row) != n {
			return &LengthError{Variable: s.Variable, Location: s.Location, Want: n, Got: len(row),
				Detail: fmt.Sprintf("time step %d", k)}
		}
	}
	for _, e := range []*Extremum{s.Maximum, s.Minimum} {
		if e == nil {
			continue
		}
		if len(e.Values) != n {
			return &LengthError{Variable: s.Variable, Location: s.Location, Want: n, Got: len(e.Values),
				Detail: "envelope"}
		}
		if e.Times != nil && len(e.Times) != n {
			return &LengthError{Variable: s.Variable, Location: s.Location, Want: n, Got: len(e.Times),
				Detail: "envelope times"}
		}
	}
	return nil
}

// Source gives access to the result series of one simulation.
type Source interface {
	// Series returns the series for v, or false if the simulation did not
	// write v.
	Series(v Variable) (*Series, bool)
}

// Store is an in-memory Source.
type Store struct {
	series map[Variable]*Series
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{series: make(map[Variable]*Series)}
}

// Add adds a series to the store.  A second series for the same variable
// is rejected with a *DuplicateVariableError.
func (st *Store) Add(s *Series) error {
	if _, dup := st.series[s.Variable]; dup {
		return &DuplicateVariableError{Variable: s.Variable}
	}
	if err := s.check(); err != nil {
		return err
	}
	st.series[s.Variable] = s
	return nil
}

// Series implements the [Source] interface.
func (st *Store) Series(v Variable) (*Series, bool) {
	s, ok := st.series[v]
	return s, ok
}

// Snapshot returns a series with values for a single output time.
func Snapshot(v Variable, loc Location, t time.Time, values []float32) *Series {
	return &Series{
		Variable: v,
		Location: loc,
		Times:    []time.Time{t},
		Values:   [][]float32{values},
	}
}
