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
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/testcases"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// threeCells returns a 3×1 mesh, which has 10 faces.
func threeCells(t *testing.T) *mesh.Topology {
	t.Helper()
	g, _ := testcases.Regular(3, 1, vec.Vec2{}, 1)
	topo, err := mesh.Build(g)
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

func wseSeries() *Series {
	nan := float32(math.NaN())
	return &Series{
		Variable: WaterSurface,
		Location: OnCells,
		Times:    []time.Time{t0, t0.Add(time.Hour), t0.Add(2 * time.Hour)},
		Values: [][]float32{
			{1, 5, nan},
			{3, 4, nan},
			{2, 6, nan},
		},
	}
}

func TestBindInstant(t *testing.T) {
	topo := threeCells(t)
	st := NewStore()
	if err := st.Add(wseSeries()); err != nil {
		t.Fatal(err)
	}

	b, err := Bind(topo, st, WaterSurface, Instant(t0.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 3 || b.Value(0) != 3 || b.Value(1) != 4 || !math.IsNaN(b.Value(2)) {
		t.Errorf("got values %v", b.Values())
	}
	if tm, ok := b.Time(1); !ok || !tm.Equal(t0.Add(time.Hour)) {
		t.Errorf("got time %v, %t", tm, ok)
	}

	_, err = Bind(topo, st, WaterSurface, Instant(t0.Add(time.Minute)))
	if !errors.Is(err, ErrTimestepNotFound) {
		t.Errorf("expected ErrTimestepNotFound, got %v", err)
	}
}

func TestBindExtrema(t *testing.T) {
	topo := threeCells(t)
	st := NewStore()
	if err := st.Add(wseSeries()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		agg    Aggregation
		values []float64
		steps  []int
	}{
		{Maximum, []float64{3, 6}, []int{1, 2, -1}},
		{Minimum, []float64{1, 4}, []int{0, 1, -1}},
	}
	for _, tc := range tests {
		t.Run(tc.agg.String(), func(t *testing.T) {
			b, err := Bind(topo, st, WaterSurface, tc.agg)
			if err != nil {
				t.Fatal(err)
			}
			for i, want := range tc.values {
				if b.Value(i) != want {
					t.Errorf("element %d: got %g, want %g", i, b.Value(i), want)
				}
			}
			if !math.IsNaN(b.Value(2)) {
				t.Errorf("all-NaN element has value %g", b.Value(2))
			}
			var steps []int
			for i := range b.Len() {
				steps = append(steps, b.Step(i))
			}
			if !slices.Equal(steps, tc.steps) {
				t.Errorf("got steps %v, want %v", steps, tc.steps)
			}
			if _, ok := b.Time(2); ok {
				t.Error("all-NaN element has a time")
			}
		})
	}
}

func TestBindEnvelope(t *testing.T) {
	topo := threeCells(t)
	s := wseSeries()
	s.Maximum = &Extremum{
		Values: []float32{9, 8, 7},
		Times:  []time.Time{t0, t0.Add(5 * time.Minute), t0.Add(2 * time.Hour)},
	}
	st := NewStore()
	if err := st.Add(s); err != nil {
		t.Fatal(err)
	}
	b, err := Bind(topo, st, WaterSurface, Maximum)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(b.Values(), []float32{9, 8, 7}) {
		t.Errorf("envelope not used: %v", b.Values())
	}
	if b.Step(0) != 0 || b.Step(1) != -1 || b.Step(2) != 2 {
		t.Errorf("got steps %d %d %d", b.Step(0), b.Step(1), b.Step(2))
	}
}

func TestBindErrors(t *testing.T) {
	topo := threeCells(t)
	st := NewStore()
	if err := st.Add(wseSeries()); err != nil {
		t.Fatal(err)
	}

	_, err := Bind(topo, st, FaceVelocity, Maximum)
	var missing *MissingVariableError
	if !errors.As(err, &missing) || missing.Variable != FaceVelocity {
		t.Errorf("expected *MissingVariableError, got %v", err)
	}

	err = st.Add(wseSeries())
	var dup *DuplicateVariableError
	if !errors.As(err, &dup) {
		t.Errorf("expected *DuplicateVariableError, got %v", err)
	}

	// one value per cell, but bound to faces
	vel := Snapshot(FaceVelocity, OnFaces, t0, []float32{1, 2, 3})
	if err := st.Add(vel); err != nil {
		t.Fatal(err)
	}
	_, err = Bind(topo, st, FaceVelocity, Instant(t0))
	var lerr *LengthError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *LengthError, got %v", err)
	}
	if lerr.Want != topo.NumFaces() || lerr.Got != 3 {
		t.Errorf("got %+v", lerr)
	}

	ragged := wseSeries()
	ragged.Variable = CellVelocity
	ragged.Values[1] = ragged.Values[1][:2]
	if err := NewStore().Add(ragged); !errors.As(err, &lerr) {
		t.Errorf("ragged series accepted: %v", err)
	}
}

func TestCoincident(t *testing.T) {
	topo := threeCells(t)
	st := NewStore()
	if err := st.Add(wseSeries()); err != nil {
		t.Fatal(err)
	}
	speed := &Series{
		Variable: CellVelocity,
		Location: OnCells,
		Times:    wseSeries().Times,
		Values: [][]float32{
			{0.1, 0.5, 0},
			{0.3, 0.4, 0},
			{0.2, 0.6, 0},
		},
	}
	if err := st.Add(speed); err != nil {
		t.Fatal(err)
	}

	b, err := Bind(topo, st, WaterSurface, Maximum)
	if err != nil {
		t.Fatal(err)
	}
	d, err := b.Coincident(st, CellVelocity)
	if err != nil {
		t.Fatal(err)
	}
	if d.Value(0) != float64(float32(0.3)) || d.Value(1) != float64(float32(0.6)) || !math.IsNaN(d.Value(2)) {
		t.Errorf("got %v", d.Values())
	}

	if err := st.Add(Snapshot(FaceVelocity, OnFaces, t0, make([]float32, 10))); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Coincident(st, FaceVelocity); !errors.Is(err, ErrLocationMismatch) {
		t.Errorf("expected ErrLocationMismatch, got %v", err)
	}
}
