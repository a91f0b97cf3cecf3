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

package mesh

import (
	"errors"
	"math"
	"slices"
	"testing"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// twoSquares returns two unit squares side by side:
//
//	3---4---5
//	| 0 | 1 |
//	0---1---2
func twoSquares() *Geometry {
	return &Geometry{
		Points: []vec.Vec2{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
			{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1},
		},
		Cells: [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}},
		FaceVertices: [][2]int{
			{1, 4}, {0, 1}, {4, 3}, {3, 0}, {1, 2}, {2, 5}, {5, 4},
		},
		FaceCells: [][2]int{
			{0, 1}, {0, Exterior}, {0, Exterior}, {0, Exterior},
			{1, Exterior}, {1, Exterior}, {1, Exterior},
		},
		CellMinElevation: []float64{0, 1},
		FaceMinElevation: []float64{0.5, 0, 0, 0, 1, 1, 1},
	}
}

func TestBuild(t *testing.T) {
	topo, err := Build(twoSquares())
	if err != nil {
		t.Fatal(err)
	}

	if topo.NumCells() != 2 || topo.NumFaces() != 7 || topo.NumVertices() != 6 {
		t.Fatalf("got %d cells, %d faces, %d vertices",
			topo.NumCells(), topo.NumFaces(), topo.NumVertices())
	}
	if !topo.HasTerrain() {
		t.Error("terrain not detected")
	}
	if want := (rect.Rect{LLx: 0, LLy: 0, URx: 2, URy: 1}); topo.Bounds() != want {
		t.Errorf("bounds: got %v, want %v", topo.Bounds(), want)
	}

	c := topo.CellAt(1)
	if c.Center != (vec.Vec2{X: 1.5, Y: 0.5}) {
		t.Errorf("cell 1 center: got %v", c.Center)
	}
	if c.MinElevation != 1 {
		t.Errorf("cell 1 min elevation: got %g", c.MinElevation)
	}

	faces := slices.Sorted(slices.Values(topo.FacesOfCell(0)))
	if !slices.Equal(faces, []int{0, 1, 2, 3}) {
		t.Errorf("faces of cell 0: got %v", faces)
	}
	cells := slices.Sorted(slices.Values(topo.CellsOfVertex(4)))
	if !slices.Equal(cells, []int{0, 1}) {
		t.Errorf("cells of vertex 4: got %v", cells)
	}
	vf := slices.Sorted(slices.Values(topo.FacesOfVertex(4)))
	if !slices.Equal(vf, []int{0, 2, 6}) {
		t.Errorf("faces of vertex 4: got %v", vf)
	}
	if len(topo.VertexAt(0).Cells) != 1 {
		t.Errorf("vertex 0 has cells %v", topo.VertexAt(0).Cells)
	}

	if topo.IsBoundary(0) || !topo.IsBoundary(1) {
		t.Error("wrong boundary classification")
	}
	if m := topo.FaceMidpoint(0); m != (vec.Vec2{X: 1, Y: 0.5}) {
		t.Errorf("midpoint of face 0: got %v", m)
	}
}

// TestBounds uses a mesh whose first point is not an extreme point.
func TestBounds(t *testing.T) {
	cells := [][]int{{0, 1, 2}, {0, 2, 3}}
	fv, fc, err := DeriveFaces(cells)
	if err != nil {
		t.Fatal(err)
	}
	topo, err := Build(&Geometry{
		Points:       []vec.Vec2{{X: 1, Y: 1}, {X: 7, Y: -2}, {X: 4, Y: 8}, {X: -3, Y: 5}},
		Cells:        cells,
		FaceVertices: fv,
		FaceCells:    fc,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := (rect.Rect{LLx: -3, LLy: -2, URx: 7, URy: 8}); topo.Bounds() != want {
		t.Errorf("bounds: got %v, want %v", topo.Bounds(), want)
	}
	for f := range topo.NumFaces() {
		a, b := topo.FaceSegment(f)
		m := topo.FaceMidpoint(f)
		if m.X != (a.X+b.X)/2 || m.Y != (a.Y+b.Y)/2 {
			t.Errorf("face %d: midpoint %v of %v-%v", f, m, a, b)
		}
	}
}

func TestBuildNoTerrain(t *testing.T) {
	g := twoSquares()
	g.CellMinElevation = nil
	g.FaceMinElevation = nil
	topo, err := Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if topo.HasTerrain() {
		t.Error("terrain reported for a mesh without elevations")
	}
	if !math.IsNaN(topo.CellAt(0).MinElevation) || !math.IsNaN(topo.FaceAt(0).MinElevation) {
		t.Error("missing elevations should be NaN")
	}
}

func TestRingNormalization(t *testing.T) {
	g := twoSquares()
	g.Cells[0] = []int{0, 1, 1, 4, 3, 0} // duplicate and explicit closing vertex
	topo, err := Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if r := topo.CellAt(0).Ring; !slices.Equal(r, []int{0, 1, 4, 3}) {
		t.Errorf("ring: got %v", r)
	}
}

func TestCentroid(t *testing.T) {
	// an L-shaped cell far from the origin
	const off = 1e6
	g := &Geometry{
		Points: []vec.Vec2{
			{X: off, Y: off}, {X: off + 2, Y: off}, {X: off + 2, Y: off + 1},
			{X: off + 1, Y: off + 1}, {X: off + 1, Y: off + 2}, {X: off, Y: off + 2},
		},
		Cells: [][]int{{0, 1, 2, 3, 4, 5}},
	}
	topo, err := Build(g)
	if err != nil {
		t.Fatal(err)
	}
	c := topo.CellAt(0).Center
	want := vec.Vec2{X: off + 5.0/6, Y: off + 5.0/6}
	if math.Abs(c.X-want.X) > 1e-9 || math.Abs(c.Y-want.Y) > 1e-9 {
		t.Errorf("centroid: got %v, want %v", c, want)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(g *Geometry)
		kind   ErrorKind
		target error
	}{
		{"two vertices", func(g *Geometry) { g.Cells[0] = []int{0, 1, 0} }, DegenerateCell, ErrDegenerateCell},
		{"zero area", func(g *Geometry) { g.Cells[1] = []int{0, 1, 2} }, DegenerateCell, ErrDegenerateCell},
		{"bow tie", func(g *Geometry) { g.Cells[0] = []int{0, 1, 3, 4} }, SelfIntersecting, ErrSelfIntersecting},
		{"repeated vertex", func(g *Geometry) { g.Cells[1] = []int{1, 2, 5, 1, 4} }, SelfIntersecting, ErrSelfIntersecting},
		{"vertex out of range", func(g *Geometry) { g.Cells[1] = []int{1, 2, 9, 4} }, InvalidVertex, ErrInvalidVertex},
		{"face vertex out of range", func(g *Geometry) { g.FaceVertices[3] = [2]int{3, -2} }, InvalidVertex, ErrInvalidVertex},
		{"cell out of range", func(g *Geometry) { g.FaceCells[2] = [2]int{0, 7} }, OrphanFace, ErrOrphanFace},
		{"both exterior", func(g *Geometry) { g.FaceCells[2] = [2]int{Exterior, Exterior} }, OrphanFace, ErrOrphanFace},
		{"face cells", func(g *Geometry) { g.FaceCells = g.FaceCells[:3] }, LengthMismatch, ErrLengthMismatch},
		{"elevations", func(g *Geometry) { g.FaceMinElevation = nil }, LengthMismatch, ErrLengthMismatch},
		{"centers", func(g *Geometry) { g.CellCenters = []vec.Vec2{{}} }, LengthMismatch, ErrLengthMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := twoSquares()
			tc.modify(g)
			_, err := Build(g)
			var gerr *GeometryError
			if !errors.As(err, &gerr) {
				t.Fatalf("expected *GeometryError, got %v", err)
			}
			if gerr.Kind != tc.kind {
				t.Errorf("got kind %d, want %d (%v)", gerr.Kind, tc.kind, err)
			}
			if !errors.Is(err, tc.target) {
				t.Errorf("errors.Is(%v, %v) is false", err, tc.target)
			}
		})
	}
}

func TestCellPath(t *testing.T) {
	topo, err := Build(twoSquares())
	if err != nil {
		t.Fatal(err)
	}
	p := topo.CellPath(1)
	wantCmds := []path.Command{path.CmdMoveTo, path.CmdLineTo, path.CmdLineTo, path.CmdLineTo, path.CmdClose}
	if !slices.Equal(p.Cmds, wantCmds) {
		t.Errorf("commands: got %v", p.Cmds)
	}
	poly := topo.AppendCellPolygon(nil, 1)
	if !slices.Equal(p.Coords, poly) {
		t.Errorf("path %v does not match polygon %v", p.Coords, poly)
	}
}

func TestDeriveFaces(t *testing.T) {
	g := twoSquares()
	fv, fc, err := DeriveFaces(g.Cells)
	if err != nil {
		t.Fatal(err)
	}
	if len(fv) != 7 {
		t.Fatalf("got %d faces, want 7", len(fv))
	}
	interior := 0
	for i, c := range fc {
		if c[1] != Exterior {
			interior++
			if c != [2]int{0, 1} || fv[i] != [2]int{1, 4} {
				t.Errorf("interior face %d: vertices %v cells %v", i, fv[i], c)
			}
		}
	}
	if interior != 1 {
		t.Errorf("got %d interior faces, want 1", interior)
	}

	g.FaceVertices, g.FaceCells = fv, fc
	g.CellMinElevation, g.FaceMinElevation = nil, nil
	if _, err := Build(g); err != nil {
		t.Errorf("derived faces rejected: %v", err)
	}

	// three triangles sharing the edge 0-1
	_, _, err = DeriveFaces([][]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}})
	if !errors.Is(err, ErrNonManifold) {
		t.Errorf("expected ErrNonManifold, got %v", err)
	}
}
