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

package meshraster

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/grid"
	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/scan"
	"seehuhn.de/go/meshraster/surface"
)

// DeriveElevations fills in the minimum cell and face elevations of g from
// a terrain grid, for geometry sources which do not store them, and builds
// the topology.  If g already has elevations, the terrain is not used.
//
// The minimum elevation of a cell is taken over the terrain pixels whose
// centers lie inside the cell, or from the pixel under the cell center for
// cells too small to contain a pixel center.  The minimum elevation of a
// face is taken over terrain samples along the face, spaced half a pixel
// apart.  Elements outside the terrain get NaN and are never wet.
//
// If elevations are missing and terrain is nil, a
// *surface.TerrainRequiredError is returned.
func DeriveElevations(g *mesh.Geometry, terrain *grid.Grid) (*mesh.Topology, error) {
	if g.CellMinElevation != nil && g.FaceMinElevation != nil {
		return mesh.Build(g)
	}
	if terrain == nil {
		return nil, &surface.TerrainRequiredError{Operation: "mesh elevations"}
	}

	plain := *g
	plain.CellMinElevation = nil
	plain.FaceMinElevation = nil
	topo, err := mesh.Build(&plain)
	if err != nil {
		return nil, err
	}
	toPix, err := terrain.Transform.ToPixel()
	if err != nil {
		return nil, err
	}

	f := scan.NewFiller(rect.Rect{URx: float64(terrain.Width), URy: float64(terrain.Height)})
	f.CTM = toPix
	missing := 0

	cellMin := make([]float64, topo.NumCells())
	var poly []vec.Vec2
	for i := range cellMin {
		z := math.Inf(1)
		poly = topo.AppendCellPolygon(poly[:0], i)
		f.Spans(poly, func(row, xMin, xMax int) {
			for col := xMin; col < xMax; col++ {
				if v, ok := terrain.At(col, row); ok {
					z = min(z, float64(v))
				}
			}
		})
		if math.IsInf(z, 1) {
			z = math.NaN()
			if v, ok := terrain.Sample(topo.CellAt(i).Center); ok {
				z = float64(v)
			} else {
				missing++
			}
		}
		cellMin[i] = z
	}

	t := terrain.Transform
	step := 0.5 * math.Hypot(t.PixelWidth, t.RotY)
	faceMin := make([]float64, topo.NumFaces())
	for i := range faceMin {
		a, b := topo.FaceSegment(i)
		d := b.Sub(a)
		n := max(int(math.Ceil(d.Length()/step)), 1)
		z := math.Inf(1)
		for k := 0; k <= n; k++ {
			p := a.Add(d.Mul(float64(k) / float64(n)))
			if v, ok := sampleClosed(terrain, toPix, p); ok {
				z = min(z, float64(v))
			}
		}
		if math.IsInf(z, 1) {
			z = math.NaN()
			missing++
		}
		faceMin[i] = z
	}

	if missing > 0 {
		Logger().Warn("mesh elements outside the terrain", "count", missing)
	}
	g.CellMinElevation = cellMin
	g.FaceMinElevation = faceMin
	return mesh.Build(g)
}

// sampleClosed returns the terrain value at p.  Unlike [grid.Grid.Sample],
// points on the right and bottom edge of the grid belong to the adjacent
// pixel, so that faces along the edge of the terrain find a value.
func sampleClosed(terrain *grid.Grid, toPix matrix.Matrix, p vec.Vec2) (float32, bool) {
	x, y := toPix.Apply(p.X, p.Y)
	w, h := float64(terrain.Width), float64(terrain.Height)
	if !(x >= 0 && x <= w && y >= 0 && y <= h) {
		return 0, false
	}
	col := min(int(x), terrain.Width-1)
	row := min(int(y), terrain.Height-1)
	return terrain.At(col, row)
}
