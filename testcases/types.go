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

// Package testcases provides synthetic meshes, terrains and result values
// whose horizontal-mode rasters are known analytically.
package testcases

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/grid"
	"seehuhn.de/go/meshraster/mesh"
)

// Case defines a single rasterisation test.
type Case struct {
	Name     string         // lowercase a-z, 0-9 and _ only
	Geometry *mesh.Geometry // the mesh, with face arrays filled in
	Target   grid.Spec      // the output grid
	Terrain  *Plane         // nil if the case has no terrain
	WSE      []float32      // water surface elevation per cell

	// Locate returns the cell containing p, or -1 if p is outside the
	// mesh.  Points on a shared edge may be assigned to either cell.
	Locate func(p vec.Vec2) int
}

// Plane is the terrain z = A*x + B*y + C.
type Plane struct {
	A, B, C float64
}

// At returns the terrain elevation at p.
func (pl *Plane) At(p vec.Vec2) float64 {
	return pl.A*p.X + pl.B*p.Y + pl.C
}

// TerrainGrid samples the terrain at the pixel centers of the target grid.
// It returns nil for cases without terrain.
func (c *Case) TerrainGrid() *grid.Grid {
	if c.Terrain == nil {
		return nil
	}
	g := grid.New(c.Target, grid.DefaultNoData)
	for row := range g.Height {
		for col := range g.Width {
			g.Set(col, row, float32(c.Terrain.At(g.Center(col, row))))
		}
	}
	return g
}

// Wet reports whether cell i holds water.
func (c *Case) Wet(i int) bool {
	w := c.WSE[i]
	if math.IsNaN(float64(w)) {
		return false
	}
	if c.Geometry.CellMinElevation == nil {
		return true
	}
	return float64(w) > c.Geometry.CellMinElevation[i]
}

// Reference returns the exact horizontal-mode raster: every pixel whose
// center lies in a wet cell holds that cell's water surface elevation.
// No depth masking is applied.
func (c *Case) Reference() *grid.Grid {
	g := grid.New(c.Target, grid.DefaultNoData)
	for row := range g.Height {
		for col := range g.Width {
			i := c.Locate(g.Center(col, row))
			if i >= 0 && c.Wet(i) {
				g.Set(col, row, c.WSE[i])
			}
		}
	}
	return g
}

// elevations fills in the minimum cell and face elevations of g from the
// terrain.  For a plane, the minimum over a polygon is attained at a
// vertex.
func elevations(g *mesh.Geometry, pl *Plane) {
	g.CellMinElevation = make([]float64, len(g.Cells))
	for i, ring := range g.Cells {
		z := math.Inf(1)
		for _, v := range ring {
			z = min(z, pl.At(g.Points[v]))
		}
		g.CellMinElevation[i] = z
	}
	g.FaceMinElevation = make([]float64, len(g.FaceVertices))
	for i, fv := range g.FaceVertices {
		g.FaceMinElevation[i] = min(pl.At(g.Points[fv[0]]), pl.At(g.Points[fv[1]]))
	}
}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}
