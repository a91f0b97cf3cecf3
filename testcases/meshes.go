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

package testcases

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/mesh"
)

// Regular builds an nx×ny mesh of square cells with side length size and
// lower-left corner origin.  Cell (i, j) has index j*nx+i.
func Regular(nx, ny int, origin vec.Vec2, size float64) (*mesh.Geometry, func(vec.Vec2) int) {
	g := &mesh.Geometry{Points: lattice(nx, ny, origin, size)}
	for j := range ny {
		for i := range nx {
			a := j*(nx+1) + i
			g.Cells = append(g.Cells, []int{a, a + 1, a + nx + 2, a + nx + 1})
		}
	}
	deriveFaces(g)

	locate := func(p vec.Vec2) int {
		i, j, _, _, ok := square(p, nx, ny, origin, size)
		if !ok {
			return -1
		}
		return j*nx + i
	}
	return g, locate
}

// Triangulated builds an nx×ny lattice of squares, each split into two
// triangles along the diagonal from its lower-left to its upper-right
// corner.  Square (i, j) holds the triangles 2*(j*nx+i) below the diagonal
// and 2*(j*nx+i)+1 above it.
func Triangulated(nx, ny int, origin vec.Vec2, size float64) (*mesh.Geometry, func(vec.Vec2) int) {
	g := &mesh.Geometry{Points: lattice(nx, ny, origin, size)}
	for j := range ny {
		for i := range nx {
			a := j*(nx+1) + i
			b, c, d := a+1, a+nx+2, a+nx+1
			g.Cells = append(g.Cells, []int{a, b, c}, []int{a, c, d})
		}
	}
	deriveFaces(g)

	locate := func(p vec.Vec2) int {
		i, j, u, v, ok := square(p, nx, ny, origin, size)
		if !ok {
			return -1
		}
		k := 2 * (j*nx + i)
		if v > u {
			k++
		}
		return k
	}
	return g, locate
}

// TwoCell builds two squares of side length size which share one face:
// cell 0 on the left, cell 1 on the right.  The lower-left corner is at the
// origin.
func TwoCell(size float64) (*mesh.Geometry, func(vec.Vec2) int) {
	return Regular(2, 1, vec.Vec2{}, size)
}

func lattice(nx, ny int, origin vec.Vec2, size float64) []vec.Vec2 {
	pts := make([]vec.Vec2, 0, (nx+1)*(ny+1))
	for j := range ny + 1 {
		for i := range nx + 1 {
			pts = append(pts, pt(origin.X+float64(i)*size, origin.Y+float64(j)*size))
		}
	}
	return pts
}

// square locates p in the lattice.  u and v are the coordinates of p within
// square (i, j), scaled to [0, 1).
func square(p vec.Vec2, nx, ny int, origin vec.Vec2, size float64) (i, j int, u, v float64, ok bool) {
	x := (p.X - origin.X) / size
	y := (p.Y - origin.Y) / size
	fi, fj := math.Floor(x), math.Floor(y)
	i, j = int(fi), int(fj)
	if x < 0 || y < 0 || i >= nx || j >= ny {
		return 0, 0, 0, 0, false
	}
	return i, j, x - fi, y - fj, true
}

func deriveFaces(g *mesh.Geometry) {
	fv, fc, err := mesh.DeriveFaces(g.Cells)
	if err != nil {
		panic(err)
	}
	g.FaceVertices, g.FaceCells = fv, fc
}

// centers returns the area centroids of the cells of g.
func centers(g *mesh.Geometry) []vec.Vec2 {
	res := make([]vec.Vec2, len(g.Cells))
	for i, ring := range g.Cells {
		var c vec.Vec2
		for _, v := range ring {
			c = c.Add(g.Points[v])
		}
		res[i] = c.Mul(1 / float64(len(ring)))
	}
	return res
}
