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

package surface

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/results"
)

// CellSpeed reconstructs the flow speed of every cell from the normal
// velocities on its faces.
//
// The face velocity is the component of the flow along the face normal
// which points from the first to the second cell of the face.  For each
// cell, the velocity vector which best reproduces the normal velocities of
// its faces is found by least squares, and its length is returned.  Cells
// whose face normals do not span the plane get the mean absolute normal
// velocity, cells without face velocities get NaN.
func CellSpeed(topo *mesh.Topology, faceVel *results.Binding) ([]float64, error) {
	if faceVel.Location != results.OnFaces || faceVel.Len() != topo.NumFaces() {
		return nil, &results.LengthError{
			Variable: faceVel.Variable,
			Location: results.OnFaces,
			Want:     topo.NumFaces(),
			Got:      faceVel.Len(),
		}
	}

	speed := make([]float64, topo.NumCells())
	var rows, u, abs []float64
	for c := range speed {
		rows, u, abs = rows[:0], u[:0], abs[:0]
		center := topo.CellAt(c).Center
		for _, f := range topo.FacesOfCell(c) {
			uf := faceVel.Value(f)
			if math.IsNaN(uf) {
				continue
			}
			n, ok := faceNormal(topo, f, center, c)
			if !ok {
				continue
			}
			rows = append(rows, n.X, n.Y)
			u = append(u, uf)
			abs = append(abs, math.Abs(uf))
		}

		switch k := len(u); {
		case k == 0:
			speed[c] = math.NaN()
		case k < 2:
			speed[c] = abs[0]
		default:
			var v mat.VecDense
			err := v.SolveVec(mat.NewDense(k, 2, rows), mat.NewVecDense(k, u))
			if err != nil {
				speed[c] = floats.Sum(abs) / float64(k)
				continue
			}
			speed[c] = math.Hypot(v.AtVec(0), v.AtVec(1))
		}
	}
	return speed, nil
}

// faceNormal returns the unit normal of face f which points from the
// first to the second cell of the face.  c is a cell adjacent to f, with
// center at center.
func faceNormal(topo *mesh.Topology, f int, center vec.Vec2, c int) (vec.Vec2, bool) {
	a, b := topo.FaceSegment(f)
	n := b.Sub(a).Normal()
	if n == (vec.Vec2{}) {
		return n, false
	}

	// orient n away from c, then flip if c is the second cell
	if n.Dot(a.Sub(center)) < 0 {
		n = n.Neg()
	}
	if topo.FaceAt(f).Cells[1] == c {
		n = n.Neg()
	}
	return n, true
}
