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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/results"
)

// Weights are the regression weights of the samples around a vertex.
type Weights struct {
	Cell float64 // weight of a wet cell center
	Face float64 // weight of a face midpoint with a value
}

// DefaultWeights gives all samples the same weight.
var DefaultWeights = Weights{Cell: 1, Face: 1}

// VertexValues holds the water surface elevation of every vertex.
type VertexValues struct {
	Values []float64 // NaN for vertices without samples

	// Fallbacks counts the vertices which used the weighted mean because
	// fewer than three samples were available or the sample positions were
	// collinear.
	Fallbacks int

	// Empty counts the vertices without any samples.
	Empty int
}

// ResolveVertices computes the water surface elevation of every vertex.
//
// The samples around a vertex are the water surface elevations of the
// adjacent wet cells, located at the cell centers, and the values of the
// adjacent faces which have one, located at the face midpoints.  A plane
// z = a*x + b*y + c is fitted through these samples by weighted least
// squares and evaluated at the vertex.  With fewer than three samples, or
// with collinear sample positions, the weighted mean is used instead.
func ResolveVertices(topo *mesh.Topology, wse *results.Binding, faces *FaceValues, w Weights) (*VertexValues, error) {
	if err := checkCells(topo, wse); err != nil {
		return nil, err
	}
	if len(faces.Values) != topo.NumFaces() {
		return nil, fmt.Errorf("surface: %d face values for %d faces", len(faces.Values), topo.NumFaces())
	}
	if !(w.Cell >= 0 && w.Face >= 0) || w.Cell+w.Face == 0 {
		return nil, fmt.Errorf("surface: invalid weights %+v", w)
	}

	n := topo.NumVertices()
	res := &VertexValues{Values: make([]float64, n)}
	var fit planeFit
	for v := range n {
		fit.reset()
		p0 := topo.Point(v)
		for _, c := range topo.CellsOfVertex(v) {
			z := wse.Value(c)
			cell := topo.CellAt(c)
			if w.Cell > 0 && isWet(z, cell.MinElevation) {
				fit.add(cell.Center.Sub(p0), z, w.Cell)
			}
		}
		for _, f := range topo.FacesOfVertex(v) {
			if w.Face > 0 && faces.Defined(f) {
				fit.add(topo.FaceMidpoint(f).Sub(p0), faces.Values[f], w.Face)
			}
		}

		z, ok := fit.solve()
		switch {
		case len(fit.z) == 0:
			res.Empty++
		case !ok:
			res.Fallbacks++
		}
		res.Values[v] = z
	}
	return res, nil
}

// planeFit accumulates weighted samples for a least-squares plane fit.
// Positions are relative to the point where the plane is evaluated.
type planeFit struct {
	a []float64 // rows of the design matrix, scaled by sqrt(weight)
	z []float64 // sample values, scaled by sqrt(weight)

	pos    []vec.Vec2
	values []float64
	weight []float64
}

func (pf *planeFit) reset() {
	pf.a = pf.a[:0]
	pf.z = pf.z[:0]
	pf.pos = pf.pos[:0]
	pf.values = pf.values[:0]
	pf.weight = pf.weight[:0]
}

func (pf *planeFit) add(p vec.Vec2, z, w float64) {
	s := math.Sqrt(w)
	pf.a = append(pf.a, s*p.X, s*p.Y, s)
	pf.z = append(pf.z, s*z)
	pf.pos = append(pf.pos, p)
	pf.values = append(pf.values, z)
	pf.weight = append(pf.weight, w)
}

// solve returns the value of the fitted plane at the origin.  If no plane
// can be fitted, the weighted mean is returned together with false.
// Without samples the result is NaN.
func (pf *planeFit) solve() (float64, bool) {
	n := len(pf.z)
	if n == 0 {
		return math.NaN(), false
	}
	if n < 3 || pf.collinear() {
		return pf.mean(), false
	}

	a := mat.NewDense(n, 3, pf.a)
	b := mat.NewVecDense(n, pf.z)
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return pf.mean(), false
	}
	return x.AtVec(2), true
}

func (pf *planeFit) mean() float64 {
	return floats.Dot(pf.weight, pf.values) / floats.Sum(pf.weight)
}

// collinear reports whether all sample positions lie on a common line,
// using the weighted scatter matrix of the positions.
func (pf *planeFit) collinear() bool {
	wSum := floats.Sum(pf.weight)
	var mx, my float64
	for i, p := range pf.pos {
		mx += pf.weight[i] * p.X
		my += pf.weight[i] * p.Y
	}
	mx /= wSum
	my /= wSum

	var sxx, sxy, syy float64
	for i, p := range pf.pos {
		dx, dy := p.X-mx, p.Y-my
		sxx += pf.weight[i] * dx * dx
		sxy += pf.weight[i] * dx * dy
		syy += pf.weight[i] * dy * dy
	}
	tr := sxx + syy
	if tr == 0 {
		return true
	}
	return sxx*syy-sxy*sxy <= collinearThreshold*tr*tr
}

// collinearThreshold is the smallest ratio det/trace² of the position
// scatter matrix for which a plane is fitted.
const collinearThreshold = 1e-10
