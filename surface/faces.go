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

// Package surface derives a continuous water surface from per-cell
// results.
//
// [ResolveFaces] assigns a water surface elevation to every mesh face,
// taking the wet/dry state of the adjacent cells and the face terrain into
// account.  [ResolveVertices] then fits a plane through the cell and face
// values around every vertex.  The resulting vertex values define the
// sloped surface drawn by the rasteriser.
package surface

import (
	"fmt"
	"math"

	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/results"
)

// TerrainRequiredError is returned when an operation needs terrain
// elevations but none are available.
type TerrainRequiredError struct {
	Operation string
}

func (e *TerrainRequiredError) Error() string {
	return fmt.Sprintf("terrain required for %s", e.Operation)
}

// FaceState classifies a face by the wet/dry state of its cells.
type FaceState uint8

// These are the face states.
const (
	Dry      FaceState = iota // no wet neighbour, the face has no value
	BothWet                   // interior face between two wet cells
	OneWet                    // interior face between a wet and a dry cell
	Boundary                  // boundary face of a wet cell
)

func (s FaceState) String() string {
	switch s {
	case Dry:
		return "dry"
	case BothWet:
		return "both wet"
	case OneWet:
		return "one wet"
	case Boundary:
		return "boundary"
	default:
		return fmt.Sprintf("FaceState(%d)", uint8(s))
	}
}

// FaceValues holds the water surface elevation of every face.
type FaceValues struct {
	Values []float64 // NaN for dry faces
	States []FaceState
}

// Defined reports whether face i has a value.
func (fv *FaceValues) Defined(i int) bool {
	return fv.States[i] != Dry
}

// ResolveFaces computes the water surface elevation of every face from the
// water surface elevation of the adjacent cells.  A cell is wet if its
// water surface lies above the cell's minimum terrain elevation.
//
//   - Between two wet cells, the face takes the lower of the two water
//     surfaces.  It is never raised above either of them, even where the
//     face terrain is higher.
//   - Between a wet and a dry cell, and on the mesh boundary of a wet cell,
//     the face takes the wet cell's water surface, clamped down to the face
//     terrain minimum.
//   - Faces without a wet neighbour have no value.
//
// The topology must have terrain elevations, otherwise a
// *TerrainRequiredError is returned.
func ResolveFaces(topo *mesh.Topology, wse *results.Binding) (*FaceValues, error) {
	if !topo.HasTerrain() {
		return nil, &TerrainRequiredError{Operation: "face values"}
	}
	if err := checkCells(topo, wse); err != nil {
		return nil, err
	}

	n := topo.NumFaces()
	fv := &FaceValues{
		Values: make([]float64, n),
		States: make([]FaceState, n),
	}
	for i := range n {
		f := topo.FaceAt(i)
		var side [2]cellSide
		for k, c := range f.Cells {
			if c == mesh.Exterior {
				side[k] = cellSide{exterior: true}
				continue
			}
			w := wse.Value(c)
			side[k] = cellSide{wse: w, wet: isWet(w, topo.CellAt(c).MinElevation)}
		}
		fv.Values[i], fv.States[i] = resolveFace(f.MinElevation, side[0], side[1])
	}
	return fv, nil
}

type cellSide struct {
	wse      float64
	wet      bool
	exterior bool
}

func resolveFace(faceMin float64, a, b cellSide) (float64, FaceState) {
	if a.exterior {
		a, b = b, a
	}
	switch {
	case b.exterior && a.wet:
		return math.Min(a.wse, faceMin), Boundary
	case a.wet && b.wet:
		// A face terrain above the lower water surface does not raise the
		// face value.
		return math.Min(a.wse, b.wse), BothWet
	case a.wet:
		return math.Min(a.wse, faceMin), OneWet
	case b.wet:
		return math.Min(b.wse, faceMin), OneWet
	}
	return math.NaN(), Dry
}

// isWet reports whether a cell with water surface w and minimum terrain
// elevation z holds water.  NaN values are dry.
func isWet(w, z float64) bool {
	return w > z
}

func checkCells(topo *mesh.Topology, wse *results.Binding) error {
	if wse.Location != results.OnCells || wse.Len() != topo.NumCells() {
		return &results.LengthError{
			Variable: wse.Variable,
			Location: results.OnCells,
			Want:     topo.NumCells(),
			Got:      wse.Len(),
		}
	}
	return nil
}
