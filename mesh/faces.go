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

// DeriveFaces builds the face arrays of a mesh from its cell rings, for
// sources which store only cells.  Faces are numbered in order of first
// appearance while walking the cells in index order, so the result is
// deterministic.  The first cell of a face is the one which introduced it;
// the second one is Exterior for boundary faces.
//
// An edge used by more than two cells results in a *GeometryError of kind
// NonManifold.
func DeriveFaces(cells [][]int) (faceVertices, faceCells [][2]int, err error) {
	type key struct{ lo, hi int }
	index := make(map[key]int)

	for c, raw := range cells {
		ring := raw
		if n := len(ring); n > 1 && ring[0] == ring[n-1] {
			ring = ring[:n-1]
		}
		n := len(ring)
		for k := range n {
			a, b := ring[k], ring[(k+1)%n]
			if a == b {
				continue
			}
			kk := key{min(a, b), max(a, b)}
			i, seen := index[kk]
			if !seen {
				index[kk] = len(faceVertices)
				faceVertices = append(faceVertices, [2]int{a, b})
				faceCells = append(faceCells, [2]int{c, Exterior})
				continue
			}
			switch faceCells[i][1] {
			case Exterior:
				if faceCells[i][0] != c {
					faceCells[i][1] = c
				}
			default:
				if faceCells[i][1] != c && faceCells[i][0] != c {
					return nil, nil, faceError(NonManifold, i, "cells %d, %d and %d",
						faceCells[i][0], faceCells[i][1], c)
				}
			}
		}
	}
	return faceVertices, faceCells, nil
}
