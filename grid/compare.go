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

package grid

import (
	"fmt"
	"math"
)

// Comparison summarises how a rendered grid differs from a reference grid.
type Comparison struct {
	Common  int // pixels holding data in both grids
	OnlyGot int // pixels holding data only in the rendered grid
	OnlyRef int // pixels holding data only in the reference grid

	MaxAbsDiff float64 // over the common pixels
	RMSE       float64 // over the common pixels

	// MaxCol and MaxRow locate the largest difference.
	MaxCol, MaxRow int
}

// Agreement returns the fraction of data pixels present in both grids.
// Two empty grids agree completely.
func (c Comparison) Agreement() float64 {
	total := c.Common + c.OnlyGot + c.OnlyRef
	if total == 0 {
		return 1
	}
	return float64(c.Common) / float64(total)
}

// Compare compares got against ref pixel by pixel.
func Compare(got, ref *Grid) (Comparison, error) {
	var c Comparison
	if !got.Aligned(ref.Spec) {
		return c, fmt.Errorf("compare %dx%d with %dx%d reference: %w",
			got.Width, got.Height, ref.Width, ref.Height, ErrTransformMismatch)
	}

	var sumSq float64
	for i, g := range got.Data {
		r := ref.Data[i]
		gOK, rOK := !got.IsNoData(g), !ref.IsNoData(r)
		switch {
		case gOK && rOK:
			c.Common++
			d := math.Abs(float64(g) - float64(r))
			sumSq += d * d
			if d > c.MaxAbsDiff {
				c.MaxAbsDiff = d
				c.MaxCol, c.MaxRow = i%got.Width, i/got.Width
			}
		case gOK:
			c.OnlyGot++
		case rOK:
			c.OnlyRef++
		}
	}
	if c.Common > 0 {
		c.RMSE = math.Sqrt(sumSq / float64(c.Common))
	}
	return c, nil
}
