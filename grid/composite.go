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

import "fmt"

// Composite computes the depth grid wse - terrain and the matching wet
// extent. A pixel is wet only if both inputs hold data there and the depth
// is strictly positive; all other pixels are no-data in both outputs.
// Wet pixels of the extent hold the value 1.
//
// Both outputs use the no-data value of wse.
func Composite(wse, terrain *Grid) (depth, extent *Grid, err error) {
	if !wse.Aligned(terrain.Spec) {
		return nil, nil, fmt.Errorf("composite %dx%d onto %dx%d terrain: %w",
			wse.Width, wse.Height, terrain.Width, terrain.Height, ErrTransformMismatch)
	}

	depth = New(wse.Spec, wse.NoData)
	extent = New(wse.Spec, wse.NoData)
	for i, w := range wse.Data {
		if wse.IsNoData(w) {
			continue
		}
		t := terrain.Data[i]
		if terrain.IsNoData(t) {
			continue
		}
		d := w - t
		if !(d > 0) {
			continue
		}
		depth.Data[i] = d
		extent.Data[i] = 1
	}
	return depth, extent, nil
}

// ApplyMask resets every pixel of g to no-data where extent has no data.
func ApplyMask(g, extent *Grid) error {
	if !g.Aligned(extent.Spec) {
		return fmt.Errorf("mask %dx%d with %dx%d extent: %w",
			g.Width, g.Height, extent.Width, extent.Height, ErrTransformMismatch)
	}
	for i, e := range extent.Data {
		if extent.IsNoData(e) {
			g.Data[i] = g.NoData
		}
	}
	return nil
}
