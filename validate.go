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
	"fmt"

	"seehuhn.de/go/meshraster/grid"
)

// DivergenceWarning reports that a raster differs from a reference raster
// by more than the configured tolerance.  It is a warning, not an error:
// [Sloped] output is not expected to match other renderers exactly.
type DivergenceWarning struct {
	grid.Comparison
	Tolerance float64
}

func (w *DivergenceWarning) String() string {
	return fmt.Sprintf("max divergence %g at pixel (%d, %d) exceeds tolerance %g (rmse %g, agreement %.4f)",
		w.MaxAbsDiff, w.MaxCol, w.MaxRow, w.Tolerance, w.RMSE, w.Agreement())
}

// Validate compares got against the reference raster ref.  If the largest
// difference on the common pixels exceeds opt.Tolerance, the comparison is
// logged at warning level and returned as a *DivergenceWarning.  The
// returned error is only non-nil if the two grids are not aligned.
func Validate(got, ref *grid.Grid, opt *Options) (*DivergenceWarning, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	c, err := grid.Compare(got, ref)
	if err != nil {
		return nil, err
	}
	if c.MaxAbsDiff <= opt.Tolerance {
		return nil, nil
	}
	w := &DivergenceWarning{Comparison: c, Tolerance: opt.Tolerance}
	Logger().Warn("raster diverges from reference",
		"max_diff", c.MaxAbsDiff,
		"col", c.MaxCol,
		"row", c.MaxRow,
		"rmse", c.RMSE,
		"agreement", c.Agreement(),
		"tolerance", opt.Tolerance)
	return w, nil
}
