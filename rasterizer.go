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
	"math"

	"golang.org/x/sync/errgroup"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/grid"
	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/scan"
)

// Surface provides the values drawn by a [Rasterizer].
type Surface interface {
	// Cell returns the value at the center of cell i, and false if the
	// cell is not drawn.
	Cell(i int) (float64, bool)
}

// CornerSurface is a Surface which varies inside the cells.  Cells are
// drawn as a fan of triangles around the cell center, with values
// interpolated linearly between the center and the corners.
type CornerSurface interface {
	Surface

	// Corner returns the value at vertex v.  NaN means that the cell
	// value is used.
	Corner(v int) float64
}

// FlatSurface draws every cell with a constant value.
type FlatSurface struct {
	Values []float64 // one value per cell, NaN for cells not drawn
}

// Cell implements the [Surface] interface.
func (s *FlatSurface) Cell(i int) (float64, bool) {
	v := s.Values[i]
	return v, !math.IsNaN(v)
}

// SlopedSurface interpolates between cell and vertex values.
type SlopedSurface struct {
	Cells    []float64 // value at the cell centers, NaN for cells not drawn
	Vertices []float64 // value at the vertices
}

// Cell implements the [Surface] interface.
func (s *SlopedSurface) Cell(i int) (float64, bool) {
	v := s.Cells[i]
	return v, !math.IsNaN(v)
}

// Corner implements the [CornerSurface] interface.
func (s *SlopedSurface) Corner(v int) float64 {
	return s.Vertices[v]
}

// Rasterizer draws mesh surfaces onto a grid.
// A Rasterizer can be used for several surfaces, but not concurrently.
type Rasterizer struct {
	// NoData is the value of pixels not covered by a drawn cell.
	NoData float32

	// Workers is the number of goroutines used to draw the cells.
	Workers int

	topo  *mesh.Topology
	spec  grid.Spec
	toPix matrix.Matrix

	// visit, if not nil, is called for every pixel written.
	// It may be called concurrently.
	visit func(col, row, cell int)
}

// NewRasterizer returns a Rasterizer which draws onto grids with the given
// spec.  If terrain is not nil, it must be aligned with target, otherwise
// an error wrapping [grid.ErrTransformMismatch] is returned.
func NewRasterizer(topo *mesh.Topology, target grid.Spec, terrain *grid.Grid) (*Rasterizer, error) {
	if terrain != nil && !terrain.Aligned(target) {
		return nil, fmt.Errorf("terrain %dx%d does not match target %dx%d: %w",
			terrain.Width, terrain.Height, target.Width, target.Height, grid.ErrTransformMismatch)
	}
	if target.Width <= 0 || target.Height <= 0 {
		return nil, fmt.Errorf("meshraster: empty target grid %dx%d", target.Width, target.Height)
	}
	toPix, err := target.Transform.ToPixel()
	if err != nil {
		return nil, err
	}
	return &Rasterizer{
		NoData:  grid.DefaultNoData,
		Workers: 1,
		topo:    topo,
		spec:    target,
		toPix:   toPix,
	}, nil
}

// Draw draws s onto a new grid.  Pixels whose centers lie in a drawn cell
// get the value of s at the pixel center, all other pixels are no-data.
//
// The cells are split into contiguous index ranges, which are drawn
// concurrently.
func (r *Rasterizer) Draw(s Surface) *grid.Grid {
	out := grid.New(r.spec, r.NoData)

	n := r.topo.NumCells()
	workers := max(min(r.Workers, n), 1)
	clip := rect.Rect{URx: float64(r.spec.Width), URy: float64(r.spec.Height)}

	var g errgroup.Group
	for w := range workers {
		lo, hi := w*n/workers, (w+1)*n/workers
		g.Go(func() error {
			f := scan.NewFiller(clip)
			f.CTM = r.toPix
			r.drawCells(f, s, lo, hi, out)
			return nil
		})
	}
	g.Wait()
	return out
}

// drawCells draws the cells lo <= i < hi.
func (r *Rasterizer) drawCells(f *scan.Filler, s Surface, lo, hi int, out *grid.Grid) {
	cs, sloped := s.(CornerSurface)
	var poly []vec.Vec2
	for i := lo; i < hi; i++ {
		z, ok := s.Cell(i)
		if !ok {
			continue
		}
		if !sloped {
			poly = r.topo.AppendCellPolygon(poly[:0], i)
			v := float32(z)
			f.Spans(poly, func(row, xMin, xMax int) {
				base := row * out.Width
				for col := xMin; col < xMax; col++ {
					out.Data[base+col] = v
					if r.visit != nil {
						r.visit(col, row, i)
					}
				}
			})
			continue
		}

		cell := r.topo.CellAt(i)
		ring := cell.Ring
		for k, a := range ring {
			b := ring[(k+1)%len(ring)]
			tri := [3]vec.Vec2{cell.Center, r.topo.Point(a), r.topo.Point(b)}
			val := [3]float64{z, corner(cs, a, z), corner(cs, b, z)}
			f.Shade(tri, val, func(row, xMin int, vals []float64) {
				base := row*out.Width + xMin
				for j, v := range vals {
					out.Data[base+j] = float32(v)
					if r.visit != nil {
						r.visit(xMin+j, row, i)
					}
				}
			})
		}
	}
}

func corner(s CornerSurface, v int, cell float64) float64 {
	z := s.Corner(v)
	if math.IsNaN(z) {
		return cell
	}
	return z
}
