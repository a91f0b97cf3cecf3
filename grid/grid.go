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

// Package grid implements georeferenced raster grids and the pixel-wise
// passes that run on them after rasterisation.
package grid

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// DefaultNoData is the no-data sentinel used when none is specified.
const DefaultNoData float32 = -9999

// ErrTransformMismatch is returned when two grids which must be aligned
// index-for-index differ in size or transform.
var ErrTransformMismatch = errors.New("grid: transform mismatch")

// Transform maps pixel coordinates to world coordinates, in the order of a
// GDAL geotransform:
//
//	x = OriginX + col*PixelWidth + row*RotX
//	y = OriginY + col*RotY + row*PixelHeight
//
// Pixel coordinates refer to pixel corners, so that the center of pixel
// (col, row) is at (col+0.5, row+0.5).
type Transform struct {
	OriginX, OriginY        float64
	PixelWidth, PixelHeight float64 // PixelHeight is negative for north-up grids
	RotX, RotY              float64
}

// NorthUp returns the transform of a north-up grid with square pixels whose
// upper-left corner is at (x0, y0).
func NorthUp(x0, y0, size float64) Transform {
	return Transform{
		OriginX:     x0,
		OriginY:     y0,
		PixelWidth:  size,
		PixelHeight: -size,
	}
}

// ToWorld returns the pixel-to-world matrix.
func (t Transform) ToWorld() matrix.Matrix {
	return matrix.Matrix{t.PixelWidth, t.RotY, t.RotX, t.PixelHeight, t.OriginX, t.OriginY}
}

// ToPixel returns the world-to-pixel matrix.
// It fails if the transform is singular.
func (t Transform) ToPixel() (matrix.Matrix, error) {
	m := t.ToWorld()
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return matrix.Matrix{}, fmt.Errorf("grid: singular transform %v", t)
	}
	return m.Inv(), nil
}

// Spec describes the shape and georeferencing of a grid.
type Spec struct {
	Transform     Transform
	Width, Height int

	// CRS is the coordinate reference system, for example as WKT.
	// It is carried through unchanged.
	CRS string
}

// Aligned reports whether grids with specs s and o can be combined
// index-for-index.
func (s Spec) Aligned(o Spec) bool {
	return s.Width == o.Width && s.Height == o.Height && s.Transform == o.Transform
}

// Center returns the world coordinates of the center of pixel (col, row).
func (s Spec) Center(col, row int) vec.Vec2 {
	return apply(s.Transform.ToWorld(), vec.Vec2{X: float64(col) + 0.5, Y: float64(row) + 0.5})
}

// Bounds returns the world-space bounding box of the grid.
func (s Spec) Bounds() rect.Rect {
	m := s.Transform.ToWorld()
	w, h := float64(s.Width), float64(s.Height)
	corners := [4]vec.Vec2{
		apply(m, vec.Vec2{X: 0, Y: 0}),
		apply(m, vec.Vec2{X: w, Y: 0}),
		apply(m, vec.Vec2{X: 0, Y: h}),
		apply(m, vec.Vec2{X: w, Y: h}),
	}
	r := rect.Rect{LLx: corners[0].X, LLy: corners[0].Y, URx: corners[0].X, URy: corners[0].Y}
	for _, p := range corners[1:] {
		r.LLx = min(r.LLx, p.X)
		r.LLy = min(r.LLy, p.Y)
		r.URx = max(r.URx, p.X)
		r.URy = max(r.URy, p.Y)
	}
	return r
}

// Grid is a single-band float32 raster in row-major order.
type Grid struct {
	Spec
	NoData float32
	Data   []float32
}

// New allocates a grid and fills it with the no-data value.
func New(spec Spec, noData float32) *Grid {
	g := &Grid{
		Spec:   spec,
		NoData: noData,
		Data:   make([]float32, spec.Width*spec.Height),
	}
	g.Fill(noData)
	return g
}

// Fill sets every pixel to v.
func (g *Grid) Fill(v float32) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Index returns the linear index of pixel (col, row).
func (g *Grid) Index(col, row int) int { return row*g.Width + col }

// At returns the value of pixel (col, row) and whether it holds data.
func (g *Grid) At(col, row int) (float32, bool) {
	v := g.Data[g.Index(col, row)]
	return v, !g.IsNoData(v)
}

// Set stores v at pixel (col, row).
func (g *Grid) Set(col, row int, v float32) {
	g.Data[g.Index(col, row)] = v
}

// IsNoData reports whether v marks a pixel without data.
// NaN is always treated as no-data.
func (g *Grid) IsNoData(v float32) bool {
	return v == g.NoData || v != v
}

// Count returns the number of pixels holding data.
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.Data {
		if !g.IsNoData(v) {
			n++
		}
	}
	return n
}

// Range returns the smallest and largest data value.
// ok is false if the grid holds no data.
func (g *Grid) Range() (lo, hi float32, ok bool) {
	for _, v := range g.Data {
		if g.IsNoData(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}

// Sample returns the value of the pixel containing the world point p.
// ok is false if p is outside the grid or the pixel holds no data.
func (g *Grid) Sample(p vec.Vec2) (float32, bool) {
	m, err := g.Transform.ToPixel()
	if err != nil {
		return 0, false
	}
	q := apply(m, p)
	col, row := int(math.Floor(q.X)), int(math.Floor(q.Y))
	if col < 0 || row < 0 || col >= g.Width || row >= g.Height {
		return 0, false
	}
	return g.At(col, row)
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.Data = make([]float32, len(g.Data))
	copy(c.Data, g.Data)
	return &c
}

func apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	x, y := m.Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}
