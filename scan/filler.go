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

// Package scan converts polygons into pixel spans.
//
// Two pixel rules are provided. [Filler.Spans] and [Filler.Shade] write a
// pixel exactly when its center lies inside the polygon, with centers on an
// edge assigned to the polygon on the right (below, for horizontal edges).
// Polygons which tile the plane therefore claim every pixel center exactly
// once. [Filler.Coverage] computes anti-aliased area coverage instead.
package scan

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// edge is a polygon edge in pixel coordinates, stored with y0 < y1.
// The x-intercept at height y is x0 + (y-y0)*dxdy. Since both endpoints
// are stored in this canonical order, two polygons sharing an edge compute
// bit-identical intercepts.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
	dir    int // +1 if the edge runs towards larger y in path order, -1 otherwise
}

// crossing is the intersection of an edge with a scanline.
type crossing struct {
	x   float64
	dir int
}

// Filler scan-converts polygons given in world coordinates.
// The caller creates one instance and reuses it for many polygons.
// Internal buffers grow as needed but never shrink.
//
// A Filler is not safe for concurrent use.
type Filler struct {
	// CTM maps world coordinates to pixel coordinates.
	// Pixel (col, row) covers [col, col+1) × [row, row+1).
	CTM matrix.Matrix

	// Clip bounds the output to this pixel rectangle.
	// Coordinates must be integer-aligned.
	Clip rect.Rect

	edges     []edge
	activeIdx []int
	crossings []crossing
	values    []float64
	stroke    []vec.Vec2
	strokeOff []int
	cover     []float32
	area      []float32

	// bounding box of the current edge list, in pixel coordinates
	bboxFirst    bool
	bxMin, bxMax float64
	byMin, byMax float64
}

// NewFiller returns a Filler with the given clip rectangle and an
// identity transformation.
func NewFiller(clip rect.Rect) *Filler {
	return &Filler{
		CTM:  matrix.Identity,
		Clip: clip,
	}
}

// ToPixel transforms a world point into pixel coordinates.
func (f *Filler) ToPixel(p vec.Vec2) vec.Vec2 {
	x, y := f.CTM.Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}

// Spans fills the closed polygon poly (world coordinates) and calls emit
// for every run of pixels in row y whose centers lie inside.  The run
// covers the columns xMin <= x < xMax.  Self-intersecting polygons use the
// nonzero winding rule.
func (f *Filler) Spans(poly []vec.Vec2, emit func(y, xMin, xMax int)) {
	f.resetEdges()
	n := len(poly)
	if n < 3 {
		return
	}
	prev := f.ToPixel(poly[n-1])
	for _, p := range poly {
		cur := f.ToPixel(p)
		f.addEdge(prev, cur)
		prev = cur
	}
	f.scanCenters(emit)
}

// Shade fills the triangle tri (world coordinates) and calls emit for every
// run of pixels in row y whose centers lie inside.  vals[i] is the value at
// pixel xMin+i, obtained by linear interpolation of the corner values val
// at the pixel center.  The vals slice is only valid during the call.
//
// Degenerate triangles are skipped, since they contain no pixel centers.
func (f *Filler) Shade(tri [3]vec.Vec2, val [3]float64, emit func(y, xMin int, vals []float64)) {
	p0, p1, p2 := f.ToPixel(tri[0]), f.ToPixel(tri[1]), f.ToPixel(tri[2])

	ux, uy := p1.X-p0.X, p1.Y-p0.Y
	wx, wy := p2.X-p0.X, p2.Y-p0.Y
	det := ux*wy - wx*uy
	if math.Abs(det) < degenerateAreaThreshold {
		return
	}
	dv1, dv2 := val[1]-val[0], val[2]-val[0]
	a := (dv1*wy - dv2*uy) / det // dv/dx
	b := (ux*dv2 - wx*dv1) / det // dv/dy

	f.resetEdges()
	f.addEdge(p0, p1)
	f.addEdge(p1, p2)
	f.addEdge(p2, p0)
	f.scanCenters(func(y, xMin, xMax int) {
		w := xMax - xMin
		f.values = slices.Grow(f.values[:0], w)[:w]
		cy := float64(y) + 0.5 - p0.Y
		for i := range f.values {
			cx := float64(xMin+i) + 0.5 - p0.X
			f.values[i] = val[0] + a*cx + b*cy
		}
		emit(y, xMin, f.values)
	})
}

func (f *Filler) resetEdges() {
	f.edges = f.edges[:0]
	f.bboxFirst = true
}

// addEdge appends the edge p→q, given in pixel coordinates.
func (f *Filler) addEdge(p, q vec.Vec2) {
	dir := 1
	if q.Y < p.Y {
		p, q = q, p
		dir = -1
	}
	dy := q.Y - p.Y
	if dy == 0 {
		return
	}
	f.edges = append(f.edges, edge{
		x0: p.X, y0: p.Y,
		x1: q.X, y1: q.Y,
		dxdy: (q.X - p.X) / dy,
		dir:  dir,
	})

	if f.bboxFirst {
		f.bxMin, f.bxMax = min(p.X, q.X), max(p.X, q.X)
		f.byMin, f.byMax = p.Y, q.Y
		f.bboxFirst = false
	} else {
		f.bxMin = min(f.bxMin, p.X, q.X)
		f.bxMax = max(f.bxMax, p.X, q.X)
		f.byMin = min(f.byMin, p.Y)
		f.byMax = max(f.byMax, q.Y)
	}
}

// firstCenter returns the smallest integer i with i+0.5 >= v.
func firstCenter(v float64) int {
	return int(math.Ceil(v - 0.5))
}

// scanCenters walks the scanlines through the pixel centers, using an
// active edge list, and emits the runs of pixels inside the edge list.
func (f *Filler) scanCenters(emit func(y, xMin, xMax int)) {
	if len(f.edges) == 0 {
		return
	}

	clipXMin, clipXMax := int(f.Clip.LLx), int(f.Clip.URx)
	clipYMin, clipYMax := int(f.Clip.LLy), int(f.Clip.URy)

	// An edge meets the scanline through yc iff y0 <= yc < y1.
	yMin := max(firstCenter(f.byMin), clipYMin)
	yMax := min(firstCenter(f.byMax), clipYMax)
	if yMin >= yMax {
		return
	}
	if firstCenter(f.bxMax) <= clipXMin || firstCenter(f.bxMin) >= clipXMax {
		return
	}

	slices.SortFunc(f.edges, func(a, b edge) int {
		return cmp.Compare(a.y0, b.y0)
	})

	f.activeIdx = f.activeIdx[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		yc := float64(y) + 0.5

		for next < len(f.edges) && f.edges[next].y0 <= yc {
			f.activeIdx = append(f.activeIdx, next)
			next++
		}

		f.crossings = f.crossings[:0]
		for i := 0; i < len(f.activeIdx); {
			e := &f.edges[f.activeIdx[i]]
			if e.y1 <= yc {
				f.activeIdx[i] = f.activeIdx[len(f.activeIdx)-1]
				f.activeIdx = f.activeIdx[:len(f.activeIdx)-1]
				continue
			}
			if e.y0 <= yc {
				f.crossings = append(f.crossings, crossing{
					x:   e.x0 + (yc-e.y0)*e.dxdy,
					dir: e.dir,
				})
			}
			i++
		}
		if len(f.crossings) < 2 {
			continue
		}

		slices.SortFunc(f.crossings, func(a, b crossing) int {
			return cmp.Compare(a.x, b.x)
		})

		winding := 0
		for i, c := range f.crossings[:len(f.crossings)-1] {
			winding += c.dir
			if winding == 0 {
				continue
			}
			xMin := max(firstCenter(c.x), clipXMin)
			xMax := min(firstCenter(f.crossings[i+1].x), clipXMax)
			if xMin < xMax {
				emit(y, xMin, xMax)
			}
		}
	}
}

// Numerical tolerances.
const (
	// horizontalEdgeThreshold is the minimum vertical extent, in pixels,
	// for an edge to contribute to anti-aliased coverage.
	horizontalEdgeThreshold = 1e-10

	// degenerateAreaThreshold is the minimum doubled area, in square
	// pixels, of a triangle passed to Shade.
	degenerateAreaThreshold = 1e-12
)
