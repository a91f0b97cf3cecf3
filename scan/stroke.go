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

package scan

import (
	"math"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Segment is a straight line segment in world coordinates.
type Segment struct {
	A, B vec.Vec2
}

// StrokeSegments strokes independent line segments with the given width
// and cap style, and delivers anti-aliased coverage row by row as in
// [Filler.Coverage].  Unlike the world-space geometry, width is measured in
// pixels, so that outlines keep their weight at every grid resolution.
// Overlapping segments are painted once.
//
// Segments share no joins, so no join style is needed.
func (f *Filler) StrokeSegments(segs []Segment, width float64, capStyle graphics.LineCapStyle, emit func(y, xMin int, coverage []float32)) {
	f.stroke = f.stroke[:0]
	f.strokeOff = f.strokeOff[:0]
	d := width / 2
	if !(d > 0) {
		return
	}

	for _, s := range segs {
		a, b := f.ToPixel(s.A), f.ToPixel(s.B)
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)

		start := len(f.stroke)
		if length < zeroLengthThreshold {
			// A point has no orientation: only round caps produce output.
			if capStyle == graphics.LineCapRound {
				f.addArc(a, d, vec.Vec2{X: 1, Y: 0}, 2*math.Pi)
				f.strokeOff = append(f.strokeOff, start)
			}
			continue
		}

		t := vec.Vec2{X: dx / length, Y: dy / length}
		n := vec.Vec2{X: -t.Y, Y: t.X}
		if capStyle == graphics.LineCapSquare {
			a = a.Sub(t.Mul(d))
			b = b.Add(t.Mul(d))
		}

		// The outline runs along the +n side, around the end at b, back
		// along the -n side and around the end at a.  Every segment gets
		// the same orientation, so that overlaps add up under the nonzero
		// rule instead of cancelling.
		f.stroke = append(f.stroke, a.Add(n.Mul(d)), b.Add(n.Mul(d)))
		if capStyle == graphics.LineCapRound {
			f.addArc(b, d, n, -math.Pi)
		}
		f.stroke = append(f.stroke, b.Sub(n.Mul(d)), a.Sub(n.Mul(d)))
		if capStyle == graphics.LineCapRound {
			f.addArc(a, d, n.Mul(-1), -math.Pi)
		}
		f.strokeOff = append(f.strokeOff, start)
	}

	f.resetEdges()
	for i, start := range f.strokeOff {
		end := len(f.stroke)
		if i+1 < len(f.strokeOff) {
			end = f.strokeOff[i+1]
		}
		poly := f.stroke[start:end]
		for j := range poly {
			f.addCoverageEdge(poly[j], poly[(j+1)%len(poly)])
		}
	}
	f.fillCoverage(emit)
}

// addArc appends points on a circular arc around center, in pixel
// coordinates.  startDir is the unit vector from the center to the arc
// start and sweep is the signed sweep angle.  The start point is not
// included, the end point is.
func (f *Filler) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64) {
	// A chord spanning angle θ deviates from the circle by r(1 - cos(θ/2)).
	step := math.Pi / 4
	if radius > arcFlatness {
		step = 2 * math.Acos(1-arcFlatness/radius)
	}
	n := max(int(math.Ceil(math.Abs(sweep)/step)), 1)

	dt := sweep / float64(n)
	for i := 1; i <= n; i++ {
		sin, cos := math.Sincos(float64(i) * dt)
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		f.stroke = append(f.stroke, center.Add(dir.Mul(radius)))
	}
}

const (
	// arcFlatness is the maximum deviation of flattened arcs, in pixels.
	arcFlatness = 0.25

	// zeroLengthThreshold is the minimum length of a stroked segment, in
	// pixels.  Shorter segments are treated as points.
	zeroLengthThreshold = 1e-10
)
