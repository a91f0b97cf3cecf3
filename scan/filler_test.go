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
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// TestSpansRectangle checks the pixel-center rule on an axis-aligned
// rectangle whose edges pass exactly through pixel centers.
func TestSpansRectangle(t *testing.T) {
	f := NewFiller(rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 10})
	poly := []vec.Vec2{{X: 1.5, Y: 2.5}, {X: 4.5, Y: 2.5}, {X: 4.5, Y: 5.5}, {X: 1.5, Y: 5.5}}

	var got [10][10]int
	f.Spans(poly, func(y, xMin, xMax int) {
		for x := xMin; x < xMax; x++ {
			got[y][x]++
		}
	})

	// centers on the left and top edges are inside, on the right and
	// bottom edges outside
	for y := range 10 {
		for x := range 10 {
			want := 0
			if x >= 1 && x < 4 && y >= 2 && y < 5 {
				want = 1
			}
			if got[y][x] != want {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, got[y][x], want)
			}
		}
	}
}

// TestSpansCTM fills a world rectangle through a north-up world-to-pixel
// matrix with 5 unit pixels.
func TestSpansCTM(t *testing.T) {
	f := NewFiller(rect.Rect{URx: 8, URy: 8})
	f.CTM = matrix.Matrix{0.2, 0, 0, -0.2, -100, 840}
	if p := f.ToPixel(vec.Vec2{X: 500, Y: 4200}); p != (vec.Vec2{X: 0, Y: 0}) {
		t.Fatalf("origin maps to %v", p)
	}

	// covers pixel columns 1..3 and rows 2..3
	poly := []vec.Vec2{{X: 504, Y: 4189}, {X: 519, Y: 4189}, {X: 519, Y: 4181}, {X: 504, Y: 4181}}
	count := 0
	f.Spans(poly, func(y, xMin, xMax int) {
		if y < 2 || y > 3 || xMin != 1 || xMax != 4 {
			t.Errorf("row %d: span [%d,%d)", y, xMin, xMax)
		}
		count += xMax - xMin
	})
	if count != 6 {
		t.Errorf("got %d pixels, want 6", count)
	}
}

// TestSpansPartition tiles the clip rectangle with triangles whose vertices
// and edges hit pixel centers, and checks that every pixel is claimed
// exactly once.
func TestSpansPartition(t *testing.T) {
	const n = 24
	ctms := []matrix.Matrix{
		matrix.Identity,
		{1, 0, 0, -1, 0, n}, // flipped y axis, as for north-up grids
		{0.5, 0, 0, 0.5, 0, 0},
	}
	for _, ctm := range ctms {
		f := NewFiller(rect.Rect{LLx: 0, LLy: 0, URx: n, URy: n})
		f.CTM = ctm

		// world-space lattice which maps onto the pixel grid
		inv := func(px, py float64) vec.Vec2 {
			switch ctm {
			case matrix.Identity:
				return vec.Vec2{X: px, Y: py}
			case ctms[1]:
				return vec.Vec2{X: px, Y: n - py}
			default:
				return vec.Vec2{X: 2 * px, Y: 2 * py}
			}
		}

		hits := make([]int, n*n)
		step := 3.0
		for i := -1.0; i*step < n+step; i++ {
			for j := -1.0; j*step < n+step; j++ {
				x0, y0 := i*step+0.5, j*step+0.5
				a := inv(x0, y0)
				b := inv(x0+step, y0)
				c := inv(x0+step, y0+step)
				d := inv(x0, y0+step)
				for _, tri := range [][]vec.Vec2{{a, b, c}, {a, c, d}} {
					f.Spans(tri, func(y, xMin, xMax int) {
						for x := xMin; x < xMax; x++ {
							hits[y*n+x]++
						}
					})
				}
			}
		}
		for i, h := range hits {
			if h != 1 {
				t.Errorf("ctm %v: pixel (%d,%d) written %d times", ctm, i%n, i/n, h)
			}
		}
	}
}

func TestShadePlane(t *testing.T) {
	f := NewFiller(rect.Rect{LLx: 0, LLy: 0, URx: 20, URy: 20})
	tri := [3]vec.Vec2{{X: 1, Y: 1}, {X: 19, Y: 2}, {X: 4, Y: 18}}
	plane := func(x, y float64) float64 { return 2*x - 0.5*y + 3 }
	val := [3]float64{plane(1, 1), plane(19, 2), plane(4, 18)}

	count := 0
	f.Shade(tri, val, func(y, xMin int, vals []float64) {
		for i, v := range vals {
			want := plane(float64(xMin+i)+0.5, float64(y)+0.5)
			if math.Abs(v-want) > 1e-9 {
				t.Errorf("pixel (%d,%d): got %g, want %g", xMin+i, y, v, want)
			}
			count++
		}
	})
	// area of the triangle is 151.5; the center count must be close
	if count < 140 || count > 180 {
		t.Errorf("shaded %d pixels", count)
	}

	f.Shade([3]vec.Vec2{{X: 1, Y: 1}, {X: 5, Y: 5}, {X: 9, Y: 9}}, val, func(int, int, []float64) {
		t.Error("degenerate triangle produced output")
	})
}

func TestSpansClip(t *testing.T) {
	f := NewFiller(rect.Rect{LLx: 2, LLy: 2, URx: 4, URy: 4})
	poly := []vec.Vec2{{X: -10, Y: -10}, {X: 10, Y: -10}, {X: 10, Y: 10}, {X: -10, Y: 10}}
	count := 0
	f.Spans(poly, func(y, xMin, xMax int) {
		if y < 2 || y >= 4 || xMin < 2 || xMax > 4 {
			t.Errorf("span y=%d [%d,%d) outside clip", y, xMin, xMax)
		}
		count += xMax - xMin
	})
	if count != 4 {
		t.Errorf("got %d pixels, want 4", count)
	}
}

// TestTriangleCoverage verifies exact coverage values for a simple triangle.
// The triangle (0,0)→(10,0)→(10,1)→close has a diagonal edge y = x/10.
// Each pixel X should have coverage (2X+1)/20: 0.05, 0.15, ..., 0.95.
func TestTriangleCoverage(t *testing.T) {
	trianglePath := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close()

	f := NewFiller(rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 1})

	coverage := make([]float32, 10)
	f.Coverage(trianglePath, func(y, xMin int, cov []float32) {
		if y == 0 {
			copy(coverage[xMin:], cov)
		}
	})

	const epsilon = 1e-6
	for x := range 10 {
		expected := float32(2*x+1) / 20.0
		if math.Abs(float64(coverage[x]-expected)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, expected, coverage[x])
		}
	}
}

func TestStrokeSegments(t *testing.T) {
	caps := []graphics.LineCapStyle{graphics.LineCapButt, graphics.LineCapSquare, graphics.LineCapRound}
	for _, c := range caps {
		f := NewFiller(rect.Rect{LLx: 0, LLy: 0, URx: 20, URy: 20})
		img := make([]float32, 20*20)
		segs := []Segment{
			{A: vec.Vec2{X: 5, Y: 10}, B: vec.Vec2{X: 15, Y: 10}},
			{A: vec.Vec2{X: 10, Y: 5}, B: vec.Vec2{X: 10, Y: 15}}, // crosses the first one
		}
		f.StrokeSegments(segs, 2, c, func(y, xMin int, cov []float32) {
			copy(img[y*20+xMin:], cov)
		})

		var total float64
		for _, v := range img {
			if v < 0 || v > 1 {
				t.Fatalf("cap %v: coverage %g out of range", c, v)
			}
			total += float64(v)
		}
		// two 10×2 bars sharing a 2×2 square, plus caps
		lo, hi := 36.0, 36.0
		switch c {
		case graphics.LineCapSquare:
			lo, hi = 44, 44
		case graphics.LineCapRound:
			// flattened arcs lose some area
			lo, hi = 36+2*math.Pi-1.5, 36+2*math.Pi
		}
		if total < lo-1e-3 || total > hi+1e-3 {
			t.Errorf("cap %v: total coverage %g, want in [%g, %g]", c, total, lo, hi)
		}
		if img[10*20+10] != 1 {
			t.Errorf("cap %v: crossing pixel has coverage %g", c, img[10*20+10])
		}
	}
}
