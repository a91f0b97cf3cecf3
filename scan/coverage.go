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
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Coverage fills the path p (world coordinates) using the nonzero winding
// rule and delivers anti-aliased coverage row by row: coverage[i] is the
// fraction of pixel (xMin+i, y) covered by the path, between 0 and 1.
// The coverage slice is only valid for the duration of the callback.
//
// Curve segments are replaced by straight lines to their end point; mesh
// outlines contain no curves.
func (f *Filler) Coverage(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	f.resetEdges()

	var current, subpath vec.Vec2
	coordIdx := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			current = f.ToPixel(p.Coords[coordIdx])
			subpath = current
			coordIdx++
		case path.CmdLineTo:
			next := f.ToPixel(p.Coords[coordIdx])
			f.addCoverageEdge(current, next)
			current = next
			coordIdx++
		case path.CmdQuadTo:
			next := f.ToPixel(p.Coords[coordIdx+1])
			f.addCoverageEdge(current, next)
			current = next
			coordIdx += 2
		case path.CmdCubeTo:
			next := f.ToPixel(p.Coords[coordIdx+2])
			f.addCoverageEdge(current, next)
			current = next
			coordIdx += 3
		case path.CmdClose:
			if current != subpath {
				f.addCoverageEdge(current, subpath)
			}
			current = subpath
		}
	}
	f.fillCoverage(emit)
}

// addCoverageEdge adds an edge in pixel coordinates, skipping edges too
// flat to contribute.
func (f *Filler) addCoverageEdge(p, q vec.Vec2) {
	dy := q.Y - p.Y
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	f.addEdge(p, q)
}

// Coverage accumulation model:
//
// For each pixel, two values are tracked:
//   cover: signed vertical extent of edges crossing this pixel column
//   area:  cover weighted by how far right within the pixel the crossing is
//
// The coverage of pixel i is the running sum of cover over pixels 0..i-1
// plus area[i].  The absolute value, clamped to [0, 1], gives the
// anti-aliased coverage under the nonzero rule.

// fillCoverage rasterises the current edge list using an active edge list.
func (f *Filler) fillCoverage(emit func(y, xMin int, coverage []float32)) {
	if len(f.edges) == 0 {
		return
	}

	xMin := max(int(math.Floor(f.bxMin)), int(f.Clip.LLx))
	xMax := min(int(math.Floor(f.bxMax))+1, int(f.Clip.URx))
	yMin := max(int(math.Floor(f.byMin)), int(f.Clip.LLy))
	yMax := min(int(math.Floor(f.byMax))+1, int(f.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}
	width := xMax - xMin

	f.cover = slices.Grow(f.cover[:0], width)[:width]
	f.area = slices.Grow(f.area[:0], width)[:width]

	slices.SortFunc(f.edges, func(a, b edge) int {
		return cmp.Compare(a.y0, b.y0)
	})

	f.activeIdx = f.activeIdx[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		yTop, yBot := float64(y), float64(y+1)

		for next < len(f.edges) && f.edges[next].y0 < yBot {
			f.activeIdx = append(f.activeIdx, next)
			next++
		}
		if len(f.activeIdx) == 0 {
			continue
		}

		clear(f.cover)
		clear(f.area)
		touched := false
		for i := 0; i < len(f.activeIdx); {
			e := &f.edges[f.activeIdx[i]]
			if e.y1 <= yTop {
				f.activeIdx[i] = f.activeIdx[len(f.activeIdx)-1]
				f.activeIdx = f.activeIdx[:len(f.activeIdx)-1]
				continue
			}
			if accumulateEdge(e, yTop, yBot, f.cover, f.area, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrateNonZero(f.cover, f.area)
		if trimmed, offset := trimZeros(f.cover); trimmed != nil {
			emit(y, xMin+offset, trimmed)
		}
	}
}

// accumulateEdge adds the contribution of edge e within the scanline
// [yTop, yBot) to the buffers, which are indexed by x - bboxXMin.
// Contributions left of the buffer are folded into its first pixel.
func accumulateEdge(e *edge, yTop, yBot float64, cover, area []float32, bboxXMin, bboxXMax int) bool {
	yTop = max(yTop, e.y0)
	yBot = min(yBot, e.y1)
	if yBot <= yTop {
		return false
	}
	sign := float32(e.dir)

	xA := e.x0 + e.dxdy*(yTop-e.y0)
	xB := e.x0 + e.dxdy*(yBot-e.y0)
	pixLeft := int(math.Floor(min(xA, xB)))
	pixRight := int(math.Floor(max(xA, xB)))

	if pixRight < bboxXMin {
		c := sign * float32(yBot-yTop)
		cover[0] += c
		area[0] += c
		return true
	}
	if pixLeft >= bboxXMax {
		return false
	}

	deposit := func(pix int, segTop, segBot float64) {
		c := sign * float32(segBot-segTop)
		if pix < bboxXMin {
			cover[0] += c
			area[0] += c
			return
		}
		if pix >= bboxXMax {
			return
		}
		xMid := e.x0 + e.dxdy*((segTop+segBot)/2-e.y0)
		idx := pix - bboxXMin
		cover[idx] += c
		area[idx] += c * float32(1-(xMid-float64(pix)))
	}

	if pixLeft == pixRight {
		deposit(pixLeft, yTop, yBot)
		return true
	}

	// split the edge at the pixel column boundaries
	dydx := 1 / e.dxdy
	for pix := pixLeft; pix <= pixRight; pix++ {
		yL := e.y0 + dydx*(float64(pix)-e.x0)
		yR := e.y0 + dydx*(float64(pix+1)-e.x0)
		segTop := max(min(yL, yR), yTop)
		segBot := min(max(yL, yR), yBot)
		if segBot > segTop {
			deposit(pix, segTop, segBot)
		}
	}
	return true
}

// integrateNonZero turns accumulated cover/area values into coverage,
// in place in cover.
func integrateNonZero(cover, area []float32) {
	var accum float32
	for i := range cover {
		raw := accum + area[i]
		accum += cover[i]
		if raw < 0 {
			raw = -raw
		}
		cover[i] = min(raw, 1)
	}
}

// trimZeros returns the non-zero part of coverage and its offset,
// or nil if coverage is all zero.
func trimZeros(coverage []float32) ([]float32, int) {
	lo, hi := 0, len(coverage)
	for lo < hi && coverage[lo] == 0 {
		lo++
	}
	if lo == hi {
		return nil, 0
	}
	for coverage[hi-1] == 0 {
		hi--
	}
	return coverage[lo:hi], lo
}
