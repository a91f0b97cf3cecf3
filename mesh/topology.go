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

// Package mesh builds the indexed topology of a 2D unstructured mesh.
//
// Cells, faces and vertices are stored in flat arrays and refer to each
// other by index only.  A [Topology] is immutable once built and can be
// shared between goroutines.
package mesh

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Exterior marks the outside of the mesh in a face's cell pair.
const Exterior = -1

// Geometry holds the raw, positionally indexed mesh arrays as extracted
// from a geometry container.  The array index is the element id.
type Geometry struct {
	// Points are the vertex coordinates.
	Points []vec.Vec2

	// Cells lists the vertex ring of every cell, in order.  The ring is
	// implicitly closed.
	Cells [][]int

	// FaceVertices are the two end points of every face.
	FaceVertices [][2]int

	// FaceCells are the two cells adjacent to every face.  One of them may
	// be Exterior.
	FaceCells [][2]int

	// CellCenters are the computational cell centers.  If nil, the area
	// centroids of the cell polygons are used.
	CellCenters []vec.Vec2

	// CellMinElevation and FaceMinElevation hold the minimum terrain
	// elevation of every cell and face.  They are optional, but must be
	// given together.
	CellMinElevation []float64
	FaceMinElevation []float64

	// CellAreas optionally holds the id of the mesh area owning each cell.
	CellAreas []int
}

// Cell is a read-only view of a mesh cell.
type Cell struct {
	Ring         []int // vertex indices, must not be modified
	Center       vec.Vec2
	MinElevation float64 // NaN if the mesh has no terrain
	Area         int
}

// Face is a mesh face.
type Face struct {
	Vertices     [2]int
	Cells        [2]int  // one entry may be Exterior
	MinElevation float64 // NaN if the mesh has no terrain
}

// Vertex is a read-only view of a mesh vertex.
type Vertex struct {
	Point vec.Vec2
	Faces []int // incident faces, must not be modified
	Cells []int // incident cells, must not be modified
}

// Topology is the indexed mesh.
type Topology struct {
	points []vec.Vec2
	faces  []Face

	centers  []vec.Vec2
	cellMin  []float64
	areas    []int
	ring     csr
	cellFace csr
	vertFace csr
	vertCell csr

	hasTerrain bool
	bounds     rect.Rect
}

// csr stores a list of index lists in compressed-row form:
// row i is idx[off[i]:off[i+1]].
type csr struct {
	off []int
	idx []int
}

func (c *csr) row(i int) []int {
	return c.idx[c.off[i]:c.off[i+1]:c.off[i+1]]
}

// buildCSR fills a csr with n rows from a list of (row, value) pairs,
// visited twice by each.  Values keep their visiting order within a row.
func buildCSR(n int, each func(emit func(row, value int))) csr {
	c := csr{off: make([]int, n+1)}
	each(func(row, _ int) { c.off[row+1]++ })
	for i := range n {
		c.off[i+1] += c.off[i]
	}
	c.idx = make([]int, c.off[n])
	fill := make([]int, n)
	copy(fill, c.off[:n])
	each(func(row, value int) {
		c.idx[fill[row]] = value
		fill[row]++
	})
	return c
}

// Build validates the geometry and constructs the topology.
// Malformed input results in a *GeometryError.
func Build(g *Geometry) (*Topology, error) {
	nPts := len(g.Points)
	nCells := len(g.Cells)
	nFaces := len(g.FaceVertices)

	if len(g.FaceCells) != nFaces {
		return nil, &GeometryError{Kind: LengthMismatch, Element: ElementMesh,
			Detail: "face vertex and face cell arrays differ in length"}
	}
	if g.CellCenters != nil && len(g.CellCenters) != nCells {
		return nil, &GeometryError{Kind: LengthMismatch, Element: ElementMesh,
			Detail: "cell centers do not match the number of cells"}
	}
	if g.CellAreas != nil && len(g.CellAreas) != nCells {
		return nil, &GeometryError{Kind: LengthMismatch, Element: ElementMesh,
			Detail: "cell areas do not match the number of cells"}
	}
	hasTerrain := g.CellMinElevation != nil || g.FaceMinElevation != nil
	if hasTerrain && (len(g.CellMinElevation) != nCells || len(g.FaceMinElevation) != nFaces) {
		return nil, &GeometryError{Kind: LengthMismatch, Element: ElementMesh,
			Detail: "cell and face minimum elevations must be given together, one per element"}
	}

	t := &Topology{
		points:     g.Points,
		faces:      make([]Face, nFaces),
		centers:    make([]vec.Vec2, nCells),
		cellMin:    make([]float64, nCells),
		areas:      make([]int, nCells),
		hasTerrain: hasTerrain,
	}

	rings := make([][]int, nCells)
	for i, raw := range g.Cells {
		ring, err := normalizeRing(i, raw, nPts)
		if err != nil {
			return nil, err
		}
		if err := checkSimple(i, ring, g.Points); err != nil {
			return nil, err
		}
		rings[i] = ring

		if g.CellCenters != nil {
			t.centers[i] = g.CellCenters[i]
		} else {
			t.centers[i] = centroid(ring, g.Points)
		}
		t.cellMin[i] = math.NaN()
		if hasTerrain {
			t.cellMin[i] = g.CellMinElevation[i]
		}
		if g.CellAreas != nil {
			t.areas[i] = g.CellAreas[i]
		}
	}

	for i, fv := range g.FaceVertices {
		for _, v := range fv {
			if v < 0 || v >= nPts {
				return nil, faceError(InvalidVertex, i, "vertex %d out of range [0, %d)", v, nPts)
			}
		}
		if fv[0] == fv[1] {
			return nil, faceError(InvalidVertex, i, "both end points are vertex %d", fv[0])
		}
		fc := g.FaceCells[i]
		for _, c := range fc {
			if c != Exterior && (c < 0 || c >= nCells) {
				return nil, faceError(OrphanFace, i, "cell %d out of range [0, %d)", c, nCells)
			}
		}
		if fc[0] == Exterior && fc[1] == Exterior {
			return nil, faceError(OrphanFace, i, "both sides are exterior")
		}
		if fc[0] == fc[1] {
			return nil, faceError(OrphanFace, i, "both sides are cell %d", fc[0])
		}
		minElev := math.NaN()
		if hasTerrain {
			minElev = g.FaceMinElevation[i]
		}
		t.faces[i] = Face{Vertices: fv, Cells: fc, MinElevation: minElev}
	}

	t.ring = buildCSR(nCells, func(emit func(int, int)) {
		for i, r := range rings {
			for _, v := range r {
				emit(i, v)
			}
		}
	})
	t.cellFace = buildCSR(nCells, func(emit func(int, int)) {
		for i, f := range t.faces {
			for _, c := range f.Cells {
				if c != Exterior {
					emit(c, i)
				}
			}
		}
	})
	t.vertFace = buildCSR(nPts, func(emit func(int, int)) {
		for i, f := range t.faces {
			emit(f.Vertices[0], i)
			emit(f.Vertices[1], i)
		}
	})
	t.vertCell = buildCSR(nPts, func(emit func(int, int)) {
		for i, r := range rings {
			for _, v := range r {
				emit(v, i)
			}
		}
	})

	for i, p := range g.Points {
		if i == 0 {
			t.bounds = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
			continue
		}
		t.bounds.Add(p.X, p.Y)
	}

	return t, nil
}

// NumCells returns the number of cells.
func (t *Topology) NumCells() int { return len(t.centers) }

// NumFaces returns the number of faces.
func (t *Topology) NumFaces() int { return len(t.faces) }

// NumVertices returns the number of vertices.
func (t *Topology) NumVertices() int { return len(t.points) }

// HasTerrain reports whether minimum cell and face elevations are known.
func (t *Topology) HasTerrain() bool { return t.hasTerrain }

// Bounds returns the bounding box of all vertices.
func (t *Topology) Bounds() rect.Rect { return t.bounds }

// CellAt returns cell i.
func (t *Topology) CellAt(i int) Cell {
	return Cell{
		Ring:         t.ring.row(i),
		Center:       t.centers[i],
		MinElevation: t.cellMin[i],
		Area:         t.areas[i],
	}
}

// FaceAt returns face i.
func (t *Topology) FaceAt(i int) Face { return t.faces[i] }

// VertexAt returns vertex i.
func (t *Topology) VertexAt(i int) Vertex {
	return Vertex{
		Point: t.points[i],
		Faces: t.vertFace.row(i),
		Cells: t.vertCell.row(i),
	}
}

// Point returns the coordinates of vertex i.
func (t *Topology) Point(i int) vec.Vec2 { return t.points[i] }

// FacesOfCell returns the faces bounding cell i.
func (t *Topology) FacesOfCell(i int) []int { return t.cellFace.row(i) }

// CellsOfVertex returns the cells sharing vertex i.
func (t *Topology) CellsOfVertex(i int) []int { return t.vertCell.row(i) }

// FacesOfVertex returns the faces ending at vertex i.
func (t *Topology) FacesOfVertex(i int) []int { return t.vertFace.row(i) }

// IsBoundary reports whether face i separates a cell from the exterior.
func (t *Topology) IsBoundary(i int) bool {
	f := &t.faces[i]
	return f.Cells[0] == Exterior || f.Cells[1] == Exterior
}

// FaceSegment returns the end points of face i.
func (t *Topology) FaceSegment(i int) (a, b vec.Vec2) {
	f := &t.faces[i]
	return t.points[f.Vertices[0]], t.points[f.Vertices[1]]
}

// FaceMidpoint returns the midpoint of face i.
func (t *Topology) FaceMidpoint(i int) vec.Vec2 {
	return vec.Middle(t.FaceSegment(i))
}

// AppendCellPolygon appends the corner coordinates of cell i to dst.
func (t *Topology) AppendCellPolygon(dst []vec.Vec2, i int) []vec.Vec2 {
	for _, v := range t.ring.row(i) {
		dst = append(dst, t.points[v])
	}
	return dst
}

// CellPath returns the outline of cell i as a closed path.
func (t *Topology) CellPath(i int) *path.Data {
	p := &path.Data{}
	for k, v := range t.ring.row(i) {
		if k == 0 {
			p = p.MoveTo(t.points[v])
		} else {
			p = p.LineTo(t.points[v])
		}
	}
	return p.Close()
}

// normalizeRing drops a repeated closing vertex and consecutive duplicates
// and checks the vertex references.
func normalizeRing(cell int, raw []int, nPts int) ([]int, error) {
	ring := make([]int, 0, len(raw))
	for _, v := range raw {
		if v < 0 || v >= nPts {
			return nil, cellError(InvalidVertex, cell, "vertex %d out of range [0, %d)", v, nPts)
		}
		if len(ring) > 0 && ring[len(ring)-1] == v {
			continue
		}
		ring = append(ring, v)
	}
	for len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, cellError(DegenerateCell, cell, "%d distinct vertices", len(ring))
	}
	return ring, nil
}

// checkSimple verifies that the cell ring encloses a positive area and
// does not intersect itself.
func checkSimple(cell int, ring []int, pts []vec.Vec2) error {
	n := len(ring)
	seen := make(map[int]bool, n)
	for _, v := range ring {
		if seen[v] {
			return cellError(SelfIntersecting, cell, "vertex %d visited twice", v)
		}
		seen[v] = true
	}
	for i := range n {
		a0, a1 := pts[ring[i]], pts[ring[(i+1)%n]]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			b0, b1 := pts[ring[j]], pts[ring[(j+1)%n]]
			if segmentsIntersect(a0, a1, b0, b1) {
				return cellError(SelfIntersecting, cell, "edges %d and %d intersect", i, j)
			}
		}
	}
	if signedArea(ring, pts) == 0 {
		return cellError(DegenerateCell, cell, "zero area")
	}
	return nil
}

func orient(a, b, c vec.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p vec.Vec2) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// segmentsIntersect reports whether the closed segments a0a1 and b0b1
// have a point in common.
func segmentsIntersect(a0, a1, b0, b1 vec.Vec2) bool {
	d1 := orient(b0, b1, a0)
	d2 := orient(b0, b1, a1)
	d3 := orient(a0, a1, b0)
	d4 := orient(a0, a1, b1)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(b0, b1, a0):
		return true
	case d2 == 0 && onSegment(b0, b1, a1):
		return true
	case d3 == 0 && onSegment(a0, a1, b0):
		return true
	case d4 == 0 && onSegment(a0, a1, b1):
		return true
	}
	return false
}

// signedArea returns twice the signed area of the ring.
func signedArea(ring []int, pts []vec.Vec2) float64 {
	var a float64
	n := len(ring)
	for i := range n {
		p, q := pts[ring[i]], pts[ring[(i+1)%n]]
		a += p.X*q.Y - q.X*p.Y
	}
	return a
}

// centroid returns the area centroid of the ring.  Coordinates are taken
// relative to the first vertex to limit cancellation for large (projected)
// coordinates.
func centroid(ring []int, pts []vec.Vec2) vec.Vec2 {
	o := pts[ring[0]]
	var a, cx, cy float64
	n := len(ring)
	for i := range n {
		p, q := pts[ring[i]].Sub(o), pts[ring[(i+1)%n]].Sub(o)
		w := p.X*q.Y - q.X*p.Y
		a += w
		cx += (p.X + q.X) * w
		cy += (p.Y + q.Y) * w
	}
	return vec.Vec2{X: o.X + cx/(3*a), Y: o.Y + cy/(3*a)}
}
