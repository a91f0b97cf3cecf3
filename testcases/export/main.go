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

// Command export writes the synthetic test meshes to JSON, so that they
// can be loaded into external reference renderers.
// Run from the meshraster module root directory.
package main

import (
	"encoding/json"
	"maps"
	"os"
	"slices"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/testcases"
)

func main() {
	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			out.TestCases = append(out.TestCases, toJSON(category, tc))
		}
	}

	if err := os.MkdirAll("testdata", 0o755); err != nil {
		panic(err)
	}
	f, err := os.Create("testdata/testcases.json")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

type jsonTestCase struct {
	Name         string       `json:"name"`
	Points       [][2]float64 `json:"points"`
	Cells        [][]int      `json:"cells"`
	FaceVertices [][2]int     `json:"face_vertices"`
	FaceCells    [][2]int     `json:"face_cells"`
	CellMin      []float64    `json:"cell_min_elevation,omitempty"`
	FaceMin      []float64    `json:"face_min_elevation,omitempty"`
	WSE          []float32    `json:"wse"`
	GeoTransform [6]float64   `json:"geotransform"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	CRS          string       `json:"crs,omitempty"`
	Terrain      []float64    `json:"terrain_plane,omitempty"`
}

func toJSON(category string, tc testcases.Case) jsonTestCase {
	g := tc.Geometry
	t := tc.Target.Transform
	jtc := jsonTestCase{
		Name:         category + "_" + tc.Name,
		Points:       pointsToJSON(g.Points),
		Cells:        g.Cells,
		FaceVertices: g.FaceVertices,
		FaceCells:    g.FaceCells,
		CellMin:      g.CellMinElevation,
		FaceMin:      g.FaceMinElevation,
		WSE:          tc.WSE,
		GeoTransform: [6]float64{t.OriginX, t.PixelWidth, t.RotX, t.OriginY, t.RotY, t.PixelHeight},
		Width:        tc.Target.Width,
		Height:       tc.Target.Height,
		CRS:          tc.Target.CRS,
	}
	if pl := tc.Terrain; pl != nil {
		jtc.Terrain = []float64{pl.A, pl.B, pl.C}
	}
	return jtc
}

func pointsToJSON(pts []vec.Vec2) [][2]float64 {
	res := make([][2]float64, len(pts))
	for i, p := range pts {
		res[i] = [2]float64{p.X, p.Y}
	}
	return res
}
