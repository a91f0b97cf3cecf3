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

package testcases

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/meshraster/grid"
)

// All contains all test cases, grouped by category.
// The category name is used as a prefix in exported file names.
var All = map[string][]Case{
	"scenario":     scenarioCases(),
	"regular":      regularCases(),
	"triangulated": triangulatedCases(),
	"projected":    projectedCases(),
}

// Scenario returns the two-cell mesh on flat terrain at elevation 0, with
// the given water surface elevations for the left and right cell.
// The cells are 10 units wide and the target grid has unit pixels.
func Scenario(name string, wseA, wseB float32) Case {
	g, locate := TwoCell(10)
	terrain := &Plane{}
	elevations(g, terrain)
	return Case{
		Name:     name,
		Geometry: g,
		Target:   grid.Spec{Transform: grid.NorthUp(0, 10, 1), Width: 20, Height: 10},
		Terrain:  terrain,
		WSE:      []float32{wseA, wseB},
		Locate:   locate,
	}
}

func scenarioCases() []Case {
	return []Case{
		Scenario("both_wet", 5, 3),
		Scenario("one_dry", 5, 0),
	}
}

func regularCases() []Case {
	// Mesh edges lie a quarter pixel off the pixel centers.
	origin := pt(2.25, 2.25)
	target := grid.Spec{Transform: grid.NorthUp(0, 70, 1), Width: 90, Height: 70}

	flat, locateFlat := Regular(8, 6, origin, 10)
	flatWSE := make([]float32, len(flat.Cells))
	for i := range flatWSE {
		flatWSE[i] = 100 + 0.25*float32(i)
	}

	ramp, locateRamp := Regular(8, 6, origin, 10)
	rampTerrain := &Plane{A: 0.1}
	elevations(ramp, rampTerrain)
	rampWSE := make([]float32, len(ramp.Cells))
	for i := range rampWSE {
		rampWSE[i] = 5
	}

	return []Case{
		{
			Name:     "no_terrain",
			Geometry: flat,
			Target:   target,
			WSE:      flatWSE,
			Locate:   locateFlat,
		},
		{
			Name:     "partly_wet",
			Geometry: ramp,
			Target:   target,
			Terrain:  rampTerrain,
			WSE:      rampWSE,
			Locate:   locateRamp,
		},
	}
}

func triangulatedCases() []Case {
	// Neither the lattice lines nor the diagonals pass through pixel
	// centers.
	origin := pt(1.25, 1.75)
	target := grid.Spec{Transform: grid.NorthUp(0, 44, 1), Width: 44, Height: 44}

	g, locate := Triangulated(10, 10, origin, 4)
	terrain := &Plane{B: 0.02}
	elevations(g, terrain)
	wse := make([]float32, len(g.Cells))
	for i, c := range centers(g) {
		wse[i] = float32(3 + 0.05*c.X)
	}

	return []Case{
		{
			Name:     "sloped_surface",
			Geometry: g,
			Target:   target,
			Terrain:  terrain,
			WSE:      wse,
			Locate:   locate,
		},
	}
}

// projectedCases use coordinates of the magnitude found in projected
// coordinate systems, with pixels smaller than the cells.
func projectedCases() []Case {
	origin := vec.Vec2{X: 512003.125, Y: 4210007.375}
	target := grid.Spec{
		Transform: grid.NorthUp(512000, 4210400, 5),
		Width:     101,
		Height:    80,
		CRS:       "EPSG:32611",
	}

	g, locate := Regular(20, 15, origin, 25)
	terrain := &Plane{A: 0.01, B: -0.005, C: -5100 + 0.005*4210000}
	elevations(g, terrain)
	wse := make([]float32, len(g.Cells))
	for i, c := range centers(g) {
		wse[i] = float32(terrain.At(c) + 0.5 + 0.001*float64(i%7))
	}

	return []Case{
		{
			Name:     "utm",
			Geometry: g,
			Target:   target,
			Terrain:  terrain,
			WSE:      wse,
			Locate:   locate,
		},
	}
}
