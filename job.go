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
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/meshraster/grid"
	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/results"
	"seehuhn.de/go/meshraster/surface"
)

// ErrNoTarget is returned for jobs which have neither terrain nor a target
// grid.
var ErrNoTarget = errors.New("meshraster: no output grid")

// Job describes one raster to produce.
type Job struct {
	// Name identifies the job in log messages and errors.
	Name string

	Topology *mesh.Topology

	// WSE holds the water surface elevation of every cell.
	WSE *results.Binding

	// Velocity is only needed for the Velocity variable.  It holds either
	// the normal velocity of every face or the flow speed of every cell.
	Velocity *results.Binding

	// Terrain is optional.  If present, the output is aligned with it and
	// masked to the pixels where the water surface lies above it.
	Terrain *grid.Grid

	Mode     Mode
	Variable Variable
}

// Output is the result of a job.
type Output struct {
	Grid *grid.Grid

	// Extent is 1 on wet pixels and no-data elsewhere.  It is nil for jobs
	// without terrain.
	Extent *grid.Grid

	Mode     Mode
	Variable Variable
}

// RasterizeVariable draws the output variable of job.  If opt is nil,
// [DefaultOptions] are used.
//
// Missing inputs are reported before any drawing starts: [Sloped] mode
// needs terrain elevations in the topology and the Depth variable needs a
// terrain grid, otherwise a *surface.TerrainRequiredError is returned.
// The Velocity variable needs face velocities, otherwise a
// *results.MissingVariableError is returned.
func RasterizeVariable(job *Job, opt *Options) (*Output, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	if err := job.check(); err != nil {
		return nil, err
	}

	var target grid.Spec
	switch {
	case job.Terrain != nil:
		target = job.Terrain.Spec
	case opt.Target != nil:
		target = *opt.Target
	default:
		return nil, ErrNoTarget
	}
	r, err := NewRasterizer(job.Topology, target, job.Terrain)
	if err != nil {
		return nil, err
	}
	r.NoData = opt.NoData
	r.Workers = opt.workers()

	log := Logger().With("job", job.Name, "mode", job.Mode, "variable", job.Variable)

	topo := job.Topology
	wet := wetCells(topo, job.WSE)
	var wse Surface = &FlatSurface{Values: wet}
	if job.Mode == Sloped {
		faces, err := surface.ResolveFaces(topo, job.WSE)
		if err != nil {
			return nil, err
		}
		vertices, err := surface.ResolveVertices(topo, job.WSE, faces, opt.Weights)
		if err != nil {
			return nil, err
		}
		log.Debug("vertex values",
			"vertices", topo.NumVertices(),
			"fallbacks", vertices.Fallbacks,
			"empty", vertices.Empty)
		wse = &SlopedSurface{Cells: wet, Vertices: vertices.Values}
	}

	out := &Output{Mode: job.Mode, Variable: job.Variable}
	wseGrid := r.Draw(wse)
	if job.Terrain != nil {
		var depth *grid.Grid
		depth, out.Extent, err = grid.Composite(wseGrid, job.Terrain)
		if err != nil {
			return nil, err
		}
		if job.Variable == Depth {
			out.Grid = depth
		}
	}

	switch job.Variable {
	case WSE:
		out.Grid = wseGrid
	case Velocity:
		speed, err := cellSpeed(topo, job.Velocity)
		if err != nil {
			return nil, err
		}
		for i, z := range wet {
			if math.IsNaN(z) {
				speed[i] = math.NaN()
			}
		}
		out.Grid = r.Draw(&FlatSurface{Values: speed})
	}
	if out.Extent != nil && job.Variable != Depth {
		if err := grid.ApplyMask(out.Grid, out.Extent); err != nil {
			return nil, err
		}
	}

	log.Debug("rasterized",
		"cells", topo.NumCells(),
		"width", target.Width,
		"height", target.Height,
		"pixels", out.Grid.Count())
	return out, nil
}

// check verifies that the job has all the inputs it needs.
func (job *Job) check() error {
	if job.Topology == nil {
		return errors.New("meshraster: job without mesh")
	}
	if job.WSE == nil {
		return &results.MissingVariableError{Variable: results.WaterSurface}
	}
	if job.Mode != Horizontal && job.Mode != Sloped {
		return fmt.Errorf("meshraster: unknown mode %d", int(job.Mode))
	}
	if job.Mode == Sloped && !job.Topology.HasTerrain() {
		return &surface.TerrainRequiredError{Operation: "sloped interpolation"}
	}
	switch job.Variable {
	case WSE:
	case Depth:
		if job.Terrain == nil {
			return &surface.TerrainRequiredError{Operation: "depth"}
		}
	case Velocity:
		if job.Velocity == nil {
			return &results.MissingVariableError{Variable: results.FaceVelocity}
		}
	default:
		return fmt.Errorf("meshraster: unknown variable %d", int(job.Variable))
	}
	if job.WSE.Location != results.OnCells || job.WSE.Len() != job.Topology.NumCells() {
		return &results.LengthError{
			Variable: job.WSE.Variable,
			Location: results.OnCells,
			Want:     job.Topology.NumCells(),
			Got:      job.WSE.Len(),
		}
	}
	return nil
}

// cellSpeed returns the flow speed of every cell.  Face velocities are
// reconstructed into cell velocities, cell values are used as they are.
func cellSpeed(topo *mesh.Topology, vel *results.Binding) ([]float64, error) {
	if vel.Location != results.OnCells {
		return surface.CellSpeed(topo, vel)
	}
	if vel.Len() != topo.NumCells() {
		return nil, &results.LengthError{
			Variable: vel.Variable,
			Location: results.OnCells,
			Want:     topo.NumCells(),
			Got:      vel.Len(),
		}
	}
	speed := make([]float64, vel.Len())
	for i := range speed {
		speed[i] = math.Abs(vel.Value(i))
	}
	return speed, nil
}

// wetCells returns the water surface elevation of the wet cells, and NaN
// for dry cells.  Without terrain, every cell with a value is wet.
func wetCells(topo *mesh.Topology, wse *results.Binding) []float64 {
	res := make([]float64, topo.NumCells())
	for i := range res {
		z := wse.Value(i)
		if topo.HasTerrain() && !(z > topo.CellAt(i).MinElevation) {
			z = math.NaN()
		}
		res[i] = z
	}
	return res
}

// Run processes the given jobs concurrently, with at most opt.Jobs jobs at
// a time.  The outputs are returned in the order of the jobs.  The first
// failing job cancels the jobs which have not yet started, and its error
// is returned.
func Run(ctx context.Context, jobs []*Job, opt *Options) ([]*Output, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	outs := make([]*Output, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opt.Jobs, 1))
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := RasterizeVariable(job, opt)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Name, err)
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}
