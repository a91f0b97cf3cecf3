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

// Package preview draws quick-look images of rasterised grids.
package preview

import (
	"image"
	"image/color"
	"io"

	"golang.org/x/image/tiff"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/meshraster/grid"
	"seehuhn.de/go/meshraster/mesh"
	"seehuhn.de/go/meshraster/scan"
)

// Options control the appearance of a preview.
type Options struct {
	// Low and High are the colours of the smallest and largest data
	// value.  Values in between are interpolated.
	Low, High color.RGBA

	// Mesh, if not nil, is drawn on top of the data.
	Mesh *mesh.Topology

	// Footprint is the colour used to fill the mesh cells below the
	// data.  The zero value leaves the background transparent.
	Footprint color.RGBA

	// FaceColor and FaceWidth select the colour and the width in pixels
	// of the face outlines.  Faces are not drawn if FaceWidth is zero.
	FaceColor color.RGBA
	FaceWidth float64
	FaceCap   graphics.LineCapStyle
}

// DefaultOptions returns a blue colour ramp with thin grey face outlines.
func DefaultOptions() *Options {
	return &Options{
		Low:       color.RGBA{R: 198, G: 219, B: 239, A: 255},
		High:      color.RGBA{R: 8, G: 48, B: 107, A: 255},
		Footprint: color.RGBA{R: 235, G: 235, B: 235, A: 255},
		FaceColor: color.RGBA{R: 96, G: 96, B: 96, A: 255},
		FaceWidth: 1,
		FaceCap:   graphics.LineCapRound,
	}
}

// Render draws g as an image.  No-data pixels are transparent, unless
// they are covered by the mesh footprint.  If opt is nil, DefaultOptions
// are used.
func Render(g *grid.Grid, opt *Options) (*image.RGBA, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))

	var f *scan.Filler
	if opt.Mesh != nil {
		toPix, err := g.Transform.ToPixel()
		if err != nil {
			return nil, err
		}
		f = scan.NewFiller(rect.Rect{URx: float64(g.Width), URy: float64(g.Height)})
		f.CTM = toPix
	}

	if f != nil && opt.Footprint.A != 0 {
		for i := range opt.Mesh.NumCells() {
			f.Coverage(opt.Mesh.CellPath(i), func(y, xMin int, coverage []float32) {
				blendRow(img, y, xMin, coverage, opt.Footprint)
			})
		}
	}

	lo, hi, ok := g.Range()
	if ok {
		scale := float32(0)
		if hi > lo {
			scale = 1 / (hi - lo)
		}
		for row := range g.Height {
			for col := range g.Width {
				v, ok := g.At(col, row)
				if !ok {
					continue
				}
				img.SetRGBA(col, row, lerp(opt.Low, opt.High, (v-lo)*scale))
			}
		}
	}

	if f != nil && opt.FaceWidth > 0 {
		segs := make([]scan.Segment, opt.Mesh.NumFaces())
		for i := range segs {
			segs[i].A, segs[i].B = opt.Mesh.FaceSegment(i)
		}
		f.StrokeSegments(segs, opt.FaceWidth, opt.FaceCap, func(y, xMin int, coverage []float32) {
			blendRow(img, y, xMin, coverage, opt.FaceColor)
		})
	}
	return img, nil
}

// WriteTIFF writes img as a deflate-compressed TIFF file.
func WriteTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// blendRow paints col over the pixels (xMin+i, y) with opacity coverage[i].
func blendRow(img *image.RGBA, y, xMin int, coverage []float32, col color.RGBA) {
	row := img.Pix[img.PixOffset(xMin, y):]
	for i, c := range coverage {
		p := row[4*i : 4*i+4 : 4*i+4]
		p[0] = mix(p[0], col.R, c)
		p[1] = mix(p[1], col.G, c)
		p[2] = mix(p[2], col.B, c)
		p[3] = mix(p[3], col.A, c)
	}
}

func mix(dst, src uint8, c float32) uint8 {
	return uint8(float32(dst)*(1-c) + float32(src)*c + 0.5)
}

func lerp(a, b color.RGBA, t float32) color.RGBA {
	return color.RGBA{
		R: mix(a.R, b.R, t),
		G: mix(a.G, b.G, t),
		B: mix(a.B, b.B, t),
		A: mix(a.A, b.A, t),
	}
}
