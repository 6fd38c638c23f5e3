/*
 * bandplot.go, part of dhva.
 *
 * Copyright 2026 The dhva authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package bandplot draws the energy window of each band of a table against the Fermi energy,
//to see at a glance which bands will give Fermi surface sheets.
package bandplot

import (
	"image/color"
	"math"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/bands"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Size of the saved plots.
const (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

var gray = color.RGBA{R: 160, G: 160, B: 160, A: 255}

//hsv2rgb takes hue (0-360), saturation and value (0-1), and returns an opaque color.
func hsv2rgb(h, s, v float64) color.RGBA {
	if s == 0 {
		c := uint8(255 * v)
		return color.RGBA{R: c, G: c, B: c, A: 255}
	}
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(255 * r), G: uint8(255 * g), B: uint8(255 * b), A: 255}
}

//sheetColor returns the color for the key-th of n bands crossing the Fermi energy.
//The hues go from red to violet, skipping the yellows, which are hard to see on white.
func sheetColor(key, n int) color.RGBA {
	hp := 260.0*float64(key)/float64(max(n, 1)) + 20
	h := hp - 20
	if hp >= 55 {
		h = hp + 20
	}
	return hsv2rgb(h, 1, 0.9)
}

//Window returns a plot with a vertical segment for each band, spanning its
//energy range, and a horizontal line at the Fermi energy. The bands crossing
//the Fermi energy are colored, the rest are gray.
func Window(stats []bands.Stats, title string) (*plot.Plot, error) {
	if len(stats) == 0 {
		return nil, dhva.Errorf(dhva.ErrValidation, "Window", "no bands to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Band"
	p.Y.Label.Text = "Energy"
	p.Add(plotter.NewGrid())
	crossing := 0
	for _, s := range stats {
		if s.Crosses {
			crossing++
		}
	}
	key := 0
	for _, s := range stats {
		seg := plotter.XYs{{X: float64(s.Band), Y: s.Min}, {X: float64(s.Band), Y: s.Max}}
		l, sc, err := plotter.NewLinePoints(seg)
		if err != nil {
			return nil, dhva.NewError(dhva.ErrValidation, "Window", "", "can't plot band", err)
		}
		l.LineStyle.Width = vg.Points(3)
		l.LineStyle.Color = gray
		sc.GlyphStyle.Color = gray
		if s.Crosses {
			c := sheetColor(key, crossing)
			l.LineStyle.Color = c
			sc.GlyphStyle.Color = c
			key++
		}
		p.Add(l, sc)
	}
	fermi := plotter.NewFunction(func(float64) float64 { return 0 })
	fermi.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	fermi.Color = color.Black
	p.Add(fermi)
	p.Legend.Add("Fermi energy", fermi)
	p.X.Min = float64(stats[0].Band) - 1
	p.X.Max = float64(stats[len(stats)-1].Band) + 1
	return p, nil
}

//Save draws the window of the bands in T to the file name. The format is
//given by the extension of name (.png, .svg, .pdf, etc).
func Save(T *bands.Table, title, name string) error {
	p, err := Window(T.AllStats(), title)
	if err != nil {
		return dhva.ErrDecorate(err, "Save")
	}
	if err := p.Save(Width, Height, name); err != nil {
		return dhva.NewError(dhva.ErrIO, "Save", name, "can't save plot", err)
	}
	return nil
}
