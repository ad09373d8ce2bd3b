/*
 * chemplot.go, part of goConf.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

//Package chemplot produces png plots for the results of a conformer search: the likelihoods of
//the torsions of each rotatable bond, the strain trace of a relaxation, and the contribution
//of each conformer obtained.
package chemplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/fragment"
)

func basicPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

//TorsionLikelihoods produces a bar chart with the likelihood of each torsion of each bond, and saves it
//in plotname.png. The bars of each bond have the same color.
func TorsionLikelihoods(bonds []*fragment.RotatableBond, title, plotname string) error {
	if len(bonds) == 0 {
		return fmt.Errorf("chemplot: no rotatable bonds to plot")
	}
	p := basicPlot(title, "Torsion (deg)", "Likelihood")
	p.Y.Min = 0
	p.Y.Max = 1
	labels := make([]string, 0, 3*len(bonds))
	start := 0.0
	for key, b := range bonds {
		bars, err := plotter.NewBarChart(plotter.Values(b.Likelihoods), vg.Points(10))
		if err != nil {
			return err
		}
		r, g, bl := colors(key, len(bonds))
		bars.Color = color.RGBA{R: r, G: g, B: bl, A: 255}
		bars.LineStyle.Width = vg.Length(0)
		bars.XMin = start
		start += float64(len(b.Likelihoods))
		for _, t := range b.Torsions {
			labels = append(labels, fmt.Sprintf("%.0f", t))
		}
		p.Add(bars)
		p.Legend.Add(fmt.Sprintf("%d %s", b.Index, b.ID), bars)
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	width := vg.Length(math.Max(5, 0.4*float64(len(labels)))) * vg.Inch
	return p.Save(width, 4*vg.Inch, plotname+".png")
}

//StrainTrace produces a line plot of the strain of a conformer along a relaxation (as returned by
//organizer.Organizer.Trace), and saves it in plotname.png.
func StrainTrace(trace []float64, title, plotname string) error {
	if len(trace) == 0 {
		return fmt.Errorf("chemplot: empty trace")
	}
	p := basicPlot(title, "Cycle", "Strain")
	pts := make(plotter.XYs, len(trace))
	for i, v := range trace {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.Color = color.RGBA{R: 200, A: 255}
	p.Add(l)
	return p.Save(5*vg.Inch, 4*vg.Inch, plotname+".png")
}

//Contributions produces a scatter plot of the contribution of each conformer in the order they
//were obtained, and saves it in plotname.png. Best-effort conformers are drawn with a different glyph.
func Contributions(contribs []float64, outcomes []chem.Outcome, title, plotname string) error {
	if len(contribs) == 0 {
		return fmt.Errorf("chemplot: no conformers to plot")
	}
	if outcomes != nil && len(outcomes) != len(contribs) {
		return fmt.Errorf("chemplot: %d outcomes given for %d conformers", len(outcomes), len(contribs))
	}
	p := basicPlot(title, "Conformer", "Contribution")
	p.Y.Min = 0
	temp := make(plotter.XYs, 1)
	for key, val := range contribs {
		temp[0].X = float64(key + 1)
		temp[0].Y = val
		s, err := plotter.NewScatter(temp)
		if err != nil {
			return err
		}
		if outcomes != nil && outcomes[key] == chem.BestEffort {
			s.GlyphStyle.Shape = getShape(1)
		} else {
			s.GlyphStyle.Shape = getShape(0)
		}
		r, g, b := colors(key, len(contribs))
		s.GlyphStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		p.Add(s)
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, plotname+".png")
}

func getShape(kind int) draw.GlyphDrawer {
	switch kind {
	case 0:
		return draw.CircleGlyph{}
	case 1:
		return draw.CrossGlyph{}
	case 2:
		return draw.SquareGlyph{}
	default:
		return draw.PyramidGlyph{}
	}
}

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = 1 - s
	q = 1 - s*f
	t = 1 - s*(1-f)
	switch int(i) {
	case 0:
		r, g, b = 1, t, p
	case 1:
		r, g, b = q, 1, p
	case 2:
		r, g, b = p, 1, t
	case 3:
		r, g, b = p, q, 1
	case 4:
		r, g, b = t, p, 1
	default: //case 5
		r, g, b = 1, p, q
	}
	return uint8(r * conversion), uint8(g * conversion), uint8(b * conversion)
}

//colors returns a color for the key-th of steps series, going from red to violet.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return iHVS2RGB(h, 1, 1)
}
