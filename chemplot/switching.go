/*
 * switching.go, part of aqmmm.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosDOTutaDOTcl>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chemplot

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/partition"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Points is the number of points sampled for each curve.
const Points = 200

// Curve is a named switching function.
type Curve struct {
	Name string
	F    adaptive.SwitchingFunction
}

// Sample returns n+1 evenly spaced (r, s) points for f, between from and to.
func Sample(f adaptive.SwitchingFunction, from, to float64, n int) plotter.XYs {
	if n < 1 {
		n = 1
	}
	pts := make(plotter.XYs, n+1)
	step := (to - from) / float64(n)
	for i := range pts {
		r := from + float64(i)*step
		pts[i].X = r
		pts[i].Y = f.Value(r)
	}
	return pts
}

func basicSwitchingPlot(title string, from, to float64) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "r (A)"
	p.Y.Label.Text = "s(r)"
	p.X.Min = from
	p.X.Max = to
	p.Y.Min = -0.05
	p.Y.Max = 1.05
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// SwitchingPlot returns a plot of the curves between rmin and rmax, with a margin
// of 20% on each side.
func SwitchingPlot(curves []Curve, rmin, rmax float64, title string) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, aqmmm.NewConfigurationError("SwitchingPlot", "no curves to plot")
	}
	if rmax <= rmin {
		return nil, aqmmm.NewDomainError("SwitchingPlot", "rmax (%g) must be larger than rmin (%g)", rmax, rmin)
	}
	margin := 0.2 * (rmax - rmin)
	from, to := rmin-margin, rmax+margin
	if from < 0 {
		from = 0
	}
	p := basicSwitchingPlot(title, from, to)
	for i, c := range curves {
		l, err := plotter.NewLine(Sample(c.F, from, to, Points))
		if err != nil {
			return nil, aqmmm.NewConfigurationError("SwitchingPlot", "curve %s: %v", c.Name, err)
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = colors(i, len(curves))
		p.Add(l)
		p.Legend.Add(c.Name, l)
	}
	return p, nil
}

// AddGroups marks the buffer groups on p, at their distance to the QM
// center and their switching value. Up to 4 sets of groups can be added
// with different glyphs.
func AddGroups(p *plot.Plot, name string, set int, groups []*partition.BufferGroup) error {
	if len(groups) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(groups))
	for i, g := range groups {
		pts[i].X = g.Distance
		pts[i].Y = g.S
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return aqmmm.NewConfigurationError("AddGroups", "%v", err)
	}
	s.GlyphStyle.Shape, err = getShape(set)
	s.GlyphStyle.Radius = vg.Points(4)
	s.GlyphStyle.Color = colors(set, 4)
	p.Add(s)
	p.Legend.Add(name, s)
	if err != nil {
		return aqmmm.NewConfigurationError("AddGroups", "%v", err)
	}
	return nil
}

// Save writes p to filename. The format is taken from the extension
// (png, svg, pdf, eps, jpg or tif). Sizes are in inches.
func Save(p *plot.Plot, width, height float64, filename string) error {
	if err := p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, filename); err != nil {
		return aqmmm.NewConfigurationError("Save", "can't save %s: %v", filename, err)
	}
	return nil
}

// Write writes p to w in format (png, svg, pdf...). Sizes are in inches.
func Write(p *plot.Plot, width, height float64, format string, w io.Writer) error {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	wt, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, format)
	if err != nil {
		return aqmmm.NewConfigurationError("Write", "format %q: %v", format, err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		return aqmmm.NewConfigurationError("Write", "%v", err)
	}
	return nil
}

// Format returns the plot format for filename, from its extension.
func Format(filename string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff":
		return ext, nil
	}
	return "", fmt.Errorf("unknown plot format for %s", filename)
}
