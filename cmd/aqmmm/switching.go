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

package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/chemplot"
	"github.com/rmera/aqmmm/config"
	"github.com/spf13/cobra"
)

func switchingCmd() *cobra.Command {
	var rmin, rmax float64
	var out string
	cmd := &cobra.Command{
		Use:   "switching",
		Short: "plot the switching functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			curves := []chemplot.Curve{
				{Name: "hot spot", F: adaptive.HotSpotSwitch{Rmin: rmin, Rmax: rmax}},
				{Name: "quintic (SAP)", F: adaptive.QuinticSwitch{Rmin: rmin, Rmax: rmax}},
			}
			if out != "" {
				p, err := chemplot.SwitchingPlot(curves, rmin, rmax, "Switching functions")
				if err != nil {
					return err
				}
				return chemplot.Save(p, 5, 4, out)
			}
			for _, c := range curves {
				pts := chemplot.Sample(c.F, rmin, rmax, 79)
				data := make([]float64, len(pts))
				for i, v := range pts {
					data[i] = v.Y
				}
				fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(fmt.Sprintf("%s, r from %.2f to %.2f A", c.Name, rmin, rmax)),
				))
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&rmin, "rmin", config.DefaultRmin, "inner radius (A)")
	cmd.Flags().Float64Var(&rmax, "rmax", config.DefaultRmax, "outer radius (A)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the plot to this file (png, svg, pdf...) instead of the terminal")
	return cmd
}
