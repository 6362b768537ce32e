/*
 * interpolate.go, part of aqmmm.
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

package adaptive

import (
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/partition"
	"github.com/rmera/aqmmm/qmmm"
	v3 "github.com/rmera/aqmmm/v3"
)

// Interpolator combines the sub-systems of a run into the adaptive energy and gradients.
type Interpolator interface {
	//Switch sets the switching quantities of the buffer groups in z.
	Switch(z *partition.Zone) error

	//Combine computes the result of an evaluated run.
	Combine(run *Run) error

	Name() string
}

// HotSpot interpolates Hot-Spot runs: the energy is that of the single QM
// sub-system, and the gradients of the atoms of each buffer group are scaled
// by the group's switching value.
type HotSpot struct{}

// Name returns "hot_spot"
func (h HotSpot) Name() string { return "hot_spot" }

// Switch sets S to the Hot-Spot switching function of each group's distance.
func (h HotSpot) Switch(z *partition.Zone) error {
	f := HotSpotSwitch{Rmin: z.Rmin, Rmax: z.Rmax}
	for _, g := range z.Groups {
		g.S = f.Value(g.Distance)
		g.DS = 0
		g.Phi = g.S
	}
	return nil
}

// Combine computes the Hot-Spot energy and gradients of run.
func (h HotSpot) Combine(run *Run) error {
	qm := run.QM()
	if qm == nil {
		return aqmmm.NewConfigurationError("HotSpot.Combine", "run %s has no qm sub-system", run.ID)
	}
	e, err := qm.Energy()
	if err != nil {
		return aqmmm.ErrDecorate(err, "HotSpot.Combine")
	}
	if run.EnergyOnly {
		qm.SetWeighted(e, nil)
		run.setResult(e, nil)
		return nil
	}
	g, err := qm.Gradients()
	if err != nil {
		return aqmmm.ErrDecorate(err, "HotSpot.Combine")
	}
	grad := g.Clone()
	for _, b := range run.Zone.Groups {
		for _, a := range b.Atoms {
			grad.ScaleVec(a, b.S)
		}
	}
	qm.SetWeighted(e, grad)
	run.setResult(e, grad)
	return nil
}

// sub-systems' energies, and gradients unless energyOnly.
func collect(run *Run, subs []*qmmm.SubSystem) ([]float64, []*v3.Matrix, error) {
	es := make([]float64, len(subs))
	gs := make([]*v3.Matrix, len(subs))
	var err error
	for i, s := range subs {
		if es[i], err = s.Energy(); err != nil {
			return nil, nil, err
		}
		if run.EnergyOnly {
			continue
		}
		if gs[i], err = s.Gradients(); err != nil {
			return nil, nil, err
		}
	}
	return es, gs, nil
}
