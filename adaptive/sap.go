/*
 * sap.go, part of aqmmm.
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

// SAP interpolates the nested partitions of a SAP run.
type SAP struct {
	//Modified skips the gradient of the switching functions. The
	//energy is then not conserved along a trajectory.
	Modified bool
	//ExactChi uses the derivative of Chi for the dChi_i/dS_i terms of
	//farther groups instead of the closed form. See NewSAPWeights.
	ExactChi bool
}

// Name returns "sap", or "sap_modified" for the modified variant.
func (s SAP) Name() string {
	if s.Modified {
		return "sap_modified"
	}
	return "sap"
}

// Switch sets the switching quantities of every group in z, using the quintic switching function.
func (s SAP) Switch(z *partition.Zone) error {
	f := QuinticSwitch{Rmin: z.Rmin, Rmax: z.Rmax}
	sorted := z.Sorted()
	if len(sorted) == 0 {
		return nil
	}
	vals := make([]float64, len(sorted))
	for i, g := range sorted {
		g.S = f.Value(g.Distance)
		g.DS = f.Derivative(g.Distance)
		vals[i] = g.S
	}
	w, err := NewSAPWeights(vals, s.ExactChi)
	if err != nil {
		return aqmmm.ErrDecorate(err, "SAP.Switch")
	}
	for i, g := range sorted {
		g.Chi = w.Chi[i]
		g.Phi = w.Phi[i]
		g.DPhiScaler = w.Scaler[i]
		g.DPhi = make(map[int]float64, len(sorted))
		for j, gj := range sorted {
			g.DPhi[gj.ID] = w.DChi[i][j]
		}
	}
	return nil
}

// weights rebuilds the SAP weights from the switching quantities of the groups.
func weights(sorted []*partition.BufferGroup) *SAPWeights {
	n := len(sorted)
	w := &SAPWeights{Chi: make([]float64, n), Phi: make([]float64, n), Scaler: make([]float64, n), DChi: make([][]float64, n)}
	for i, g := range sorted {
		w.Chi[i], w.Phi[i], w.Scaler[i] = g.Chi, g.Phi, g.DPhiScaler
		w.DChi[i] = make([]float64, n)
		for j, gj := range sorted {
			w.DChi[i][j] = g.DPhi[gj.ID]
		}
	}
	return w
}

// Combine computes the SAP energy and gradients of run.
func (s SAP) Combine(run *Run) error {
	qm := run.QM()
	if qm == nil {
		return aqmmm.NewConfigurationError("SAP.Combine", "run %s has no qm sub-system", run.ID)
	}
	sorted := run.Zone.Sorted()
	parts := run.Partitions()
	if len(parts) != len(sorted) {
		return aqmmm.NewConfigurationError("SAP.Combine", "run %s has %d buffer groups but %d partitions", run.ID, len(sorted), len(parts))
	}
	all := append([]*qmmm.SubSystem{qm}, parts...)
	es, gs, err := collect(run, all)
	if err != nil {
		return aqmmm.ErrDecorate(err, "SAP.Combine")
	}
	if len(sorted) == 0 {
		qm.SetWeighted(es[0], gs[0])
		run.setResult(es[0], gs[0])
		return nil
	}
	w := weights(sorted)
	wqm, wp := w.Partition()
	ws := append([]float64{wqm}, wp...)
	var energy float64
	var grad *v3.Matrix
	for k, sub := range all {
		energy += ws[k] * es[k]
		var wg *v3.Matrix
		if !run.EnergyOnly {
			wg = gs[k].Clone()
			wg.Scale(ws[k], wg)
			if grad == nil {
				grad = v3.Zeros(wg.NVecs())
			}
			grad.Add(grad, wg)
		}
		sub.SetWeighted(ws[k]*es[k], wg)
	}
	if !run.EnergyOnly && !s.Modified {
		s.addSwitchingGradient(grad, run.Zone.Center, sorted, w, es[0], es[1:])
	}
	run.setResult(energy, grad)
	return nil
}

// addSwitchingGradient adds to grad the term that comes from the dependence of the
// weights on the distances of the groups to the QM center.
func (s SAP) addSwitchingGradient(grad *v3.Matrix, center partition.Center, sorted []*partition.BufferGroup, w *SAPWeights, eqm float64, ep []float64) {
	unit := v3.Zeros(1)
	for i, gi := range sorted {
		pre := w.EnergyDerivative(i, eqm, ep) * gi.DPhiScaler
		if pre == 0 {
			continue
		}
		for j, gj := range sorted {
			coef := pre * w.DChi[i][j] * gj.DS
			if coef == 0 || gj.Distance == 0 {
				continue
			}
			//dr_j/dCOM_j
			unit.Sub(gj.COM, center.Pos)
			unit.Scale(1/gj.Distance, unit)
			for a, ratio := range gj.WeightRatio {
				grad.AddToVec(a, unit, coef*ratio)
			}
			for a, ratio := range center.WeightRatio {
				grad.AddToVec(a, unit, -coef*ratio)
			}
		}
	}
}
