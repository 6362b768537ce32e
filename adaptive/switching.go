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

package adaptive

import (
	"math"

	"github.com/rmera/aqmmm"
)

// SwitchingFunction gives the QM character of a group as a function of its
// distance to the QM center: 1 at Rmin or closer, 0 at Rmax or farther.
type SwitchingFunction interface {
	Value(r float64) float64
}

// Differentiable is a switching function with a derivative with respect to r.
type Differentiable interface {
	SwitchingFunction
	Derivative(r float64) float64
}

// HotSpotSwitch is the Hot-Spot switching function
// (Rmax²-r²)²(Rmax²+2r²-3Rmin²)/(Rmax²-Rmin²)³.
type HotSpotSwitch struct {
	Rmin float64
	Rmax float64
}

// Value returns the switching function at r.
func (h HotSpotSwitch) Value(r float64) float64 {
	if r <= h.Rmin {
		return 1
	}
	if r > h.Rmax {
		return 0
	}
	rmax2, rmin2, r2 := h.Rmax*h.Rmax, h.Rmin*h.Rmin, r*r
	return (rmax2 - r2) * (rmax2 - r2) * (rmax2 + 2*r2 - 3*rmin2) / math.Pow(rmax2-rmin2, 3)
}

// QuinticSwitch is the smoothstep 1-10x³+15x⁴-6x⁵ with x=(r-Rmin)/(Rmax-Rmin).
// Its first and second derivatives vanish at both ends.
type QuinticSwitch struct {
	Rmin float64
	Rmax float64
}

func (q QuinticSwitch) x(r float64) float64 {
	return (r - q.Rmin) / (q.Rmax - q.Rmin)
}

// Value returns the switching function at r.
func (q QuinticSwitch) Value(r float64) float64 {
	x := q.x(r)
	if x <= 0 {
		return 1
	}
	if x >= 1 {
		return 0
	}
	x3 := x * x * x
	return 1 - 10*x3 + 15*x3*x - 6*x3*x*x
}

// Derivative returns dS/dr at r.
func (q QuinticSwitch) Derivative(r float64) float64 {
	x := q.x(r)
	if x <= 0 || x >= 1 {
		return 0
	}
	x2 := x * x
	return (-30*x2 + 60*x2*x - 30*x2*x2) / (q.Rmax - q.Rmin)
}

// SAPWeights holds the SAP quantities for a set of groups sorted by distance.
// All slices are indexed by distance rank.
type SAPWeights struct {
	Chi    []float64
	Phi    []float64   //(1+Chi)^-3
	Scaler []float64   //dPhi/dChi
	DChi   [][]float64 //DChi[i][j] is dChi_i/dS_j
}

// NewSAPWeights computes the SAP weights for the switching values s, sorted by
// distance to the QM center (closest first). The dChi_i/dS_i terms from
// farther groups use the closed form (s_j²-1)/(s_i-s_j)². If exact is true,
// they use the derivative of Chi instead, s_j(s_j-1)/(s_i-s_j)².
// Two equal switching values (groups tied in distance) give a DomainError.
func NewSAPWeights(s []float64, exact bool) (*SAPWeights, error) {
	n := len(s)
	for i, v := range s {
		if !(v > 0) {
			return nil, aqmmm.NewDomainError("NewSAPWeights", "switching value %d is %g, must be > 0", i, v)
		}
		for j := 0; j < i; j++ {
			if s[j] == v {
				return nil, aqmmm.NewDomainError("NewSAPWeights", "switching values %d and %d are equal (%g)", j, i, v)
			}
		}
	}
	w := &SAPWeights{
		Chi:    make([]float64, n),
		Phi:    make([]float64, n),
		Scaler: make([]float64, n),
		DChi:   make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		si := s[i]
		d := make([]float64, n)
		chi := (1 - si) / si
		d[i] = -1 / (si * si)
		for j := 0; j < n; j++ {
			sj := s[j]
			switch {
			case j < i:
				den := (sj - si) * (sj - si)
				chi += (1 - sj) / (sj - si)
				d[i] += (1 - sj) / den
				d[j] = (si - 1) / den
			case j > i:
				den := (si - sj) * (si - sj)
				chi += sj * (1 - si) / (si - sj)
				if exact {
					d[i] += sj * (sj - 1) / den
				} else {
					d[i] += (sj*sj - 1) / den
				}
				d[j] = si * (1 - si) / den
			}
		}
		w.Chi[i] = chi
		w.Phi[i] = 1 / math.Pow(1+chi, 3)
		w.Scaler[i] = -3 / math.Pow(1+chi, 4)
		w.DChi[i] = d
	}
	return w, nil
}

// Partition returns the weight of the bare QM term and the weight of each
// nested partition p, phi_p times the product of (1-phi_j) for j>p.
// They add up to 1.
func (w *SAPWeights) Partition() (float64, []float64) {
	n := len(w.Phi)
	wp := make([]float64, n)
	tail := 1.0 //product of (1-phi_j) for j > p
	for p := n - 1; p >= 0; p-- {
		wp[p] = w.Phi[p] * tail
		tail *= 1 - w.Phi[p]
	}
	return tail, wp
}

// EnergyDerivative returns dE/dPhi_i for the interpolated energy
// E = eqm·∏(1-phi_k) + Σ_p ep[p]·phi_p·∏_{j>p}(1-phi_j).
func (w *SAPWeights) EnergyDerivative(i int, eqm float64, ep []float64) float64 {
	n := len(w.Phi)
	prodExcept := func(from int) float64 { //∏_{k>=from, k!=i}(1-phi_k)
		r := 1.0
		for k := from; k < n; k++ {
			if k != i {
				r *= 1 - w.Phi[k]
			}
		}
		return r
	}
	d := -eqm * prodExcept(0)
	d += ep[i] * prodExcept(i+1)
	for p := 0; p < i; p++ {
		d -= ep[p] * w.Phi[p] * prodExcept(p+1)
	}
	return d
}
