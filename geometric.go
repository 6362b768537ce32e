/*
 * geometric.go, part of aqmmm.
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

package aqmmm

import (
	"math"

	v3 "github.com/rmera/aqmmm/v3"
	"gonum.org/v1/gonum/floats"
)

// AtomMass returns the mass of the atom: its Mass field if set, or
// the standard mass for its symbol.
func AtomMass(at *Atom) (float64, error) {
	if at.Mass > 0 {
		return at.Mass, nil
	}
	m, err := Mass(at.Symbol)
	return m, ErrDecorate(err, "AtomMass")
}

// CenterOfMass returns the mass-weighted center of the atoms with indexes atoms,
// as a 1x3 matrix, together with the mass of each atom and each atom's fraction
// of the total mass (the weight ratios, which add up to 1), both keyed by atom index.
func CenterOfMass(atoms []int, coords *v3.Matrix, top Atomer) (*v3.Matrix, map[int]float64, map[int]float64, error) {
	if len(atoms) == 0 {
		return nil, nil, nil, NewDomainError("CenterOfMass", "no atoms given")
	}
	masses := make([]float64, len(atoms))
	for i, v := range atoms {
		m, err := AtomMass(top.Atom(v))
		if err != nil {
			return nil, nil, nil, ErrDecorate(err, "CenterOfMass")
		}
		masses[i] = m
	}
	total := floats.Sum(masses)
	if total <= 0 || math.IsNaN(total) {
		return nil, nil, nil, NewDomainError("CenterOfMass", "total mass is %f", total)
	}
	com := v3.Zeros(1)
	weights := make(map[int]float64, len(atoms))
	ratios := make(map[int]float64, len(atoms))
	for i, v := range atoms {
		weights[v] = masses[i]
		ratios[v] = masses[i] / total
		com.AddToVec(0, coords.VecView(v), ratios[v])
	}
	return com, weights, ratios, nil
}
