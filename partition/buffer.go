/*
 * buffer.go, part of aqmmm.
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

package partition

import (
	"sort"

	"github.com/rmera/aqmmm"
	v3 "github.com/rmera/aqmmm/v3"
)

// BufferGroup is a residue in the buffer zone. The geometric fields are set
// when the group is built, the switching fields by the interpolator that
// uses the zone, once per run.
type BufferGroup struct {
	ID          int   //the residue index
	Atoms       []int //sorted
	COM         *v3.Matrix
	AtomWeights map[int]float64
	WeightRatio map[int]float64
	Distance    float64 //from the COM to the QM center
	Order       int     //rank by distance, 0 is the closest

	//Switching quantities
	S          float64
	DS         float64 //dS/dr, 0 if the switching function has no derivative
	Chi        float64
	Phi        float64
	DPhiScaler float64         //dPhi/dChi
	DPhi       map[int]float64 //dChi/dS_j, keyed by group ID
}

// BuildResidueBuffer returns a buffer group for the residue with index id and atoms atoms,
// with its center of mass and its distance to center (a 1x3 matrix).
func BuildResidueBuffer(id int, atoms []int, p aqmmm.Provider, center *v3.Matrix) (*BufferGroup, error) {
	ats := append([]int(nil), atoms...)
	sort.Ints(ats)
	com, weights, ratios, err := aqmmm.CenterOfMass(ats, p.Coords(), p)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "BuildResidueBuffer")
	}
	return &BufferGroup{
		ID:          id,
		Atoms:       ats,
		COM:         com,
		AtomWeights: weights,
		WeightRatio: ratios,
		Distance:    v3.Distance(com, 0, center, 0),
		DPhi:        make(map[int]float64),
	}, nil
}

// Copy returns a deep copy of the group.
func (B *BufferGroup) Copy() *BufferGroup {
	r := *B
	r.Atoms = append([]int(nil), B.Atoms...)
	r.COM = B.COM.Clone()
	r.AtomWeights = copyMap(B.AtomWeights)
	r.WeightRatio = copyMap(B.WeightRatio)
	r.DPhi = copyMap(B.DPhi)
	return &r
}

func copyMap(m map[int]float64) map[int]float64 {
	if m == nil {
		return nil
	}
	r := make(map[int]float64, len(m))
	for k, v := range m {
		r[k] = v
	}
	return r
}
