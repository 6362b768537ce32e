/*
 * charges.go, part of aqmmm.
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

package mm

import (
	"context"

	"github.com/rmera/aqmmm"
)

// Boundary treatments understood by PointCharges.
const (
	LinkAtom = "link_atom"
	RC       = "RC"
	RCD      = "RCD"
)

// PointCharges returns the charges of the atoms not in qm, for electrostatic embedding.
// Charges of MM atoms bonded to the QM region (M1) are handled according to treatment:
//
//	link_atom: M1 charges are removed.
//	RC: each M1 charge is moved, in equal parts, to the midpoints of the bonds
//	between M1 and its MM neighbors (M2).
//	RCD: as RC, but the midpoint charges are doubled and the same amount
//	is subtracted from the M2 atoms, to preserve the M1-M2 bond dipoles.
//
// Atoms with zero charge are omitted.
func (F *ForceField) PointCharges(ctx context.Context, qm []int, treatment string) ([]aqmmm.PointCharge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := F.BoundaryInfo(ctx, qm)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "PointCharges")
	}
	if len(info) > 0 && treatment != LinkAtom && treatment != RC && treatment != RCD {
		return nil, aqmmm.NewConfigurationError("PointCharges", "boundary treatment %q not supported", treatment)
	}
	set, _ := qmSet(qm, F.Mol.Len()) //checked in BoundaryInfo
	m1 := make(map[int]bool, len(info))
	for _, b := range info {
		m1[b.MM] = true
	}
	pos := F.positions()
	charges := make([]float64, len(F.sites))
	for i, s := range F.sites {
		charges[i] = s.charge
	}
	var extra []aqmmm.PointCharge
	if treatment == RC || treatment == RCD {
		done := make(map[int]bool, len(info))
		for _, b := range info {
			m := b.MM
			if done[m] {
				continue
			}
			done[m] = true
			var m2 []int
			for _, n := range F.neigh[m] {
				if !set[n] {
					m2 = append(m2, n)
				}
			}
			if len(m2) == 0 {
				continue
			}
			q0 := charges[m] / float64(len(m2))
			for _, n := range m2 {
				c := q0
				if treatment == RCD {
					c = 2 * q0
					charges[n] -= q0
				}
				var mid [3]float64
				for k := range mid {
					mid[k] = (pos[m][k] + pos[n][k]) / 2
				}
				extra = append(extra, aqmmm.PointCharge{Charge: c, Pos: mid})
			}
		}
	}
	ret := make([]aqmmm.PointCharge, 0, len(charges)+len(extra))
	for i, c := range charges {
		if set[i] || m1[i] || c == 0 {
			continue
		}
		ret = append(ret, aqmmm.PointCharge{Charge: c, Pos: pos[i]})
	}
	for _, v := range extra {
		if v.Charge != 0 {
			ret = append(ret, v)
		}
	}
	return ret, nil
}
