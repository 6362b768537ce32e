/*
 * hotspot.go, part of aqmmm.
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

import "github.com/rmera/aqmmm"

// HotSpot folds the whole buffer zone into a single QM sub-system.
// Residues exactly at Rmax are part of the buffer zone.
type HotSpot struct {
	*Distance
}

// NewHotSpot returns a Hot-Spot partitioner for the system in p.
func NewHotSpot(p aqmmm.Provider, rmin, rmax float64) (*HotSpot, error) {
	d, err := NewDistance(p, rmin, rmax)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "NewHotSpot")
	}
	d.inclusive = true
	return &HotSpot{d}, nil
}

// Name returns "hot_spot"
func (h *HotSpot) Name() string { return "hot_spot" }

// Partitions returns one definition, with ID QM, including every buffer group.
func (h *HotSpot) Partitions(z *Zone) []*Definition {
	def := baseDefinition(z)
	def.extend(z.Sorted()...)
	return []*Definition{def}
}
