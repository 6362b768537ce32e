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

package partition

import "github.com/rmera/aqmmm"

// SAP produces nested partitions: the QM core alone, then the core plus the
// closest group, plus the two closest groups, and so on up to the whole buffer zone.
type SAP struct {
	*Distance
}

// NewSAP returns a SAP partitioner for the system in p.
func NewSAP(p aqmmm.Provider, rmin, rmax float64) (*SAP, error) {
	d, err := NewDistance(p, rmin, rmax)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "NewSAP")
	}
	return &SAP{d}, nil
}

// Name returns "sap"
func (s *SAP) Name() string { return "sap" }

// Partitions returns the QM definition followed by one definition per prefix
// of the distance-sorted buffer groups. Definition i contains the i+1 closest groups.
func (s *SAP) Partitions(z *Zone) []*Definition {
	sorted := z.Sorted()
	ret := make([]*Definition, 0, len(sorted)+1)
	ret = append(ret, baseDefinition(z))
	for i := range sorted {
		def := baseDefinition(z)
		def.ID = ID(i)
		def.extend(sorted[:i+1]...)
		ret = append(ret, def)
	}
	return ret
}
