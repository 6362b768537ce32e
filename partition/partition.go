/*
 * partition.go, part of aqmmm.
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
	"strconv"

	"github.com/rmera/aqmmm"
	v3 "github.com/rmera/aqmmm/v3"
)

// ID identifies a sub-system within a run. QM is the sub-system with no
// buffer groups (or, for Hot-Spot, with all of them). Other sub-systems
// have non-negative IDs.
type ID int

// QM is the ID of the base QM sub-system.
const QM ID = -1

func (id ID) String() string {
	if id == QM {
		return "qm"
	}
	return strconv.Itoa(int(id))
}

// DummySymbol is the element used for the dummy atom placed at the
// center of mass of a QM center with several atoms.
const DummySymbol = "H"

// Center is the QM center of a zone.
type Center struct {
	Atoms       []int
	Pos         *v3.Matrix      //1x3
	WeightRatio map[int]float64 //each center atom's share of the center's mass
	Dummy       int             //index of the dummy atom in Reference, -1 if there is none
	Reference   aqmmm.Provider  //the provider in which distances to the center are measured
}

// Zone is the result of classifying a system around a QM center.
type Zone struct {
	Rmin       float64
	Rmax       float64
	Center     Center
	QMAtoms    []int //the center and the QM core, sorted
	QMResidues []int //residues in the QM core
	Groups     map[int]*BufferGroup
}

// Empty returns true if no group is in the buffer zone.
func (z *Zone) Empty() bool { return len(z.Groups) == 0 }

// Sorted returns the buffer groups from the closest to the farthest to the center.
func (z *Zone) Sorted() []*BufferGroup {
	ret := make([]*BufferGroup, 0, len(z.Groups))
	for _, v := range z.Groups {
		ret = append(ret, v)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Order < ret[j].Order })
	return ret
}

// Definition describes one sub-system: its QM atoms and the buffer groups
// folded into the QM region.
type Definition struct {
	ID         ID
	QMAtoms    []int //sorted, unique
	QMResidues []int //core residues, then the included groups in distance order
	Groups     []int //IDs of the buffer groups included in the QM region
}

// Partitioner finds the buffer zone around a QM center and turns it
// into sub-system definitions.
type Partitioner interface {
	DefineBufferZone(qmCenter []int) (*Zone, error)
	Partitions(z *Zone) []*Definition
	Name() string
}

// Distance classifies residues by the distance between their center of mass
// and the QM center.
type Distance struct {
	Rmin float64
	Rmax float64
	p    aqmmm.Provider
	//if true, residues exactly at Rmax are in the buffer zone.
	inclusive bool
}

// NewDistance returns a distance classifier for the system in p.
func NewDistance(p aqmmm.Provider, rmin, rmax float64) (*Distance, error) {
	if p == nil {
		return nil, aqmmm.NewConfigurationError("NewDistance", "nil provider")
	}
	if rmin < 0 || rmax <= rmin {
		return nil, aqmmm.NewConfigurationError("NewDistance", "need 0 <= Rmin < Rmax, got Rmin=%f Rmax=%f", rmin, rmax)
	}
	return &Distance{Rmin: rmin, Rmax: rmax, p: p}, nil
}

// Provider returns the system being partitioned.
func (d *Distance) Provider() aqmmm.Provider { return d.p }

// CenterInfo returns the position of the QM center. A single atom is its
// own center, with a weight ratio of 1. For several atoms the center is
// their center of mass, and a dummy atom is placed there, in a copy of the provider.
func (d *Distance) CenterInfo(qmCenter []int) (Center, error) {
	c := Center{Atoms: append([]int(nil), qmCenter...), Dummy: -1, Reference: d.p}
	if len(qmCenter) == 0 {
		return c, aqmmm.NewConfigurationError("CenterInfo", "empty QM center")
	}
	seen := make(map[int]bool, len(qmCenter))
	for _, v := range qmCenter {
		if v < 0 || v >= d.p.Len() {
			return c, aqmmm.NewConfigurationError("CenterInfo", "QM center atom %d out of range", v)
		}
		if seen[v] {
			return c, aqmmm.NewConfigurationError("CenterInfo", "QM center atom %d repeated", v)
		}
		seen[v] = true
	}
	sort.Ints(c.Atoms)
	if len(qmCenter) == 1 {
		c.Pos = d.p.Coords().VecView(qmCenter[0]).Clone()
		c.WeightRatio = map[int]float64{qmCenter[0]: 1}
		return c, nil
	}
	com, _, ratios, err := aqmmm.CenterOfMass(c.Atoms, d.p.Coords(), d.p)
	if err != nil {
		return c, aqmmm.ErrDecorate(err, "CenterInfo")
	}
	c.Pos = com
	c.WeightRatio = ratios
	c.Reference, c.Dummy = d.p.WithDummy(DummySymbol, com)
	return c, nil
}

// DefineBufferZone classifies every residue of the system. Residues containing
// a QM center atom always belong to the QM core.
func (d *Distance) DefineBufferZone(qmCenter []int) (*Zone, error) {
	center, err := d.CenterInfo(qmCenter)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "DefineBufferZone")
	}
	z := &Zone{Rmin: d.Rmin, Rmax: d.Rmax, Center: center, Groups: make(map[int]*BufferGroup)}
	ref := center.Reference.Coords().VecView(d.refIndex(center))
	inCenter := make(map[int]bool)
	for _, v := range center.Atoms {
		inCenter[v] = true
	}
	qm := make(map[int]bool)
	for _, v := range center.Atoms {
		qm[v] = true
	}
	for ri, res := range d.p.Residues() {
		core := false
		for _, a := range res {
			if inCenter[a] {
				core = true
				break
			}
		}
		var buf *BufferGroup
		if !core {
			buf, err = BuildResidueBuffer(ri, res, d.p, ref)
			if err != nil {
				return nil, aqmmm.ErrDecorate(err, "DefineBufferZone")
			}
			core = buf.Distance <= d.Rmin
		}
		switch {
		case core:
			z.QMResidues = append(z.QMResidues, ri)
			for _, a := range res {
				qm[a] = true
			}
		case buf.Distance < d.Rmax || (d.inclusive && buf.Distance == d.Rmax):
			z.Groups[ri] = buf
		}
	}
	z.QMAtoms = sortedKeys(qm)
	rankGroups(z.Groups)
	return z, nil
}

func (d *Distance) refIndex(c Center) int {
	if c.Dummy >= 0 {
		return c.Dummy
	}
	return c.Atoms[0]
}

// rankGroups sets the Order of each group by ascending distance. Equal
// distances are ranked by ascending ID.
func rankGroups(groups map[int]*BufferGroup) {
	s := make([]*BufferGroup, 0, len(groups))
	for _, v := range groups {
		s = append(s, v)
	}
	sort.Slice(s, func(i, j int) bool {
		if s[i].Distance == s[j].Distance {
			return s[i].ID < s[j].ID
		}
		return s[i].Distance < s[j].Distance
	})
	for i, v := range s {
		v.Order = i
	}
}

func sortedKeys(m map[int]bool) []int {
	ret := make([]int, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Ints(ret)
	return ret
}

// baseDefinition returns the definition of the QM sub-system with no buffer groups.
func baseDefinition(z *Zone) *Definition {
	return &Definition{
		ID:         QM,
		QMAtoms:    append([]int(nil), z.QMAtoms...),
		QMResidues: append([]int(nil), z.QMResidues...),
	}
}

// extend adds the atoms of the given groups to def.
func (def *Definition) extend(groups ...*BufferGroup) {
	qm := make(map[int]bool, len(def.QMAtoms))
	for _, v := range def.QMAtoms {
		qm[v] = true
	}
	for _, g := range groups {
		def.QMResidues = append(def.QMResidues, g.ID)
		def.Groups = append(def.Groups, g.ID)
		for _, a := range g.Atoms {
			qm[a] = true
		}
	}
	def.QMAtoms = sortedKeys(qm)
}
