/*
 * chem.go, part of aqmmm.
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
	v3 "github.com/rmera/aqmmm/v3"
)

//Atom contains the atoms read except for the coordinates, which will be in a matrix.
type Atom struct {
	Name    string
	ID      int //the serial number in the input file
	Index   int //the 0-based position in the topology
	MolName string
	MolID   int
	Chain   string
	Mass    float64 //0 means "use the standard mass for Symbol"
	Charge  float64
	Symbol  string
	Het     bool // is hetatm in the pdb file?
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

/*****Topology type***/

//Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates)
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

//NewTopology returns a topology with the given atoms, total charge and multiplicity.
//The Index field of each atom is set to its position in the slice.
func NewTopology(ats []*Atom, charge, multi int) *Topology {
	top := &Topology{Atoms: ats, charge: charge, multi: multi}
	if top.multi <= 0 {
		top.multi = 1
	}
	for i, v := range top.Atoms {
		v.Index = i
	}
	return top
}

//Atom returns the ith atom. Panics if i is out of range.
func (T *Topology) Atom(i int) *Atom { return T.Atoms[i] }

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int { return len(T.Atoms) }

//Charge gets the total charge of the topology
func (T *Topology) Charge() int { return T.charge }

//Multi returns the multiplicity of the topology
func (T *Topology) Multi() int { return T.multi }

//SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) { T.charge = i }

//SetMulti sets the multiplicity of the topology to i
func (T *Topology) SetMulti(i int) { T.multi = i }

//Residues returns the atom indexes of each residue. A new residue starts
//every time the chain or the residue ID changes between consecutive atoms.
func (T *Topology) Residues() [][]int {
	ret := make([][]int, 0, 10)
	var curr []int
	for i, at := range T.Atoms {
		if i == 0 || at.MolID != T.Atoms[i-1].MolID || at.Chain != T.Atoms[i-1].Chain {
			if curr != nil {
				ret = append(ret, curr)
			}
			curr = make([]int, 0, 20)
		}
		curr = append(curr, i)
	}
	if curr != nil {
		ret = append(ret, curr)
	}
	return ret
}

//Copy returns a deep copy of the topology.
func (T *Topology) Copy() *Topology {
	ats := make([]*Atom, len(T.Atoms))
	for i, v := range T.Atoms {
		ats[i] = v.Copy()
	}
	return NewTopology(ats, T.charge, T.multi)
}

/**Molecule type**/

//Molecule contains a topology and a set of coordinates, in Angstrom.
//It implements Provider.
type Molecule struct {
	*Topology
	coords *v3.Matrix
}

//NewMolecule returns a molecule with the given topology and coordinates, in Angstrom.
func NewMolecule(top *Topology, coords *v3.Matrix) (*Molecule, error) {
	if top == nil || coords == nil {
		return nil, NewConfigurationError("NewMolecule", "nil topology or coordinates")
	}
	if top.Len() != coords.NVecs() {
		return nil, NewConfigurationError("NewMolecule", "%d atoms but %d coordinates", top.Len(), coords.NVecs())
	}
	return &Molecule{Topology: top, coords: coords}, nil
}

//NewMoleculeNm is like NewMolecule, but the coordinates are given in nm.
//They are converted to Angstrom in place.
func NewMoleculeNm(top *Topology, coords *v3.Matrix) (*Molecule, error) {
	if coords != nil {
		coords.Scale(NmToAngstrom, coords)
	}
	mol, err := NewMolecule(top, coords)
	return mol, ErrDecorate(err, "NewMoleculeNm")
}

//Coords returns the coordinates of the molecule. It is not a copy.
func (M *Molecule) Coords() *v3.Matrix { return M.coords }

//Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	return &Molecule{Topology: M.Topology.Copy(), coords: M.coords.Clone()}
}

//WithDummy returns a copy of the molecule with an extra atom at pos, and the
//index of the new atom. The dummy atom forms its own residue.
func (M *Molecule) WithDummy(symbol string, pos *v3.Matrix) (Provider, int) {
	n := M.Len()
	ats := make([]*Atom, n+1)
	for i, v := range M.Atoms {
		ats[i] = v.Copy()
	}
	lastid := 0
	if n > 0 {
		lastid = M.Atoms[n-1].MolID
	}
	ats[n] = &Atom{Name: "DUM", Symbol: symbol, MolName: "DUM", MolID: lastid + 1, Chain: "~", ID: n + 1}
	coords := v3.Zeros(n + 1)
	for i := 0; i < n; i++ {
		coords.VecView(i).Copy(M.coords.VecView(i))
	}
	coords.VecView(n).Copy(pos.VecView(0))
	return &Molecule{Topology: NewTopology(ats, M.charge, M.multi), coords: coords}, n
}
