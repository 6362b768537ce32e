/*
 * bonds.go, part of aqmmm.
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
	"sort"

	v3 "github.com/rmera/aqmmm/v3"
)

const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond is a covalent bond between the atoms with indexes At1 < At2.
type Bond struct {
	At1  int
	At2  int
	Dist float64
}

// Cross returns the atom at the other end of the bond from origin.
func (B Bond) Cross(origin int) int {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //programming error.
}

// Bonds detects covalent bonds from the distances between atoms and their
// covalent radii. Hydrogens keep only their shortest bond.
func Bonds(coord *v3.Matrix, mol Atomer) ([]Bond, error) {
	tot := mol.Len()
	radii := make([]float64, tot)
	for i := 0; i < tot; i++ {
		r, err := CovalentRadius(mol.Atom(i).Symbol)
		if err != nil {
			return nil, ErrDecorate(err, "Bonds")
		}
		radii[i] = r
	}
	bonds := make([]Bond, 0, tot)
	perAtom := make([][]int, tot) //indexes in bonds
	for i := 0; i < tot; i++ {
		for j := i + 1; j < tot; j++ {
			d := v3.Distance(coord, i, coord, j)
			if d < radii[i]+radii[j]+bondtol && d > tooclose {
				perAtom[i] = append(perAtom[i], len(bonds))
				perAtom[j] = append(perAtom[j], len(bonds))
				bonds = append(bonds, Bond{At1: i, At2: j, Dist: d})
			}
		}
	}
	remove := make(map[int]bool)
	for i := 0; i < tot; i++ {
		if mol.Atom(i).Symbol != "H" || len(perAtom[i]) < 2 {
			continue
		}
		hb := append([]int(nil), perAtom[i]...)
		sort.Slice(hb, func(a, b int) bool { return bonds[hb[a]].Dist < bonds[hb[b]].Dist })
		for _, v := range hb[1:] {
			remove[v] = true
		}
	}
	if len(remove) == 0 {
		return bonds, nil
	}
	ret := make([]Bond, 0, len(bonds)-len(remove))
	for i, v := range bonds {
		if !remove[i] {
			ret = append(ret, v)
		}
	}
	return ret, nil
}

// FragmentResidues sets the MolID of every atom in mol so that each
// covalently bonded fragment becomes one residue, and reorders nothing.
// It is meant for inputs without residue information, such as XYZ files.
// Fragments that are not contiguous in the atom list produce several residues.
func FragmentResidues(mol *Molecule) error {
	bonds, err := Bonds(mol.Coords(), mol)
	if err != nil {
		return ErrDecorate(err, "FragmentResidues")
	}
	parent := make([]int, mol.Len())
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for _, b := range bonds {
		r1, r2 := find(b.At1), find(b.At2)
		if r1 != r2 {
			if r1 < r2 {
				parent[r2] = r1
			} else {
				parent[r1] = r2
			}
		}
	}
	for i, at := range mol.Atoms {
		at.MolID = find(i) + 1
	}
	return nil
}
