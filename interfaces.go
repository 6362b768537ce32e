/*
 * interfaces.go, part of aqmmm.
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
	"context"

	v3 "github.com/rmera/aqmmm/v3"
)

// Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the Topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	Len() int
}

// Provider gives access to the current geometry and the topology of the system.
// Coordinates are in Angstrom.
type Provider interface {
	Atomer

	//Coords returns the current coordinates. Changes in the returned
	//matrix are seen by every user of the provider.
	Coords() *v3.Matrix

	//Residues returns the indexes of the atoms in each residue.
	Residues() [][]int

	//WithDummy returns a copy of the provider with an extra atom of the given
	//symbol at pos, and the index of that atom in the copy.
	WithDummy(symbol string, pos *v3.Matrix) (Provider, int)
}

// QMAtom is an atom as the QM program sees it. Pos is in Angstrom.
type QMAtom struct {
	Symbol string
	Pos    [3]float64
}

// PointCharge is an external charge for electrostatic embedding. Pos is in Angstrom.
type PointCharge struct {
	Charge float64
	Pos    [3]float64
}

// EnergyGradient is the result of a QM or MM calculation. Energy is in Hartree
// and the gradients (dE/dx, not forces) in Hartree/Angstrom, one row per atom.
type EnergyGradient struct {
	Energy    float64
	Gradients *v3.Matrix
}

// QMBackend is a QM program able to compute energies and gradients.
// A multiplicity of 0 or less lets the backend choose the lowest one compatible
// with the number of electrons. If minimize is true, the geometry is optimized
// first, and the results are those of the optimized geometry.
type QMBackend interface {
	EnergyGradient(ctx context.Context, geom []QMAtom, charge, multi int, charges []PointCharge, minimize bool) (*EnergyGradient, error)
}

// BoundaryBond is a covalent bond between the QM atom QM and the MM atom MM.
// G is the scaling factor that places the link atom on the bond.
type BoundaryBond struct {
	QM int
	MM int
	G  float64
}

// MMBackend is an MM program able to compute the energies and gradients
// of the system and of its parts. The qm arguments are the indexes of the
// QM atoms in the full system.
type MMBackend interface {
	//WholeSystem returns the energy and full-system gradients of the whole system.
	WholeSystem(ctx context.Context) (*EnergyGradient, error)

	//PrimarySubsystem returns the energy and gradients of the QM atoms, followed by
	//one link atom per boundary bond if link is true. The rows of the gradients
	//follow that order.
	PrimarySubsystem(ctx context.Context, qm []int, link bool) (*EnergyGradient, error)

	//SecondarySubsystem returns the energy of everything but the QM atoms, with
	//full-system gradients.
	SecondarySubsystem(ctx context.Context, qm []int) (*EnergyGradient, error)

	//Boundary returns the interaction energy between the QM atoms and the rest,
	//with full-system gradients. Electrostatics are included only if coulomb is true.
	Boundary(ctx context.Context, qm []int, coulomb bool) (*EnergyGradient, error)

	//BoundaryInfo returns the covalent bonds that cross the QM/MM boundary.
	BoundaryInfo(ctx context.Context, qm []int) ([]BoundaryBond, error)

	//QMRegion returns the QM atoms, followed by the link atoms if link is true,
	//in the same order as PrimarySubsystem.
	QMRegion(ctx context.Context, qm []int, link bool) ([]QMAtom, error)
}

// PointCharger is implemented by MM backends that can give the MM
// charges around a QM region, for electrostatic embedding.
type PointCharger interface {
	PointCharges(ctx context.Context, qm []int, treatment string) ([]PointCharge, error)
}
