/*
 * forcefield.go, part of aqmmm.
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
	"math"
	"sort"

	"github.com/rmera/aqmmm"
	v3 "github.com/rmera/aqmmm/v3"
	"go.uber.org/zap"
)

// linkRadius is the covalent radius used for link hydrogens.
const linkRadius = 0.31

// DefaultKb is the default bond force constant, in kcal/(mol A^2).
const DefaultKb = 300.0

// lennard-Jones well depths, in kcal/mol.
var epsilons = map[string]float64{
	"H":  0.0157,
	"C":  0.086,
	"N":  0.17,
	"O":  0.21,
	"F":  0.061,
	"P":  0.2,
	"S":  0.25,
	"Cl": 0.265,
}

const defaultEpsilon = 0.1

type site struct {
	symbol string
	charge float64
	eps    float64
	rmin   float64 //half of the LJ minimum distance
}

func newSite(symbol string, charge float64) (site, error) {
	r, err := aqmmm.VdwRadius(symbol)
	if err != nil {
		return site{}, aqmmm.ErrDecorate(err, "newSite")
	}
	e, ok := epsilons[symbol]
	if !ok {
		e = defaultEpsilon
	}
	return site{symbol: symbol, charge: charge, eps: e, rmin: r}, nil
}

type lbond struct {
	i, j int
	r0   float64
}

// ForceField is a simple force field over a system.
// The coordinates are read from Mol at each call, so changes in
// Mol's coordinates are seen by the force field. The topology,
// the bonds and their equilibrium distances are fixed when the
// force field is created.
type ForceField struct {
	Mol    aqmmm.Provider
	Kb     float64 //kcal/(mol A^2)
	Logger *zap.Logger
	bonds  []aqmmm.Bond //Dist is the equilibrium distance
	sites  []site
	bonded map[[2]int]bool
	neigh  [][]int
}

// NewForceField returns a force field for mol, with the bonds found in its current
// geometry. Charges are taken from the atoms in mol.
func NewForceField(mol aqmmm.Provider) (*ForceField, error) {
	if mol == nil || mol.Len() == 0 {
		return nil, aqmmm.NewConfigurationError("NewForceField", "empty system")
	}
	coords := mol.Coords()
	if coords == nil || coords.NVecs() != mol.Len() {
		return nil, aqmmm.NewConfigurationError("NewForceField", "coordinates don't match the topology")
	}
	bonds, err := aqmmm.Bonds(coords, mol)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "NewForceField")
	}
	F := &ForceField{Mol: mol, Kb: DefaultKb, bonds: bonds, bonded: make(map[[2]int]bool, len(bonds))}
	F.sites = make([]site, mol.Len())
	F.neigh = make([][]int, mol.Len())
	for i := range F.sites {
		at := mol.Atom(i)
		if F.sites[i], err = newSite(at.Symbol, at.Charge); err != nil {
			return nil, aqmmm.ErrDecorate(err, "NewForceField")
		}
	}
	for _, b := range bonds {
		F.bonded[key(b.At1, b.At2)] = true
		F.neigh[b.At1] = append(F.neigh[b.At1], b.At2)
		F.neigh[b.At2] = append(F.neigh[b.At2], b.At1)
	}
	return F, nil
}

// Bonds returns a copy of the bonds of the force field.
func (F *ForceField) Bonds() []aqmmm.Bond {
	return append([]aqmmm.Bond(nil), F.bonds...)
}

func key(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

func (F *ForceField) logger() *zap.Logger {
	if F.Logger == nil {
		return zap.NewNop()
	}
	return F.Logger
}

func (F *ForceField) positions() [][3]float64 {
	c := F.Mol.Coords()
	pos := make([][3]float64, c.NVecs())
	for i := range pos {
		pos[i] = [3]float64{c.At(i, 0), c.At(i, 1), c.At(i, 2)}
	}
	return pos
}

func qmSet(qm []int, n int) (map[int]bool, error) {
	set := make(map[int]bool, len(qm))
	for _, v := range qm {
		if v < 0 || v >= n {
			return nil, aqmmm.NewConfigurationError("qmSet", "QM atom %d out of range for a %d-atom system", v, n)
		}
		set[v] = true
	}
	return set, nil
}

// evaluate returns the energy, in kcal/mol, and gradients, in kcal/(mol A), of
// the bonds given, and of the non-bonded pairs for which pair returns true
// and excluded returns false.
func evaluate(pos [][3]float64, sites []site, bonds []lbond, kb float64, pair func(i, j int) bool, excluded func(i, j int) bool, coulomb bool) (float64, [][3]float64) {
	grad := make([][3]float64, len(pos))
	var energy float64
	add := func(i, j int, dEdr, r float64, d [3]float64) {
		for k := 0; k < 3; k++ {
			g := dEdr * d[k] / r
			grad[i][k] += g
			grad[j][k] -= g
		}
	}
	for _, b := range bonds {
		d, r := diff(pos[b.i], pos[b.j])
		dr := r - b.r0
		energy += kb * dr * dr
		add(b.i, b.j, 2*kb*dr, r, d)
	}
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			if !pair(i, j) || excluded(i, j) {
				continue
			}
			d, r := diff(pos[i], pos[j])
			if r == 0 {
				continue
			}
			a, b := sites[i], sites[j]
			eps := math.Sqrt(a.eps * b.eps)
			r6 := math.Pow((a.rmin+b.rmin)/r, 6)
			energy += eps * (r6*r6 - 2*r6)
			dEdr := 12 * eps * (r6 - r6*r6) / r
			if coulomb && a.charge != 0 && b.charge != 0 {
				c := aqmmm.CoulombKcal * a.charge * b.charge / r
				energy += c
				dEdr -= c / r
			}
			add(i, j, dEdr, r, d)
		}
	}
	return energy, grad
}

func diff(a, b [3]float64) ([3]float64, float64) {
	d := [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
	return d, math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// result converts energy and gradients to Hartree and Hartree/A.
func result(e float64, grad [][3]float64) *aqmmm.EnergyGradient {
	g := v3.Zeros(len(grad))
	for i, v := range grad {
		for k := 0; k < 3; k++ {
			g.Set(i, k, v[k]*aqmmm.Kcal2H)
		}
	}
	return &aqmmm.EnergyGradient{Energy: e * aqmmm.Kcal2H, Gradients: g}
}

// full evaluates the bonds and pairs of the full system selected by sel.
func (F *ForceField) full(sel func(i, j int) bool, coulomb bool) *aqmmm.EnergyGradient {
	bonds := make([]lbond, 0, len(F.bonds))
	for _, b := range F.bonds {
		if sel(b.At1, b.At2) {
			bonds = append(bonds, lbond{b.At1, b.At2, b.Dist})
		}
	}
	excl := func(i, j int) bool { return F.bonded[key(i, j)] }
	e, g := evaluate(F.positions(), F.sites, bonds, F.Kb, sel, excl, coulomb)
	return result(e, g)
}

// WholeSystem returns the energy and gradients of the whole system.
func (F *ForceField) WholeSystem(ctx context.Context) (*aqmmm.EnergyGradient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return F.full(func(i, j int) bool { return true }, true), nil
}

// SecondarySubsystem returns the energy of all the atoms not in qm, with gradients for the
// whole system (zero for the QM atoms).
func (F *ForceField) SecondarySubsystem(ctx context.Context, qm []int) (*aqmmm.EnergyGradient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := qmSet(qm, F.Mol.Len())
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "SecondarySubsystem")
	}
	return F.full(func(i, j int) bool { return !set[i] && !set[j] }, true), nil
}

// Boundary returns the energy of the interactions between the atoms in qm and the rest,
// with gradients for the whole system. Bonds crossing the boundary are included.
func (F *ForceField) Boundary(ctx context.Context, qm []int, coulomb bool) (*aqmmm.EnergyGradient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := qmSet(qm, F.Mol.Len())
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "Boundary")
	}
	return F.full(func(i, j int) bool { return set[i] != set[j] }, coulomb), nil
}

// BoundaryInfo returns the bonds between atoms in qm and atoms outside it,
// sorted by QM atom and then by MM atom.
func (F *ForceField) BoundaryInfo(ctx context.Context, qm []int) ([]aqmmm.BoundaryBond, error) {
	set, err := qmSet(qm, F.Mol.Len())
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "BoundaryInfo")
	}
	var ret []aqmmm.BoundaryBond
	for _, b := range F.bonds {
		if set[b.At1] == set[b.At2] {
			continue
		}
		q, m := b.At1, b.At2
		if set[m] {
			q, m = m, q
		}
		rq, err := aqmmm.CovalentRadius(F.Mol.Atom(q).Symbol)
		if err != nil {
			return nil, aqmmm.ErrDecorate(err, "BoundaryInfo")
		}
		rm, err := aqmmm.CovalentRadius(F.Mol.Atom(m).Symbol)
		if err != nil {
			return nil, aqmmm.ErrDecorate(err, "BoundaryInfo")
		}
		ret = append(ret, aqmmm.BoundaryBond{QM: q, MM: m, G: (rq + linkRadius) / (rq + rm)})
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].QM != ret[j].QM {
			return ret[i].QM < ret[j].QM
		}
		return ret[i].MM < ret[j].MM
	})
	return ret, nil
}

// primary returns the sites, positions and bonds of the QM atoms, followed by the link atoms
// if link is true.
func (F *ForceField) primary(ctx context.Context, qm []int, link bool) ([]site, [][3]float64, []lbond, error) {
	info, err := F.BoundaryInfo(ctx, qm)
	if err != nil {
		return nil, nil, nil, aqmmm.ErrDecorate(err, "primary")
	}
	all := F.positions()
	local := make(map[int]int, len(qm))
	sites := make([]site, 0, len(qm)+len(info))
	pos := make([][3]float64, 0, len(qm)+len(info))
	for i, v := range qm {
		local[v] = i
		sites = append(sites, F.sites[v])
		pos = append(pos, all[v])
	}
	var bonds []lbond
	for _, b := range F.bonds {
		i, ok1 := local[b.At1]
		j, ok2 := local[b.At2]
		if ok1 && ok2 {
			bonds = append(bonds, lbond{i, j, b.Dist})
		}
	}
	if !link {
		return sites, pos, bonds, nil
	}
	for _, b := range info {
		q, m := all[b.QM], all[b.MM]
		var p [3]float64
		for k := range p {
			p[k] = q[k] + b.G*(m[k]-q[k])
		}
		s, err := newSite("H", 0)
		if err != nil {
			return nil, nil, nil, aqmmm.ErrDecorate(err, "primary")
		}
		rq, _ := aqmmm.CovalentRadius(F.Mol.Atom(b.QM).Symbol) //already checked in BoundaryInfo
		bonds = append(bonds, lbond{local[b.QM], len(pos), rq + linkRadius})
		sites = append(sites, s)
		pos = append(pos, p)
	}
	return sites, pos, bonds, nil
}

// PrimarySubsystem returns the energy and gradients of the QM atoms, followed by a
// hydrogen link atom for each bond crossing the boundary if link is true. The gradient
// rows are in that order. Link atoms have no charge.
func (F *ForceField) PrimarySubsystem(ctx context.Context, qm []int, link bool) (*aqmmm.EnergyGradient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sites, pos, bonds, err := F.primary(ctx, qm, link)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "PrimarySubsystem")
	}
	excluded := make(map[[2]int]bool, len(bonds))
	for _, b := range bonds {
		excluded[key(b.i, b.j)] = true
	}
	e, g := evaluate(pos, sites, bonds, F.Kb, func(i, j int) bool { return true }, func(i, j int) bool { return excluded[key(i, j)] }, true)
	F.logger().Debug("primary subsystem", zap.Int("qm", len(qm)), zap.Int("links", len(pos)-len(qm)), zap.Float64("energy", e*aqmmm.Kcal2H))
	return result(e, g), nil
}

// QMRegion returns the QM atoms, followed by the link atoms if link is true, in the same
// order as PrimarySubsystem.
func (F *ForceField) QMRegion(ctx context.Context, qm []int, link bool) ([]aqmmm.QMAtom, error) {
	sites, pos, _, err := F.primary(ctx, qm, link)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "QMRegion")
	}
	ret := make([]aqmmm.QMAtom, len(sites))
	for i, s := range sites {
		ret[i] = aqmmm.QMAtom{Symbol: s.symbol, Pos: pos[i]}
	}
	return ret, nil
}
