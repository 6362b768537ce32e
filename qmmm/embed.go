/*
 * embed.go, part of aqmmm.
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

package qmmm

import (
	"context"

	"github.com/rmera/aqmmm"
	v3 "github.com/rmera/aqmmm/v3"
)

// Treatment is the way covalent bonds across the QM/MM boundary are handled.
type Treatment string

const (
	LinkAtom Treatment = "link_atom"
	RC       Treatment = "RC"  //redistributed charge
	RCD      Treatment = "RCD" //redistributed charge and dipole
)

// Known returns true for the treatments the gradient composition supports.
func (t Treatment) Known() bool {
	return t == LinkAtom || t == RC || t == RCD
}

// Embedder evaluates the QM/MM energy, or energy and gradients, of a sub-system,
// storing the result in it.
type Embedder interface {
	Energy(ctx context.Context, sub *SubSystem) error
	EnergyGradient(ctx context.Context, sub *SubSystem) error
}

// Backends holds what both embedding schemes need.
type Backends struct {
	QM        aqmmm.QMBackend
	MM        aqmmm.MMBackend
	Treatment Treatment
	Charge    int //of the QM region
	Multi     int //0 lets the QM backend choose
	//If true, and the MM backend is a PointCharger, the MM charges
	//are included in the QM calculation.
	PointCharges bool
}

func (b *Backends) boundaryInfo(ctx context.Context, sub *SubSystem) ([]aqmmm.BoundaryBond, error) {
	if sub.infoKnown {
		return sub.boundaryInfo, nil
	}
	info, err := b.MM.BoundaryInfo(ctx, sub.QMAtoms)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "boundaryInfo")
	}
	sub.boundaryInfo, sub.infoKnown = info, true
	return info, nil
}

func (b *Backends) qmComponent(ctx context.Context, sub *SubSystem) (*aqmmm.EnergyGradient, error) {
	if sub.qm != nil {
		return sub.qm, nil
	}
	geom, err := b.MM.QMRegion(ctx, sub.QMAtoms, true)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "qmComponent")
	}
	var charges []aqmmm.PointCharge
	if pc, ok := b.MM.(aqmmm.PointCharger); ok && b.PointCharges {
		charges, err = pc.PointCharges(ctx, sub.QMAtoms, string(b.Treatment))
		if err != nil {
			return nil, aqmmm.ErrDecorate(err, "qmComponent")
		}
	}
	res, err := b.QM.EnergyGradient(ctx, geom, b.Charge, b.Multi, charges, false)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "qmComponent")
	}
	sub.qm = res
	return res, nil
}

// Subtractive is the subtractive mechanical embedding scheme:
// E = E_MM(whole system) - E_MM(primary subsystem) + E_QM(primary subsystem).
type Subtractive struct {
	Backends
}

// NewSubtractive returns a subtractive embedder.
func NewSubtractive(qm aqmmm.QMBackend, mm aqmmm.MMBackend, treatment Treatment, charge, multi int) (*Subtractive, error) {
	if qm == nil || mm == nil {
		return nil, aqmmm.NewConfigurationError("NewSubtractive", "nil backend")
	}
	return &Subtractive{Backends{QM: qm, MM: mm, Treatment: treatment, Charge: charge, Multi: multi}}, nil
}

func (s *Subtractive) components(ctx context.Context, sub *SubSystem) error {
	var err error
	if sub.entire == nil {
		if sub.entire, err = s.MM.WholeSystem(ctx); err != nil {
			return err
		}
	}
	info, err := s.boundaryInfo(ctx, sub)
	if err != nil {
		return err
	}
	if len(info) > 0 && !s.Treatment.Known() {
		return aqmmm.NewConfigurationError("Subtractive", "boundary treatment %q not supported, use %s, %s or %s", s.Treatment, LinkAtom, RC, RCD)
	}
	if sub.primary == nil {
		if sub.primary, err = s.MM.PrimarySubsystem(ctx, sub.QMAtoms, true); err != nil {
			return err
		}
	}
	_, err = s.qmComponent(ctx, sub)
	return err
}

// Energy computes the QM/MM energy of sub.
func (s *Subtractive) Energy(ctx context.Context, sub *SubSystem) error {
	if err := s.components(ctx, sub); err != nil {
		return aqmmm.ErrDecorate(err, "Subtractive.Energy")
	}
	sub.SetResult(sub.entire.Energy-sub.primary.Energy+sub.qm.Energy, nil)
	return nil
}

// EnergyGradient computes the QM/MM energy and gradients of sub. The gradient of
// each link atom is split between the QM and MM atoms of its bond, as (1-g) and g.
func (s *Subtractive) EnergyGradient(ctx context.Context, sub *SubSystem) error {
	if err := s.components(ctx, sub); err != nil {
		return aqmmm.ErrDecorate(err, "Subtractive.EnergyGradient")
	}
	info := sub.boundaryInfo
	want := len(sub.QMAtoms) + len(info)
	whole, ps, qm := sub.entire.Gradients, sub.primary.Gradients, sub.qm.Gradients
	if whole == nil || ps == nil || qm == nil {
		return aqmmm.NewConfigurationError("Subtractive.EnergyGradient", "a backend returned no gradients")
	}
	if ps.NVecs() < want || qm.NVecs() < want {
		return aqmmm.NewConfigurationError("Subtractive.EnergyGradient", "expected %d rows in the primary subsystem gradients, got %d (MM) and %d (QM)", want, ps.NVecs(), qm.NVecs())
	}
	grad := whole.Clone()
	delta := v3.Zeros(1)
	for k, atom := range sub.QMAtoms {
		grad.AddToVec(atom, ps.VecView(k), -1)
		grad.AddToVec(atom, qm.VecView(k), 1)
	}
	for b, bond := range info {
		row := len(sub.QMAtoms) + b
		delta.Sub(qm.VecView(row), ps.VecView(row))
		grad.AddToVec(bond.QM, delta, 1-bond.G)
		grad.AddToVec(bond.MM, delta, bond.G)
	}
	sub.SetResult(sub.entire.Energy-sub.primary.Energy+sub.qm.Energy, grad)
	return nil
}

// Additive is the additive embedding scheme:
// E = E_MM(secondary subsystem) + E_MM(boundary) + E_QM(primary subsystem).
// Only energies are available.
type Additive struct {
	Backends
}

// NewAdditive returns an additive embedder.
func NewAdditive(qm aqmmm.QMBackend, mm aqmmm.MMBackend, treatment Treatment, charge, multi int) (*Additive, error) {
	if qm == nil || mm == nil {
		return nil, aqmmm.NewConfigurationError("NewAdditive", "nil backend")
	}
	return &Additive{Backends{QM: qm, MM: mm, Treatment: treatment, Charge: charge, Multi: multi}}, nil
}

// Energy computes the QM/MM energy of sub.
func (a *Additive) Energy(ctx context.Context, sub *SubSystem) error {
	var err error
	if sub.secondary == nil {
		if sub.secondary, err = a.MM.SecondarySubsystem(ctx, sub.QMAtoms); err != nil {
			return aqmmm.ErrDecorate(err, "Additive.Energy")
		}
	}
	if sub.boundary == nil {
		if sub.boundary, err = a.MM.Boundary(ctx, sub.QMAtoms, false); err != nil {
			return aqmmm.ErrDecorate(err, "Additive.Energy")
		}
	}
	if _, err = a.boundaryInfo(ctx, sub); err != nil {
		return aqmmm.ErrDecorate(err, "Additive.Energy")
	}
	if _, err = a.qmComponent(ctx, sub); err != nil {
		return aqmmm.ErrDecorate(err, "Additive.Energy")
	}
	sub.SetResult(sub.secondary.Energy+sub.boundary.Energy+sub.qm.Energy, nil)
	return nil
}

// EnergyGradient computes the energy of sub, and returns a NotImplementedError,
// as gradients are not available for the additive scheme.
func (a *Additive) EnergyGradient(ctx context.Context, sub *SubSystem) error {
	if err := a.Energy(ctx, sub); err != nil {
		return aqmmm.ErrDecorate(err, "Additive.EnergyGradient")
	}
	return aqmmm.NewNotImplementedError("Additive.EnergyGradient", "gradients for the additive scheme")
}
