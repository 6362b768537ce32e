/*
 * subsystem.go, part of aqmmm.
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
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/partition"
	v3 "github.com/rmera/aqmmm/v3"
)

// SubSystem is one partition of a run: a QM region, the buffer groups folded
// into it, and, once evaluated, its QM/MM energy and gradients.
type SubSystem struct {
	ID         partition.ID
	RunID      string
	QMAtoms    []int
	QMResidues []int
	Groups     map[int]*partition.BufferGroup

	//components from the backends
	entire       *aqmmm.EnergyGradient
	primary      *aqmmm.EnergyGradient
	secondary    *aqmmm.EnergyGradient
	boundary     *aqmmm.EnergyGradient
	qm           *aqmmm.EnergyGradient
	boundaryInfo []aqmmm.BoundaryBond
	infoKnown    bool

	qmmm     *aqmmm.EnergyGradient
	weighted *aqmmm.EnergyGradient
}

// NewSubSystem returns the sub-system for def in run runID. groups are
// the buffer groups of the zone, of which only those in def are kept.
func NewSubSystem(runID string, def *partition.Definition, groups map[int]*partition.BufferGroup) *SubSystem {
	s := &SubSystem{
		ID:         def.ID,
		RunID:      runID,
		QMAtoms:    append([]int(nil), def.QMAtoms...),
		QMResidues: append([]int(nil), def.QMResidues...),
		Groups:     make(map[int]*partition.BufferGroup, len(def.Groups)),
	}
	for _, id := range def.Groups {
		if g, ok := groups[id]; ok {
			s.Groups[id] = g
		}
	}
	return s
}

// Evaluated returns true if the QM/MM energy of the sub-system is available.
func (s *SubSystem) Evaluated() bool { return s.qmmm != nil }

// Energy returns the QM/MM energy of the sub-system.
func (s *SubSystem) Energy() (float64, error) {
	if s.qmmm == nil {
		return 0, aqmmm.NewPreconditionError("SubSystem.Energy", "sub-system %s of run %s not evaluated", s.ID, s.RunID)
	}
	return s.qmmm.Energy, nil
}

// Gradients returns the full-system QM/MM gradients of the sub-system.
func (s *SubSystem) Gradients() (*v3.Matrix, error) {
	if s.qmmm == nil || s.qmmm.Gradients == nil {
		return nil, aqmmm.NewPreconditionError("SubSystem.Gradients", "gradients of sub-system %s of run %s not computed", s.ID, s.RunID)
	}
	return s.qmmm.Gradients, nil
}

// SetResult sets the QM/MM energy and gradients of the sub-system.
// grad can be nil if only the energy was computed.
func (s *SubSystem) SetResult(energy float64, grad *v3.Matrix) {
	s.qmmm = &aqmmm.EnergyGradient{Energy: energy, Gradients: grad}
	s.weighted = nil
}

// SetWeighted sets the switching-function-weighted energy and gradients.
func (s *SubSystem) SetWeighted(energy float64, grad *v3.Matrix) {
	s.weighted = &aqmmm.EnergyGradient{Energy: energy, Gradients: grad}
}

// WeightedEnergy returns the weighted energy of the sub-system. It is only
// available after interpolation.
func (s *SubSystem) WeightedEnergy() (float64, error) {
	if s.weighted == nil {
		return 0, aqmmm.NewPreconditionError("SubSystem.WeightedEnergy", "sub-system %s of run %s not interpolated", s.ID, s.RunID)
	}
	return s.weighted.Energy, nil
}

// WeightedGradients returns the weighted gradients of the sub-system. They are only
// available after interpolation.
func (s *SubSystem) WeightedGradients() (*v3.Matrix, error) {
	if s.weighted == nil || s.weighted.Gradients == nil {
		return nil, aqmmm.NewPreconditionError("SubSystem.WeightedGradients", "sub-system %s of run %s not interpolated", s.ID, s.RunID)
	}
	return s.weighted.Gradients, nil
}

// BoundaryInfo returns the boundary bonds of the sub-system, if known.
func (s *SubSystem) BoundaryInfo() []aqmmm.BoundaryBond { return s.boundaryInfo }

// Reset drops the cached components and results, for instance after the geometry changes.
func (s *SubSystem) Reset() {
	s.entire, s.primary, s.secondary, s.boundary, s.qm = nil, nil, nil, nil, nil
	s.boundaryInfo, s.infoKnown = nil, false
	s.qmmm, s.weighted = nil, nil
}
