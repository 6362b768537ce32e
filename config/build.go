/*
 * build.go, part of aqmmm.
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

package config

import (
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/mm"
	"github.com/rmera/aqmmm/partition"
	"github.com/rmera/aqmmm/qm"
	"github.com/rmera/aqmmm/qmmm"
	"go.uber.org/zap"
)

// ReadSystem reads a PDB or XYZ file, according to its extension. Atoms in XYZ
// files are grouped in residues by covalent connectivity.
func ReadSystem(path string) (*aqmmm.Molecule, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdb", ".ent":
		mol, err := aqmmm.PDBFileRead(path)
		return mol, aqmmm.ErrDecorate(err, "ReadSystem")
	case ".xyz":
		mol, err := aqmmm.XYZFileRead(path)
		if err != nil {
			return nil, aqmmm.ErrDecorate(err, "ReadSystem")
		}
		if err = aqmmm.FragmentResidues(mol); err != nil {
			return nil, aqmmm.ErrDecorate(err, "ReadSystem")
		}
		return mol, nil
	}
	return nil, aqmmm.NewConfigurationError("ReadSystem", "unknown format for %s, use .pdb or .xyz", path)
}

// Backends builds the QM and MM backends for mol.
func (p *Params) Backends(mol *aqmmm.Molecule, logger *zap.Logger) (*qm.XTB, *mm.ForceField, error) {
	x := qm.NewXTB()
	if p.QM.Command != "" {
		x.Command = p.QM.Command
	}
	x.Method = p.QM.Method
	if p.QM.NCPU > 0 {
		x.NCPU = p.QM.NCPU
	}
	x.Dielectric = p.QM.Dielectric
	x.WorkDir = p.QM.WorkDir
	x.Keep = p.QM.Keep
	x.Logger = logger.Named("xtb")
	ff, err := mm.NewForceField(mol)
	if err != nil {
		return nil, nil, aqmmm.ErrDecorate(err, "Backends")
	}
	ff.Kb = p.MM.Kb
	ff.Logger = logger.Named("mm")
	return x, ff, nil
}

// Build validates p and returns an engine for mol, using the QM backend given, or the one
// p describes if qmb is nil. Metrics are registered in reg, if it is not nil.
func Build(p *Params, mol *aqmmm.Molecule, qmb aqmmm.QMBackend, logger *zap.Logger, reg prometheus.Registerer) (*adaptive.Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, aqmmm.ErrDecorate(err, "Build")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	x, ff, err := p.Backends(mol, logger)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "Build")
	}
	if qmb == nil {
		qmb = x
	}
	treatment := qmmm.Treatment(p.Embedding.Treatment)
	var emb qmmm.Embedder
	if p.Embedding.Scheme == "additive" {
		a, err := qmmm.NewAdditive(qmb, ff, treatment, p.System.Charge, p.System.Multi)
		if err != nil {
			return nil, aqmmm.ErrDecorate(err, "Build")
		}
		a.PointCharges = p.Embedding.PointCharges
		emb = a
	} else {
		s, err := qmmm.NewSubtractive(qmb, ff, treatment, p.System.Charge, p.System.Multi)
		if err != nil {
			return nil, aqmmm.ErrDecorate(err, "Build")
		}
		s.PointCharges = p.Embedding.PointCharges
		emb = s
	}
	var part partition.Partitioner
	var in adaptive.Interpolator
	if p.Partition.Scheme == "hot_spot" {
		part, err = partition.NewHotSpot(mol, p.Partition.Rmin, p.Partition.Rmax)
		in = adaptive.HotSpot{}
	} else {
		part, err = partition.NewSAP(mol, p.Partition.Rmin, p.Partition.Rmax)
		in = adaptive.SAP{Modified: p.Partition.Modified, ExactChi: p.Partition.ExactChi}
	}
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "Build")
	}
	E, err := adaptive.NewEngine(part, emb, in, logger.Named("engine"))
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "Build")
	}
	E.Workers = p.Engine.Workers
	E.EnergyOnly = p.Engine.EnergyOnly
	if reg != nil {
		if E.Metrics, err = adaptive.NewMetrics(reg); err != nil {
			return nil, aqmmm.ErrDecorate(err, "Build")
		}
	}
	for _, v := range p.System.Center {
		if v >= mol.Len() {
			return nil, aqmmm.NewConfigurationError("Build", "QM center atom %d out of range for a %d-atom system", v, mol.Len())
		}
	}
	return E, nil
}
