/*
 * config_test.go, part of aqmmm.
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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/adaptive"
	v3 "github.com/rmera/aqmmm/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const threeWaters = `9
0 1
O 0.00 0.00 0.00
H 0.96 0.00 0.00
H -0.24 0.93 0.00
O 0.00 0.00 3.20
H 0.96 0.00 3.20
H -0.24 0.93 3.20
O 0.00 -4.80 0.50
H 0.96 -4.80 0.50
H -0.24 -3.87 0.50
`

func TestDefault(Te *testing.T) {
	p := Default()
	require.NoError(Te, p.Validate())
	assert.Equal(Te, "sap", p.Partition.Scheme)
	assert.Equal(Te, DefaultRmin, p.Partition.Rmin)
	assert.Equal(Te, "link_atom", p.Embedding.Treatment)
}

func TestLoadSave(Te *testing.T) {
	dir := Te.TempDir()
	p := Default()
	p.System.Center = []int{3, 4}
	p.Partition.Scheme = "hot_spot"
	p.QM.NCPU = 4
	name := filepath.Join(dir, "params.yaml")
	require.NoError(Te, Save(name, p))
	got, err := Load(name)
	require.NoError(Te, err)
	assert.Equal(Te, p, got)

	//missing parameters keep the defaults
	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(Te, os.WriteFile(partial, []byte("partition:\n  rmax: 7.5\n"), 0o644))
	got, err = Load(partial)
	require.NoError(Te, err)
	assert.Equal(Te, 7.5, got.Partition.Rmax)
	assert.Equal(Te, DefaultRmin, got.Partition.Rmin)
	assert.Equal(Te, "xtb", got.QM.Program)

	_, err = Load(filepath.Join(dir, "nope.yaml"))
	var cerr *aqmmm.ConfigurationError
	assert.ErrorAs(Te, err, &cerr)
}

func TestValidate(Te *testing.T) {
	cases := map[string]func(p *Params){
		"scheme":     func(p *Params) { p.Partition.Scheme = "onion" },
		"radii":      func(p *Params) { p.Partition.Rmax = p.Partition.Rmin },
		"negative":   func(p *Params) { p.Partition.Rmin = -1 },
		"modified":   func(p *Params) { p.Partition.Scheme, p.Partition.Modified = "hot_spot", true },
		"embedding":  func(p *Params) { p.Embedding.Scheme = "polarized" },
		"treatment":  func(p *Params) { p.Embedding.Treatment = "capping" },
		"additive":   func(p *Params) { p.Embedding.Scheme = "additive" },
		"program":    func(p *Params) { p.QM.Program = "orca" },
		"method":     func(p *Params) { p.QM.Method = "dftb" },
		"workers":    func(p *Params) { p.Engine.Workers = -2 },
		"kb":         func(p *Params) { p.MM.Kb = 0 },
		"center":     func(p *Params) { p.System.Center = []int{-1} },
		"log level":  func(p *Params) { p.Log.Level = "chatty" },
		"log format": func(p *Params) { p.Log.Format = "xml" },
	}
	for name, f := range cases {
		p := Default()
		f(p)
		err := p.Validate()
		var cerr *aqmmm.ConfigurationError
		assert.ErrorAs(Te, err, &cerr, name)
	}
	p := Default()
	p.Embedding.Scheme = "additive"
	p.Engine.EnergyOnly = true
	assert.NoError(Te, p.Validate())
}

func TestViper(Te *testing.T) {
	Te.Setenv("AQMMM_PARTITION_RMAX", "6.5")
	Te.Setenv("AQMMM_QM_METHOD", "gfn1")
	v, err := NewViper()
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), "params.yaml")
	require.NoError(Te, os.WriteFile(name, []byte("system:\n  center: [0, 1]\nengine:\n  workers: 3\n"), 0o644))
	p, err := FromViper(v, name)
	require.NoError(Te, err)
	assert.Equal(Te, 6.5, p.Partition.Rmax)
	assert.Equal(Te, "gfn1", p.QM.Method)
	assert.Equal(Te, []int{0, 1}, p.System.Center)
	assert.Equal(Te, 3, p.Engine.Workers)
	assert.Equal(Te, DefaultRmin, p.Partition.Rmin)

	Te.Setenv("AQMMM_PARTITION_SCHEME", "onion")
	v, err = NewViper()
	require.NoError(Te, err)
	_, err = FromViper(v, "")
	assert.Error(Te, err)
}

func TestNewLogger(Te *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(LogParams{Level: "debug", Format: format})
		require.NoError(Te, err)
		assert.True(Te, l.Core().Enabled(-1))
	}
	_, err := NewLogger(LogParams{Level: "chatty"})
	assert.Error(Te, err)
}

type zeroQM struct{}

func (z zeroQM) EnergyGradient(ctx context.Context, geom []aqmmm.QMAtom, charge, multi int, charges []aqmmm.PointCharge, minimize bool) (*aqmmm.EnergyGradient, error) {
	return &aqmmm.EnergyGradient{Gradients: v3.Zeros(len(geom))}, nil
}

func writeWaters(Te *testing.T) string {
	name := filepath.Join(Te.TempDir(), "waters.xyz")
	require.NoError(Te, os.WriteFile(name, []byte(threeWaters), 0o644))
	return name
}

func TestReadSystem(Te *testing.T) {
	mol, err := ReadSystem(writeWaters(Te))
	require.NoError(Te, err)
	assert.Equal(Te, 9, mol.Len())
	assert.Len(Te, mol.Residues(), 3)
	_, err = ReadSystem("waters.mol2")
	assert.Error(Te, err)
}

func TestBuild(Te *testing.T) {
	mol, err := ReadSystem(writeWaters(Te))
	require.NoError(Te, err)
	for _, scheme := range []string{"sap", "hot_spot"} {
		p := Default()
		p.Partition.Scheme = scheme
		p.Partition.Rmin, p.Partition.Rmax = 2, 6
		p.System.Center = []int{0}
		p.Engine.Workers = 2
		reg := prometheus.NewRegistry()
		E, err := Build(p, mol, zeroQM{}, zaptest.NewLogger(Te), reg)
		require.NoError(Te, err)
		assert.Equal(Te, 2, E.Workers)
		assert.NotNil(Te, E.Metrics)
		run, err := E.Step(context.Background(), adaptive.NewRunID(), p.System.Center)
		require.NoError(Te, err)
		_, g, err := run.Result()
		require.NoError(Te, err)
		assert.Equal(Te, 9, g.NVecs())
		assert.Len(Te, run.Zone.Groups, 2)
	}
	p := Default()
	p.System.Center = []int{9}
	_, err = Build(p, mol, zeroQM{}, nil, nil)
	assert.Error(Te, err)
	p = Default()
	p.Embedding.Scheme, p.Engine.EnergyOnly = "additive", true
	E, err := Build(p, mol, nil, nil, nil)
	require.NoError(Te, err)
	assert.True(Te, E.EnergyOnly)
	assert.Nil(Te, E.Metrics)
}
