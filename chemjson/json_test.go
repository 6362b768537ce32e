/*
 * json_test.go, part of aqmmm.
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

package chemjson

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/mm"
	"github.com/rmera/aqmmm/partition"
	"github.com/rmera/aqmmm/qmmm"
	v3 "github.com/rmera/aqmmm/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type zeroQM struct{}

func (z zeroQM) EnergyGradient(ctx context.Context, geom []aqmmm.QMAtom, charge, multi int, charges []aqmmm.PointCharge, minimize bool) (*aqmmm.EnergyGradient, error) {
	return &aqmmm.EnergyGradient{Gradients: v3.Zeros(len(geom))}, nil
}

// three waters, the second and third in the buffer zone of the first
// for Rmin=2 and Rmax=6.
func waters(Te *testing.T) *aqmmm.Molecule {
	data := []float64{
		0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0,
		0, 0, 3.2, 0.96, 0, 3.2, -0.24, 0.93, 3.2,
		0, -4.8, 0.5, 0.96, -4.8, 0.5, -0.24, -3.87, 0.5,
	}
	ats := make([]*aqmmm.Atom, 9)
	for i := range ats {
		sym, charge := "H", 0.41
		if i%3 == 0 {
			sym, charge = "O", -0.82
		}
		ats[i] = &aqmmm.Atom{Name: sym, Symbol: sym, MolName: "HOH", MolID: i/3 + 1, Chain: "A", Charge: charge}
	}
	coords, err := v3.NewMatrix(data)
	require.NoError(Te, err)
	mol, err := aqmmm.NewMolecule(aqmmm.NewTopology(ats, 0, 1), coords)
	require.NoError(Te, err)
	return mol
}

func interpolatedRun(Te *testing.T) *adaptive.Run {
	mol := waters(Te)
	ff, err := mm.NewForceField(mol)
	require.NoError(Te, err)
	emb, err := qmmm.NewSubtractive(zeroQM{}, ff, qmmm.LinkAtom, 0, 0)
	require.NoError(Te, err)
	p, err := partition.NewSAP(mol, 2, 6)
	require.NoError(Te, err)
	E, err := adaptive.NewEngine(p, emb, adaptive.SAP{}, zaptest.NewLogger(Te))
	require.NoError(Te, err)
	run, err := E.Step(context.Background(), adaptive.NewRunID(), []int{0})
	require.NoError(Te, err)
	return run
}

func TestSnapshot(Te *testing.T) {
	run := interpolatedRun(Te)
	s, err := NewSnapshot(run)
	require.NoError(Te, err)
	assert.Equal(Te, "sap", s.Scheme)
	assert.Equal(Te, "interpolated", s.State)
	assert.Equal(Te, []int{0, 1, 2}, s.QMAtoms)
	require.Len(Te, s.Groups, 2)
	assert.Equal(Te, 1, s.Groups[0].ID)
	assert.Equal(Te, 2, s.Groups[1].ID)
	require.Len(Te, s.Systems, 3)
	assert.Equal(Te, "qm", s.Systems[0].ID)
	assert.Equal(Te, []int{1}, s.Systems[1].Groups)
	require.NotNil(Te, s.Energy)
	e, g, err := run.Result()
	require.NoError(Te, err)
	assert.Equal(Te, e, *s.Energy)
	assert.Equal(Te, rows(g), s.Gradients)
	assert.Equal(Te, g.NVecs(), s.GradientMatrix().NVecs())

	_, err = NewSnapshot(nil)
	assert.Error(Te, err)
	empty, err := NewSnapshot(&adaptive.Run{ID: "x", State: adaptive.Idle})
	require.NoError(Te, err)
	assert.Nil(Te, empty.Energy)
	assert.Nil(Te, empty.GradientMatrix())
}

func TestWriteRead(Te *testing.T) {
	run := interpolatedRun(Te)
	want, err := NewSnapshot(run)
	require.NoError(Te, err)
	for _, compress := range []bool{false, true} {
		var b bytes.Buffer
		w, err := NewWriter(&b, compress)
		require.NoError(Te, err)
		require.NoError(Te, w.WriteRun(run))
		require.NoError(Te, w.WriteRun(run))
		require.NoError(Te, w.Close())
		got, err := ReadSnapshots(&b)
		require.NoError(Te, err)
		require.Len(Te, got, 2)
		if diff := cmp.Diff(want, got[1]); diff != "" {
			Te.Errorf("snapshot mismatch, compressed: %v (-want +got):\n%s", compress, diff)
		}
	}
	_, err = ReadSnapshots(bytes.NewBufferString("{\"ID\": 3}\n"))
	var jerr *Error
	assert.ErrorAs(Te, err, &jerr)
}

func TestRunFile(Te *testing.T) {
	run := interpolatedRun(Te)
	dir := Te.TempDir()
	for _, name := range []string{"run.json", "run.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(Te, WriteRunFile(path, run))
		snaps, err := ReadRunFile(path)
		require.NoError(Te, err)
		require.Len(Te, snaps, 1)
		assert.Equal(Te, run.ID, snaps[0].ID)
	}
	_, err := ReadRunFile(filepath.Join(dir, "nope.json"))
	assert.Error(Te, err)
}
