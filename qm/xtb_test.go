/*
 * xtb_test.go, part of aqmmm.
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

package qm

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/aqmmm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterGradient = `$grad
  cycle =      1    SCF energy =    -5.0000000000   |dE/xyz| =  0.010000
    0.00000000000000      0.00000000000000     -0.74000000000000      o
    0.00000000000000      1.43000000000000      0.37000000000000      h
    0.00000000000000     -1.43000000000000      0.37000000000000      h
   0.1000000000000D-01   0.0000000000000D+00  -0.2000000000000D-01
  -0.5000000000000D-02   0.0000000000000D+00   0.1000000000000D-01
  -0.5000000000000D-02   0.0000000000000D+00   0.1000000000000D-01
  cycle =      2    SCF energy =    -5.0705435147   |dE/xyz| =  0.000123
    0.00000000000000      0.00000000000000     -0.74000000000000      o
    0.00000000000000      1.43000000000000      0.37000000000000      h
    0.00000000000000     -1.43000000000000      0.37000000000000      h
   0.1000000000000D-02   0.0000000000000D+00  -0.2000000000000D-02
  -0.5000000000000D-03   0.0000000000000D+00   0.1000000000000D-02
  -0.5000000000000D-03   0.0000000000000D+00   0.1000000000000D-02
$end
`

func water() []aqmmm.QMAtom {
	return []aqmmm.QMAtom{
		{Symbol: "O", Pos: [3]float64{0, 0, -0.39}},
		{Symbol: "H", Pos: [3]float64{0, 0.76, 0.20}},
		{Symbol: "H", Pos: [3]float64{0, -0.76, 0.20}},
	}
}

func TestParseGradient(Te *testing.T) {
	e, g, err := ParseGradient(strings.NewReader(waterGradient), 3)
	require.NoError(Te, err)
	assert.InDelta(Te, -5.0705435147, e, 1e-10)
	require.Equal(Te, 3, g.NVecs())
	assert.InDelta(Te, 1e-3*aqmmm.A2Bohr, g.At(0, 0), 1e-12)
	assert.InDelta(Te, -2e-3*aqmmm.A2Bohr, g.At(0, 2), 1e-12)
	assert.InDelta(Te, 1e-3*aqmmm.A2Bohr, g.At(2, 2), 1e-12)
}

func TestParseGradientTruncated(Te *testing.T) {
	lines := strings.Split(waterGradient, "\n")
	_, _, err := ParseGradient(strings.NewReader(strings.Join(lines[:6], "\n")), 3)
	require.Error(Te, err)
	var qerr *Error
	require.ErrorAs(Te, err, &qerr)
	assert.True(Te, qerr.Critical())
	_, _, err = ParseGradient(strings.NewReader("$grad\n$end\n"), 3)
	assert.Error(Te, err)
}

func TestElectrons(Te *testing.T) {
	n, open, err := Electrons(water(), 0)
	require.NoError(Te, err)
	assert.Equal(Te, 10, n)
	assert.False(Te, open)
	n, open, err = Electrons(water(), 1)
	require.NoError(Te, err)
	assert.Equal(Te, 9, n)
	assert.True(Te, open)
	m, err := DefaultMulti(water(), -1)
	require.NoError(Te, err)
	assert.Equal(Te, 2, m)
	m, err = DefaultMulti(water(), 0)
	require.NoError(Te, err)
	assert.Equal(Te, 1, m)
	_, _, err = Electrons(water(), 11)
	assert.Error(Te, err)
	_, _, err = Electrons([]aqmmm.QMAtom{{Symbol: "Xq"}}, 0)
	var uerr *aqmmm.UnknownElementError
	assert.ErrorAs(Te, err, &uerr)
}

func TestWritePointCharges(Te *testing.T) {
	var b bytes.Buffer
	err := WritePointCharges(&b, []aqmmm.PointCharge{{Charge: -0.8, Pos: [3]float64{1, 0, 0}}, {Charge: 0.4, Pos: [3]float64{0, 0, -2}}})
	require.NoError(Te, err)
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(Te, lines, 3)
	assert.Equal(Te, "2", lines[0])
	f := strings.Fields(lines[1])
	assert.Equal(Te, "-0.800000", f[0])
	assert.Equal(Te, "1.88972599", f[1])
	f = strings.Fields(lines[2])
	assert.Equal(Te, "-3.77945198", f[3])
}

func TestArgs(Te *testing.T) {
	x := NewXTB()
	x.NCPU = 4
	x.Dielectric = 80
	args := x.args(-1, 2, true, false)
	assert.Equal(Te, []string{"geom.xyz", "--grad", "--chrg", "-1", "--uhf", "1", "--gfn", "2", "-P", "4", "--alpb", "h2o", "--input", "xcontrol"}, args)
	x.Method = "gfn0"
	x.NCPU = 1
	args = x.args(0, 1, false, true)
	assert.Equal(Te, []string{"geom.xyz", "--grad", "--chrg", "0", "--uhf", "0", "--gfn", "0", "--opt", "normal"}, args)
}

func TestSearchBackwards(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "out")
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("some output line that is not interesting\n")
		if i == 10 {
			b.WriteString("first match here\n")
		}
		if i == 1500 {
			b.WriteString("second match here\n")
		}
	}
	require.NoError(Te, os.WriteFile(name, []byte(b.String()), 0o644))
	assert.Equal(Te, "second match here", searchBackwards("match", name))
	assert.Equal(Te, "", searchBackwards("absent", name))
	assert.Equal(Te, "", searchBackwards("match", filepath.Join(dir, "nope")))
}

func TestXTBEnergyGradient(Te *testing.T) {
	if _, err := exec.LookPath("xtb"); err != nil {
		Te.Skip("xtb not available")
	}
	x := NewXTB()
	x.NCPU = 1
	eg, err := x.EnergyGradient(context.Background(), water(), 0, 0, []aqmmm.PointCharge{{Charge: -0.5, Pos: [3]float64{0, 0, 3}}}, false)
	require.NoError(Te, err)
	assert.Less(Te, eg.Energy, -4.0)
	assert.Equal(Te, 3, eg.Gradients.NVecs())
}
