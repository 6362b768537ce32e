/*
 * aqmmm_test.go, part of aqmmm.
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
	"errors"
	"strings"
	"testing"

	v3 "github.com/rmera/aqmmm/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoWaters = `REMARK   two waters
ATOM      1  O   HOH A   1       0.000   0.000   0.000  1.00  0.00           O
ATOM      2  H1  HOH A   1       0.960   0.000   0.000  1.00  0.00           H
ATOM      3  H2  HOH A   1      -0.240   0.930   0.000  1.00  0.00           H
ATOM      4  O   HOH A   2       5.000   0.000   0.000  1.00  0.00           O
ATOM      5  H1  HOH A   2       5.960   0.000   0.000  1.00  0.00
ATOM      6  H2  HOH A   2       4.760   0.930   0.000  1.00  0.00
END
`

func TestPDBRead(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoWaters))
	require.NoError(Te, err)
	assert.Equal(Te, 6, mol.Len())
	assert.Equal(Te, "H", mol.Atom(4).Symbol, "symbol should be guessed from the name")
	assert.Equal(Te, 4, mol.Atom(4).Index)
	assert.Equal(Te, [][]int{{0, 1, 2}, {3, 4, 5}}, mol.Residues())
	assert.InDelta(Te, 4.76, mol.Coords().At(5, 0), 1e-9)
}

func TestCenterOfMass(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoWaters))
	require.NoError(Te, err)
	com, weights, ratios, err := CenterOfMass([]int{0, 1, 2}, mol.Coords(), mol)
	require.NoError(Te, err)
	assert.InDelta(Te, (0.96-0.24)/18.0, com.At(0, 0), 1e-9)
	assert.InDelta(Te, 0.93/18.0, com.At(0, 1), 1e-9)
	assert.InDelta(Te, 16.0, weights[0], 1e-12)
	var sum float64
	for _, v := range ratios {
		sum += v
	}
	assert.InDelta(Te, 1.0, sum, 1e-9)

	_, _, ratios, err = CenterOfMass([]int{3}, mol.Coords(), mol)
	require.NoError(Te, err)
	assert.Equal(Te, map[int]float64{3: 1.0}, ratios)

	_, _, _, err = CenterOfMass(nil, mol.Coords(), mol)
	var derr *DomainError
	assert.True(Te, errors.As(err, &derr), "empty atom set should give a DomainError, got %v", err)
}

func TestUnknownElement(Te *testing.T) {
	_, err := Mass("Xx")
	var uerr *UnknownElementError
	require.True(Te, errors.As(err, &uerr))
	assert.Equal(Te, "Xx", uerr.Symbol)
	assert.Equal(Te, []string{"Mass", "Test"}, uerr.Decorate("Test"))

	top := NewTopology([]*Atom{{Symbol: "Xx"}}, 0, 1)
	_, _, _, err = CenterOfMass([]int{0}, v3.Zeros(1), top)
	assert.True(Te, errors.As(err, &uerr))
	z, err := AtomicNumber("Fe")
	assert.NoError(Te, err)
	assert.Equal(Te, 26, z)
}

func TestWithDummy(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoWaters))
	require.NoError(Te, err)
	p, idx := mol.WithDummy("H", v3.Vec(1, 2, 3))
	assert.Equal(Te, 6, idx)
	assert.Equal(Te, 7, p.Len())
	assert.Equal(Te, 6, mol.Len(), "the original must not change")
	assert.InDelta(Te, 2.0, p.Coords().At(6, 1), 1e-12)
	res := p.Residues()
	assert.Equal(Te, []int{6}, res[len(res)-1])
	p.Coords().Set(0, 0, 99)
	assert.Equal(Te, 0.0, mol.Coords().At(0, 0))
}

func TestXYZAndFragments(Te *testing.T) {
	xyz := "6\n0 1\nO 0 0 0\nH 0.96 0 0\nH -0.24 0.93 0\nO 5 0 0\nH 5.96 0 0\nH 4.76 0.93 0\n"
	mol, err := XYZRead(strings.NewReader(xyz))
	require.NoError(Te, err)
	assert.Len(Te, mol.Residues(), 1)
	require.NoError(Te, FragmentResidues(mol))
	assert.Equal(Te, [][]int{{0, 1, 2}, {3, 4, 5}}, mol.Residues())
	bonds, err := Bonds(mol.Coords(), mol)
	require.NoError(Te, err)
	assert.Len(Te, bonds, 4)
	assert.Equal(Te, 1, bonds[0].Cross(0))

	var sb strings.Builder
	require.NoError(Te, XYZWrite(&sb, []string{"O", "H", "H"}, firstThree(mol.Coords()), "w"))
	assert.True(Te, strings.HasPrefix(sb.String(), "3\nw\n"))
}

func TestNm(Te *testing.T) {
	top := NewTopology([]*Atom{{Symbol: "C"}}, 0, 0)
	mol, err := NewMoleculeNm(top, v3.Vec(0.1, 0, 0))
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, mol.Coords().At(0, 0), 1e-12)
	assert.Equal(Te, 1, mol.Multi())
}

func firstThree(c *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(3)
	ret.SomeVecs(c, []int{0, 1, 2})
	return ret
}
