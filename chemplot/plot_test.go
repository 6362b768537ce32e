/*
 * plot_test.go, part of aqmmm.
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

package chemplot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func TestSample(Te *testing.T) {
	pts := Sample(adaptive.QuinticSwitch{Rmin: 2, Rmax: 6}, 0, 8, 8)
	require.Len(Te, pts, 9)
	assert.Equal(Te, 1.0, pts[2].Y)
	assert.InDelta(Te, 0.5, pts[4].Y, 1e-12)
	assert.Equal(Te, 0.0, pts[6].Y)
}

func TestSwitchingPlot(Te *testing.T) {
	curves := []Curve{
		{"hot spot", adaptive.HotSpotSwitch{Rmin: 2, Rmax: 6}},
		{"quintic", adaptive.QuinticSwitch{Rmin: 2, Rmax: 6}},
	}
	p, err := SwitchingPlot(curves, 2, 6, "Switching functions")
	require.NoError(Te, err)
	assert.InDelta(Te, 1.2, p.X.Min, 1e-12)
	assert.InDelta(Te, 6.8, p.X.Max, 1e-12)
	assert.Equal(Te, 3*vg.Millimeter, p.Title.Padding)
	assert.Equal(Te, "Switching functions", p.Title.Text)
	groups := []*partition.BufferGroup{{ID: 1, Distance: 3, S: 0.9}, {ID: 2, Distance: 5, S: 0.1}}
	require.NoError(Te, AddGroups(p, "run", 0, groups))
	assert.Error(Te, AddGroups(p, "too many", 4, groups))
	var b bytes.Buffer
	require.NoError(Te, Write(p, 4, 4, "png", &b))
	assert.Equal(Te, []byte("\x89PNG"), b.Bytes()[:4])
	name := filepath.Join(Te.TempDir(), "switching.svg")
	require.NoError(Te, Save(p, 4, 4, name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0))

	_, err = SwitchingPlot(nil, 2, 6, "")
	assert.Error(Te, err)
	_, err = SwitchingPlot(curves, 6, 2, "")
	assert.Error(Te, err)
	assert.Error(Te, Write(p, 4, 4, "bogus", &b))
}

func TestFormat(Te *testing.T) {
	f, err := Format("a/b/plot.PNG")
	require.NoError(Te, err)
	assert.Equal(Te, "png", f)
	_, err = Format("plot.txt")
	assert.Error(Te, err)
}
