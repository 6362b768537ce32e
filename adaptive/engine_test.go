/*
 * engine_test.go, part of aqmmm.
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

package adaptive

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/partition"
	"github.com/rmera/aqmmm/qmmm"
	v3 "github.com/rmera/aqmmm/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeEmbedder gives each sub-system a smooth energy that depends on its size:
// E = -0.1n + 0.01n Σ|x|², where n is the number of QM atoms.
type fakeEmbedder struct {
	p          aqmmm.Provider
	mu         sync.Mutex
	calls      int
	noGradient bool
}

func (f *fakeEmbedder) energy(sub *qmmm.SubSystem) (float64, *v3.Matrix) {
	n := float64(len(sub.QMAtoms))
	c := f.p.Coords()
	g := v3.Zeros(c.NVecs())
	e := -0.1 * n
	for i := 0; i < c.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			x := c.At(i, j)
			e += 0.01 * n * x * x
			g.Set(i, j, 0.02*n*x)
		}
	}
	return e, g
}

func (f *fakeEmbedder) Energy(ctx context.Context, sub *qmmm.SubSystem) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	e, _ := f.energy(sub)
	sub.SetResult(e, nil)
	return nil
}

func (f *fakeEmbedder) EnergyGradient(ctx context.Context, sub *qmmm.SubSystem) error {
	if f.noGradient {
		f.Energy(ctx, sub)
		return aqmmm.NewNotImplementedError("fakeEmbedder", "no gradients")
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	e, g := f.energy(sub)
	sub.SetResult(e, g)
	return nil
}

type atomSpec struct {
	sym   string
	molid int
	pos   [3]float64
}

func system(Te *testing.T, specs ...atomSpec) *aqmmm.Molecule {
	ats := make([]*aqmmm.Atom, len(specs))
	data := make([]float64, 0, 3*len(specs))
	for i, s := range specs {
		ats[i] = &aqmmm.Atom{Symbol: s.sym, Name: s.sym, MolID: s.molid}
		data = append(data, s.pos[:]...)
	}
	coords, err := v3.NewMatrix(data)
	require.NoError(Te, err)
	mol, err := aqmmm.NewMolecule(aqmmm.NewTopology(ats, 0, 1), coords)
	require.NoError(Te, err)
	return mol
}

// a QM center at the origin, three buffer groups (one of them with two atoms)
// and one MM group, for Rmin=2 and Rmax=6.
func bufferSystem(Te *testing.T) *aqmmm.Molecule {
	return system(Te,
		atomSpec{"C", 1, [3]float64{0, 0, 0}},
		atomSpec{"O", 1, [3]float64{1.2, 0, 0}},
		atomSpec{"C", 2, [3]float64{0, 3.1, 0.2}},
		atomSpec{"C", 3, [3]float64{-0.3, 0.1, 4.2}},
		atomSpec{"O", 3, [3]float64{-0.3, 1.3, 4.4}},
		atomSpec{"N", 4, [3]float64{4.5, -3.1, 0.5}},
		atomSpec{"C", 5, [3]float64{8, 8, 0}},
	)
}

func newEngine(Te *testing.T, mol *aqmmm.Molecule, scheme string, in Interpolator) (*Engine, *fakeEmbedder) {
	var p partition.Partitioner
	var err error
	if scheme == "sap" {
		p, err = partition.NewSAP(mol, 2, 6)
	} else {
		p, err = partition.NewHotSpot(mol, 2, 6)
	}
	require.NoError(Te, err)
	emb := &fakeEmbedder{p: mol}
	E, err := NewEngine(p, emb, in, zaptest.NewLogger(Te))
	require.NoError(Te, err)
	return E, emb
}

func TestSAPGradientFiniteDifference(Te *testing.T) {
	for _, center := range [][]int{{0}, {0, 1}} {
		mol := bufferSystem(Te)
		E, _ := newEngine(Te, mol, "sap", SAP{ExactChi: true})
		run, err := E.Step(context.Background(), "analytic", center)
		require.NoError(Te, err)
		require.Len(Te, run.Zone.Groups, 3)
		require.Len(Te, run.Systems, 4)
		_, grad, err := run.Result()
		require.NoError(Te, err)
		atoms := []int{0, 1, 2, 3, 4, 5}
		num, err := FiniteDifference(context.Background(), E, mol, center, atoms, 1e-5)
		require.NoError(Te, err)
		for _, a := range atoms {
			for j := 0; j < 3; j++ {
				assert.InDelta(Te, num.At(a, j), grad.At(a, j), 1e-6, "center %v atom %d dim %d", center, a, j)
			}
		}
		assert.Equal(Te, []string{"analytic"}, E.Registry.IDs(), "finite difference runs must be deleted")
	}
}

func TestSAPModified(Te *testing.T) {
	mol := bufferSystem(Te)
	E, _ := newEngine(Te, mol, "sap", SAP{})
	full, err := E.Step(context.Background(), "full", []int{0})
	require.NoError(Te, err)
	Em, _ := newEngine(Te, mol, "sap", SAP{Modified: true})
	mod, err := Em.Step(context.Background(), "mod", []int{0})
	require.NoError(Te, err)
	ef, gf, err := full.Result()
	require.NoError(Te, err)
	em, gm, err := mod.Result()
	require.NoError(Te, err)
	assert.InDelta(Te, ef, em, 1e-12, "the modified variant only changes the gradients")
	assert.NotEqual(Te, gf.At(2, 1), gm.At(2, 1))
	//without the switching term the gradient is the weighted sum of the partitions'
	var sum float64
	for _, s := range mod.Systems {
		g, err := s.WeightedGradients()
		require.NoError(Te, err)
		sum += g.At(2, 1)
	}
	assert.InDelta(Te, sum, gm.At(2, 1), 1e-12)
}

func TestEmptyZone(Te *testing.T) {
	for _, scheme := range []string{"sap", "hot_spot"} {
		mol := system(Te,
			atomSpec{"C", 1, [3]float64{0, 0, 0}},
			atomSpec{"C", 2, [3]float64{10, 0, 0}},
		)
		var in Interpolator = SAP{}
		if scheme == "hot_spot" {
			in = HotSpot{}
		}
		E, emb := newEngine(Te, mol, scheme, in)
		run, err := E.Step(context.Background(), scheme, []int{0})
		require.NoError(Te, err)
		require.Len(Te, run.Systems, 1)
		e, g, err := run.Result()
		require.NoError(Te, err)
		qe, err := run.QM().Energy()
		require.NoError(Te, err)
		qg, err := run.QM().Gradients()
		require.NoError(Te, err)
		assert.Equal(Te, qe, e)
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				assert.Equal(Te, qg.At(i, j), g.At(i, j))
			}
		}
		assert.Equal(Te, 1, emb.calls)
	}
}

func TestHotSpot(Te *testing.T) {
	mol := bufferSystem(Te)
	E, _ := newEngine(Te, mol, "hot_spot", HotSpot{})
	E.Workers = 3
	run, err := E.Step(context.Background(), "hs", []int{0})
	require.NoError(Te, err)
	require.Len(Te, run.Systems, 1)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5}, run.QM().QMAtoms)
	e, g, err := run.Result()
	require.NoError(Te, err)
	qe, _ := run.QM().Energy()
	qg, _ := run.QM().Gradients()
	assert.Equal(Te, qe, e)
	for _, b := range run.Zone.Groups {
		assert.Greater(Te, b.S, 0.0)
		assert.Less(Te, b.S, 1.0)
		for _, a := range b.Atoms {
			assert.InDelta(Te, b.S*qg.At(a, 1), g.At(a, 1), 1e-12)
		}
	}
	assert.Equal(Te, qg.At(0, 0), g.At(0, 0), "QM core atoms are not scaled")
	assert.Equal(Te, qg.At(6, 0), g.At(6, 0), "MM atoms are not scaled")

	f, err := run.Forces()
	require.NoError(Te, err)
	assert.Equal(Te, -g.At(2, 1), f.At(2, 1))
}

func TestHotSpotForces(Te *testing.T) {
	mol := bufferSystem(Te)
	E, _ := newEngine(Te, mol, "hot_spot", HotSpot{})
	run, err := E.Step(context.Background(), "hs", []int{0})
	require.NoError(Te, err)
	_, g, err := run.Result()
	require.NoError(Te, err)
	before := g.At(3, 2)
	f, err := run.Forces()
	require.NoError(Te, err)
	require.Equal(Te, g.NVecs(), f.NVecs())
	for i := 0; i < g.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(Te, -g.At(i, j), f.At(i, j), "atom %d dim %d", i, j)
		}
	}
	assert.Equal(Te, before, g.At(3, 2), "Forces must not change the run's gradients")
	assert.NotZero(Te, f.At(3, 2))
}

func TestSAPTiedGroups(Te *testing.T) {
	mol := system(Te,
		atomSpec{"C", 1, [3]float64{0, 0, 0}},
		atomSpec{"C", 2, [3]float64{0, 3, 0}},
		atomSpec{"C", 3, [3]float64{0, -3, 0}},
	)
	E, _ := newEngine(Te, mol, "sap", SAP{})
	var run *Run
	var err error
	require.NotPanics(Te, func() { run, err = E.Step(context.Background(), "tie", []int{0}) })
	assert.Nil(Te, run)
	var derr *aqmmm.DomainError
	assert.True(Te, errors.As(err, &derr), "a tied zone must give a DomainError, got %v", err)
}

func TestWorkers(Te *testing.T) {
	mol := bufferSystem(Te)
	E, _ := newEngine(Te, mol, "sap", SAP{})
	seq, err := E.Step(context.Background(), "seq", []int{0})
	require.NoError(Te, err)
	E.Workers = 4
	par, err := E.Step(context.Background(), "par", []int{0})
	require.NoError(Te, err)
	es, gs, _ := seq.Result()
	ep, gp, _ := par.Result()
	assert.InDelta(Te, es, ep, 1e-12)
	assert.InDelta(Te, gs.At(3, 2), gp.At(3, 2), 1e-12)
}

func TestStateMachine(Te *testing.T) {
	mol := bufferSystem(Te)
	E, _ := newEngine(Te, mol, "sap", SAP{})
	run, err := E.Partition("r", []int{0})
	require.NoError(Te, err)
	assert.Equal(Te, Partitioned, run.State)

	var perr *aqmmm.PreconditionError
	var cerr *aqmmm.ConfigurationError
	_, _, err = run.Result()
	assert.True(Te, errors.As(err, &perr))
	err = E.Interpolate("r")
	assert.True(Te, errors.As(err, &cerr), "interpolating before evaluating must fail, got %v", err)
	err = SAP{}.Combine(run)
	assert.True(Te, errors.As(err, &perr), "reading an unevaluated sub-system must fail, got %v", err)

	require.NoError(Te, E.Evaluate(context.Background(), "r"))
	assert.Equal(Te, Evaluated, run.State)
	require.NoError(Te, E.Interpolate("r"))
	assert.Equal(Te, Interpolated, run.State)
	_, err = run.QM().WeightedEnergy()
	assert.NoError(Te, err)
	err = E.Interpolate("r")
	assert.True(Te, errors.As(err, &cerr))
	err = E.Evaluate(context.Background(), "nope")
	assert.True(Te, errors.As(err, &cerr))
}

func TestEnergyOnly(Te *testing.T) {
	mol := bufferSystem(Te)
	E, emb := newEngine(Te, mol, "sap", SAP{})
	emb.noGradient = true
	_, err := E.Step(context.Background(), "grad", []int{0})
	var nerr *aqmmm.NotImplementedError
	assert.True(Te, errors.As(err, &nerr))

	E.EnergyOnly = true
	run, err := E.Step(context.Background(), "energy", []int{0})
	require.NoError(Te, err)
	e, g, err := run.Result()
	require.NoError(Te, err)
	assert.Nil(Te, g)
	assert.NotZero(Te, e)
	_, err = run.Forces()
	assert.Error(Te, err)
}

func TestEngineConfig(Te *testing.T) {
	mol := bufferSystem(Te)
	p, err := partition.NewSAP(mol, 2, 6)
	require.NoError(Te, err)
	_, err = NewEngine(p, &fakeEmbedder{p: mol}, HotSpot{}, nil)
	var cerr *aqmmm.ConfigurationError
	assert.True(Te, errors.As(err, &cerr))
	E, err := NewEngine(p, &fakeEmbedder{p: mol}, SAP{Modified: true}, nil)
	require.NoError(Te, err)
	assert.NotNil(Te, E.Logger)
}

func TestMetrics(Te *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(Te, err)
	_, err = NewMetrics(reg)
	assert.Error(Te, err, "registering twice must fail")

	mol := bufferSystem(Te)
	E, _ := newEngine(Te, mol, "sap", SAP{})
	E.Metrics = m
	_, err = E.Step(context.Background(), "m", []int{0})
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sap", "ok")))
	assert.Equal(Te, 3.0, testutil.ToFloat64(m.bufferGroups))
	assert.Equal(Te, 4.0, testutil.ToFloat64(m.subsystems))

	var nilm *Metrics
	assert.NotPanics(Te, func() { nilm.subsystemDone(); nilm.setBufferGroups(2) })
}

func TestRegistry(Te *testing.T) {
	R := NewRegistry()
	R.Put(&Run{ID: "b"})
	R.Put(&Run{ID: "a", Scheme: "sap"})
	R.Put(&Run{ID: "a", Scheme: "hot_spot"})
	assert.Equal(Te, []string{"a", "b"}, R.IDs())
	r, ok := R.Get("a")
	require.True(Te, ok)
	assert.Equal(Te, "hot_spot", r.Scheme)
	R.Delete("a")
	_, ok = R.Get("a")
	assert.False(Te, ok)
	assert.Equal(Te, 1, R.Len())
	assert.NotEqual(Te, NewRunID(), NewRunID())
	assert.Equal(Te, "evaluated", Evaluated.String())
}
