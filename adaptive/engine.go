/*
 * engine.go, part of aqmmm.
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
	"strings"
	"time"

	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/partition"
	"github.com/rmera/aqmmm/qmmm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine takes runs through partitioning, evaluation and interpolation.
type Engine struct {
	Partitioner  partition.Partitioner
	Embedder     qmmm.Embedder
	Interpolator Interpolator
	Registry     *Registry

	//Workers is the maximum number of sub-systems evaluated at the same time.
	//Values < 2 mean sequential evaluation.
	Workers int
	//EnergyOnly skips the gradients. Needed for embedders that can't compute them.
	EnergyOnly bool

	Logger  *zap.Logger
	Metrics *Metrics
}

// NewEngine returns an engine with a new registry. The interpolator must
// match the partitioner: Hot-Spot with Hot-Spot, SAP with SAP.
func NewEngine(p partition.Partitioner, emb qmmm.Embedder, in Interpolator, logger *zap.Logger) (*Engine, error) {
	if p == nil || emb == nil || in == nil {
		return nil, aqmmm.NewConfigurationError("NewEngine", "partitioner, embedder and interpolator are all required")
	}
	if !strings.HasPrefix(in.Name(), p.Name()) {
		return nil, aqmmm.NewConfigurationError("NewEngine", "interpolator %s can't be used with partitioner %s", in.Name(), p.Name())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Partitioner: p, Embedder: emb, Interpolator: in, Registry: NewRegistry(), Logger: logger, Workers: 1}, nil
}

func (E *Engine) logger() *zap.Logger {
	if E.Logger == nil {
		return zap.NewNop()
	}
	return E.Logger
}

func (E *Engine) run(runID string) (*Run, error) {
	r, ok := E.Registry.Get(runID)
	if !ok {
		return nil, aqmmm.NewConfigurationError("Engine", "no run with ID %s", runID)
	}
	return r, nil
}

// Partition finds the buffer zone around qmCenter and creates the sub-systems of
// a new run with ID runID, replacing any previous run with that ID.
func (E *Engine) Partition(runID string, qmCenter []int) (*Run, error) {
	defer E.Metrics.observeStage("partition", time.Now())
	z, err := E.Partitioner.DefineBufferZone(qmCenter)
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "Engine.Partition")
	}
	run := &Run{
		ID:         runID,
		Scheme:     E.Interpolator.Name(),
		Center:     append([]int(nil), qmCenter...),
		Zone:       z,
		Systems:    make(map[partition.ID]*qmmm.SubSystem),
		State:      Partitioned,
		EnergyOnly: E.EnergyOnly,
	}
	for _, def := range E.Partitioner.Partitions(z) {
		run.Systems[def.ID] = qmmm.NewSubSystem(runID, def, z.Groups)
	}
	E.Registry.Put(run)
	E.Metrics.setBufferGroups(len(z.Groups))
	E.logger().Debug("partitioned",
		zap.String("run", runID),
		zap.String("scheme", run.Scheme),
		zap.Int("qm_atoms", len(z.QMAtoms)),
		zap.Int("buffer_groups", len(z.Groups)),
		zap.Int("subsystems", len(run.Systems)))
	return run, nil
}

// Evaluate computes the QM/MM energy, and gradients unless EnergyOnly is set,
// of every sub-system of the run.
func (E *Engine) Evaluate(ctx context.Context, runID string) error {
	defer E.Metrics.observeStage("evaluate", time.Now())
	run, err := E.run(runID)
	if err != nil {
		return aqmmm.ErrDecorate(err, "Engine.Evaluate")
	}
	if run.State != Partitioned && run.State != Evaluated {
		return aqmmm.NewConfigurationError("Engine.Evaluate", "run %s is %s", runID, run.State)
	}
	eg, ctx := errgroup.WithContext(ctx)
	if E.Workers > 1 {
		eg.SetLimit(E.Workers)
	} else {
		eg.SetLimit(1)
	}
	for _, sub := range run.Systems {
		sub := sub
		eg.Go(func() error {
			start := time.Now()
			var err error
			if run.EnergyOnly {
				err = E.Embedder.Energy(ctx, sub)
			} else {
				err = E.Embedder.EnergyGradient(ctx, sub)
			}
			if err != nil {
				return err
			}
			E.Metrics.subsystemDone()
			E.logger().Debug("evaluated",
				zap.String("run", runID),
				zap.Stringer("subsystem", sub.ID),
				zap.Int("qm_atoms", len(sub.QMAtoms)),
				zap.Duration("took", time.Since(start)))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return aqmmm.ErrDecorate(err, "Engine.Evaluate")
	}
	run.State = Evaluated
	return nil
}

// Interpolate combines the evaluated sub-systems of the run into the
// adaptive energy and gradients.
func (E *Engine) Interpolate(runID string) error {
	defer E.Metrics.observeStage("interpolate", time.Now())
	run, err := E.run(runID)
	if err != nil {
		return aqmmm.ErrDecorate(err, "Engine.Interpolate")
	}
	if run.State != Evaluated {
		return aqmmm.NewConfigurationError("Engine.Interpolate", "run %s is %s, not evaluated", runID, run.State)
	}
	if !run.switched {
		if err := E.Interpolator.Switch(run.Zone); err != nil {
			return aqmmm.ErrDecorate(err, "Engine.Interpolate")
		}
		run.switched = true
	}
	if err := E.Interpolator.Combine(run); err != nil {
		return aqmmm.ErrDecorate(err, "Engine.Interpolate")
	}
	E.logger().Debug("interpolated", zap.String("run", runID), zap.Float64("energy", run.energy))
	return nil
}

// Step partitions, evaluates and interpolates a new run with ID runID around qmCenter.
func (E *Engine) Step(ctx context.Context, runID string, qmCenter []int) (run *Run, err error) {
	defer func() { E.Metrics.runDone(E.Interpolator.Name(), err) }()
	if run, err = E.Partition(runID, qmCenter); err != nil {
		return nil, err
	}
	if err = E.Evaluate(ctx, runID); err != nil {
		return nil, err
	}
	if err = E.Interpolate(runID); err != nil {
		return nil, err
	}
	E.logger().Info("run finished",
		zap.String("run", runID),
		zap.String("scheme", run.Scheme),
		zap.Int("buffer_groups", len(run.Zone.Groups)),
		zap.Float64("energy", run.energy))
	return run, nil
}
