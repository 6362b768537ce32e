/*
 * registry.go, part of aqmmm.
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
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/partition"
	"github.com/rmera/aqmmm/qmmm"
	v3 "github.com/rmera/aqmmm/v3"
)

// State is the stage a run has reached.
type State int

const (
	Idle State = iota
	Partitioned
	Evaluated
	Interpolated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Partitioned:
		return "partitioned"
	case Evaluated:
		return "evaluated"
	case Interpolated:
		return "interpolated"
	}
	return "unknown"
}

// NewRunID returns a new random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// Run is one adaptive QM/MM evaluation of a geometry. A run owns its
// sub-systems and buffer groups, so different runs can be processed concurrently.
type Run struct {
	ID         string
	Scheme     string
	Center     []int
	Zone       *partition.Zone
	Systems    map[partition.ID]*qmmm.SubSystem
	State      State
	EnergyOnly bool

	switched  bool
	energy    float64
	gradients *v3.Matrix
}

// QM returns the "qm" sub-system of the run.
func (r *Run) QM() *qmmm.SubSystem { return r.Systems[partition.QM] }

// Partitions returns the numbered sub-systems, sorted by ID.
func (r *Run) Partitions() []*qmmm.SubSystem {
	ret := make([]*qmmm.SubSystem, 0, len(r.Systems))
	for id, s := range r.Systems {
		if id != partition.QM {
			ret = append(ret, s)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

func (r *Run) setResult(energy float64, grad *v3.Matrix) {
	r.energy = energy
	r.gradients = grad
	r.State = Interpolated
}

// Result returns the adaptive QM/MM energy and gradients of the run.
// The gradients are nil for energy-only runs.
func (r *Run) Result() (float64, *v3.Matrix, error) {
	if r.State != Interpolated {
		return 0, nil, aqmmm.NewPreconditionError("Run.Result", "run %s is %s, not interpolated", r.ID, r.State)
	}
	return r.energy, r.gradients, nil
}

// Forces returns the adaptive QM/MM forces, i.e. minus the gradients.
func (r *Run) Forces() (*v3.Matrix, error) {
	_, g, err := r.Result()
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "Run.Forces")
	}
	if g == nil {
		return nil, aqmmm.NewPreconditionError("Run.Forces", "run %s has no gradients", r.ID)
	}
	f := g.Clone()
	f.Scale(-1, f)
	return f, nil
}

// Registry keeps the runs by run ID. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Run)}
}

// Put stores run, replacing any run with the same ID.
func (R *Registry) Put(run *Run) {
	R.mu.Lock()
	defer R.mu.Unlock()
	R.runs[run.ID] = run
}

// Get returns the run with the given ID.
func (R *Registry) Get(id string) (*Run, bool) {
	R.mu.RLock()
	defer R.mu.RUnlock()
	r, ok := R.runs[id]
	return r, ok
}

// Delete removes the run with the given ID, if present.
func (R *Registry) Delete(id string) {
	R.mu.Lock()
	defer R.mu.Unlock()
	delete(R.runs, id)
}

// IDs returns the IDs of all the runs, sorted.
func (R *Registry) IDs() []string {
	R.mu.RLock()
	defer R.mu.RUnlock()
	ret := make([]string, 0, len(R.runs))
	for k := range R.runs {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Len returns the number of runs.
func (R *Registry) Len() int {
	R.mu.RLock()
	defer R.mu.RUnlock()
	return len(R.runs)
}
