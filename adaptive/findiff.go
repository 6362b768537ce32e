/*
 * findiff.go, part of aqmmm.
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

	"github.com/rmera/aqmmm"
	v3 "github.com/rmera/aqmmm/v3"
)

// FiniteDifference returns the central finite-difference gradient of the adaptive
// energy with respect to the given atoms of p, with step h (A). Each displaced
// geometry is a separate run, deleted afterwards. p must be the provider used by
// the engine's partitioner and backends; its coordinates are restored on return.
// Rows of atoms not in the list are zero.
func FiniteDifference(ctx context.Context, E *Engine, p aqmmm.Provider, qmCenter, atoms []int, h float64) (*v3.Matrix, error) {
	if h <= 0 {
		return nil, aqmmm.NewConfigurationError("FiniteDifference", "step must be positive, got %g", h)
	}
	coords := p.Coords()
	grad := v3.Zeros(coords.NVecs())
	energy := func(a, dim int, disp float64) (float64, error) {
		orig := coords.At(a, dim)
		coords.Set(a, dim, orig+disp)
		defer coords.Set(a, dim, orig)
		id := NewRunID()
		defer E.Registry.Delete(id)
		run, err := E.Step(ctx, id, qmCenter)
		if err != nil {
			return 0, err
		}
		e, _, err := run.Result()
		return e, err
	}
	for _, a := range atoms {
		for dim := 0; dim < 3; dim++ {
			ep, err := energy(a, dim, h)
			if err != nil {
				return nil, aqmmm.ErrDecorate(err, "FiniteDifference")
			}
			em, err := energy(a, dim, -h)
			if err != nil {
				return nil, aqmmm.ErrDecorate(err, "FiniteDifference")
			}
			grad.Set(a, dim, (ep-em)/(2*h))
		}
	}
	return grad, nil
}
