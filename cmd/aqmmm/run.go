/*
 * run.go, part of aqmmm.
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

package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/aqmmm"
	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/chemjson"
	"github.com/rmera/aqmmm/config"
	v3 "github.com/rmera/aqmmm/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runCmd() *cobra.Command {
	var check []int
	var step float64
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "compute the adaptive QM/MM energy and gradients of a system",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("system.input", args[0])
			}
			p, err := params()
			if err != nil {
				return err
			}
			log := logger(p)
			defer log.Sync()
			return calculate(cmd, p, log, check, step)
		},
	}
	f := cmd.Flags()
	f.IntSlice("center", nil, "indexes (0-based) of the QM center atoms")
	f.Int("charge", 0, "charge of the QM region")
	f.Int("multi", 0, "multiplicity of the QM region (0: lowest possible)")
	f.String("scheme", "sap", "adaptive scheme (hot_spot or sap)")
	f.Float64("rmin", config.DefaultRmin, "inner radius of the buffer zone (A)")
	f.Float64("rmax", config.DefaultRmax, "outer radius of the buffer zone (A)")
	f.Bool("modified", false, "use modified SAP")
	f.String("embedding", "subtractive", "embedding scheme (subtractive or additive)")
	f.String("treatment", "link_atom", "boundary treatment (link_atom, RC or RCD)")
	f.Bool("point-charges", false, "include the MM charges in the QM calculations")
	f.String("method", config.DefaultMethod, "xtb method (gfn0, gfn1, gfn2)")
	f.Int("ncpu", 0, "CPUs for each xtb calculation (0: half of the machine)")
	f.Int("workers", config.DefaultWorkers, "sub-systems evaluated at the same time")
	f.Bool("energy-only", false, "skip the gradients")
	f.String("snapshot", "", "write a snapshot of the run to this file (.zst to compress)")
	f.String("gradient", "", "write the gradients to this file")
	f.String("metrics", "", "write Prometheus metrics to this file")
	f.IntSliceVar(&check, "check", nil, "compare the gradients of these atoms with finite differences")
	f.Float64Var(&step, "step", 1e-3, "finite difference step (A)")
	for flag, key := range map[string]string{
		"center":        "system.center",
		"charge":        "system.charge",
		"multi":         "system.multi",
		"scheme":        "partition.scheme",
		"rmin":          "partition.rmin",
		"rmax":          "partition.rmax",
		"modified":      "partition.modified",
		"embedding":     "embedding.scheme",
		"treatment":     "embedding.treatment",
		"point-charges": "embedding.point_charges",
		"method":        "qm.method",
		"ncpu":          "qm.ncpu",
		"workers":       "engine.workers",
		"energy-only":   "engine.energy_only",
		"snapshot":      "output.snapshot",
		"gradient":      "output.gradient",
		"metrics":       "output.metrics",
	} {
		bind(f.Lookup(flag), key)
	}
	return cmd
}

func calculate(cmd *cobra.Command, p *config.Params, log *zap.Logger, check []int, step float64) error {
	if p.System.Input == "" {
		return aqmmm.NewConfigurationError("run", "no input file given")
	}
	if len(p.System.Center) == 0 {
		return aqmmm.NewConfigurationError("run", "no QM center given")
	}
	mol, err := config.ReadSystem(p.System.Input)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	E, err := config.Build(p, mol, nil, log, reg)
	if err != nil {
		return err
	}
	log.Info("starting", zap.String("input", p.System.Input), zap.Int("atoms", mol.Len()), zap.Ints("center", p.System.Center))
	run, err := E.Step(cmd.Context(), adaptive.NewRunID(), p.System.Center)
	if err != nil {
		return err
	}
	energy, grad, err := run.Result()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s (%s): %d QM atoms, %d buffer groups, %d sub-systems\n", run.ID, run.Scheme, len(run.Zone.QMAtoms), len(run.Zone.Groups), len(run.Systems))
	fmt.Fprintf(out, "energy: %.10f Hartree (%.4f kcal/mol)\n", energy, energy*aqmmm.H2Kcal)
	if grad != nil {
		fmt.Fprintf(out, "gradient norm: %.6e Hartree/A\n", grad.Norm())
	}
	if len(check) > 0 && grad != nil {
		num, err := adaptive.FiniteDifference(cmd.Context(), E, mol, p.System.Center, check, step)
		if err != nil {
			return err
		}
		for _, a := range check {
			fmt.Fprintf(out, "atom %4d analytic %12.6e %12.6e %12.6e numeric %12.6e %12.6e %12.6e\n", a,
				grad.At(a, 0), grad.At(a, 1), grad.At(a, 2), num.At(a, 0), num.At(a, 1), num.At(a, 2))
		}
	}
	if p.Output.Snapshot != "" {
		if err := chemjson.WriteRunFile(p.Output.Snapshot, run); err != nil {
			return err
		}
	}
	if p.Output.Gradient != "" && grad != nil {
		if err := writeGradient(p.Output.Gradient, mol, grad, energy); err != nil {
			return err
		}
	}
	if p.Output.Metrics != "" {
		if err := prometheus.WriteToTextfile(p.Output.Metrics, reg); err != nil {
			return aqmmm.NewConfigurationError("run", "writing metrics: %v", err)
		}
	}
	return nil
}

// writeGradient writes grad in XYZ format, with the energy in the comment line.
func writeGradient(name string, mol *aqmmm.Molecule, grad *v3.Matrix, energy float64) error {
	f, err := os.Create(name)
	if err != nil {
		return aqmmm.NewConfigurationError("writeGradient", "%v", err)
	}
	defer f.Close()
	symbols := make([]string, mol.Len())
	for i := range symbols {
		symbols[i] = mol.Atom(i).Symbol
	}
	return aqmmm.XYZWrite(f, symbols, grad, fmt.Sprintf("gradient (Hartree/A), energy %.10f Hartree", energy))
}
