/*
 * xtb.go, part of aqmmm.
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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rmera/aqmmm"
	v3 "github.com/rmera/aqmmm/v3"
	"go.uber.org/zap"
)

const xtbName = "xtb"

// XTB runs the xtb program. Each calculation runs in its own temporary
// directory, so several calculations can run at the same time.
type XTB struct {
	Command    string
	Method     string  //gfn0, gfn1 or gfn2 (the default)
	NCPU       int     //0 means half the CPUs of the machine
	Dielectric float64 //implicit solvation with ALPB, for the solvents in dielectric2Solvent
	WorkDir    string  //where the temporary directories are created. Empty means the system's default.
	Keep       bool    //keep the temporary directories
	Logger     *zap.Logger
}

// NewXTB returns an XTB backend with default settings.
func NewXTB() *XTB {
	return &XTB{Command: "xtb", Method: "gfn2", NCPU: runtime.NumCPU() / 2}
}

func (O *XTB) logger() *zap.Logger {
	if O.Logger == nil {
		return zap.NewNop()
	}
	return O.Logger
}

// args builds the command line options.
func (O *XTB) args(charge, multi int, embedding, minimize bool) []string {
	opts := []string{"geom.xyz", "--grad", "--chrg", strconv.Itoa(charge), "--uhf", strconv.Itoa(multi - 1)}
	switch O.Method {
	case "gfn0", "gfn1", "gfn2":
		opts = append(opts, "--gfn", strings.TrimPrefix(O.Method, "gfn"))
	default:
		opts = append(opts, "--gfn", "2")
	}
	if O.NCPU > 1 {
		opts = append(opts, "-P", strconv.Itoa(O.NCPU))
	}
	if O.Dielectric > 0 && O.Method != "gfn0" { //gfn0 doesn't support implicit solvation
		if solvent, ok := dielectric2Solvent[int(O.Dielectric)]; ok {
			opts = append(opts, "--alpb", solvent)
		}
	}
	if embedding {
		opts = append(opts, "--input", "xcontrol")
	}
	if minimize {
		opts = append(opts, "--opt", "normal")
	}
	return opts
}

// EnergyGradient runs xtb on geom and returns the energy (Hartree) and the gradients (Hartree/A).
func (O *XTB) EnergyGradient(ctx context.Context, geom []aqmmm.QMAtom, charge, multi int, charges []aqmmm.PointCharge, minimize bool) (*aqmmm.EnergyGradient, error) {
	if len(geom) == 0 {
		return nil, &Error{ErrCantInput, xtbName, "", "empty geometry", []string{"EnergyGradient"}, true}
	}
	var err error
	if multi <= 0 {
		if multi, err = DefaultMulti(geom, charge); err != nil {
			return nil, aqmmm.ErrDecorate(err, "EnergyGradient")
		}
	}
	dir, err := os.MkdirTemp(O.WorkDir, "aqmmm-xtb-")
	if err != nil {
		return nil, &Error{ErrCantInput, xtbName, "", err.Error(), []string{"os.MkdirTemp", "EnergyGradient"}, true}
	}
	if !O.Keep {
		defer os.RemoveAll(dir)
	}
	if err = O.buildInput(dir, geom, charges); err != nil {
		return nil, err
	}
	out, err := os.Create(filepath.Join(dir, "xtb.out"))
	if err != nil {
		return nil, &Error{ErrCantInput, xtbName, dir, err.Error(), []string{"os.Create", "EnergyGradient"}, true}
	}
	defer out.Close()
	args := O.args(charge, multi, len(charges) > 0, minimize)
	command := O.Command
	if command == "" {
		command = "xtb"
	}
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	start := time.Now()
	O.logger().Debug("running xtb", zap.String("dir", dir), zap.Strings("args", args), zap.Int("atoms", len(geom)), zap.Int("charges", len(charges)))
	if err = cmd.Run(); err != nil {
		return nil, &Error{ErrNotRunning, xtbName, dir, err.Error(), []string{"exec.Run", "EnergyGradient"}, true}
	}
	O.logger().Debug("xtb finished", zap.String("dir", dir), zap.Duration("took", time.Since(start)))
	if line := searchBackwards("abnormal termination", filepath.Join(dir, "xtb.out")); line != "" {
		return nil, &Error{ErrAbnormal, xtbName, dir, strings.TrimSpace(line), []string{"EnergyGradient"}, true}
	}
	f, err := os.Open(filepath.Join(dir, "gradient"))
	if err != nil {
		return nil, &Error{ErrNoGradient, xtbName, dir, err.Error(), []string{"os.Open", "EnergyGradient"}, true}
	}
	defer f.Close()
	energy, grad, err := ParseGradient(f, len(geom))
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.inputname = dir
		}
		return nil, aqmmm.ErrDecorate(err, "EnergyGradient")
	}
	return &aqmmm.EnergyGradient{Energy: energy, Gradients: grad}, nil
}

func (O *XTB) buildInput(dir string, geom []aqmmm.QMAtom, charges []aqmmm.PointCharge) error {
	symbols := make([]string, len(geom))
	coords := v3.Zeros(len(geom))
	for i, v := range geom {
		symbols[i] = v.Symbol
		coords.Set(i, 0, v.Pos[0])
		coords.Set(i, 1, v.Pos[1])
		coords.Set(i, 2, v.Pos[2])
	}
	xyz, err := os.Create(filepath.Join(dir, "geom.xyz"))
	if err != nil {
		return &Error{ErrCantInput, xtbName, dir, err.Error(), []string{"os.Create", "buildInput"}, true}
	}
	defer xyz.Close()
	if err = aqmmm.XYZWrite(xyz, symbols, coords, "written by aqmmm"); err != nil {
		return aqmmm.ErrDecorate(err, "buildInput")
	}
	if len(charges) == 0 {
		return nil
	}
	pc, err := os.Create(filepath.Join(dir, "pcharge"))
	if err != nil {
		return &Error{ErrCantInput, xtbName, dir, err.Error(), []string{"os.Create", "buildInput"}, true}
	}
	defer pc.Close()
	if err = WritePointCharges(pc, charges); err != nil {
		return &Error{ErrCantInput, xtbName, dir, err.Error(), []string{"WritePointCharges", "buildInput"}, true}
	}
	xcontrol := "$embedding\n input=pcharge\n$end\n"
	if err = os.WriteFile(filepath.Join(dir, "xcontrol"), []byte(xcontrol), 0o644); err != nil {
		return &Error{ErrCantInput, xtbName, dir, err.Error(), []string{"os.WriteFile", "buildInput"}, true}
	}
	return nil
}

// WritePointCharges writes charges in the xtb point-charge format:
// the number of charges, then one "charge x y z" line per charge, with
// the positions in Bohr.
func WritePointCharges(w io.Writer, charges []aqmmm.PointCharge) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(charges))
	for _, c := range charges {
		fmt.Fprintf(bw, "%10.6f %14.8f %14.8f %14.8f\n", c.Charge, c.Pos[0]*aqmmm.A2Bohr, c.Pos[1]*aqmmm.A2Bohr, c.Pos[2]*aqmmm.A2Bohr)
	}
	return bw.Flush()
}

// ParseGradient reads a Turbomole-format gradient file, as written by xtb, for natoms
// atoms. It returns the energy of the last cycle in the file, in Hartree, and its
// gradients, converted to Hartree/A.
func ParseGradient(r io.Reader, natoms int) (float64, *v3.Matrix, error) {
	scanner := bufio.NewScanner(r)
	var energy float64
	var grad *v3.Matrix
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "cycle") {
			continue
		}
		e, err := cycleEnergy(line)
		if err != nil {
			return 0, nil, &Error{ErrNoEnergy, xtbName, "", err.Error(), []string{"ParseGradient"}, true}
		}
		//the coordinates, which we don't need
		for i := 0; i < natoms; i++ {
			if !scanner.Scan() {
				return 0, nil, &Error{ErrNoGradient, xtbName, "", "file ends in the coordinates block", []string{"ParseGradient"}, true}
			}
		}
		g := v3.Zeros(natoms)
		for i := 0; i < natoms; i++ {
			if !scanner.Scan() {
				return 0, nil, &Error{ErrNoGradient, xtbName, "", "file ends in the gradient block", []string{"ParseGradient"}, true}
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 3 {
				return 0, nil, &Error{ErrNoGradient, xtbName, "", fmt.Sprintf("gradient line %d ill formed", i), []string{"ParseGradient"}, true}
			}
			for j := 0; j < 3; j++ {
				v, err := strconv.ParseFloat(strings.Replace(strings.Replace(fields[j], "D", "E", 1), "d", "e", 1), 64)
				if err != nil {
					return 0, nil, &Error{ErrNoGradient, xtbName, "", err.Error(), []string{"strconv.ParseFloat", "ParseGradient"}, true}
				}
				g.Set(i, j, v*aqmmm.A2Bohr) //Hartree/Bohr to Hartree/A
			}
		}
		energy, grad, found = e, g, true
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, &Error{ErrNoGradient, xtbName, "", err.Error(), []string{"ParseGradient"}, true}
	}
	if !found {
		return 0, nil, &Error{ErrNoGradient, xtbName, "", "no cycle found", []string{"ParseGradient"}, true}
	}
	return energy, grad, nil
}

// cycleEnergy reads the energy from a line like
// "  cycle =      1    SCF energy =    -5.0705435147   |dE/xyz| =  0.000123"
func cycleEnergy(line string) (float64, error) {
	i := strings.Index(line, "energy =")
	if i < 0 {
		return 0, fmt.Errorf("no energy in line %q", line)
	}
	fields := strings.Fields(line[i+len("energy ="):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("no energy in line %q", line)
	}
	return strconv.ParseFloat(strings.Replace(fields[0], "D", "E", 1), 64)
}

// searchBackwards returns the last line of the file containing str,
// or an empty string if there is none or the file can't be read.
// It reads the file from the end in blocks.
func searchBackwards(str, filename string) string {
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return ""
	}
	const block = 4096
	size := info.Size()
	var tail []byte
	for end := size; end > 0; {
		start := end - block
		if start < 0 {
			start = 0
		}
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
			return ""
		}
		tail = append(buf, tail...)
		lines := strings.Split(string(tail), "\n")
		first := 0
		if start > 0 {
			first = 1 //the first line may be incomplete
		}
		for i := len(lines) - 1; i >= first; i-- {
			if strings.Contains(lines[i], str) {
				return lines[i]
			}
		}
		if start > 0 {
			tail = []byte(lines[0])
		}
		end = start
	}
	return ""
}

var dielectric2Solvent = map[int]string{
	80: "h2o",
	5:  "chcl3",
	9:  "ch2cl2",
	21: "acetone",
	37: "acetonitrile",
	33: "methanol",
	2:  "toluene",
	7:  "thf",
	47: "dmso",
	38: "dmf",
}
