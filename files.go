/*
 * files.go, part of aqmmm.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	v3 "github.com/rmera/aqmmm/v3"
)

// FileError is returned when an input file can't be opened or parsed.
type FileError struct {
	errBase
	FileName string
}

func (err *FileError) Error() string {
	if err.FileName == "" {
		return "file error: " + err.msg
	}
	return fmt.Sprintf("file %s error: %s", err.FileName, err.msg)
}

func newFileError(caller, name, format string, a ...interface{}) *FileError {
	return &FileError{errBase: newBase(caller, format, a...), FileName: name}
}

//symbolFromName guesses the element from the PDB atom name.
func symbolFromName(name string) (string, error) {
	name = strings.TrimLeftFunc(name, unicode.IsDigit)
	if name == "" {
		return "", NewUnknownElementError("symbolFromName", "", "empty atom name")
	}
	two := map[string]string{"CU": "Cu", "CO": "Co", "CL": "Cl", "NA": "Na", "SE": "Se", "ZN": "Zn", "FE": "Fe", "MG": "Mg", "MN": "Mn", "BR": "Br", "CA": "Ca"}
	//CA is a carbon, not calcium, unless it is alone in its residue. The caller deals with that.
	if len(name) == 2 && name != "CA" {
		if s, ok := two[name]; ok {
			return s, nil
		}
	}
	if len(name) == 4 && name[0] == 'H' {
		return "H", nil
	}
	switch name[0] {
	case 'H', 'C', 'N', 'O', 'P', 'S', 'F', 'K', 'I':
		return string(name[0]), nil
	}
	return "", NewUnknownElementError("symbolFromName", name, "couldn't guess symbol from PDB name")
}

// parses a valid ATOM or HETATM line of a PDB file.
func readPDBLine(line string) (*Atom, []float64, error) {
	if len(line) < 54 {
		return nil, nil, fmt.Errorf("line too short")
	}
	var err error
	errs := make([]error, 5)
	coords := make([]float64, 3)
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, errs[0] = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	atom.MolName = strings.TrimSpace(line[17:20])
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.MolID, errs[1] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	coords[0], errs[2] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	coords[1], errs[3] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	coords[2], errs[4] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	for _, e := range errs {
		if e != nil {
			return nil, nil, e
		}
	}
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
		if len(atom.Symbol) == 2 {
			atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
		}
	}
	if atom.Symbol == "" {
		atom.Symbol, err = symbolFromName(atom.Name)
		if err != nil {
			return nil, nil, err
		}
	}
	return atom, coords, nil
}

// PDBRead reads the first model of a PDB file from r, and returns it
// as a Molecule with charge 0 and multiplicity 1.
func PDBRead(r io.Reader) (*Molecule, error) {
	ats := make([]*Atom, 0, 100)
	coords := make([]float64, 0, 300)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineno++
		if strings.HasPrefix(line, "ENDMDL") || strings.HasPrefix(line, "END ") || line == "END" {
			break
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		at, c, err := readPDBLine(line)
		if err != nil {
			return nil, newFileError("PDBRead", "", "line %d: %s", lineno, err.Error())
		}
		ats = append(ats, at)
		coords = append(coords, c...)
	}
	if err := scanner.Err(); err != nil {
		return nil, newFileError("PDBRead", "", "%s", err.Error())
	}
	if len(ats) == 0 {
		return nil, newFileError("PDBRead", "", "no atoms found")
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, ErrDecorate(err, "PDBRead")
	}
	mol, err := NewMolecule(NewTopology(ats, 0, 1), mcoords)
	return mol, ErrDecorate(err, "PDBRead")
}

// PDBFileRead reads the PDB file with name pdbname. See PDBRead.
func PDBFileRead(pdbname string) (*Molecule, error) {
	f, err := os.Open(pdbname)
	if err != nil {
		return nil, newFileError("PDBFileRead", pdbname, "%s", err.Error())
	}
	defer f.Close()
	mol, err := PDBRead(f)
	if e, ok := err.(*FileError); ok {
		e.FileName = pdbname
	}
	return mol, ErrDecorate(err, "PDBFileRead")
}

// XYZRead reads an XYZ file from r. The comment line may
// contain the charge and the multiplicity, as two integers.
// Every atom is placed in the same residue. Use FragmentResidues to
// split the system into molecules.
func XYZRead(r io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, newFileError("XYZRead", "", "empty file")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || natoms <= 0 {
		return nil, newFileError("XYZRead", "", "ill formatted number of atoms: %q", scanner.Text())
	}
	charge, multi := 0, 1
	if scanner.Scan() {
		f := strings.Fields(scanner.Text())
		if len(f) >= 2 {
			c, err1 := strconv.Atoi(f[0])
			m, err2 := strconv.Atoi(f[1])
			if err1 == nil && err2 == nil {
				charge, multi = c, m
			}
		}
	}
	ats := make([]*Atom, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, newFileError("XYZRead", "", "expected %d atoms, found %d", natoms, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, newFileError("XYZRead", "", "atom %d: line ill formed", i)
		}
		ats[i] = &Atom{Symbol: fields[0], Name: fields[0], ID: i + 1, MolID: 1}
		for j := 0; j < 3; j++ {
			coords[i*3+j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, newFileError("XYZRead", "", "atom %d: %s", i, err.Error())
			}
		}
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, ErrDecorate(err, "XYZRead")
	}
	mol, err := NewMolecule(NewTopology(ats, charge, multi), mcoords)
	return mol, ErrDecorate(err, "XYZRead")
}

// XYZFileRead reads the XYZ file with name xyzname. See XYZRead.
func XYZFileRead(xyzname string) (*Molecule, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, newFileError("XYZFileRead", xyzname, "%s", err.Error())
	}
	defer f.Close()
	mol, err := XYZRead(f)
	if e, ok := err.(*FileError); ok {
		e.FileName = xyzname
	}
	return mol, ErrDecorate(err, "XYZFileRead")
}

// XYZWrite writes the atoms with the given symbols and coordinates, in A, as an
// XYZ file to w.
func XYZWrite(w io.Writer, symbols []string, coords *v3.Matrix, comment string) error {
	if len(symbols) != coords.NVecs() {
		return NewConfigurationError("XYZWrite", "%d symbols but %d coordinates", len(symbols), coords.NVecs())
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", len(symbols), strings.ReplaceAll(comment, "\n", " "))
	for i, s := range symbols {
		fmt.Fprintf(bw, "%-2s  %12.6f %12.6f %12.6f\n", s, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
	}
	if err := bw.Flush(); err != nil {
		return newFileError("XYZWrite", "", "%s", err.Error())
	}
	return nil
}
