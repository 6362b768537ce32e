/*
 * qm.go, part of aqmmm.
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
	"fmt"

	"github.com/rmera/aqmmm"
)

// Error is the error type for the qm package. It satisfies aqmmm.Error.
type Error struct {
	message    string
	program    string
	inputname  string
	additional string
	deco       []string
	critical   bool
}

// Error returns a string with an error message.
func (err *Error) Error() string {
	if err.additional == "" {
		return fmt.Sprintf("%s (%s) error: %s", err.program, err.inputname, err.message)
	}
	return fmt.Sprintf("%s (%s) error: %s: %s", err.program, err.inputname, err.message, err.additional)
}

// Decorate adds dec to the call trail of the error and returns the trail.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }

// Errors
const (
	ErrNoEnergy   = "Couldn't read energy from QM output"
	ErrNoGradient = "Couldn't read gradients from QM output"
	ErrCantInput  = "Can't build QM input"
	ErrNotRunning = "Couldn't run QM program"
	ErrAbnormal   = "QM program terminated abnormally"
)

// Electrons returns the number of electrons of the QM atoms in geom with total
// charge charge, and whether the system must be open-shell.
func Electrons(geom []aqmmm.QMAtom, charge int) (int, bool, error) {
	total := 0
	for _, v := range geom {
		z, err := aqmmm.AtomicNumber(v.Symbol)
		if err != nil {
			return 0, false, aqmmm.ErrDecorate(err, "Electrons")
		}
		total += z
	}
	total -= charge
	if total < 0 {
		return 0, false, aqmmm.NewDomainError("Electrons", "charge %d leaves %d electrons", charge, total)
	}
	return total, total%2 != 0, nil
}

// DefaultMulti returns the lowest multiplicity for geom with charge charge: 1 for
// closed-shell systems, 2 for open-shell ones.
func DefaultMulti(geom []aqmmm.QMAtom, charge int) (int, error) {
	_, open, err := Electrons(geom, charge)
	if err != nil {
		return 0, aqmmm.ErrDecorate(err, "DefaultMulti")
	}
	if open {
		return 2, nil
	}
	return 1, nil
}
