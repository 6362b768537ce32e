/*
 * errors.go, part of aqmmm.
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

import "fmt"

//Errors

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Adds the string to the call trail of the error and returns the trail. An empty string only returns the current trail.
	Critical() bool
}

// ErrDecorate adds caller to the trail of err, if err is an Error,
// and returns err. Other errors are returned unchanged.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
	}
	return err
}

type errBase struct {
	msg  string
	deco []string
}

// Decorate adds dec to the call trail of the error and returns the trail.
func (err *errBase) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true. None of the errors in this library can be ignored.
func (err *errBase) Critical() bool { return true }

func newBase(caller, format string, a ...interface{}) errBase {
	b := errBase{msg: fmt.Sprintf(format, a...)}
	if caller != "" {
		b.deco = []string{caller}
	}
	return b
}

// DomainError is returned when a numerical quantity is outside the domain
// where an operation is defined: an empty atom set, a zero total mass,
// degenerate switching coordinates.
type DomainError struct {
	errBase
}

func (err *DomainError) Error() string { return "domain error: " + err.msg }

// NewDomainError returns a DomainError with the formatted message, decorated with caller.
func NewDomainError(caller, format string, a ...interface{}) *DomainError {
	return &DomainError{newBase(caller, format, a...)}
}

// UnknownElementError is returned when an element symbol has no atomic data.
type UnknownElementError struct {
	errBase
	Symbol string
}

func (err *UnknownElementError) Error() string {
	return fmt.Sprintf("unknown element %q: %s", err.Symbol, err.msg)
}

// NewUnknownElementError returns an UnknownElementError for symbol.
func NewUnknownElementError(caller, symbol, format string, a ...interface{}) *UnknownElementError {
	return &UnknownElementError{errBase: newBase(caller, format, a...), Symbol: symbol}
}

// ConfigurationError signals an invalid or unsupported combination of options,
// or an operation called out of order.
type ConfigurationError struct {
	errBase
}

func (err *ConfigurationError) Error() string { return "configuration error: " + err.msg }

// NewConfigurationError returns a ConfigurationError with the formatted message.
func NewConfigurationError(caller, format string, a ...interface{}) *ConfigurationError {
	return &ConfigurationError{newBase(caller, format, a...)}
}

// PreconditionError is returned when a result is requested before
// the computation that produces it has been performed.
type PreconditionError struct {
	errBase
}

func (err *PreconditionError) Error() string { return "precondition not met: " + err.msg }

// NewPreconditionError returns a PreconditionError with the formatted message.
func NewPreconditionError(caller, format string, a ...interface{}) *PreconditionError {
	return &PreconditionError{newBase(caller, format, a...)}
}

// NotImplementedError is returned by operations that exist in an interface
// but are not available for a given implementation.
type NotImplementedError struct {
	errBase
}

func (err *NotImplementedError) Error() string { return "not implemented: " + err.msg }

// NewNotImplementedError returns a NotImplementedError with the formatted message.
func NewNotImplementedError(caller, format string, a ...interface{}) *NotImplementedError {
	return &NotImplementedError{newBase(caller, format, a...)}
}
