/*
 * errors.go, part of goConf.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"fmt"
	"strings"
)

//Errors

//Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
//error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call returns the "decoration" slice of strings resulting from the current call. An empty string just returns the current value.
	Critical() bool
}

//CError is the general error type of the chem package.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

func (err CError) Error() string { return err.msg }

//Decorate Adds new information to the error
func (err CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise
func (err CError) Critical() bool { return err.critical }

//StructureError is returned when an atom has more bonds (including hydrogens)
//than its maximum valence allows. Conformers can't be generated for such graphs.
type StructureError struct {
	Atom     int
	Symbol   string
	Occupied int
	Max      int
	deco     []string
}

func (err StructureError) Error() string {
	msg := fmt.Sprintf("atom %d (%s) has an occupied valence of %d, but its maximum valence is %d", err.Atom, err.Symbol, err.Occupied, err.Max)
	if len(err.deco) > 0 {
		msg = strings.Join(err.deco, ": ") + ": " + msg
	}
	return msg
}

//Decorate Adds new information to the error
func (err StructureError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical always returns true. A StructureError is terminal for generation.
func (err StructureError) Critical() bool { return true }

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//if used with a non-chem.Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrAtomOutOfRange = PanicMsg("goConf/chem: Atom index out of range")
	ErrBondOutOfRange = PanicMsg("goConf/chem: Bond index out of range")
	ErrNotInBond      = PanicMsg("goConf/chem: Trying to cross a bond: The origin atom given is not present in the bond")
	ErrSelfBond       = PanicMsg("goConf/chem: An atom can't be bonded to itself")
	ErrNoCoords       = PanicMsg("goConf/chem: The conformer has no coordinates for the requested atom")
)
