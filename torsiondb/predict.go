/*
 * predict.go, part of goConf.
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

package torsiondb

import "github.com/rmera/goconf/chem"

//geometric class of an atom for prediction purposes.
type class int

const (
	tetrahedral class = iota
	trigonal
	aromatic
)

func classOf(m *chem.Molecule, atom int) class {
	if m.IsAromaticAtom(atom) {
		return aromatic
	}
	if m.Hybridization(atom) == chem.Sp3 {
		return tetrahedral
	}
	return trigonal
}

//evenly returns an entry with the given angles, equal frequencies and ranges of
//half the given width.
func evenly(half float64, torsions ...float64) *Entry {
	e := &Entry{
		Torsions:    torsions,
		Frequencies: make([]float64, len(torsions)),
		Ranges:      make([][2]float64, len(torsions)),
	}
	for i, t := range torsions {
		e.Frequencies[i] = 1
		e.Ranges[i] = [2]float64{t - half, t + half}
	}
	return e
}

//Predict estimates the torsion statistics of a bond that is not in any table, from the
//geometric class of its atoms: staggered angles between tetrahedral atoms, eclipsed
//and staggered ones between trigonal and tetrahedral atoms, and planar arrangements
//(with some twisted ones) between trigonal or aromatic atoms.
func Predict(m *chem.Molecule, bond int) *Entry {
	b := m.Bond(bond)
	c1, c2 := classOf(m, b.At1), classOf(m, b.At2)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	switch {
	case c1 == tetrahedral && c2 == tetrahedral:
		e := evenly(30, 60, 180, 300)
		e.Frequencies[1] = 1.2
		return e
	case c1 == tetrahedral && c2 == aromatic:
		return evenly(35, 90, 270)
	case c1 == tetrahedral:
		return evenly(30, 0, 60, 120, 180, 240, 300)
	case c1 == aromatic:
		//both aromatic
		return evenly(25, 40, 140, 220, 320)
	}
	e := evenly(25, 0, 90, 180, 270)
	e.Frequencies[0], e.Frequencies[2] = 2, 2
	return e
}
