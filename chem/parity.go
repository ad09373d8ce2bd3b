/*
 * parity.go, part of goConf.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/goconf/v3"
)

//Parity is the tetrahedral stereo parity of an atom, following the molfile convention:
//the neighbors are numbered by increasing index, hydrogens (and implicit hydrogens or lone pairs)
//last. Looking at the center with the highest numbered neighbor pointing away from the viewer, the
//parity is odd if the remaining three are arranged clockwise, and even otherwise.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityUnknown
)

func (P Parity) String() string {
	switch P {
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityUnknown:
		return "unknown"
	}
	return "none"
}

//Defined returns true if the parity is odd or even.
func (P Parity) Defined() bool {
	return P == ParityOdd || P == ParityEven
}

//BondParity is the E/Z parity of a double bond, relative to the substituents
//returned by StereoReferences. Z means the references are on the same side.
type BondParity int

const (
	BondParityNone BondParity = iota
	BondParityE
	BondParityZ
	BondParityUnknown
)

func (P BondParity) String() string {
	switch P {
	case BondParityE:
		return "E"
	case BondParityZ:
		return "Z"
	case BondParityUnknown:
		return "unknown"
	}
	return "none"
}

//Defined returns true if the parity is E or Z.
func (P BondParity) Defined() bool {
	return P == BondParityE || P == BondParityZ
}

//ChiralVolume returns a signed volume for the stereo center with the given (ordered) neighbors.
//For 4 neighbors it is the triple product of the first three, taken from the fourth. For 3 it is
//taken from the center. The parity is odd when the volume is negative.
func ChiralVolume(coords *v3.Matrix, center int, nbrs []int) float64 {
	if len(nbrs) < 3 {
		return 0
	}
	origin := coords.Vec(center)
	if len(nbrs) >= 4 {
		origin = coords.Vec(nbrs[3])
	}
	a := r3.Sub(coords.Vec(nbrs[0]), origin)
	b := r3.Sub(coords.Vec(nbrs[1]), origin)
	c := r3.Sub(coords.Vec(nbrs[2]), origin)
	return r3.Dot(a, r3.Cross(b, c))
}

//ParityFromCoords returns the parity of the atom in the given coordinates. It returns
//ParityNone if the atom doesn't have 3 or 4 neighbors and ParityUnknown if the center is flat.
func ParityFromCoords(m *Molecule, coords *v3.Matrix, atom int) Parity {
	nbrs := m.StereoNeighbors(atom)
	if len(nbrs) < 3 || len(nbrs) > 4 {
		return ParityNone
	}
	vol := ChiralVolume(coords, atom, nbrs)
	if math.Abs(vol) < 1e-6 {
		return ParityUnknown
	}
	if vol < 0 {
		return ParityOdd
	}
	return ParityEven
}

//StereoReferences returns the reference substituents for the E/Z parity of the bond: for each end,
//the first of its other neighbors in the order given by StereoNeighbors. A value of -1 means that end has
//no other neighbor.
func (M *Molecule) StereoReferences(bond int) (r1, r2 int) {
	b := M.Bond(bond)
	ref := func(at, partner int) int {
		for _, v := range M.StereoNeighbors(at) {
			if v != partner {
				return v
			}
		}
		return -1
	}
	return ref(b.At1, b.At2), ref(b.At2, b.At1)
}

//BondParityFromCoords returns the E/Z parity of the bond in the given coordinates.
func BondParityFromCoords(m *Molecule, coords *v3.Matrix, bond int) BondParity {
	b := m.Bond(bond)
	r1, r2 := m.StereoReferences(bond)
	if r1 < 0 || r2 < 0 {
		return BondParityNone
	}
	phi := Dihedral(coords.Vec(r1), coords.Vec(b.At1), coords.Vec(b.At2), coords.Vec(r2))
	c := math.Cos(phi * Deg2Rad)
	if math.Abs(c) < 1e-3 {
		return BondParityUnknown
	}
	if c > 0 {
		return BondParityZ
	}
	return BondParityE
}

//IsStereoCenter returns true if the atom is an sp3 atom with 4 substituents (counting implicit
//hydrogens) all of them with different symmetry ranks.
func (M *Molecule) IsStereoCenter(atom int) bool {
	if M.Hybridization(atom) != Sp3 {
		return false
	}
	impl := M.ImplicitHydrogens(atom)
	if M.Degree(atom)+impl != 4 || impl > 1 {
		return false
	}
	ranks := M.SymmetryRanks()
	seen := make(map[int]bool, 4)
	for _, n := range M.Neighbors(atom) {
		if seen[ranks[n]] {
			return false
		}
		if impl > 0 && M.IsHydrogen(n) && M.IsTerminal(n) {
			return false
		}
		seen[ranks[n]] = true
	}
	return true
}

//IsStereoBond returns true if the bond is a non-aromatic double bond, not in a ring
//smaller than 8, where each end has one or two other substituents, which, if two, are
//not equivalent.
func (M *Molecule) IsStereoBond(bond int) bool {
	b := M.Bond(bond)
	if b.Order != 2 || M.IsAromaticBond(bond) {
		return false
	}
	if rs := M.BondRingSize(bond); rs > 0 && rs < 8 {
		return false
	}
	ranks := M.SymmetryRanks()
	for _, at := range [2]int{b.At1, b.At2} {
		partner := b.Cross(at)
		if M.IsLinear(at) {
			return false
		}
		impl := M.ImplicitHydrogens(at)
		others := make([]int, 0, 2)
		for _, n := range M.Neighbors(at) {
			if n != partner {
				others = append(others, n)
			}
		}
		switch len(others) + impl {
		case 1:
			if impl == 1 {
				return false
			}
		case 2:
			if impl == 2 {
				return false
			}
			if len(others) == 2 && ranks[others[0]] == ranks[others[1]] {
				return false
			}
			if impl == 1 && M.IsHydrogen(others[0]) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

//PerceiveParities sets the atom and bond parities from the coordinates of the molecule, for all
//stereo centers and stereo bonds that don't have a defined parity. Atom parities are only
//perceived for 3D coordinates.
func (M *Molecule) PerceiveParities() {
	if M.Coords == nil {
		return
	}
	flat := isFlat(M.Coords)
	for i, at := range M.Atoms {
		if flat || at.Parity != ParityNone || !M.IsStereoCenter(i) {
			continue
		}
		if M.ImplicitHydrogens(i) > 0 && M.Degree(i) != 3 {
			continue
		}
		at.Parity = ParityFromCoords(M, M.Coords, i)
	}
	for i, b := range M.Bonds {
		if b.Parity != BondParityNone || !M.IsStereoBond(i) {
			continue
		}
		b.Parity = BondParityFromCoords(M, M.Coords, i)
	}
}
