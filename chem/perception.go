/*
 * perception.go, part of goConf.
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

import "sort"

//Hybridization of an atom, as far as geometry is concerned.
type Hybridization int

const (
	Sp  Hybridization = 1
	Sp2 Hybridization = 2
	Sp3 Hybridization = 3
)

func (H Hybridization) String() string {
	switch H {
	case Sp:
		return "sp"
	case Sp2:
		return "sp2"
	default:
		return "sp3"
	}
}

//PiCount returns the number of pi bonds of the atom. An atom with aromatic
//bonds but no explicit double bond counts as having one.
func (M *Molecule) PiCount(atom int) int {
	pi := 0
	aromatic := false
	for _, b := range M.BondsOf(atom) {
		bond := M.Bonds[b]
		if bond.Order > 1 {
			pi += bond.Order - 1
		}
		if M.IsAromaticBond(b) {
			aromatic = true
		}
	}
	if pi == 0 && aromatic {
		pi = 1
	}
	return pi
}

//Hybridization returns the hybridization of the atom. Nitrogens bonded to a carbonyl-like
//or aromatic atom are considered sp2.
func (M *Molecule) Hybridization(atom int) Hybridization {
	if M.IsAromaticAtom(atom) {
		return Sp2
	}
	switch pi := M.PiCount(atom); {
	case pi >= 2:
		return Sp
	case pi == 1:
		return Sp2
	}
	if M.Atoms[atom].Symbol == "N" && M.Degree(atom)+M.ImplicitHydrogens(atom) <= 3 {
		for _, n := range M.Neighbors(atom) {
			if M.isCarbonylLike(n) {
				return Sp2
			}
		}
	}
	return Sp3
}

//IsLinear returns true if the atom is the sp center of a linear chain, i.e. it has
//two pi bonds and exactly two neighbors.
func (M *Molecule) IsLinear(atom int) bool {
	return M.Hybridization(atom) == Sp && M.Degree(atom)+M.ImplicitHydrogens(atom) == 2
}

//isCarbonylLike returns true if the atom is a C, S or P with a double bond to O, S or N.
func (M *Molecule) isCarbonylLike(atom int) bool {
	switch M.Atoms[atom].Symbol {
	case "C", "S", "P":
	default:
		return false
	}
	for _, b := range M.BondsOf(atom) {
		bond := M.Bonds[b]
		if bond.Order != 2 || M.IsAromaticBond(b) {
			continue
		}
		switch M.Atoms[bond.Cross(atom)].Symbol {
		case "O", "S", "N":
			return true
		}
	}
	return false
}

//IsAmideLike returns true if the bond is a single bond between a carbonyl-like atom and a N or O
//with another neighbor, as in amides, esters and carboxylic acids. Such bonds are flat.
func (M *Molecule) IsAmideLike(bond int) bool {
	b := M.Bond(bond)
	if b.Order != 1 || M.IsAromaticBond(bond) {
		return false
	}
	for _, pair := range [2][2]int{{b.At1, b.At2}, {b.At2, b.At1}} {
		c, x := pair[0], pair[1]
		sym := M.Atoms[x].Symbol
		if (sym != "N" && sym != "O") || M.Degree(x)+M.ImplicitHydrogens(x) < 2 {
			continue
		}
		if M.PiCount(x) == 0 && M.isCarbonylLike(c) {
			return true
		}
	}
	return false
}

//TypeTag returns a string like "C.3" describing the element and the hybridization
//of the atom ("1", "2", "3"), or whether it is aromatic ("ar") or an amide-like
//nitrogen ("am").
func (M *Molecule) TypeTag(atom int) string {
	sym := M.Atoms[atom].Symbol
	if M.IsAromaticAtom(atom) {
		return sym + ".ar"
	}
	h := M.Hybridization(atom)
	if sym == "N" && h == Sp2 && M.PiCount(atom) == 0 {
		return sym + ".am"
	}
	switch h {
	case Sp:
		return sym + ".1"
	case Sp2:
		return sym + ".2"
	}
	return sym + ".3"
}

//RotatableBonds returns the indexes of the rotatable bonds in the molecule, in ascending order.
//A bond is rotatable if it is a non-ring, non-aromatic single bond, both atoms have
//other neighbors, neither atom is the center of a linear chain, the bond is not
//amide-like and neither end is a symmetric terminal rotor (like CH3 or CF3).
func (M *Molecule) RotatableBonds() []int {
	c := M.cache()
	if c.rotDone {
		return c.rotatable
	}
	ret := make([]int, 0, 4)
	for _, b := range M.Bonds {
		if M.isRotatable(b) {
			ret = append(ret, b.Index)
		}
	}
	c.rotatable = ret
	c.rotDone = true
	return ret
}

func (M *Molecule) isRotatable(b *Bond) bool {
	if b.Order != 1 || M.IsAromaticBond(b.Index) || M.BondInRing(b.Index) {
		return false
	}
	for _, at := range [2]int{b.At1, b.At2} {
		if M.Degree(at) < 2 || M.IsLinear(at) {
			return false
		}
		if M.symmetricRotor(at, b.Cross(at)) {
			return false
		}
	}
	return !M.IsAmideLike(b.Index)
}

//symmetricRotor returns true if all the neighbors of at, except partner, are terminal
//atoms with the same symmetry rank, there are at least 2 of them and at has no implicit hydrogens.
func (M *Molecule) symmetricRotor(at, partner int) bool {
	ranks := M.SymmetryRanks()
	others := 0
	rank := -1
	for _, n := range M.Neighbors(at) {
		if n == partner {
			continue
		}
		if !M.IsTerminal(n) {
			return false
		}
		if rank >= 0 && ranks[n] != rank {
			return false
		}
		rank = ranks[n]
		others++
	}
	if M.ImplicitHydrogens(at) > 0 {
		return false
	}
	return others >= 2
}

//TorsionAtoms returns the four atoms that define the torsion around the bond. The
//central atoms are the bond atoms in the given order (b, c). For each end the
//neighbor with the lowest index among those in preferred (if given) is chosen; if none is,
//heavy atoms are preferred over hydrogens, and then lower indexes. ok is false if one of
//the central atoms has no other neighbor.
func (M *Molecule) TorsionAtoms(b, c int, preferred ...func(int) bool) (atoms [4]int, ok bool) {
	pick := func(center, partner int) int {
		cand := make([]int, 0, 4)
		for _, n := range M.Neighbors(center) {
			if n != partner {
				cand = append(cand, n)
			}
		}
		if len(cand) == 0 {
			return -1
		}
		sort.SliceStable(cand, func(i, j int) bool {
			if len(preferred) > 0 && preferred[0] != nil {
				pi, pj := preferred[0](cand[i]), preferred[0](cand[j])
				if pi != pj {
					return pi
				}
			}
			hi, hj := M.IsHydrogen(cand[i]), M.IsHydrogen(cand[j])
			if hi != hj {
				return hj
			}
			return cand[i] < cand[j]
		})
		return cand[0]
	}
	a := pick(b, c)
	d := pick(c, b)
	if a < 0 || d < 0 {
		return atoms, false
	}
	return [4]int{a, b, c, d}, true
}

//StereoNeighbors returns the neighbors of the atom ordered as needed for stereo parities:
//non-hydrogen atoms by increasing index, then hydrogens by increasing index.
func (M *Molecule) StereoNeighbors(atom int) []int {
	n := append([]int(nil), M.Neighbors(atom)...)
	sort.SliceStable(n, func(i, j int) bool {
		hi, hj := M.IsHydrogen(n[i]), M.IsHydrogen(n[j])
		if hi != hj {
			return hj
		}
		return n[i] < n[j]
	})
	return n
}
