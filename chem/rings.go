/*
 * rings.go, part of goConf.
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
	"sort"
)

//perceiveRings finds, for each bond, the smallest ring that contains it. The set of
//all these rings is kept as the set of smallest rings of the molecule.
func (M *Molecule) perceiveRings() {
	c := M.c
	c.bondRing = make([]int, len(M.Bonds))
	c.atomRing = make([]int, len(M.Atoms))
	seen := make(map[string]bool)
	for _, b := range M.Bonds {
		path := M.pathAvoiding(b.At1, b.At2, b.Index)
		if path == nil {
			continue
		}
		c.bondRing[b.Index] = len(path)
		sorted := append([]int(nil), path...)
		sort.Ints(sorted)
		key := fmt.Sprint(sorted)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.rings = append(c.rings, path)
	}
	sort.SliceStable(c.rings, func(i, j int) bool { return len(c.rings[i]) < len(c.rings[j]) })
	for _, r := range c.rings {
		for _, at := range r {
			if c.atomRing[at] == 0 || c.atomRing[at] > len(r) {
				c.atomRing[at] = len(r)
			}
		}
	}
}

//pathAvoiding returns the shortest path from a to b that doesn't use the bond
//with index avoid, or nil if there is none. The path contains both ends.
func (M *Molecule) pathAvoiding(a, b, avoid int) []int {
	parent := make([]int, len(M.Atoms))
	for i := range parent {
		parent[i] = -2
	}
	parent[a] = -1
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == b {
			break
		}
		for _, bi := range M.c.adj[cur] {
			if bi == avoid {
				continue
			}
			next := M.Bonds[bi].Cross(cur)
			if parent[next] != -2 {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	if parent[b] == -2 {
		return nil
	}
	path := make([]int, 0, 8)
	for at := b; at != -1; at = parent[at] {
		path = append(path, at)
	}
	return path
}

//perceiveAromaticity marks as aromatic the bonds given as aromatic and those in
//5 and 6 membered rings with a Kekule structure.
func (M *Molecule) perceiveAromaticity() {
	c := M.c
	c.aromatic = make([]bool, len(M.Bonds))
	for _, b := range M.Bonds {
		c.aromatic[b.Index] = b.Aromatic
	}
	for pass := 0; pass < 3; pass++ {
		changed := false
		for _, r := range c.rings {
			if len(r) != 5 && len(r) != 6 {
				continue
			}
			bonds := M.ringBonds(r)
			if allTrue(c.aromatic, bonds) {
				continue
			}
			if M.kekuleRing(r, bonds) {
				for _, v := range bonds {
					c.aromatic[v] = true
				}
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

func allTrue(flags []bool, indexes []int) bool {
	for _, v := range indexes {
		if !flags[v] {
			return false
		}
	}
	return true
}

//ringBonds returns the indexes of the bonds between consecutive atoms of the ring r.
func (M *Molecule) ringBonds(r []int) []int {
	ret := make([]int, 0, len(r))
	for i, v := range r {
		next := r[(i+1)%len(r)]
		ret = append(ret, M.BondBetween(v, next))
	}
	return ret
}

//kekuleRing returns true if every atom of the ring has a double bond within the ring or
//an aromatic bond, except, for 5-membered rings, one N, O, S or Se atom donating a lone pair.
func (M *Molecule) kekuleRing(r, bonds []int) bool {
	inring := make(map[int]bool, len(bonds))
	for _, b := range bonds {
		inring[b] = true
	}
	donors := 0
	for _, at := range r {
		pi := false
		for _, b := range M.c.adj[at] {
			bond := M.Bonds[b]
			if bond.Order == 3 {
				return false
			}
			if (bond.Order == 2 && inring[b]) || M.c.aromatic[b] {
				pi = true
			}
			if bond.Order == 2 && !inring[b] && !M.c.aromatic[b] {
				return false //exocyclic double bond
			}
		}
		if !pi {
			switch M.Atoms[at].Symbol {
			case "N", "O", "S", "Se":
				donors++
			default:
				return false
			}
		}
	}
	if len(r) == 6 {
		return donors == 0
	}
	return donors == 1
}

//Rings returns the set of smallest rings of the molecule, the smallest first. Each
//ring is given as a sequence of bonded atoms. The slices should not be modified.
func (M *Molecule) Rings() [][]int {
	return M.cache().rings
}

//BondRingSize returns the size of the smallest ring containing the bond, or 0
//if the bond is not in a ring.
func (M *Molecule) BondRingSize(bond int) int {
	return M.cache().bondRing[bond]
}

//AtomRingSize returns the size of the smallest ring containing the atom, or 0
//if the atom is not in a ring.
func (M *Molecule) AtomRingSize(atom int) int {
	return M.cache().atomRing[atom]
}

//InRing returns true if the atom belongs to a ring.
func (M *Molecule) InRing(atom int) bool {
	return M.AtomRingSize(atom) > 0
}

//BondInRing returns true if the bond belongs to a ring.
func (M *Molecule) BondInRing(bond int) bool {
	return M.BondRingSize(bond) > 0
}

//IsAromaticBond returns true if the bond is aromatic, either because it was given as such
//or because it is part of a Kekule aromatic ring.
func (M *Molecule) IsAromaticBond(bond int) bool {
	return M.cache().aromatic[bond]
}

//IsAromaticAtom returns true if the atom has an aromatic bond.
func (M *Molecule) IsAromaticAtom(atom int) bool {
	for _, b := range M.BondsOf(atom) {
		if M.IsAromaticBond(b) {
			return true
		}
	}
	return false
}

//SharedRing returns the size of the smallest ring that contains all the given atoms, or 0 if
//there is none.
func (M *Molecule) SharedRing(atoms ...int) int {
	for _, r := range M.Rings() {
		if containsAll(r, atoms) {
			return len(r)
		}
	}
	return 0
}

//AromaticRing returns true if all the given atoms belong to the same aromatic ring.
func (M *Molecule) AromaticRing(atoms ...int) bool {
	for _, r := range M.Rings() {
		if !containsAll(r, atoms) {
			continue
		}
		if allTrue(M.cache().aromatic, M.ringBonds(r)) {
			return true
		}
	}
	return false
}

func containsAll(container, test []int) bool {
	for _, v := range test {
		if !isInInt(container, v) {
			return false
		}
	}
	return true
}

func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
