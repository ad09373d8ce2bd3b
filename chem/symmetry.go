/*
 * symmetry.go, part of goConf.
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
	"strings"
)

//SymmetryRanks returns a rank per atom such that atoms which are topologically
//equivalent have the same rank. The ranks come from an iterative refinement of atom
//invariants (element, degree, charge, hydrogen count, ring and aromatic flags) by
//the ranks of the neighbors, similar to the extended connectivity of Morgan.
//The returned slice should not be modified.
func (M *Molecule) SymmetryRanks() []int {
	c := M.cache()
	if c.ranks != nil {
		return c.ranks
	}
	n := M.Len()
	inv := make([]string, n)
	for i, at := range M.Atoms {
		inv[i] = fmt.Sprintf("%03d|%d|%d|%d|%d|%t", symbolNumber[at.Symbol], M.Degree(i), at.Charge, M.HydrogenCount(i), M.AtomRingSize(i), M.IsAromaticAtom(i))
		if _, ok := symbolNumber[at.Symbol]; !ok {
			inv[i] = at.Symbol + inv[i]
		}
	}
	ranks, classes := rankStrings(inv)
	for iter := 0; iter < n; iter++ {
		for i := range inv {
			nr := make([]int, 0, 4)
			for _, v := range M.Neighbors(i) {
				nr = append(nr, ranks[v])
			}
			sort.Ints(nr)
			inv[i] = fmt.Sprintf("%06d:%s", ranks[i], joinInts(nr))
		}
		newRanks, newClasses := rankStrings(inv)
		ranks = newRanks
		if newClasses == classes {
			break
		}
		classes = newClasses
	}
	c.ranks = ranks
	return ranks
}

//rankStrings assigns to each string its position among the sorted distinct strings.
//It also returns the number of distinct strings.
func rankStrings(s []string) ([]int, int) {
	distinct := append([]string(nil), s...)
	sort.Strings(distinct)
	pos := make(map[string]int, len(s))
	for _, v := range distinct {
		if _, ok := pos[v]; !ok {
			pos[v] = len(pos)
		}
	}
	ret := make([]int, len(s))
	for i, v := range s {
		ret[i] = pos[v]
	}
	return ret, len(pos)
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = fmt.Sprint(n)
	}
	return strings.Join(s, ",")
}
