/*
 * build.go, part of goConf.
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

package rules

import (
	"fmt"
	"math"
	"sort"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/torsiondb"
)

//builder collects the rules for one molecule.
type builder struct {
	m     *chem.Molecule
	g     chem.Geometry
	seen  map[[2]int]bool
	rules []Rule
}

//Build returns the rules that describe the geometry of m: distances for bonded atoms and for
//pairs of atoms 2 and 3 bonds apart, minimum distances for the rest of the pairs,
//planes for flat groups, straight lines for linear chains, stereo rules for the
//defined parities, and torsions for rotatable bonds and sp3 bonds in 6 and 7-membered rings.
//g and db can be nil, in which case chem.DefaultGeometry and torsiondb.Default() are used.
func Build(m *chem.Molecule, g chem.Geometry, db torsiondb.Provider) []Rule {
	if g == nil {
		g = chem.DefaultGeometry{}
	}
	if db == nil {
		db = torsiondb.Default()
	}
	B := &builder{m: m, g: g, seen: make(map[[2]int]bool)}
	B.bonds()
	B.angles()
	B.chains()
	B.torsionDistances()
	B.longRange()
	B.planes()
	B.stereo()
	B.torsions(db)
	return B.rules
}

func pair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

//distance adds a distance rule for a and b, unless they already have one.
func (B *builder) distance(a, b int, min, max float64) {
	p := pair(a, b)
	if a == b || B.seen[p] {
		return
	}
	B.seen[p] = true
	if min > max {
		min, max = max, min
	}
	B.rules = append(B.rules, NewDistance(B.m, a, b, min, max))
}

//length returns the ideal length of the bond between a and b.
func (B *builder) length(a, b int) float64 {
	return B.g.BondLength(B.m, B.m.BondBetween(a, b))
}

func (B *builder) bonds() {
	for i, b := range B.m.Bonds {
		d := B.g.BondLength(B.m, i)
		B.distance(b.At1, b.At2, d, d)
	}
}

func (B *builder) angles() {
	for center := 0; center < B.m.Len(); center++ {
		nbrs := B.m.Neighbors(center)
		for i, a := range nbrs {
			for _, b := range nbrs[i+1:] {
				d := chem.LawOfCosines(B.length(center, a), B.length(center, b), B.g.BondAngle(B.m, center, a, b))
				B.distance(a, b, d, d)
			}
		}
	}
}

//linearChain returns the maximal chain of linear atoms that contains start, plus the non-linear
//atom at each end, in bond order.
func (B *builder) linearChain(start int, visited []bool) []int {
	m := B.m
	visited[start] = true
	var halves [2][]int
	for dir, first := range m.Neighbors(start) {
		prev, cur := start, first
		for {
			halves[dir] = append(halves[dir], cur)
			if !m.IsLinear(cur) || visited[cur] {
				break
			}
			visited[cur] = true
			next := -1
			for _, n := range m.Neighbors(cur) {
				if n != prev {
					next = n
				}
			}
			if next < 0 {
				break
			}
			prev, cur = cur, next
		}
	}
	ret := make([]int, 0, len(halves[0])+len(halves[1])+1)
	for i := len(halves[0]) - 1; i >= 0; i-- {
		ret = append(ret, halves[0][i])
	}
	ret = append(ret, start)
	return append(ret, halves[1]...)
}

//chains adds the rules for linear chains: a straight line rule, fixed distances along the chain,
//distances from the substituents of each end to the chain atoms, and distances between the
//substituents of both ends.
func (B *builder) chains() {
	m := B.m
	visited := make([]bool, m.Len())
	for start := 0; start < m.Len(); start++ {
		if visited[start] || !m.IsLinear(start) {
			continue
		}
		chain := B.linearChain(start, visited)
		n := len(chain)
		if n < 3 || chain[0] == chain[n-1] {
			continue //implicit hydrogens or a cycle, nothing sensible to do.
		}
		B.rules = append(B.rules, NewStraightLine(m, chain))
		pos := make([]float64, n)
		allDouble := true
		for i := 1; i < n; i++ {
			pos[i] = pos[i-1] + B.length(chain[i-1], chain[i])
			if m.Bond(m.BondBetween(chain[i-1], chain[i])).Order != 2 {
				allDouble = false
			}
		}
		for i := 0; i < n; i++ {
			for j := i + 2; j < n; j++ {
				B.distance(chain[i], chain[j], pos[j]-pos[i], pos[j]-pos[i])
			}
		}
		first, last := chain[0], chain[n-1]
		subs1 := others(m, first, chain[1])
		subs2 := others(m, last, chain[n-2])
		for _, a := range subs1 {
			alpha := B.g.BondAngle(m, first, a, chain[1])
			for j := 2; j < n; j++ {
				d := chem.LawOfCosines(B.length(a, first), pos[j], alpha)
				B.distance(a, chain[j], d, d)
			}
		}
		for _, d := range subs2 {
			alpha := B.g.BondAngle(m, last, chain[n-2], d)
			for j := 0; j < n-2; j++ {
				dist := chem.LawOfCosines(B.length(d, last), pos[n-1]-pos[j], alpha)
				B.distance(d, chain[j], dist, dist)
			}
		}
		linear := n - 2
		for _, a := range subs1 {
			for _, d := range subs2 {
				d1, d3 := B.length(a, first), B.length(last, d)
				a1 := B.g.BondAngle(m, first, a, chain[1])
				a3 := B.g.BondAngle(m, last, chain[n-2], d)
				if allDouble && linear%2 == 1 {
					//odd cumulenes, like allenes, have their ends perpendicular.
					fixed := chem.TorsionDistance(d1, pos[n-1], d3, a1, a3, 90)
					B.distance(a, d, fixed, fixed)
					continue
				}
				B.distance(a, d, chem.TorsionDistance(d1, pos[n-1], d3, a1, a3, 0), chem.TorsionDistance(d1, pos[n-1], d3, a1, a3, 180))
			}
		}
	}
}

//others returns the neighbors of atom other than partner.
func others(m *chem.Molecule, atom, partner int) []int {
	ret := make([]int, 0, 3)
	for _, n := range m.Neighbors(atom) {
		if n != partner {
			ret = append(ret, n)
		}
	}
	return ret
}

//flatDihedral returns the dihedral a-b-c-d for a flat bond in a ring, 0 if a and d are on the
//same side of the bond and 180 otherwise.
func flatDihedral(m *chem.Molecule, a, b, c, d int) float64 {
	inA := m.SharedRing(a, b, c) > 0
	inD := m.SharedRing(b, c, d) > 0
	switch {
	case inA && inD && m.SharedRing(a, b, c, d) > 0:
		return 0
	case !inA && !inD:
		return 0
	}
	return 180
}

//torsionDistances adds the rules for atoms 3 bonds apart, across bonds that are not part of linear chains.
func (B *builder) torsionDistances() {
	m := B.m
	for bi, bond := range m.Bonds {
		b, c := bond.At1, bond.At2
		if m.IsLinear(b) || m.IsLinear(c) {
			continue
		}
		stereo := bond.Order == 2 && !m.IsAromaticBond(bi) && bond.Parity.Defined()
		flat := m.IsAromaticBond(bi) || (bond.Order == 2 && m.BondInRing(bi) && m.BondRingSize(bi) < 8)
		r1, r2 := m.StereoReferences(bi)
		for _, a := range others(m, b, c) {
			for _, d := range others(m, c, b) {
				if a == d || B.seen[pair(a, d)] {
					continue
				}
				d1, l, d3 := B.length(a, b), B.length(b, c), B.length(c, d)
				a1, a3 := B.g.BondAngle(m, b, a, c), B.g.BondAngle(m, c, b, d)
				switch {
				case stereo:
					phi := 0.0
					if bond.Parity == chem.BondParityE {
						phi = 180
					}
					if a != r1 {
						phi = 180 - phi
					}
					if d != r2 {
						phi = 180 - phi
					}
					fixed := chem.TorsionDistance(d1, l, d3, a1, a3, phi)
					B.distance(a, d, fixed, fixed)
				case flat:
					fixed := chem.TorsionDistance(d1, l, d3, a1, a3, flatDihedral(m, a, b, c, d))
					B.distance(a, d, fixed, fixed)
				default:
					B.distance(a, d, chem.TorsionDistance(d1, l, d3, a1, a3, 0), chem.TorsionDistance(d1, l, d3, a1, a3, 180))
				}
			}
		}
	}
}

//longRange adds minimum distance rules for all the remaining pairs 3 or more bonds apart, or not connected.
func (B *builder) longRange() {
	m := B.m
	topo := m.DistanceMatrix(3)
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			if B.seen[pair(i, j)] {
				continue
			}
			if t := topo[i][j]; t >= 0 && t < 3 {
				continue
			}
			B.distance(i, j, chem.MinDistance(B.g, m, i, j), math.Inf(1))
		}
	}
}

//planes adds plane rules for sp2 centers, double bonds, amide-like bonds and aromatic rings.
func (B *builder) planes() {
	m := B.m
	done := make(map[string]bool)
	add := func(atoms []int) {
		if len(atoms) < 4 {
			return
		}
		s := append([]int(nil), atoms...)
		sort.Ints(s)
		key := fmt.Sprint(s)
		if done[key] {
			return
		}
		done[key] = true
		B.rules = append(B.rules, NewPlane(m, s))
	}
	for i := 0; i < m.Len(); i++ {
		if !m.IsAromaticAtom(i) && m.Hybridization(i) == chem.Sp2 && m.Degree(i) == 3 {
			add(append([]int{i}, m.Neighbors(i)...))
		}
	}
	for i, b := range m.Bonds {
		if m.IsAromaticBond(i) || m.IsLinear(b.At1) || m.IsLinear(b.At2) {
			continue
		}
		if b.Order == 2 || m.IsAmideLike(i) {
			atoms := append([]int{b.At1, b.At2}, others(m, b.At1, b.At2)...)
			add(append(atoms, others(m, b.At2, b.At1)...))
		}
	}
	for _, r := range m.Rings() {
		if !m.AromaticRing(r...) {
			continue
		}
		atoms := append([]int(nil), r...)
		for _, a := range r {
			for _, n := range m.Neighbors(a) {
				if !isIn(atoms, n) {
					atoms = append(atoms, n)
				}
			}
		}
		add(atoms)
	}
}

func (B *builder) stereo() {
	m := B.m
	for i, at := range m.Atoms {
		if at.Parity.Defined() && (m.Degree(i) == 3 || m.Degree(i) == 4) {
			B.rules = append(B.rules, NewCenterStereo(m, i, at.Parity))
		}
	}
	for i, b := range m.Bonds {
		if b.Order == 2 && b.Parity.Defined() && !m.IsAromaticBond(i) {
			r1, r2 := m.StereoReferences(i)
			if r1 >= 0 && r2 >= 0 {
				B.rules = append(B.rules, NewBondStereo(m, i, b.Parity))
			}
		}
	}
}

//torsions adds torsion rules for the rotatable bonds and for the sp3-sp3 bonds in 6 and 7-membered rings.
func (B *builder) torsions(db torsiondb.Provider) {
	m := B.m
	for _, bi := range m.RotatableBonds() {
		b := m.Bond(bi)
		quad, ok := m.TorsionAtoms(b.At1, b.At2)
		if !ok {
			continue
		}
		e, _ := torsiondb.ForBond(db, m, bi)
		B.rules = append(B.rules, NewTorsion(m, bi, quad, e.Torsions, e.Frequencies))
	}
	for bi, b := range m.Bonds {
		rs := m.BondRingSize(bi)
		if rs < 6 || rs > 7 || b.Order != 1 || m.IsAromaticBond(bi) {
			continue
		}
		if m.Hybridization(b.At1) != chem.Sp3 || m.Hybridization(b.At2) != chem.Sp3 {
			continue
		}
		inring := func(x int) bool { return m.SharedRing(x, b.At1, b.At2) == rs }
		quad, ok := m.TorsionAtoms(b.At1, b.At2, inring)
		if !ok {
			continue
		}
		e, _ := torsiondb.ForBond(db, m, bi)
		B.rules = append(B.rules, NewTorsion(m, bi, quad, e.Torsions, e.Frequencies))
	}
}

//Torsions returns the torsion rules in the set.
func Torsions(rules []Rule) []*Torsion {
	ret := make([]*Torsion, 0, 4)
	for _, r := range rules {
		if t, ok := r.(*Torsion); ok {
			ret = append(ret, t)
		}
	}
	return ret
}
