/*
 * clash.go, part of goConf.
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

//Package clash detects atoms that are closer than their van der Waals radii allow, for
//conformers assembled from rigid fragments. Pairs that can't collide in a meaningful way
//(atoms of the same fragment, atoms up to 3 bonds apart and atoms in different
//molecules) are skipped once, when the Detector is built.
package clash

import (
	"math"
	"sort"

	"github.com/rmera/goconf/chem"
)

//SkipDistance is the largest number of bonds between two atoms for which their distance is
//not checked.
const SkipDistance = 3

type pair struct {
	i, j int
	min  float64
}

//Detector checks a precomputed list of atom pairs of a molecule for collisions.
//A Detector is not modified by its methods, so it can be shared, but the conformers
//passed to it should not be modified concurrently.
type Detector struct {
	mol    *chem.Molecule
	fragOf []int
	nfrag  int
	pairs  []pair
	//Slack is subtracted from the minimum distance of each pair before checking it.
	Slack float64
}

//New returns a detector for m. fragOf gives the fragment of each atom; pairs of atoms in the
//same fragment are not checked. If fragOf is nil, all the atoms are taken to be in one fragment
//but no pair is skipped because of that. If g is nil, chem.DefaultGeometry is used.
func New(m *chem.Molecule, g chem.Geometry, fragOf []int) *Detector {
	if g == nil {
		g = chem.DefaultGeometry{}
	}
	D := &Detector{mol: m, nfrag: 1}
	byFragment := fragOf != nil
	if byFragment {
		if len(fragOf) != m.Len() {
			panic(chem.PanicMsg("goConf/clash: Fragment assignment doesn't match the molecule"))
		}
		D.fragOf = fragOf
		for _, f := range fragOf {
			if f >= D.nfrag {
				D.nfrag = f + 1
			}
		}
	} else {
		D.fragOf = make([]int, m.Len())
	}
	comp := make([]int, m.Len())
	for i, c := range m.Components(nil) {
		for _, at := range c {
			comp[at] = i
		}
	}
	topo := m.DistanceMatrix(SkipDistance)
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			if byFragment && fragOf[i] == fragOf[j] {
				continue
			}
			if comp[i] != comp[j] || topo[i][j] >= 0 {
				continue
			}
			min := chem.MinDistance(g, m, i, j)
			D.pairs = append(D.pairs, pair{i: i, j: j, min: min})
		}
	}
	return D
}

//Pairs returns the number of atom pairs checked.
func (D *Detector) Pairs() int {
	return len(D.pairs)
}

//Fragments returns the number of fragments.
func (D *Detector) Fragments() int {
	return D.nfrag
}

//Skipped returns true if the distance between atoms i and j is not checked.
func (D *Detector) Skipped(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	k := sort.Search(len(D.pairs), func(n int) bool {
		p := D.pairs[n]
		return p.i > i || (p.i == i && p.j >= j)
	})
	return k == len(D.pairs) || D.pairs[k].i != i || D.pairs[k].j != j
}

//overlap returns the squared shortfall between the distance of the pair in c and its
//minimum distance, or 0 if there is no shortfall.
func (D *Detector) overlap(c *chem.Conformer, p pair) float64 {
	min := p.min - D.Slack
	if min <= 0 {
		return 0
	}
	a, b := c.Pos(p.i), c.Pos(p.j)
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	d2 := dx*dx + dy*dy + dz*dz
	if d2 >= min*min {
		return 0
	}
	s := min - math.Sqrt(d2)
	return s * s
}

//Report contains the collisions found in a conformer.
type Report struct {
	Intensity  float64     //total collision intensity
	Collisions int         //number of colliding pairs
	Matrix     [][]float64 //collision intensity between each pair of fragments, symmetric
	Worst      [2]int      //the pair of atoms with the largest overlap
	WorstValue float64
}

//Collides returns true if at least one pair of atoms collides.
func (R *Report) Collides() bool {
	return R.Collisions > 0
}

//FragmentPairs returns the pairs of fragments with collisions, each with the lower index
//first, sorted.
func (R *Report) FragmentPairs() [][2]int {
	var ret [][2]int
	for i := range R.Matrix {
		for j := i; j < len(R.Matrix); j++ {
			if R.Matrix[i][j] > 0 {
				ret = append(ret, [2]int{i, j})
			}
		}
	}
	return ret
}

//Detect checks all the pairs in c and returns a report of the collisions.
func (D *Detector) Detect(c *chem.Conformer) *Report {
	r := &Report{Worst: [2]int{-1, -1}}
	r.Matrix = make([][]float64, D.nfrag)
	for i := range r.Matrix {
		r.Matrix[i] = make([]float64, D.nfrag)
	}
	for _, p := range D.pairs {
		s := D.overlap(c, p)
		if s == 0 {
			continue
		}
		r.Intensity += s
		r.Collisions++
		f1, f2 := D.fragOf[p.i], D.fragOf[p.j]
		r.Matrix[f1][f2] += s
		if f1 != f2 {
			r.Matrix[f2][f1] += s
		}
		if s > r.WorstValue {
			r.WorstValue = s
			r.Worst = [2]int{p.i, p.j}
		}
	}
	return r
}

//Strain returns the collision intensity between the atoms in moved and the atoms in fixed.
//Pairs within one of the sets are not considered.
func (D *Detector) Strain(c *chem.Conformer, moved, fixed []int) float64 {
	side := make([]int8, D.mol.Len())
	for _, v := range moved {
		side[v] = 1
	}
	for _, v := range fixed {
		side[v] = 2
	}
	ret := 0.0
	for _, p := range D.pairs {
		if side[p.i] == 0 || side[p.j] == 0 || side[p.i] == side[p.j] {
			continue
		}
		ret += D.overlap(c, p)
	}
	return ret
}
