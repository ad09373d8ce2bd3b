/*
 * stereo.go, part of goConf.
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
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/goconf/chem"
)

//StereoPenalty is the strain of a stereo rule that is not fulfilled.
const StereoPenalty = 4.0

//Stereo enforces the parity of a stereo center or the E/Z parity of a double bond. When
//the parity is wrong, Apply mirrors the smallest substituent of a center through the plane of
//the other three, or rotates one side of a double bond by 180 degrees.
type Stereo struct {
	base
	mol        *chem.Molecule
	center     int //-1 for bonds
	bond       int //-1 for centers
	parity     chem.Parity
	bondParity chem.BondParity
	moving     []int  //atoms mirrored or rotated to fix the parity
	plane      [3]int //atoms that define the mirror plane, for centers
	axis       [2]int //atoms that define the rotation axis, for bonds
}

//NewCenterStereo returns a rule that enforces the given parity on the stereo center of m.
//The center must have 3 or 4 neighbors.
func NewCenterStereo(m *chem.Molecule, center int, parity chem.Parity) *Stereo {
	ret := &Stereo{mol: m, center: center, bond: -1, parity: parity}
	nbrs := m.StereoNeighbors(center)
	ret.atoms = append([]int{center}, nbrs...)
	if len(nbrs) == 3 {
		ret.moving = []int{center}
		copy(ret.plane[:], nbrs)
		return ret
	}
	//the substituent with the fewest atoms behind it, if any is not in a ring.
	best := -1
	var bestSide []int
	for _, n := range nbrs {
		side := m.Side(m.BondBetween(center, n), n)
		if side == nil {
			continue
		}
		if best < 0 || len(side) < len(bestSide) {
			best, bestSide = n, side
		}
	}
	if best < 0 {
		//all substituents in rings, so we move only the last one.
		best = nbrs[len(nbrs)-1]
		bestSide = dependents(m, best, ret.atoms)
	}
	ret.moving = bestSide
	k := 0
	for _, n := range nbrs {
		if n != best {
			ret.plane[k] = n
			k++
		}
	}
	return ret
}

//NewBondStereo returns a rule that enforces the given E/Z parity on the double bond of m.
func NewBondStereo(m *chem.Molecule, bond int, parity chem.BondParity) *Stereo {
	b := m.Bond(bond)
	ret := &Stereo{mol: m, center: -1, bond: bond, bondParity: parity}
	r1, r2 := m.StereoReferences(bond)
	ret.atoms = []int{r1, b.At1, b.At2, r2}
	ret.axis = [2]int{b.At1, b.At2}
	side, _, _ := m.SmallerSide(bond)
	if side == nil {
		//a double bond in a large ring, only the substituents of one end can be moved.
		side = make([]int, 0, 3)
		for _, n := range m.Neighbors(b.At2) {
			if n != b.At1 {
				side = append(side, dependents(m, n, ret.atoms)...)
			}
		}
	}
	ret.moving = side
	return ret
}

func (S *Stereo) Kind() Kind { return KindStereo }

//Center returns the stereo center of the rule, or -1 if the rule concerns a bond.
func (S *Stereo) Center() int { return S.center }

//Bond returns the stereo bond of the rule, or -1 if the rule concerns a center.
func (S *Stereo) Bond() int { return S.bond }

//fulfilled returns true if the parity in c is the required one.
func (S *Stereo) fulfilled(c *chem.Conformer) bool {
	if S.center >= 0 {
		return chem.ParityFromCoords(S.mol, c.Coords, S.center) == S.parity
	}
	return chem.BondParityFromCoords(S.mol, c.Coords, S.bond) == S.bondParity
}

func (S *Stereo) AddStrain(c *chem.Conformer, atomStrain []float64) float64 {
	if S.fulfilled(c) {
		return 0
	}
	if atomStrain != nil {
		if S.center >= 0 {
			atomStrain[S.center] += StereoPenalty
		} else {
			atomStrain[S.axis[0]] += StereoPenalty / 2
			atomStrain[S.axis[1]] += StereoPenalty / 2
		}
	}
	return StereoPenalty
}

//Apply inverts the configuration if it is wrong. The factor is not used, as the
//correction can't be done partially.
func (S *Stereo) Apply(c *chem.Conformer, factor float64) bool {
	if S.fulfilled(c) {
		return false
	}
	if S.bond >= 0 {
		c.Rotate(S.moving, S.axis[0], S.axis[1], 180)
		return true
	}
	p0, p1, p2 := c.Pos(S.plane[0]), c.Pos(S.plane[1]), c.Pos(S.plane[2])
	normal := r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))
	if r3.Norm(normal) < appzero {
		//a degenerate plane, we just push the moving atoms through the center.
		ctr := c.Pos(S.center)
		for _, a := range S.moving {
			c.SetPos(a, r3.Sub(r3.Scale(2, ctr), c.Pos(a)))
		}
		return true
	}
	chem.Mirror(c.Coords, S.moving, p0, normal)
	return true
}
