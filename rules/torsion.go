/*
 * torsion.go, part of goConf.
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
	"math"

	"github.com/rmera/goconf/chem"
)

//Torsion drives the dihedral around a bond toward the nearest of a set of preferred
//angles, taking their frequencies into account.
type Torsion struct {
	base
	Bond        int
	Torsions    []float64 //degrees
	Frequencies []float64
	quad        [4]int
	side        []int //the smaller side of the bond, nil for ring bonds
	sideIsD     bool  //the smaller side contains the last atom of the torsion
	shells      [2][2][]int
	adjacent    []int
	maxFreq     float64
}

//Parameters of the soft torsion strain.
const (
	TorsionTolerance = 15.0 //degrees
	torsionWeight    = 0.05
)

//NewTorsion returns a rule for the dihedral quad[0]-quad[1]-quad[2]-quad[3] of m, where
//quad[1]-quad[2] is the given bond.
func NewTorsion(m *chem.Molecule, bond int, quad [4]int, torsions, frequencies []float64) *Torsion {
	ret := &Torsion{Bond: bond, quad: quad}
	ret.atoms = quad[:]
	ret.Torsions = append([]float64(nil), torsions...)
	ret.Frequencies = append([]float64(nil), frequencies...)
	for _, f := range ret.Frequencies {
		ret.maxFreq = math.Max(ret.maxFreq, f)
	}
	b, c := quad[1], quad[2]
	for _, pair := range [2][2]int{{b, c}, {c, b}} {
		for _, n := range m.Neighbors(pair[0]) {
			if n != pair[1] {
				ret.adjacent = append(ret.adjacent, n)
			}
		}
	}
	if side := m.Side(bond, c); side != nil {
		ret.side = side
		ret.sideIsD = true
		if other := m.Side(bond, b); len(other) < len(side) {
			ret.side = other
			ret.sideIsD = false
		}
		return ret
	}
	//ring bond: first and second neighbor shells of each end.
	db := m.Distances(b, 2)
	dc := m.Distances(c, 2)
	for i := 0; i < m.Len(); i++ {
		switch {
		case i == b || i == c:
		case dc[i] == 1:
			ret.shells[1][0] = append(ret.shells[1][0], i)
		case db[i] == 1:
			ret.shells[0][0] = append(ret.shells[0][0], i)
		case dc[i] == 2 && db[i] != 2:
			ret.shells[1][1] = append(ret.shells[1][1], i)
		case db[i] == 2 && dc[i] != 2:
			ret.shells[0][1] = append(ret.shells[0][1], i)
		}
	}
	return ret
}

func (T *Torsion) Kind() Kind { return KindTorsion }

//Quad returns the four atoms that define the dihedral.
func (T *Torsion) Quad() [4]int { return T.quad }

//Ring returns true if the bond of the rule is in a ring.
func (T *Torsion) Ring() bool { return T.side == nil }

//Target returns the preferred angle to which the current dihedral phi should move: the one
//with the smallest distance to phi, where distances to less frequent angles count more.
func (T *Torsion) Target(phi float64) float64 {
	best := phi
	bestScore := math.Inf(1)
	for i, t := range T.Torsions {
		w := 1.0
		if T.maxFreq > 0 {
			w = 0.5 + 0.5*T.Frequencies[i]/T.maxFreq
		}
		if score := math.Abs(chem.AngleDiff(phi, t)) / w; score < bestScore {
			best, bestScore = t, score
		}
	}
	return best
}

//deviation returns the current dihedral and the signed difference to the target angle.
func (T *Torsion) deviation(c *chem.Conformer) (float64, float64) {
	phi := c.Dihedral(T.quad[0], T.quad[1], T.quad[2], T.quad[3])
	return phi, chem.AngleDiff(phi, T.Target(phi))
}

func (T *Torsion) AddStrain(c *chem.Conformer, atomStrain []float64) float64 {
	if len(T.Torsions) == 0 {
		return 0
	}
	_, dev := T.deviation(c)
	excess := math.Abs(dev) - TorsionTolerance
	if excess <= 0 {
		return 0
	}
	excess *= chem.Deg2Rad
	s := torsionWeight * excess * excess
	if atomStrain != nil {
		atomStrain[T.quad[1]] += s / 2
		atomStrain[T.quad[2]] += s / 2
	}
	return s
}

//Apply rotates the smaller side of the bond to bring the dihedral toward its target. For
//ring bonds, the neighbors of both ends are rotated in opposite directions by half
//the correction, and the second neighbors by a quarter.
func (T *Torsion) Apply(c *chem.Conformer, factor float64) bool {
	if len(T.Torsions) == 0 {
		return false
	}
	_, dev := T.deviation(c)
	if math.Abs(dev) < appzero {
		return false
	}
	angle := dev * factor
	b, cc := T.quad[1], T.quad[2]
	if T.side != nil {
		if !T.sideIsD {
			angle = -angle
		}
		c.Rotate(T.side, b, cc, angle)
		return true
	}
	c.Rotate(T.shells[1][0], b, cc, angle/2)
	c.Rotate(T.shells[1][1], b, cc, angle/4)
	c.Rotate(T.shells[0][0], b, cc, -angle/2)
	c.Rotate(T.shells[0][1], b, cc, -angle/4)
	return true
}

//DisableIfColliding disables the rule if all the atoms bonded to the atoms of its bond
//have a strain over threshold, which means the torsion is probably fighting against a collision.
//It returns true if the rule was disabled.
func (T *Torsion) DisableIfColliding(atomStrain []float64, threshold float64) bool {
	if len(T.adjacent) == 0 {
		return false
	}
	for _, a := range T.adjacent {
		if atomStrain[a] <= threshold {
			return false
		}
	}
	T.SetEnabled(false)
	return true
}
