/*
 * distance.go, part of goConf.
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

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/goconf/chem"
)

//Distance keeps the distance between two atoms at a fixed value (Min==Max) or
//within a range. Max can be +Inf.
type Distance struct {
	base
	Min, Max float64
	groups   [2][]int
	terminal [2]bool
}

//NewDistance returns a rule for the distance between atoms a and b of m.
func NewDistance(m *chem.Molecule, a, b int, min, max float64) *Distance {
	ret := &Distance{Min: min, Max: max}
	ret.atoms = []int{a, b}
	ret.groups[0] = dependents(m, a, ret.atoms)
	ret.groups[1] = dependents(m, b, ret.atoms)
	ret.terminal[0] = m.IsTerminal(a)
	ret.terminal[1] = m.IsTerminal(b)
	return ret
}

//NewFixedDistance returns a rule that keeps atoms a and b of m at the distance d.
func NewFixedDistance(m *chem.Molecule, a, b int, d float64) *Distance {
	return NewDistance(m, a, b, d, d)
}

func (D *Distance) Kind() Kind { return KindDistance }

//Fixed returns true if the rule has a single target distance.
func (D *Distance) Fixed() bool {
	return D.Min == D.Max
}

//deviation returns the signed amount by which the distance d must change to reach the
//nearest bound, or 0 if d is within the bounds.
func (D *Distance) deviation(d float64) float64 {
	switch {
	case d < D.Min:
		return D.Min - d
	case d > D.Max:
		return D.Max - d
	}
	return 0
}

func (D *Distance) AddStrain(c *chem.Conformer, atomStrain []float64) float64 {
	dev := D.deviation(c.Distance(D.atoms[0], D.atoms[1]))
	s := dev * dev
	addAll(atomStrain, D.atoms, s)
	return s
}

//Apply moves both atoms, with their terminal neighbors, along the line that joins them, half
//of the correction each. A terminal atom bonded to a non terminal one takes the whole correction.
func (D *Distance) Apply(c *chem.Conformer, factor float64) bool {
	p0, p1 := c.Pos(D.atoms[0]), c.Pos(D.atoms[1])
	v := r3.Sub(p1, p0)
	d := r3.Norm(v)
	dev := D.deviation(d)
	if math.Abs(dev) < appzero {
		return false
	}
	u := r3.Vec{X: 1}
	if d > appzero {
		u = r3.Scale(1/d, v)
	}
	share0, share1 := 0.5, 0.5
	if D.terminal[0] && !D.terminal[1] {
		share0, share1 = 1, 0
	} else if D.terminal[1] && !D.terminal[0] {
		share0, share1 = 0, 1
	}
	move := dev * factor
	if share0 > 0 {
		c.Move(D.groups[0], r3.Scale(-move*share0, u))
	}
	if share1 > 0 {
		c.Move(D.groups[1], r3.Scale(move*share1, u))
	}
	return true
}
