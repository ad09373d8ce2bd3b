/*
 * plane.go, part of goConf.
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
	v3 "github.com/rmera/goconf/v3"
)

//Plane keeps a group of atoms coplanar. The plane is the best plane through
//the atoms, obtained from a singular value decomposition.
type Plane struct {
	base
	groups [][]int
}

//NewPlane returns a rule that keeps the given atoms of m (at least 4) in a plane.
func NewPlane(m *chem.Molecule, atoms []int) *Plane {
	ret := &Plane{}
	ret.atoms = append([]int(nil), atoms...)
	ret.groups = make([][]int, len(atoms))
	for i, a := range ret.atoms {
		ret.groups[i] = dependents(m, a, ret.atoms)
	}
	return ret
}

func (P *Plane) Kind() Kind { return KindPlane }

//distances returns the signed distance of each atom to the best plane, and the plane normal.
func (P *Plane) distances(c *chem.Conformer) ([]float64, r3.Vec, bool) {
	axes, err := v3.PrincipalAxes(c.Coords, P.atoms)
	if err != nil {
		return nil, r3.Vec{}, false
	}
	n := axes.Normal()
	ret := make([]float64, len(P.atoms))
	for i, a := range P.atoms {
		ret[i] = r3.Dot(r3.Sub(c.Pos(a), axes.Centroid), n)
	}
	return ret, n, true
}

func (P *Plane) AddStrain(c *chem.Conformer, atomStrain []float64) float64 {
	d, _, ok := P.distances(c)
	if !ok {
		return 0
	}
	total := 0.0
	for i, a := range P.atoms {
		s := d[i] * d[i]
		if atomStrain != nil {
			atomStrain[a] += s
		}
		total += s
	}
	return total
}

//Apply moves each atom, with its terminal neighbors, toward the plane.
func (P *Plane) Apply(c *chem.Conformer, factor float64) bool {
	d, n, ok := P.distances(c)
	if !ok {
		return false
	}
	moved := false
	for i := range P.atoms {
		if d[i]*d[i] < appzero {
			continue
		}
		c.Move(P.groups[i], r3.Scale(-d[i]*factor, n))
		moved = true
	}
	return moved
}

//StraightLine keeps a chain of atoms collinear. Atoms are given in chain order.
type StraightLine struct {
	base
	//EarlyFactor is the step factor above which Apply refuses to act if the
	//atoms are not ordered along the line as in the chain.
	EarlyFactor float64
	groups      [][]int
}

//DefaultEarlyFactor is the default EarlyFactor of StraightLine rules.
const DefaultEarlyFactor = 0.5

//NewStraightLine returns a rule that keeps the chain of atoms of m collinear.
func NewStraightLine(m *chem.Molecule, chain []int) *StraightLine {
	ret := &StraightLine{EarlyFactor: DefaultEarlyFactor}
	ret.atoms = append([]int(nil), chain...)
	ret.groups = make([][]int, len(chain))
	for i, a := range ret.atoms {
		ret.groups[i] = dependents(m, a, ret.atoms)
	}
	return ret
}

func (S *StraightLine) Kind() Kind { return KindStraightLine }

//offsets returns the perpendicular offset of each atom from the best line, and the projection
//of each atom on the line.
func (S *StraightLine) offsets(c *chem.Conformer) ([]r3.Vec, []float64, bool) {
	axes, err := v3.PrincipalAxes(c.Coords, S.atoms)
	if err != nil {
		return nil, nil, false
	}
	dir := axes.Line()
	off := make([]r3.Vec, len(S.atoms))
	proj := make([]float64, len(S.atoms))
	for i, a := range S.atoms {
		p := r3.Sub(c.Pos(a), axes.Centroid)
		proj[i] = r3.Dot(p, dir)
		off[i] = r3.Sub(p, r3.Scale(proj[i], dir))
	}
	return off, proj, true
}

func (S *StraightLine) AddStrain(c *chem.Conformer, atomStrain []float64) float64 {
	off, _, ok := S.offsets(c)
	if !ok {
		return 0
	}
	total := 0.0
	for i, a := range S.atoms {
		s := r3.Dot(off[i], off[i])
		if atomStrain != nil {
			atomStrain[a] += s
		}
		total += s
	}
	return total
}

//monotonic returns true if the values strictly increase or strictly decrease.
func monotonic(v []float64) bool {
	up, down := true, true
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			up = false
		}
		if v[i] >= v[i-1] {
			down = false
		}
	}
	return up || down
}

//Apply moves the atoms toward the line. While factor is at least EarlyFactor it does nothing
//if the order of the atoms along the line is not that of the chain, since moving them
//toward the line would not fix the order.
func (S *StraightLine) Apply(c *chem.Conformer, factor float64) bool {
	off, proj, ok := S.offsets(c)
	if !ok {
		return false
	}
	if factor >= S.EarlyFactor && !monotonic(proj) {
		return false
	}
	moved := false
	for i := range S.atoms {
		if r3.Dot(off[i], off[i]) < appzero {
			continue
		}
		c.Move(S.groups[i], r3.Scale(-factor, off[i]))
		moved = true
	}
	return moved
}
