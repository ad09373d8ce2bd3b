/*
 * bond.go, part of goConf.
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

package fragment

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/clash"
	"github.com/rmera/goconf/torsiondb"
)

//Parameters of the likelihood refinement in ConnectFragments.
const (
	//DefaultMaxStrain is the collision strain, in A^2, at which a torsion becomes impossible.
	DefaultMaxStrain = 1.0
	//edgeStrain is the fraction of the maximum strain over which the edges of the range of a torsion are tried.
	edgeStrain = 0.25
	//sameTorsion is the largest difference, in degrees, between two torsions considered equal.
	sameTorsion = 1.0
)

//RotatableBond is a bond between two fragments, with a discrete set of possible torsions.
//Torsions, Frequencies, Likelihoods, Ranges and Strains are index-aligned.
type RotatableBond struct {
	Index     BondIndex
	Bond      int //index of the bond in the molecule
	Fragment1 FragmentIndex
	Fragment2 FragmentIndex
	//Atoms defining the torsion, a-b-c-d. b belongs to Fragment1 and c to Fragment2.
	Atoms [4]int
	//Smaller are the atoms on the side of the bond with fewer atoms. SmallerIsChild is true if
	//that is the side of c.
	Smaller        []int
	SmallerIsChild bool
	ID             string //class of the bond in the torsion table
	Found          bool   //false if the torsions were predicted
	Torsions       []float64
	Frequencies    []float64
	Likelihoods    []float64
	Ranges         [][2]float64
	Strains        []float64 //collision strain of each torsion, set by ConnectFragments
}

func newRotatableBond(m *chem.Molecule, bond, b, c int, db torsiondb.Provider) *RotatableBond {
	R := &RotatableBond{Bond: bond, ID: torsiondb.BondID(m, bond)}
	atoms, ok := m.TorsionAtoms(b, c)
	if !ok {
		//rotatable bonds always have other neighbors at both ends.
		panic(chem.PanicMsg("goConf/fragment: rotatable bond without torsion atoms"))
	}
	R.Atoms = atoms
	parent, child := m.Side(bond, b), m.Side(bond, c)
	R.Smaller, R.SmallerIsChild = child, true
	if len(parent) < len(child) {
		R.Smaller, R.SmallerIsChild = parent, false
	}
	e, found := torsiondb.ForBond(db, m, bond)
	R.Found = found
	R.Torsions = e.Torsions
	R.Frequencies = e.Frequencies
	R.Ranges = e.Ranges
	R.Strains = make([]float64, len(R.Torsions))
	R.Likelihoods = append([]float64(nil), R.Frequencies...)
	R.normalize()
	return R
}

//Len returns the number of torsions of the bond.
func (R *RotatableBond) Len() int {
	return len(R.Torsions)
}

//Dihedral returns the current torsion of the bond in c, in degrees.
func (R *RotatableBond) Dihedral(c *chem.Conformer) float64 {
	a := R.Atoms
	return c.Dihedral(a[0], a[1], a[2], a[3])
}

//SetTorsion rotates the smaller side of the bond in c so the torsion becomes angle degrees.
func (R *RotatableBond) SetTorsion(c *chem.Conformer, angle float64) {
	delta := chem.AngleDiff(R.Dihedral(c), angle)
	if !R.SmallerIsChild {
		delta = -delta
	}
	c.Rotate(R.Smaller, R.Atoms[1], R.Atoms[2], delta)
}

//normalize scales the positive likelihoods so they add up to 1, sets the others to 0 and, if
//no likelihood is positive, gives all the weight to the least strained torsion.
func (R *RotatableBond) normalize() {
	sum := 0.0
	for i, v := range R.Likelihoods {
		if v <= 0 || math.IsNaN(v) {
			R.Likelihoods[i] = 0
			continue
		}
		sum += v
	}
	if sum > 0 {
		floats.Scale(1/sum, R.Likelihoods)
		return
	}
	best := 0
	for i, s := range R.Strains {
		if s < R.Strains[best] {
			best = i
		}
	}
	R.Likelihoods[best] = 1
}

//insert adds a torsion with the given parameters to the bond.
func (R *RotatableBond) insert(angle, freq, strain float64, rng [2]float64) {
	R.Torsions = append(R.Torsions, angle)
	R.Frequencies = append(R.Frequencies, freq)
	R.Ranges = append(R.Ranges, rng)
	R.Strains = append(R.Strains, strain)
	R.Likelihoods = append(R.Likelihoods, 0)
}

func (R *RotatableBond) has(angle float64) bool {
	for _, t := range R.Torsions {
		if math.Abs(chem.AngleDiff(t, angle)) < sameTorsion {
			return true
		}
	}
	return false
}

//ConnectFragments recalculates the likelihood of each torsion of the bond, given the collisions
//between the atoms of both fragments. c contains both fragments already joined by the bond, and is
//not modified. parent and child are the atoms of Fragment1 and Fragment2, respectively.
//The likelihood of each torsion becomes its normalized frequency times 1-(s/maxStrain)^2, where s is
//the collision strain, or 0 if s>maxStrain. For strained torsions, the edges of their ranges are
//tried, and added as new torsions if they are less strained. At the end, the likelihoods are
//normalized, and at least one of them is positive. If maxStrain is not positive, DefaultMaxStrain is used.
func (R *RotatableBond) ConnectFragments(c *chem.Conformer, det *clash.Detector, parent, child []int, maxStrain float64) {
	if maxStrain <= 0 {
		maxStrain = DefaultMaxStrain
	}
	work := c.Copy()
	orig := make([]r3.Vec, len(child))
	for i, at := range child {
		orig[i] = c.Pos(at)
	}
	current := R.Dihedral(c)
	strain := func(angle float64) float64 {
		for i, at := range child {
			work.SetPos(at, orig[i])
		}
		//child holds c and d, or d's position is fixed by it, so rotating it by
		//the difference is enough.
		work.Rotate(child, R.Atoms[1], R.Atoms[2], chem.AngleDiff(current, angle))
		return det.Strain(work, child, parent)
	}
	n := len(R.Torsions)
	for i := 0; i < n; i++ {
		R.Strains[i] = strain(R.Torsions[i])
		if R.Strains[i] <= edgeStrain*maxStrain {
			continue
		}
		best, bestStrain := 0.0, R.Strains[i]
		for _, edge := range R.Ranges[i] {
			if s := strain(edge); s < bestStrain {
				best, bestStrain = edge, s
			}
		}
		if bestStrain < R.Strains[i] && !R.has(best) {
			R.insert(chem.NormalizeAngle(best), R.Frequencies[i]/2, bestStrain, R.Ranges[i])
		}
	}
	total := floats.Sum(R.Frequencies)
	for i, s := range R.Strains {
		l := 0.0
		if total > 0 && s < maxStrain {
			r := s / maxStrain
			l = R.Frequencies[i] / total * (1 - r*r)
		}
		R.Likelihoods[i] = l
	}
	R.normalize()
}
