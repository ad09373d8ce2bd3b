/*
 * rule.go, part of goConf.
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

//Package rules contains the geometric constraints used to build 3D structures from molecular graphs.
//
//Each rule concerns a fixed set of atoms. It adds its strain, a squared deviation
//from the ideal geometry, to the atoms involved, and it can apply a corrective move
//to a conformer, scaled by a step factor between 0 and 1. The set of rule kinds is closed:
//Distance, Plane, StraightLine, Stereo and Torsion.
package rules

import (
	"github.com/rmera/goconf/chem"
)

//Kind identifies the type of a rule.
type Kind int

const (
	KindDistance Kind = iota
	KindPlane
	KindStraightLine
	KindStereo
	KindTorsion
)

//NKinds is the number of rule kinds.
const NKinds = 5

func (K Kind) String() string {
	switch K {
	case KindDistance:
		return "distance"
	case KindPlane:
		return "plane"
	case KindStraightLine:
		return "line"
	case KindStereo:
		return "stereo"
	case KindTorsion:
		return "torsion"
	}
	return "unknown"
}

//Rule is a geometric constraint on a set of atoms. Only the types in this package
//implement it.
type Rule interface {
	//Kind returns the type of the rule.
	Kind() Kind
	//Atoms returns the atoms whose geometry the rule constrains. The slice
	//should not be modified.
	Atoms() []int
	//AddStrain adds the strain of the rule in c to the strain of each atom involved
	//in atomStrain (which can be nil) and returns the total strain of the rule.
	AddStrain(c *chem.Conformer, atomStrain []float64) float64
	//Apply moves atoms of c to reduce the strain of the rule, by a fraction factor
	//of the full correction. It returns true if something was moved.
	Apply(c *chem.Conformer, factor float64) bool
	//Enabled returns whether the rule is taken into account.
	Enabled() bool
	//SetEnabled enables or disables the rule.
	SetEnabled(enabled bool)
	sealed()
}

//base contains what is shared by all the rules.
type base struct {
	atoms    []int
	disabled bool
}

func (B *base) Atoms() []int {
	return B.atoms
}

func (B *base) Enabled() bool {
	return !B.disabled
}

func (B *base) SetEnabled(enabled bool) {
	B.disabled = !enabled
}

func (B *base) sealed() {}

//appzero is the tolerance below which strains and vectors are considered zero.
const appzero = 1e-8

//dependents returns the atom plus its terminal neighbors that are not in the
//exclude list. Those atoms are moved together with the atom.
func dependents(m *chem.Molecule, atom int, exclude []int) []int {
	ret := []int{atom}
	if m.IsTerminal(atom) {
		return ret
	}
	for _, n := range m.Neighbors(atom) {
		if m.IsTerminal(n) && !isIn(exclude, n) {
			ret = append(ret, n)
		}
	}
	return ret
}

func isIn(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

//addAll adds s to the strain of each of the atoms.
func addAll(atomStrain []float64, atoms []int, s float64) {
	if atomStrain == nil {
		return
	}
	for _, a := range atoms {
		atomStrain[a] += s
	}
}

//Strain returns the total strain of the enabled rules in c, and fills atomStrain, which can be nil,
//with the strain of each atom. atomStrain is zeroed first.
func Strain(rules []Rule, c *chem.Conformer, atomStrain []float64) float64 {
	for i := range atomStrain {
		atomStrain[i] = 0
	}
	total := 0.0
	for _, r := range rules {
		if r.Enabled() {
			total += r.AddStrain(c, atomStrain)
		}
	}
	return total
}

//Count returns the number of rules of each kind.
func Count(rules []Rule) [NKinds]int {
	var ret [NKinds]int
	for _, r := range rules {
		ret[r.Kind()]++
	}
	return ret
}
