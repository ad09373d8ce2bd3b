/*
 * hydrogens.go, part of goConf.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/goconf/v3"
)

//bondedValence returns the sum of the orders of the bonds of the atom. An atom with bonds
//given as aromatic but without explicit double bonds gets one extra unit.
func (M *Molecule) bondedValence(atom int) int {
	used := 0
	given := false
	pi := false
	for _, b := range M.BondsOf(atom) {
		bond := M.Bonds[b]
		used += bond.Order
		if bond.Order > 1 {
			pi = true
		}
		if bond.Aromatic {
			given = true
		}
	}
	if given && !pi {
		used++
	}
	return used
}

//ImplicitHydrogens returns the number of implicit hydrogens of the atom. If it was not
//set explicitly, it is derived from the default valences of the element, corrected by the
//charge of the atom. Unknown elements get no implicit hydrogens.
func (M *Molecule) ImplicitHydrogens(atom int) int {
	at := M.Atom(atom)
	if at.ImplicitH >= 0 {
		return at.ImplicitH
	}
	vals, ok := symbolValences[at.Symbol]
	if !ok {
		return 0
	}
	used := M.bondedValence(atom)
	for _, v := range vals {
		if cv := chargedValence(at.Symbol, v, at.Charge); cv >= used {
			return cv - used
		}
	}
	return 0
}

//HydrogenCount returns the number of hydrogens, explicit and implicit, bonded to the atom.
func (M *Molecule) HydrogenCount(atom int) int {
	n := M.ImplicitHydrogens(atom)
	for _, v := range M.Neighbors(atom) {
		if M.IsHydrogen(v) {
			n++
		}
	}
	return n
}

//OccupiedValence returns the sum of the bond orders of the atom plus its implicit hydrogens.
func (M *Molecule) OccupiedValence(atom int) int {
	return M.bondedValence(atom) + M.ImplicitHydrogens(atom)
}

//MaxValence returns the maximum valence allowed for the atom, given its charge, and
//false if the element is unknown.
func (M *Molecule) MaxValence(atom int) (int, bool) {
	at := M.Atom(atom)
	vals, ok := symbolValences[at.Symbol]
	if !ok {
		return 0, false
	}
	return chargedValence(at.Symbol, vals[len(vals)-1], at.Charge), true
}

//Validate returns a StructureError for the first atom whose occupied valence
//exceeds its maximum valence, or nil if there is none.
func (M *Molecule) Validate() error {
	for i, at := range M.Atoms {
		max, ok := M.MaxValence(i)
		if !ok {
			continue
		}
		if occ := M.OccupiedValence(i); occ > max {
			return StructureError{Atom: i, Symbol: at.Symbol, Occupied: occ, Max: max, deco: []string{"Validate"}}
		}
	}
	return nil
}

//AddHydrogens turns the implicit hydrogens of all atoms into explicit atoms. The new atoms are
//appended after all existing atoms, so the stereo parities of the molecule are preserved.
//If the molecule has coordinates, the hydrogens are placed near their parent atoms, in the
//same plane if the coordinates are 2D. It returns the number of hydrogens added.
func (M *Molecule) AddHydrogens() int {
	n := M.Len()
	counts := make([]int, n)
	total := 0
	for i := range counts {
		counts[i] = M.ImplicitHydrogens(i)
		total += counts[i]
	}
	if total == 0 {
		for _, at := range M.Atoms {
			at.ImplicitH = 0
		}
		return 0
	}
	var coords *v3.Matrix
	if M.Coords != nil {
		coords = v3.Zeros(n + total)
		coords.Stack(M.Coords, v3.Zeros(total))
	}
	flat := M.Coords != nil && isFlat(M.Coords)
	for i, nh := range counts {
		var dirs []r3.Vec
		if coords != nil && nh > 0 {
			dirs = M.hydrogenDirections(coords, i, nh, flat)
		}
		for k := 0; k < nh; k++ {
			h := M.AddAtom("H", 0)
			M.Atoms[h].ImplicitH = 0
			M.AddBond(i, h, 1)
			if coords != nil {
				coords.SetVec(h, r3.Add(coords.Vec(i), dirs[k]))
			}
		}
		M.Atoms[i].ImplicitH = 0
	}
	if coords != nil {
		M.Coords = coords
	}
	return total
}

//isFlat returns true if all the z coordinates are zero.
func isFlat(coords *v3.Matrix) bool {
	for i := 0; i < coords.NVecs(); i++ {
		if coords.At(i, 2) != 0 {
			return false
		}
	}
	return true
}

//hydrogenDirections returns nh displacement vectors from the atom to place new hydrogens, pointing
//away from the existing neighbors.
func (M *Molecule) hydrogenDirections(coords *v3.Matrix, atom, nh int, flat bool) []r3.Vec {
	const hdist = 1.0
	center := coords.Vec(atom)
	var sum r3.Vec
	for _, n := range M.Neighbors(atom) {
		d := r3.Sub(coords.Vec(n), center)
		if !v3.IsZero(d) {
			sum = r3.Add(sum, r3.Unit(d))
		}
	}
	dir := r3.Vec{X: 1}
	if !v3.IsZero(sum) {
		dir = r3.Unit(r3.Scale(-1, sum))
	} else if M.Degree(atom) > 0 {
		//the neighbors cancel out, so we go perpendicular to them.
		d := r3.Sub(coords.Vec(M.Neighbors(atom)[0]), center)
		if !v3.IsZero(d) {
			dir = v3.Perpendicular(d)
			if flat {
				dir = r3.Unit(r3.Vec{X: -d.Y, Y: d.X})
			}
		}
	}
	axis := r3.Vec{Z: 1}
	if !flat {
		axis = v3.Perpendicular(dir)
	}
	ret := make([]r3.Vec, nh)
	step := 60 * Deg2Rad
	for k := range ret {
		angle := (float64(k) - float64(nh-1)/2) * step
		if math.Abs(angle) < 1e-12 {
			ret[k] = r3.Scale(hdist, dir)
			continue
		}
		ret[k] = r3.Scale(hdist, r3.Rotate(dir, angle, axis))
	}
	return ret
}
