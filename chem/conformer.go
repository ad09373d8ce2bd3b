/*
 * conformer.go, part of goConf.
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

//Outcome tells how a conformer was obtained.
type Outcome int

const (
	//Accepted conformers fulfill all the acceptance criteria.
	Accepted Outcome = iota
	//BestEffort conformers are the least bad result found when the search was exhausted.
	BestEffort
)

func (O Outcome) String() string {
	if O == BestEffort {
		return "best-effort"
	}
	return "accepted"
}

//Conformer is a set of 3D coordinates for a Molecule. It also caches the current
//torsion value of each rotatable bond of the molecule, when those are tracked.
type Conformer struct {
	Mol        *Molecule
	Coords     *v3.Matrix
	Torsions   []float64 //degrees, one per rotatable bond, if tracked
	Strain     float64
	Intensity  float64 //collision intensity
	Likelihood float64
	Outcome    Outcome
}

//NewConformer returns a conformer for m with all atoms at the origin.
func NewConformer(m *Molecule) *Conformer {
	return &Conformer{Mol: m, Coords: v3.Zeros(m.Len()), Likelihood: 1}
}

//Copy returns a deep copy of the conformer. The molecule is shared.
func (C *Conformer) Copy() *Conformer {
	ret := *C
	ret.Coords = C.Coords.Clone()
	if C.Torsions != nil {
		ret.Torsions = append([]float64(nil), C.Torsions...)
	}
	return &ret
}

//CopyFrom copies the coordinates and torsions of o into C.
func (C *Conformer) CopyFrom(o *Conformer) {
	C.Coords.Copy(o.Coords.Dense)
	if o.Torsions != nil {
		C.Torsions = append(C.Torsions[:0], o.Torsions...)
	}
}

//Len returns the number of atoms of the conformer.
func (C *Conformer) Len() int {
	return C.Coords.NVecs()
}

//Pos returns the position of the ith atom.
func (C *Conformer) Pos(i int) r3.Vec {
	return C.Coords.Vec(i)
}

//SetPos sets the position of the ith atom.
func (C *Conformer) SetPos(i int, v r3.Vec) {
	C.Coords.SetVec(i, v)
}

//Move displaces the given atoms by delta.
func (C *Conformer) Move(atoms []int, delta r3.Vec) {
	for _, i := range atoms {
		C.Coords.SetVec(i, r3.Add(C.Coords.Vec(i), delta))
	}
}

//Distance returns the distance between atoms i and j.
func (C *Conformer) Distance(i, j int) float64 {
	return r3.Norm(r3.Sub(C.Pos(i), C.Pos(j)))
}

//Angle returns the angle a-center-b, in degrees.
func (C *Conformer) Angle(a, center, b int) float64 {
	c := C.Pos(center)
	return Angle(r3.Sub(C.Pos(a), c), r3.Sub(C.Pos(b), c)) * Rad2Deg
}

//Dihedral returns the dihedral a-b-c-d in degrees, in the [0,360) range.
func (C *Conformer) Dihedral(a, b, c, d int) float64 {
	return Dihedral(C.Pos(a), C.Pos(b), C.Pos(c), C.Pos(d))
}

//Rotate rotates the given atoms by angle degrees around the axis from atom ax1 to atom ax2.
func (C *Conformer) Rotate(atoms []int, ax1, ax2 int, angle float64) {
	RotateAbout(C.Coords, atoms, C.Pos(ax1), C.Pos(ax2), angle)
}

//Translate displaces all atoms by v.
func (C *Conformer) Translate(v r3.Vec) {
	C.Coords.AddVec(C.Coords, v)
}

//Bounds returns the corners of the axis-aligned box that contains the given atoms.
func (C *Conformer) Bounds(atoms []int) (min, max r3.Vec) {
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, i := range atoms {
		p := C.Pos(i)
		min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max
}

//SeparateComponents translates each connected component of the molecule along the x axis, so their
//bounding boxes don't overlap and are separated by gap A. The first component is not moved.
func (C *Conformer) SeparateComponents(gap float64) {
	comps := C.Mol.Components(nil)
	if len(comps) < 2 {
		return
	}
	_, prevMax := C.Bounds(comps[0])
	for _, comp := range comps[1:] {
		min, max := C.Bounds(comp)
		shift := prevMax.X + gap - min.X
		C.Move(comp, r3.Vec{X: shift})
		prevMax = r3.Vec{X: max.X + shift}
	}
}

//ToMolecule copies the coordinates of the conformer into m, or into the molecule of
//the conformer if m is nil.
func (C *Conformer) ToMolecule(m *Molecule) {
	if m == nil {
		m = C.Mol
	}
	m.Coords = C.Coords.Clone()
}
