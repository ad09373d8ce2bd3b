/*
 * assembly.go, part of goConf.
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
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/goconf/chem"
)

//maxBases is the number of base placements kept by an Assembler.
const maxBases = 128

//Assembler builds full conformers from a populated Decomposition. It is not safe for concurrent use.
type Assembler struct {
	d     *Decomposition
	bases map[string]*chem.Conformer
}

//NewAssembler returns an assembler for d, whose fragments must have local conformers.
func NewAssembler(d *Decomposition) *Assembler {
	return &Assembler{d: d, bases: make(map[string]*chem.Conformer)}
}

//transform places local coordinates: a rotation around the local origin followed by a translation.
type transform struct {
	rot    r3.Rotation
	rotate bool
	origin r3.Vec //local point that goes to dest
	dest   r3.Vec
}

func (T transform) apply(v r3.Vec) r3.Vec {
	v = r3.Sub(v, T.origin)
	if T.rotate {
		v = T.rot.Rotate(v)
	}
	return r3.Add(v, T.dest)
}

//place sets the global positions of the core atoms of f, using its kth local conformer, and
//records where f predicts the Fragment2 atom of each of its child bonds to be.
func (A *Assembler) place(c *chem.Conformer, f *Fragment, k int, t transform, pred []r3.Vec) {
	local := f.Conformers[k].Coords
	for _, at := range f.Core {
		c.SetPos(at, t.apply(local.Vec(f.Row(at))))
	}
	for _, b := range A.d.Bonds {
		if b.Fragment1 == f.Index {
			pred[b.Index] = t.apply(local.Vec(f.Row(b.Atoms[2])))
		}
	}
}

func baseKey(conformers []int) string {
	var b strings.Builder
	for _, v := range conformers {
		fmt.Fprintf(&b, "%d,", v)
	}
	return b.String()
}

//Base returns a conformer with each fragment in the given local conformer, and each bond at
//whatever torsion results from joining the fragments. Fragment2 of each bond is placed so its
//axis from b to c matches the one of Fragment1, and c is where Fragment1 expects it. The returned
//conformer is cached and should not be modified.
func (A *Assembler) Base(conformers []int) *chem.Conformer {
	key := baseKey(conformers)
	if c, ok := A.bases[key]; ok {
		return c
	}
	d := A.d
	c := chem.NewConformer(d.Mol)
	pred := make([]r3.Vec, len(d.Bonds))
	for _, r := range d.Roots {
		A.place(c, d.Fragments[r], conformers[r], transform{}, pred)
	}
	for _, b := range d.Bonds {
		f := d.Fragments[b.Fragment2]
		local := f.Conformers[conformers[f.Index]].Coords
		lb := local.Vec(f.Row(b.Atoms[1]))
		lc := local.Vec(f.Row(b.Atoms[2]))
		gb := c.Pos(b.Atoms[1])
		t := transform{origin: lc, dest: pred[b.Index]}
		t.rot, t.rotate = chem.AlignRotation(r3.Sub(lc, lb), r3.Sub(pred[b.Index], gb))
		A.place(c, f, conformers[f.Index], t, pred)
	}
	c.Torsions = make([]float64, len(d.Bonds))
	for i, b := range d.Bonds {
		c.Torsions[i] = b.Dihedral(c)
	}
	c.Likelihood = 1
	for i, f := range d.Fragments {
		c.Likelihood *= f.Conformers[conformers[i]].Likelihood
	}
	if len(A.bases) >= maxBases {
		A.bases = make(map[string]*chem.Conformer)
	}
	A.bases[key] = c
	return c
}

//Materialize returns a new conformer with each fragment in the given local conformer and each
//rotatable bond with the given torsion. Its Likelihood is the product of the likelihoods of
//all the choices.
func (A *Assembler) Materialize(torsions, conformers []int) *chem.Conformer {
	c := A.Base(conformers).Copy()
	for i, b := range A.d.Bonds {
		angle := b.Torsions[torsions[i]]
		b.SetTorsion(c, angle)
		c.Torsions[i] = b.Dihedral(c)
		c.Likelihood *= b.Likelihoods[torsions[i]]
	}
	return c
}
