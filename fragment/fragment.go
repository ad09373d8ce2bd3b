/*
 * fragment.go, part of goConf.
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

//Package fragment splits a molecule into rigid fragments joined by rotatable bonds, obtains
//local conformers for each fragment, and assembles full conformers from a choice of local
//conformer per fragment and torsion per rotatable bond.
//
//Fragments form a tree (one per separate molecule) when only rotatable bonds are cut. The
//tree is rooted at the largest fragment, and each RotatableBond goes from the fragment
//closer to the root (Fragment1) to the other one (Fragment2).
package fragment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/torsiondb"
	v3 "github.com/rmera/goconf/v3"
)

//FragmentIndex is the index of a fragment in a Decomposition.
type FragmentIndex int

//BondIndex is the index of a rotatable bond in a Decomposition. It is not
//the index of the bond in the molecule.
type BondIndex int

//LocalConformer is a set of coordinates for the extended atoms of a fragment.
type LocalConformer struct {
	Coords     *v3.Matrix //one row per extended atom, in the order of Fragment.Extended
	Likelihood float64
	Strain     float64
}

//Fragment is a set of atoms joined by non-rotatable bonds, which is treated as rigid.
type Fragment struct {
	Index FragmentIndex
	//Core are the atoms of the fragment, Extended the core plus the atoms bonded to it.
	//Both are molecule indexes, sorted.
	Core       []int
	Extended   []int
	Conformers []*LocalConformer
	//Key identifies fragments with the same extended atoms and bonds, in the same order.
	Key  string
	rows map[int]int
}

//Row returns the row of the atom in the local coordinates, or -1 if the atom is not
//among the extended atoms.
func (F *Fragment) Row(atom int) int {
	if r, ok := F.rows[atom]; ok {
		return r
	}
	return -1
}

//IsCore returns true if the atom belongs to the fragment core.
func (F *Fragment) IsCore(atom int) bool {
	i := sort.SearchInts(F.Core, atom)
	return i < len(F.Core) && F.Core[i] == atom
}

//Likelihoods returns the likelihood of each local conformer.
func (F *Fragment) Likelihoods() []float64 {
	ret := make([]float64, len(F.Conformers))
	for i, c := range F.Conformers {
		ret[i] = c.Likelihood
	}
	return ret
}

//Molecule returns the sub-molecule formed by the extended atoms of the fragment. The atoms
//outside the core lose their stereo parities, since their neighbors are not all included.
func (F *Fragment) Molecule(m *chem.Molecule) *chem.Molecule {
	sub := m.Sub(append([]int(nil), F.Extended...))
	for i, at := range F.Extended {
		if !F.IsCore(at) {
			sub.Atoms[i].Parity = chem.ParityNone
		}
	}
	return sub
}

//fragmentKey returns a string that identifies the graph of the sub-molecule.
func fragmentKey(sub *chem.Molecule) string {
	var b strings.Builder
	for _, at := range sub.Atoms {
		fmt.Fprintf(&b, "%s%+d/%d/%d;", at.Symbol, at.Charge, at.ImplicitH, at.Parity)
	}
	b.WriteString("|")
	for _, bo := range sub.Bonds {
		fmt.Fprintf(&b, "%d-%d:%d:%t:%d;", bo.At1, bo.At2, bo.Order, bo.Aromatic, bo.Parity)
	}
	return b.String()
}

//Decomposition is the result of splitting a molecule into rigid fragments.
type Decomposition struct {
	Mol       *chem.Molecule
	Fragments []*Fragment
	//Bonds are sorted so that the Fragment1 of each bond is either a root or the
	//Fragment2 of a previous bond.
	Bonds      []*RotatableBond
	FragmentOf []FragmentIndex //per atom
	Roots      []FragmentIndex //one per separate molecule
	parent     []BondIndex     //per fragment, -1 for roots
}

//Decompose splits m, which should have explicit hydrogens, into rigid fragments and
//rotatable bonds. The torsions of each bond are taken from db, or from the default
//table if db is nil. The fragments have no local conformers until Populate is called.
func Decompose(m *chem.Molecule, db torsiondb.Provider) *Decomposition {
	if db == nil {
		db = torsiondb.Default()
	}
	rot := make(map[int]bool)
	for _, b := range m.RotatableBonds() {
		rot[b] = true
	}
	D := &Decomposition{Mol: m, FragmentOf: make([]FragmentIndex, m.Len())}
	for i, core := range m.Components(func(b *chem.Bond) bool { return rot[b.Index] }) {
		f := &Fragment{Index: FragmentIndex(i), Core: core}
		ext := append([]int(nil), core...)
		for _, at := range core {
			D.FragmentOf[at] = f.Index
			for _, n := range m.Neighbors(at) {
				if !isIn(n, ext) {
					ext = append(ext, n)
				}
			}
		}
		sort.Ints(ext)
		f.Extended = ext
		f.rows = make(map[int]int, len(ext))
		for r, at := range ext {
			f.rows[at] = r
		}
		f.Key = fragmentKey(f.Molecule(m))
		D.Fragments = append(D.Fragments, f)
	}
	D.parent = make([]BondIndex, len(D.Fragments))
	for i := range D.parent {
		D.parent[i] = -1
	}
	for _, comp := range m.Components(nil) {
		root := D.FragmentOf[comp[0]]
		for _, at := range comp {
			f := D.FragmentOf[at]
			if len(D.Fragments[f].Core) > len(D.Fragments[root].Core) {
				root = f
			}
		}
		D.Roots = append(D.Roots, root)
		D.grow(root, rot, db)
	}
	return D
}

//grow adds, breadth first, the rotatable bonds of the tree rooted at root.
func (D *Decomposition) grow(root FragmentIndex, rot map[int]bool, db torsiondb.Provider) {
	m := D.Mol
	queue := []FragmentIndex{root}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, b := range D.Fragments[f].Core {
			for _, bi := range m.BondsOf(b) {
				if !rot[bi] {
					continue
				}
				c := m.Bond(bi).Cross(b)
				child := D.FragmentOf[c]
				if child == f || D.parent[child] >= 0 || child == root {
					continue
				}
				r := newRotatableBond(m, bi, b, c, db)
				r.Index = BondIndex(len(D.Bonds))
				r.Fragment1 = f
				r.Fragment2 = child
				D.Bonds = append(D.Bonds, r)
				D.parent[child] = r.Index
				queue = append(queue, child)
			}
		}
	}
}

//Parent returns the rotatable bond that joins the fragment to its parent, or -1 for roots.
func (D *Decomposition) Parent(f FragmentIndex) BondIndex {
	return D.parent[f]
}

//Assignment returns the fragment of each atom, as plain ints.
func (D *Decomposition) Assignment() []int {
	ret := make([]int, len(D.FragmentOf))
	for i, v := range D.FragmentOf {
		ret[i] = int(v)
	}
	return ret
}

//ancestors returns the fragments from f to its root, and the bonds between them.
func (D *Decomposition) ancestors(f FragmentIndex) ([]FragmentIndex, []BondIndex) {
	frags := []FragmentIndex{f}
	var bonds []BondIndex
	for D.parent[f] >= 0 {
		b := D.parent[f]
		bonds = append(bonds, b)
		f = D.Bonds[b].Fragment1
		frags = append(frags, f)
	}
	return frags, bonds
}

//Path returns the rotatable bonds and the fragments on the way from f1 to f2, which determine
//the relative positions of the two. Both f1 and f2 are included. If the fragments belong to
//different molecules, the paths of both to their roots are returned.
func (D *Decomposition) Path(f1, f2 FragmentIndex) (bonds []BondIndex, frags []FragmentIndex) {
	fr1, b1 := D.ancestors(f1)
	fr2, b2 := D.ancestors(f2)
	common := -1
	for i, f := range fr1 {
		for _, g := range fr2 {
			if f == g {
				common = i
				break
			}
		}
		if common >= 0 {
			break
		}
	}
	if common < 0 {
		return append(b1, b2...), append(fr1, fr2...)
	}
	top := fr1[common]
	frags = append(frags, fr1[:common+1]...)
	bonds = append(bonds, b1[:common]...)
	for i, g := range fr2 {
		if g == top {
			break
		}
		frags = append(frags, g)
		bonds = append(bonds, b2[i])
	}
	return bonds, frags
}

//Populate obtains the local conformers of every fragment from p.
func (D *Decomposition) Populate(p Provider) error {
	for _, f := range D.Fragments {
		confs, err := p.LocalConformers(D.Mol, f)
		if err != nil {
			return fmt.Errorf("fragment %d: %w", f.Index, err)
		}
		if len(confs) == 0 {
			return fmt.Errorf("fragment %d: no local conformers", f.Index)
		}
		f.Conformers = confs
	}
	return nil
}

func isIn(test int, container []int) bool {
	for _, v := range container {
		if v == test {
			return true
		}
	}
	return false
}
